package scenario

import (
	"sort"
	"strings"
)

// Scenario identifies one of the guided walkthroughs
type Scenario string

const (
	ScenarioOxygenation    Scenario = "oxygenation"
	ScenarioHemodynamics   Scenario = "hemodynamics"
	ScenarioCardiovascular Scenario = "cardiovascular"
	ScenarioECMOParameters Scenario = "ecmoparameters"
)

// ParameterSpec describes one editable parameter
type ParameterSpec struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Unit  string  `json:"unit"`
}

// Clamp bounds value to [Min, Max]
func (p ParameterSpec) Clamp(value float64) float64 {
	if value < p.Min {
		return p.Min
	}
	if value > p.Max {
		return p.Max
	}
	return value
}

// Step is one page of the guided walkthrough. The introduction step has no parameter.
type Step struct {
	ID        string `json:"id"`
	Header    string `json:"header"`
	Parameter string `json:"parameter,omitempty"`
}

// Definition holds the static configuration of a scenario
type Definition struct {
	Scenario   Scenario                      `json:"scenario"`
	Title      string                        `json:"title"`
	Parameters []ParameterSpec               `json:"parameters"`
	Steps      []Step                        `json:"steps"`
	Outputs    map[string][]string           `json:"outputs"`
	Defaults   map[string]map[string]float64 `json:"defaults"`
	Aliases    map[string]string             `json:"aliases,omitempty"`
}

// Registry is the read-only lookup over all scenario definitions.
// Lookups for unknown scenarios or parameters return empty results, never errors.
type Registry struct {
	defs map[Scenario]*Definition
}

// NewRegistry builds a registry from the given definitions
func NewRegistry(defs ...*Definition) *Registry {
	r := &Registry{defs: make(map[Scenario]*Definition, len(defs))}
	for _, d := range defs {
		r.defs[d.Scenario] = d
	}
	return r
}

var defaultRegistry = NewRegistry(builtinDefinitions()...)

// Default returns the built-in registry shared by the whole process
func Default() *Registry {
	return defaultRegistry
}

// Parse resolves a scenario name case-insensitively
func Parse(name string) (Scenario, bool) {
	s := Scenario(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case ScenarioOxygenation, ScenarioHemodynamics, ScenarioCardiovascular, ScenarioECMOParameters:
		return s, true
	}
	return "", false
}

// Scenarios returns the known scenarios in a stable order
func (r *Registry) Scenarios() []Scenario {
	out := make([]Scenario, 0, len(r.defs))
	for s := range r.defs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Definition returns the definition of a scenario
func (r *Registry) Definition(s Scenario) (*Definition, bool) {
	d, ok := r.defs[s]
	return d, ok
}

// Parameters returns the ordered parameter list of a scenario
func (r *Registry) Parameters(s Scenario) []ParameterSpec {
	d, ok := r.defs[s]
	if !ok {
		return nil
	}
	out := make([]ParameterSpec, len(d.Parameters))
	copy(out, d.Parameters)
	return out
}

// Spec returns the parameter spec for key within a scenario
func (r *Registry) Spec(s Scenario, key string) (ParameterSpec, bool) {
	d, ok := r.defs[s]
	if !ok {
		return ParameterSpec{}, false
	}
	for _, p := range d.Parameters {
		if strings.EqualFold(p.Key, key) {
			return p, true
		}
	}
	return ParameterSpec{}, false
}

// OutputKeys returns the output keys affected by a parameter, in display order
func (r *Registry) OutputKeys(s Scenario, parameter string) []string {
	d, ok := r.defs[s]
	if !ok {
		return nil
	}
	keys := d.Outputs[strings.ToLower(parameter)]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// DefaultOutputs returns the literal defaults shown before any prediction exists
func (r *Registry) DefaultOutputs(s Scenario, parameter string) map[string]float64 {
	out := make(map[string]float64)
	d, ok := r.defs[s]
	if !ok {
		return out
	}
	for k, v := range d.Defaults[strings.ToLower(parameter)] {
		out[k] = v
	}
	return out
}

// Steps returns the walkthrough steps of a scenario
func (r *Registry) Steps(s Scenario) []Step {
	d, ok := r.defs[s]
	if !ok {
		return nil
	}
	out := make([]Step, len(d.Steps))
	copy(out, d.Steps)
	return out
}

// Label returns the human-readable name of a parameter, falling back to the key
func (r *Registry) Label(s Scenario, key string) string {
	if p, ok := r.Spec(s, key); ok && p.Label != "" {
		return p.Label
	}
	return key
}

// BackendParameter normalizes a UI parameter key to the name the prediction backend accepts
func (r *Registry) BackendParameter(s Scenario, key string) string {
	name := strings.Join(strings.Fields(strings.ToLower(key)), "_")
	if d, ok := r.defs[s]; ok {
		if alias, ok := d.Aliases[name]; ok {
			return alias
		}
	}
	return name
}

// WithAliases returns a copy of the registry whose alias tables are extended by overrides.
// Overrides are keyed by scenario name, then by UI parameter key.
func (r *Registry) WithAliases(overrides map[string]map[string]string) *Registry {
	out := &Registry{defs: make(map[Scenario]*Definition, len(r.defs))}
	for s, d := range r.defs {
		cp := *d
		cp.Aliases = make(map[string]string, len(d.Aliases))
		for k, v := range d.Aliases {
			cp.Aliases[k] = v
		}
		out.defs[s] = &cp
	}
	for name, table := range overrides {
		s, ok := Parse(name)
		if !ok {
			continue
		}
		d, ok := out.defs[s]
		if !ok {
			continue
		}
		for k, v := range table {
			d.Aliases[strings.ToLower(k)] = strings.ToLower(v)
		}
	}
	return out
}
