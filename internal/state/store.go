// Package state holds the simulation state of the active scenario.
// A Store is not safe for concurrent use; the engine serializes all access.
package state

import (
	"math"

	"github.com/kartoza/ecmo-explorer/internal/scenario"
)

// ChangeKind identifies which mutation produced a Change
type ChangeKind string

const (
	ChangeScenario  ChangeKind = "scenario"
	ChangeParameter ChangeKind = "parameter"
	ChangeOutputs   ChangeKind = "outputs"
)

// Change is delivered to subscribers after every mutation
type Change struct {
	Kind     ChangeKind        `json:"kind"`
	Scenario scenario.Scenario `json:"scenario"`
	Key      string            `json:"key,omitempty"`
	Value    float64           `json:"value,omitempty"`
}

// Snapshot is a copy of the simulation state
type Snapshot struct {
	Scenario   scenario.Scenario  `json:"scenario"`
	Parameters map[string]float64 `json:"parameters"`
	Outputs    map[string]float64 `json:"outputs"`
}

// Store is the single owner of parameter and output values
type Store struct {
	registry    *scenario.Registry
	scenario    scenario.Scenario
	parameters  map[string]float64
	outputs     map[string]float64
	subscribers map[int]func(Change)
	nextSub     int
}

// NewStore creates an empty store with no scenario selected
func NewStore(reg *scenario.Registry) *Store {
	return &Store{
		registry:    reg,
		parameters:  make(map[string]float64),
		outputs:     make(map[string]float64),
		subscribers: make(map[int]func(Change)),
	}
}

// SelectScenario replaces the state wholesale. Every parameter starts at its minimum.
func (s *Store) SelectScenario(sc scenario.Scenario) {
	s.scenario = sc
	s.parameters = make(map[string]float64)
	for _, p := range s.registry.Parameters(sc) {
		s.parameters[p.Key] = p.Min
	}
	s.outputs = make(map[string]float64)
	s.notify(Change{Kind: ChangeScenario, Scenario: sc})
}

// Scenario returns the selected scenario, empty if none
func (s *Store) Scenario() scenario.Scenario {
	return s.scenario
}

// SetParameter stores value clamped to the parameter's range and returns what was stored.
// Keys unknown to the scenario carry no constraint. NaN leaves the current value in place.
func (s *Store) SetParameter(key string, value float64) float64 {
	if math.IsNaN(value) {
		return s.parameters[key]
	}
	if spec, ok := s.registry.Spec(s.scenario, key); ok {
		key = spec.Key
		value = spec.Clamp(value)
	}
	s.parameters[key] = value
	s.notify(Change{Kind: ChangeParameter, Scenario: s.scenario, Key: key, Value: value})
	return value
}

// Parameter returns the current value of a parameter
func (s *Store) Parameter(key string) (float64, bool) {
	if spec, ok := s.registry.Spec(s.scenario, key); ok {
		key = spec.Key
	}
	v, ok := s.parameters[key]
	return v, ok
}

// MergeOutputs replaces all output values with outputs
func (s *Store) MergeOutputs(outputs map[string]float64) {
	next := make(map[string]float64, len(outputs))
	for k, v := range outputs {
		next[k] = v
	}
	s.outputs = next
	s.notify(Change{Kind: ChangeOutputs, Scenario: s.scenario})
}

// Snapshot returns deep copies of the current values
func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Scenario:   s.scenario,
		Parameters: copyValues(s.parameters),
		Outputs:    copyValues(s.outputs),
	}
}

// Subscribe registers fn for every subsequent change. The returned func removes it.
func (s *Store) Subscribe(fn func(Change)) func() {
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		delete(s.subscribers, id)
	}
}

func (s *Store) notify(c Change) {
	for _, fn := range s.subscribers {
		fn(c)
	}
}

func copyValues(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
