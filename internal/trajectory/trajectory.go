// Package trajectory merges predicted trajectories into baseline state and
// derives the display bundle shown for the active parameter.
package trajectory

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/kartoza/ecmo-explorer/internal/scenario"
)

const (
	fieldTime       = "time"
	fieldInputValue = "input_value"
)

// ErrEmpty is returned when a trajectory has no points
var ErrEmpty = errors.New("empty trajectory")

// Point is one predicted state. On the wire it is a flat object:
// {"time": 0, "input_value": 5, "bgDO2": 917.1, ...}
type Point struct {
	Time       int
	InputValue float64
	Values     map[string]float64
}

// MarshalJSON flattens the point
func (p Point) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, len(p.Values)+2)
	for k, v := range p.Values {
		m[k] = v
	}
	m[fieldTime] = float64(p.Time)
	m[fieldInputValue] = p.InputValue
	return json.Marshal(m)
}

// UnmarshalJSON reads a flat point. Non-numeric fields are ignored.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("trajectory point must be an object")
	}

	p.Values = make(map[string]float64, len(raw))
	for k, v := range raw {
		f, ok := v.(float64)
		if !ok {
			continue
		}
		switch k {
		case fieldTime:
			if f < 0 {
				return fmt.Errorf("negative time %v", f)
			}
			p.Time = int(f)
		case fieldInputValue:
			p.InputValue = f
		default:
			p.Values[k] = f
		}
	}
	return nil
}

// Baseline returns the values of the last point without time and input_value
func Baseline(points []Point) map[string]float64 {
	out := make(map[string]float64)
	if len(points) == 0 {
		return out
	}
	for k, v := range points[len(points)-1].Values {
		out[k] = v
	}
	return out
}

// Source records where a bundle value came from
type Source string

const (
	SourcePrediction Source = "prediction"
	SourceScenario   Source = "scenario"
	SourceGlobal     Source = "global"
)

// Entry is one resolved output of the display bundle
type Entry struct {
	Key    string  `json:"key"`
	Value  float64 `json:"value"`
	Text   string  `json:"text"`
	Source Source  `json:"source"`
}

// Bundle is the display-ready set of outputs for one parameter.
// Outputs not relevant to the parameter are absent.
type Bundle struct {
	Scenario  scenario.Scenario `json:"scenario"`
	Parameter string            `json:"parameter"`
	Entries   []Entry           `json:"entries"`
}

// Text returns the formatted value of key
func (b Bundle) Text(key string) (string, bool) {
	for _, e := range b.Entries {
		if e.Key == key {
			return e.Text, true
		}
	}
	return "", false
}

// Values returns the full-precision values keyed by output
func (b Bundle) Values() map[string]float64 {
	out := make(map[string]float64, len(b.Entries))
	for _, e := range b.Entries {
		out[e.Key] = e.Value
	}
	return out
}

// Derive resolves every output key of (sc, param) from last, then the
// scenario defaults, then the global constants. last may be nil.
func Derive(reg *scenario.Registry, sc scenario.Scenario, param string, last map[string]float64) Bundle {
	b := Bundle{Scenario: sc, Parameter: param, Entries: []Entry{}}
	defaults := reg.DefaultOutputs(sc, param)

	for _, key := range reg.OutputKeys(sc, param) {
		var (
			value  float64
			source Source
		)
		if v, ok := last[key]; ok && !math.IsNaN(v) {
			value, source = v, SourcePrediction
		} else if v, ok := defaults[key]; ok {
			value, source = v, SourceScenario
		} else if v, ok := GlobalDefault(key); ok {
			value, source = v, SourceGlobal
		} else {
			continue
		}
		b.Entries = append(b.Entries, Entry{
			Key:    key,
			Value:  value,
			Text:   FormatValue(value),
			Source: source,
		})
	}
	return b
}

// Result is the outcome of merging an accepted trajectory
type Result struct {
	Baseline map[string]float64 `json:"baseline"`
	Bundle   Bundle             `json:"bundle"`
}

// Merge computes the new baseline and display bundle from an accepted trajectory
func Merge(reg *scenario.Registry, sc scenario.Scenario, param string, points []Point) (Result, error) {
	if len(points) == 0 {
		return Result{}, ErrEmpty
	}
	baseline := Baseline(points)
	return Result{
		Baseline: baseline,
		Bundle:   Derive(reg, sc, param, baseline),
	}, nil
}

// FormatValue renders a value with exactly two decimals
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
