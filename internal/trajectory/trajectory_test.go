package trajectory

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/kartoza/ecmo-explorer/internal/scenario"
)

func TestEveryOutputHasGlobalDefault(t *testing.T) {
	reg := scenario.Default()
	for _, s := range reg.Scenarios() {
		for _, p := range reg.Parameters(s) {
			for _, key := range reg.OutputKeys(s, p.Key) {
				if _, ok := GlobalDefault(key); !ok {
					t.Errorf("%s/%s: no global default for %s", s, p.Key, key)
				}
			}
		}
	}
}

func TestPointJSON(t *testing.T) {
	data := []byte(`[
		{"time": 0, "input_value": 5, "bgDO2": 352.7, "caSys_O2sat": 97.1},
		{"time": 10, "input_value": 12.5, "bgDO2": 880.123, "caSys_O2sat": 99.2, "label": "ignored"}
	]`)

	var points []Point
	if err := json.Unmarshal(data, &points); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if points[1].Time != 10 {
		t.Errorf("Expected time 10, got %d", points[1].Time)
	}
	if points[1].InputValue != 12.5 {
		t.Errorf("Expected input_value 12.5, got %v", points[1].InputValue)
	}
	if _, ok := points[1].Values["time"]; ok {
		t.Error("Expected time to be stripped from values")
	}
	if _, ok := points[1].Values["label"]; ok {
		t.Error("Expected non-numeric field to be ignored")
	}

	out, err := json.Marshal(points[0])
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var flat map[string]float64
	if err := json.Unmarshal(out, &flat); err != nil {
		t.Fatalf("Expected flat object, got %s", out)
	}
	if flat["input_value"] != 5 || flat["bgDO2"] != 352.7 {
		t.Errorf("Unexpected flattened point: %v", flat)
	}
}

func TestPointRejectsNegativeTime(t *testing.T) {
	var p Point
	if err := json.Unmarshal([]byte(`{"time": -1}`), &p); err == nil {
		t.Error("Expected error for negative time")
	}
}

func TestBaselineIsLastPoint(t *testing.T) {
	points := []Point{
		{Time: 0, InputValue: 5, Values: map[string]float64{"bgDO2": 1}},
		{Time: 1, InputValue: 10, Values: map[string]float64{"bgDO2": 2, "cvSys_O2sat": 60}},
	}
	got := Baseline(points)
	if len(got) != 2 || got["bgDO2"] != 2 || got["cvSys_O2sat"] != 60 {
		t.Errorf("Unexpected baseline: %v", got)
	}

	got["bgDO2"] = 99
	if points[1].Values["bgDO2"] != 2 {
		t.Error("Baseline must not alias the trajectory")
	}
}

func TestDeriveFallbackChain(t *testing.T) {
	reg := scenario.Default()

	// hb defaults cover bgDO2 and cvSys_O2sat; caSys_O2sat comes from the global table
	b := Derive(reg, scenario.ScenarioOxygenation, "hb", nil)

	want := map[string]struct {
		value  float64
		text   string
		source Source
	}{
		"bgDO2":       {352.7, "352.70", SourceScenario},
		"caSys_O2sat": {99.86, "99.86", SourceGlobal},
		"cvSys_O2sat": {48.2, "48.20", SourceScenario},
	}
	if len(b.Entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(b.Entries))
	}
	for _, e := range b.Entries {
		w, ok := want[e.Key]
		if !ok {
			t.Errorf("Unexpected key %s", e.Key)
			continue
		}
		if e.Value != w.value || e.Text != w.text || e.Source != w.source {
			t.Errorf("%s: expected %v/%s/%s, got %v/%s/%s", e.Key, w.value, w.text, w.source, e.Value, e.Text, e.Source)
		}
	}
}

func TestDeriveMatchesScenarioDefaults(t *testing.T) {
	reg := scenario.Default()
	for _, s := range reg.Scenarios() {
		for _, p := range reg.Parameters(s) {
			b := Derive(reg, s, p.Key, nil)
			defaults := reg.DefaultOutputs(s, p.Key)
			values := b.Values()
			for k, v := range defaults {
				if values[k] != v {
					t.Errorf("%s/%s: expected %s = %v, got %v", s, p.Key, k, v, values[k])
				}
			}
			for _, key := range reg.OutputKeys(s, p.Key) {
				if _, ok := defaults[key]; ok {
					continue
				}
				g, _ := GlobalDefault(key)
				if values[key] != g {
					t.Errorf("%s/%s: expected global %s = %v, got %v", s, p.Key, key, g, values[key])
				}
			}
		}
	}
}

func TestDeriveOmitsIrrelevantKeys(t *testing.T) {
	reg := scenario.Default()
	last := map[string]float64{"bgDO2": 800, "paosys": 130}
	b := Derive(reg, scenario.ScenarioOxygenation, "hb", last)

	if _, ok := b.Text("paosys"); ok {
		t.Error("Expected paosys to be omitted for hb")
	}
	text, ok := b.Text("bgDO2")
	if !ok || text != "800.00" {
		t.Errorf("Expected bgDO2 800.00, got %q", text)
	}
}

func TestDeriveUnknownPair(t *testing.T) {
	b := Derive(scenario.Default(), "renal", "x", map[string]float64{"a": 1})
	if b.Entries == nil || len(b.Entries) != 0 {
		t.Errorf("Expected empty non-nil entries, got %v", b.Entries)
	}
}

func TestMerge(t *testing.T) {
	reg := scenario.Default()
	points := []Point{
		{Time: 0, InputValue: 5, Values: map[string]float64{"bgDO2": 352.7}},
		{Time: 30, InputValue: 12, Values: map[string]float64{"bgDO2": 880.126, "caSys_O2sat": 99.5, "ppcw": 9}},
	}

	res, err := Merge(reg, scenario.ScenarioOxygenation, "hb", points)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if res.Baseline["ppcw"] != 9 {
		t.Errorf("Expected baseline to carry every key of the last point, got %v", res.Baseline)
	}

	v := res.Bundle.Values()
	if v["bgDO2"] != 880.126 {
		t.Errorf("Expected full precision 880.126, got %v", v["bgDO2"])
	}
	if text, _ := res.Bundle.Text("bgDO2"); text != "880.13" {
		t.Errorf("Expected 880.13, got %s", text)
	}
	if res.Bundle.Entries[2].Source != SourceScenario {
		t.Errorf("Expected cvSys_O2sat from scenario defaults, got %s", res.Bundle.Entries[2].Source)
	}

	if _, err := Merge(reg, scenario.ScenarioOxygenation, "hb", nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{7.35, "7.35"},
		{7, "7.00"},
		{-22, "-22.00"},
		{0.0001, "0.00"},
		{99.857, "99.86"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v): expected %s, got %s", tt.in, tt.want, got)
		}
	}
}
