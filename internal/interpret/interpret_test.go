package interpret

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kartoza/ecmo-explorer/internal/scenario"
	"github.com/kartoza/ecmo-explorer/internal/trajectory"
)

func TestParseNumberedSections(t *testing.T) {
	text := "1. Physiological Impact\n- Increased oxygen delivery\n2. Key Trends\n- Rising saturation\n3. Clinical Implications\n- Monitor closely\n4. Concerns\n- Watch for overload"

	got := Parse(text)
	want := Result{
		Physiological: []string{"Increased oxygen delivery"},
		Trends:        []string{"Rising saturation"},
		Clinical:      []string{"Monitor closely"},
		Concerns:      []string{"Watch for overload"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if got.Empty() {
		t.Error("Expected non-empty result")
	}
}

func TestParseUnstructured(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   \n\n\t"},
		{"prose without headers", "The patient is stable.\nNothing to report here today."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.text)
			if !got.Empty() {
				t.Errorf("Expected empty result, got %+v", got)
			}
			if got.Physiological == nil || got.Trends == nil || got.Clinical == nil || got.Concerns == nil {
				t.Error("Expected non-nil lists")
			}
		})
	}
}

func TestParseContentHeuristic(t *testing.T) {
	text := strings.Join([]string{
		"Intro line that comes before any header and is dropped",
		"PHYSIOLOGICAL",
		"ok",
		"• bullet point",
		"A long sentence without a marker",
		"   - indented dash",
		"-",
		"Key trends",
		"12) numbered",
	}, "\n")

	got := Parse(text)
	wantPhys := []string{"bullet point", "A long sentence without a marker", "indented dash"}
	if !reflect.DeepEqual(got.Physiological, wantPhys) {
		t.Errorf("Expected %v, got %v", wantPhys, got.Physiological)
	}
	wantTrends := []string{") numbered"}
	if !reflect.DeepEqual(got.Trends, wantTrends) {
		t.Errorf("Expected %v, got %v", wantTrends, got.Trends)
	}
}

func TestParseHeaderWordsSwitchSection(t *testing.T) {
	// Header patterns are unanchored, so a bullet mentioning "clinical" starts that section
	got := Parse("Concerns\n- Clinical review needed\n- watch the pump")

	if len(got.Concerns) != 0 {
		t.Errorf("Expected no concerns, got %v", got.Concerns)
	}
	want := []string{"watch the pump"}
	if !reflect.DeepEqual(got.Clinical, want) {
		t.Errorf("Expected %v, got %v", want, got.Clinical)
	}
}

func testPoints() []trajectory.Point {
	return []trajectory.Point{
		{Time: 0, InputValue: 5, Values: map[string]float64{"bgDO2": 352.7, "caSys_O2sat": 97.123}},
		{Time: 10, InputValue: 12.5, Values: map[string]float64{"bgDO2": 880, "caSys_O2sat": 99.2}},
	}
}

func TestBuildRequest(t *testing.T) {
	req := BuildRequest(scenario.Default(), scenario.ScenarioOxygenation, "hb", testPoints())

	if req.ScenarioType != "oxygenation" {
		t.Errorf("Expected oxygenation, got %s", req.ScenarioType)
	}
	if req.Parameter != "Hemoglobin" {
		t.Errorf("Expected Hemoglobin, got %s", req.Parameter)
	}
	if req.InitialValues["caSys_O2sat"] != "97.12" {
		t.Errorf("Expected 97.12, got %s", req.InitialValues["caSys_O2sat"])
	}
	if req.FinalValues["bgDO2"] != "880.00" {
		t.Errorf("Expected 880.00, got %s", req.FinalValues["bgDO2"])
	}
	if _, ok := req.FinalValues["input_value"]; ok {
		t.Error("Expected input_value to be excluded")
	}
	if req.ParameterChange.From != "5.00" || req.ParameterChange.To != "12.50" {
		t.Errorf("Expected 5.00 -> 12.50, got %s -> %s", req.ParameterChange.From, req.ParameterChange.To)
	}
}

func TestKey(t *testing.T) {
	a := Key(scenario.ScenarioOxygenation, "hb", testPoints())
	b := Key(scenario.ScenarioOxygenation, "hb", testPoints())
	if a != b {
		t.Errorf("Expected stable key, got %s and %s", a, b)
	}
	if !strings.HasPrefix(a, "oxygenation|hb|") {
		t.Errorf("Unexpected key format: %s", a)
	}

	changed := testPoints()
	changed[1].Values["bgDO2"] = 881
	if Key(scenario.ScenarioOxygenation, "hb", changed) == a {
		t.Error("Expected different key for a different trajectory")
	}
	if Key(scenario.ScenarioOxygenation, "mvo2", testPoints()) == a {
		t.Error("Expected different key for a different parameter")
	}
}
