package state

import (
	"math"
	"testing"

	"github.com/kartoza/ecmo-explorer/internal/scenario"
)

func newTestStore(sc scenario.Scenario) *Store {
	s := NewStore(scenario.Default())
	s.SelectScenario(sc)
	return s
}

func TestSelectScenarioStartsAtMinimum(t *testing.T) {
	s := newTestStore(scenario.ScenarioOxygenation)
	snap := s.Snapshot()

	params := scenario.Default().Parameters(scenario.ScenarioOxygenation)
	if len(snap.Parameters) != len(params) {
		t.Fatalf("Expected %d parameters, got %d", len(params), len(snap.Parameters))
	}
	for _, p := range params {
		if snap.Parameters[p.Key] != p.Min {
			t.Errorf("Expected %s = %v, got %v", p.Key, p.Min, snap.Parameters[p.Key])
		}
	}
	if len(snap.Outputs) != 0 {
		t.Errorf("Expected no outputs, got %v", snap.Outputs)
	}
}

func TestSetParameterClamps(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value float64
		want  float64
	}{
		{"below min", "hb", 1, 5},
		{"above max", "hb", 42, 20},
		{"in range", "hb", 12.5, 12.5},
		{"upper bound", "fdo2", 1, 1},
		{"lower bound", "fdo2", 0.1, 0.21},
		{"unknown key unconstrained", "extra", 1e6, 1e6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(scenario.ScenarioOxygenation)
			got := s.SetParameter(tt.key, tt.value)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			stored, _ := s.Parameter(tt.key)
			if stored != got {
				t.Errorf("Expected stored %v, got %v", got, stored)
			}

			// Idempotent for the clamped value
			if again := s.SetParameter(tt.key, got); again != got {
				t.Errorf("Expected idempotent %v, got %v", got, again)
			}
		})
	}
}

func TestSetParameterNaN(t *testing.T) {
	s := newTestStore(scenario.ScenarioOxygenation)
	s.SetParameter("hb", 10)
	if got := s.SetParameter("hb", math.NaN()); got != 10 {
		t.Errorf("Expected 10, got %v", got)
	}
}

func TestSetParameterCaseInsensitive(t *testing.T) {
	s := newTestStore(scenario.ScenarioOxygenation)
	s.SetParameter("HB", 30)
	if v, _ := s.Parameter("hb"); v != 20 {
		t.Errorf("Expected hb clamped to 20, got %v", v)
	}
}

func TestMergeOutputsReplaces(t *testing.T) {
	s := newTestStore(scenario.ScenarioOxygenation)
	s.MergeOutputs(map[string]float64{"a": 1, "b": 2})
	s.MergeOutputs(map[string]float64{"c": 3})

	snap := s.Snapshot()
	if len(snap.Outputs) != 1 || snap.Outputs["c"] != 3 {
		t.Errorf("Expected only c=3, got %v", snap.Outputs)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	s := newTestStore(scenario.ScenarioOxygenation)
	in := map[string]float64{"a": 1}
	s.MergeOutputs(in)
	in["a"] = 99

	snap := s.Snapshot()
	snap.Parameters["hb"] = 100
	snap.Outputs["a"] = 100

	again := s.Snapshot()
	if again.Outputs["a"] != 1 {
		t.Errorf("Expected output a=1, got %v", again.Outputs["a"])
	}
	if again.Parameters["hb"] != 5 {
		t.Errorf("Expected hb=5, got %v", again.Parameters["hb"])
	}
}

func TestScenarioSwitchResets(t *testing.T) {
	s := newTestStore(scenario.ScenarioOxygenation)
	s.SetParameter("hb", 15)
	s.MergeOutputs(map[string]float64{"bgDO2": 500})

	s.SelectScenario(scenario.ScenarioECMOParameters)
	snap := s.Snapshot()
	if _, ok := snap.Parameters["hb"]; ok {
		t.Error("Expected hb to be gone after scenario switch")
	}
	if snap.Parameters["rpm"] != 0.6 {
		t.Errorf("Expected rpm 0.6, got %v", snap.Parameters["rpm"])
	}
	if len(snap.Outputs) != 0 {
		t.Errorf("Expected outputs cleared, got %v", snap.Outputs)
	}
}

func TestSubscribe(t *testing.T) {
	s := NewStore(scenario.Default())
	var changes []Change
	cancel := s.Subscribe(func(c Change) {
		changes = append(changes, c)
	})

	s.SelectScenario(scenario.ScenarioHemodynamics)
	s.SetParameter("svr", 200)
	s.MergeOutputs(map[string]float64{"caSys_pH": 7.3})

	if len(changes) != 3 {
		t.Fatalf("Expected 3 changes, got %d", len(changes))
	}
	if changes[0].Kind != ChangeScenario {
		t.Errorf("Expected scenario change, got %s", changes[0].Kind)
	}
	if changes[1].Kind != ChangeParameter || changes[1].Value != 100 {
		t.Errorf("Expected clamped parameter change 100, got %+v", changes[1])
	}
	if changes[2].Kind != ChangeOutputs {
		t.Errorf("Expected outputs change, got %s", changes[2].Kind)
	}

	cancel()
	s.SetParameter("svr", 10)
	if len(changes) != 3 {
		t.Errorf("Expected no changes after cancel, got %d", len(changes))
	}
}
