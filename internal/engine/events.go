package engine

import (
	"github.com/kartoza/ecmo-explorer/internal/scenario"
	"github.com/kartoza/ecmo-explorer/internal/state"
)

// EventType identifies an engine lifecycle event
type EventType string

const (
	EventScenarioSelected     EventType = "scenario_selected"
	EventStepChanged          EventType = "step_changed"
	EventStateChanged         EventType = "state_changed"
	EventPredictionIssued     EventType = "prediction_issued"
	EventPredictionAccepted   EventType = "prediction_accepted"
	EventPredictionStale      EventType = "prediction_stale"
	EventPredictionFailed     EventType = "prediction_failed"
	EventInterpretationReady  EventType = "interpretation_ready"
	EventInterpretationFailed EventType = "interpretation_failed"
)

// Event describes one change of engine state
type Event struct {
	Type      EventType         `json:"type"`
	Session   string            `json:"session"`
	Scenario  scenario.Scenario `json:"scenario"`
	Parameter string            `json:"parameter,omitempty"`
	Sequence  uint64            `json:"sequence,omitempty"`
	Key       string            `json:"key,omitempty"`
	Change    state.ChangeKind  `json:"change,omitempty"`
	Error     string            `json:"error,omitempty"`
}
