package engine

import (
	"log"
	"time"

	"github.com/kartoza/ecmo-explorer/internal/interpret"
	"github.com/kartoza/ecmo-explorer/internal/metrics"
	"github.com/kartoza/ecmo-explorer/internal/models"
	"github.com/kartoza/ecmo-explorer/internal/scenario"
	"github.com/kartoza/ecmo-explorer/internal/trajectory"
)

// InterpretationStatus is the state of one memoized interpretation
type InterpretationStatus string

const (
	InterpretationNone    InterpretationStatus = "none"
	InterpretationPending InterpretationStatus = "pending"
	InterpretationReady   InterpretationStatus = "ready"
	InterpretationFailed  InterpretationStatus = "failed"
)

type interpretation struct {
	status InterpretationStatus
	text   string
	result interpret.Result
	err    string
}

// InterpretationView is the interpretation of the active parameter's trajectory.
// Available is false when the narrative had no recognizable sections.
type InterpretationView struct {
	Key       string               `json:"key,omitempty"`
	Status    InterpretationStatus `json:"status"`
	Available bool                 `json:"available"`
	Result    interpret.Result     `json:"result"`
	Text      string               `json:"text,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// Interpretation returns the interpretation of the active parameter's trajectory
func (e *Engine) Interpretation() InterpretationView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interpretationLocked()
}

func (e *Engine) interpretationLocked() InterpretationView {
	v := InterpretationView{Status: InterpretationNone, Result: interpret.NewResult()}
	if e.step == "" {
		return v
	}
	p, ok := e.pairs[e.step]
	if !ok || p.status != StatusAccepted {
		return v
	}

	v.Key = interpret.Key(e.store.Scenario(), e.step, p.points)
	it, ok := e.interps[v.Key]
	if !ok {
		return v
	}
	v.Status = it.status
	v.Result = it.result
	v.Text = it.text
	v.Error = it.err
	v.Available = it.status == InterpretationReady && !it.result.Empty()
	return v
}

// requestInterpretationLocked asks for the narrative of an accepted trajectory
// unless one for the same key is already pending or ready. Failed keys are
// asked again.
func (e *Engine) requestInterpretationLocked(sc scenario.Scenario, param string, points []trajectory.Point) {
	key := interpret.Key(sc, param, points)
	if it, ok := e.interps[key]; ok && it.status != InterpretationFailed {
		return
	}
	e.interps[key] = &interpretation{status: InterpretationPending, result: interpret.NewResult()}

	req := interpret.BuildRequest(e.registry, sc, param, points)
	session := e.session
	e.wg.Add(1)
	go e.runInterpretation(session, sc, param, key, req)
}

func (e *Engine) runInterpretation(session string, sc scenario.Scenario, param, key string, req models.InterpretRequest) {
	defer e.wg.Done()

	ctx, cancel := e.callContext()
	defer cancel()

	start := time.Now()
	text, err := e.predictor.Interpret(ctx, req)
	if e.recorder != nil {
		e.recorder.Observe(ctx, metrics.OpInterpret, err == nil, time.Since(start))
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	it := e.interps[key]
	ev := Event{Session: session, Scenario: sc, Parameter: param, Key: key}
	if err != nil {
		it.status = InterpretationFailed
		it.err = interpretationFailedMessage
		ev.Type = EventInterpretationFailed
		ev.Error = it.err
		log.Printf("Warning: interpretation %s failed: %v", key, err)
	} else {
		it.status = InterpretationReady
		it.text = text
		it.result = interpret.Parse(text)
		ev.Type = EventInterpretationReady
	}
	e.queue = append(e.queue, ev)
	e.flushLocked()
	e.mu.Unlock()
}
