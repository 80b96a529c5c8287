// Package engine coordinates parameter edits, prediction requests and
// interpretation requests for one simulation session.
//
// All state mutation is serialized by a single mutex. Backend calls run on
// their own goroutines and re-enter through the same lock when they complete;
// a completion is only applied if it still belongs to the current session and
// carries the latest sequence id issued for its parameter.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kartoza/ecmo-explorer/internal/backend"
	"github.com/kartoza/ecmo-explorer/internal/journal"
	"github.com/kartoza/ecmo-explorer/internal/metrics"
	"github.com/kartoza/ecmo-explorer/internal/models"
	"github.com/kartoza/ecmo-explorer/internal/scenario"
	"github.com/kartoza/ecmo-explorer/internal/state"
	"github.com/kartoza/ecmo-explorer/internal/trajectory"
)

var (
	ErrNoScenario       = errors.New("no scenario selected")
	ErrUnknownScenario  = errors.New("unknown scenario")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrClosed           = errors.New("engine closed")
)

const interpretationFailedMessage = "Failed to get AI interpretation"

// Predictor is the prediction backend
type Predictor interface {
	Predict(ctx context.Context, req models.PredictRequest) ([]trajectory.Point, error)
	Interpret(ctx context.Context, req models.InterpretRequest) (string, error)
}

// Journal receives every accepted prediction
type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Recorder receives call outcomes for monitoring
type Recorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	Stale(operation string)
	Edit()
}

// Options configures optional collaborators. The zero value is valid.
type Options struct {
	Journal  Journal
	Recorder Recorder
	// Timeout bounds each backend call. Zero means no timeout.
	Timeout time.Duration
}

// Status is the request state of one parameter
type Status string

const (
	StatusIdle     Status = "idle"
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusFailed   Status = "failed"
)

type pairState struct {
	latest  uint64
	status  Status
	loading bool
	err     string
	points  []trajectory.Point
	bundle  trajectory.Bundle
}

type seqKey struct {
	scenario  scenario.Scenario
	parameter string
}

// Engine owns the simulation state of the current session
type Engine struct {
	mu        sync.Mutex
	registry  *scenario.Registry
	store     *state.Store
	predictor Predictor
	journal   Journal
	recorder  Recorder
	timeout   time.Duration

	session string
	step    string
	pairs   map[string]*pairState
	seq     map[seqKey]uint64
	interps map[string]*interpretation

	listeners    map[int]func(Event)
	nextListener int
	queue        []Event

	outMu      sync.Mutex
	outbox     []delivery
	wake       chan struct{}
	stop       chan struct{}
	dispatched chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates an engine with no scenario selected
func New(reg *scenario.Registry, predictor Predictor, opts Options) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		registry:   reg,
		store:      state.NewStore(reg),
		predictor:  predictor,
		journal:    opts.Journal,
		recorder:   opts.Recorder,
		timeout:    opts.Timeout,
		pairs:      make(map[string]*pairState),
		seq:        make(map[seqKey]uint64),
		interps:    make(map[string]*interpretation),
		listeners:  make(map[int]func(Event)),
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		dispatched: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
	e.store.Subscribe(func(c state.Change) {
		e.queue = append(e.queue, Event{
			Type:      EventStateChanged,
			Session:   e.session,
			Scenario:  c.Scenario,
			Parameter: c.Key,
			Change:    c.Kind,
		})
	})
	go e.dispatch()
	return e
}

// Registry returns the scenario registry in use
func (e *Engine) Registry() *scenario.Registry {
	return e.registry
}

// Session returns the id of the current session, empty before the first selection
func (e *Engine) Session() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// SelectScenario starts a new session. All parameters return to their minimum,
// outputs are cleared and responses to earlier requests will be ignored.
func (e *Engine) SelectScenario(sc scenario.Scenario) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if _, ok := e.registry.Definition(sc); !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownScenario, sc)
	}

	e.session = uuid.NewString()
	e.step = ""
	e.pairs = make(map[string]*pairState)
	e.store.SelectScenario(sc)
	e.queue = append(e.queue, Event{Type: EventScenarioSelected, Session: e.session, Scenario: sc})
	session := e.session
	e.flushLocked()
	e.mu.Unlock()

	log.Printf("Selected scenario %s (session %s)", sc, session)
	return nil
}

// SetActiveStep selects the walkthrough parameter whose edits trigger predictions.
// An empty parameter selects a step without one.
func (e *Engine) SetActiveStep(parameter string) error {
	e.mu.Lock()
	sc := e.store.Scenario()
	if sc == "" {
		e.mu.Unlock()
		return ErrNoScenario
	}

	key := ""
	if parameter != "" {
		spec, ok := e.registry.Spec(sc, parameter)
		if !ok {
			e.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownParameter, parameter)
		}
		key = spec.Key
	}
	e.step = key
	e.queue = append(e.queue, Event{Type: EventStepChanged, Session: e.session, Scenario: sc, Parameter: key})
	e.flushLocked()
	e.mu.Unlock()

	return nil
}

// EditResult reports what an edit stored and whether it issued a request
type EditResult struct {
	Key       string  `json:"key"`
	Requested float64 `json:"requested"`
	Stored    float64 `json:"stored"`
	// Sequence is the id of the issued prediction request, zero if none
	Sequence uint64 `json:"sequence,omitempty"`
}

// Edit stores a clamped parameter value. Keys outside the scenario's parameter
// list are rejected. Editing the active step parameter issues a prediction
// request from the previous value to the stored one.
func (e *Engine) Edit(key string, value float64) (EditResult, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return EditResult{}, ErrClosed
	}
	sc := e.store.Scenario()
	if sc == "" {
		e.mu.Unlock()
		return EditResult{}, ErrNoScenario
	}

	spec, ok := e.registry.Spec(sc, key)
	if !ok {
		e.mu.Unlock()
		return EditResult{}, fmt.Errorf("%w: %s", ErrUnknownParameter, key)
	}
	key = spec.Key
	previous, _ := e.store.Parameter(key)
	stored := e.store.SetParameter(key, value)
	if e.recorder != nil {
		e.recorder.Edit()
	}

	res := EditResult{Key: key, Requested: value, Stored: stored}
	if e.step != "" && key == e.step {
		res.Sequence = e.issueLocked(sc, key, previous, stored)
	}
	e.flushLocked()
	e.mu.Unlock()

	return res, nil
}

func (e *Engine) issueLocked(sc scenario.Scenario, param string, from, to float64) uint64 {
	sk := seqKey{scenario: sc, parameter: param}
	e.seq[sk]++
	seq := e.seq[sk]

	p := e.pairLocked(param)
	p.latest = seq
	p.status = StatusPending
	p.loading = true
	p.err = ""

	req := models.PredictRequest{
		Scenario:      string(sc),
		Parameter:     e.registry.BackendParameter(sc, param),
		InitialValue:  from,
		TargetValue:   to,
		InitialStates: e.stateSnapshotLocked(sc, param),
	}
	session := e.session
	e.queue = append(e.queue, Event{
		Type:      EventPredictionIssued,
		Session:   session,
		Scenario:  sc,
		Parameter: param,
		Sequence:  seq,
	})

	e.wg.Add(1)
	go e.runPrediction(session, sc, param, seq, req)
	return seq
}

// stateSnapshotLocked is the state sent with a prediction request: parameter
// values overlaid with the last known outputs, or with the resolved defaults of
// the pair while no prediction has been merged yet.
func (e *Engine) stateSnapshotLocked(sc scenario.Scenario, param string) map[string]float64 {
	snap := e.store.Snapshot()
	out := snap.Parameters
	outputs := snap.Outputs
	if len(outputs) == 0 {
		outputs = trajectory.Derive(e.registry, sc, param, nil).Values()
	}
	for k, v := range outputs {
		out[k] = v
	}
	return out
}

func (e *Engine) runPrediction(session string, sc scenario.Scenario, param string, seq uint64, req models.PredictRequest) {
	defer e.wg.Done()

	ctx, cancel := e.callContext()
	defer cancel()

	start := time.Now()
	points, err := e.predictor.Predict(ctx, req)
	if err == nil && len(points) == 0 {
		err = trajectory.ErrEmpty
	}
	if e.recorder != nil {
		e.recorder.Observe(ctx, metrics.OpPredict, err == nil, time.Since(start))
	}

	e.completePrediction(session, sc, param, seq, req, points, err)
}

func (e *Engine) completePrediction(session string, sc scenario.Scenario, param string, seq uint64, req models.PredictRequest, points []trajectory.Point, callErr error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	p, ok := e.pairs[param]
	if session != e.session || !ok || seq != p.latest {
		e.queue = append(e.queue, Event{Type: EventPredictionStale, Session: session, Scenario: sc, Parameter: param, Sequence: seq})
		e.flushLocked()
		e.mu.Unlock()

		log.Printf("Discarded stale prediction %s/%s #%d", sc, param, seq)
		if e.recorder != nil {
			e.recorder.Stale(metrics.OpPredict)
		}
		return
	}

	p.loading = false
	var entry *journal.Entry
	if callErr == nil {
		var res trajectory.Result
		res, callErr = trajectory.Merge(e.registry, sc, param, points)
		if callErr == nil {
			p.status = StatusAccepted
			p.err = ""
			p.points = points
			p.bundle = res.Bundle
			e.store.MergeOutputs(res.Baseline)
			e.queue = append(e.queue, Event{Type: EventPredictionAccepted, Session: session, Scenario: sc, Parameter: param, Sequence: seq})
			e.requestInterpretationLocked(sc, param, points)

			entry = &journal.Entry{
				SessionID: session,
				Scenario:  string(sc),
				Parameter: param,
				Sequence:  seq,
				From:      req.InitialValue,
				To:        req.TargetValue,
				Points:    points,
			}
		}
	}
	if callErr != nil {
		p.status = StatusFailed
		p.err = describeError(callErr)
		p.points = nil
		p.bundle = trajectory.Bundle{}
		e.queue = append(e.queue, Event{Type: EventPredictionFailed, Session: session, Scenario: sc, Parameter: param, Sequence: seq, Error: p.err})
		log.Printf("Warning: prediction %s/%s #%d failed: %v", sc, param, seq, callErr)
	}
	e.flushLocked()
	e.mu.Unlock()

	if entry != nil && e.journal != nil {
		if err := e.journal.Record(e.ctx, *entry); err != nil {
			log.Printf("Warning: failed to journal prediction: %v", err)
		}
	}
}

func describeError(err error) string {
	var serr *backend.ServerError
	switch {
	case errors.As(err, &serr):
		return serr.Message
	case errors.Is(err, trajectory.ErrEmpty):
		return "Prediction returned no data"
	case errors.Is(err, context.DeadlineExceeded):
		return "Prediction timed out"
	case errors.Is(err, backend.ErrInvalidResponse):
		return "Invalid prediction response"
	}
	return "Failed to fetch predictions: " + err.Error()
}

func (e *Engine) callContext() (context.Context, context.CancelFunc) {
	if e.timeout > 0 {
		return context.WithTimeout(e.ctx, e.timeout)
	}
	return context.WithCancel(e.ctx)
}

func (e *Engine) pairLocked(param string) *pairState {
	p, ok := e.pairs[param]
	if !ok {
		p = &pairState{status: StatusIdle}
		e.pairs[param] = p
	}
	return p
}

// PairView is the request state of one parameter
type PairView struct {
	Parameter  string             `json:"parameter"`
	Status     Status             `json:"status"`
	Loading    bool               `json:"loading"`
	Error      string             `json:"error,omitempty"`
	Sequence   uint64             `json:"sequence"`
	Trajectory []trajectory.Point `json:"trajectory"`
	Bundle     trajectory.Bundle  `json:"bundle"`
}

// View is a read-only copy of the session for consumers
type View struct {
	Session        string             `json:"session"`
	Scenario       scenario.Scenario  `json:"scenario"`
	ActiveStep     string             `json:"active_step"`
	Parameters     map[string]float64 `json:"parameters"`
	Outputs        map[string]float64 `json:"outputs"`
	Prediction     *PairView          `json:"prediction,omitempty"`
	Interpretation InterpretationView `json:"interpretation"`
}

// View returns the current session state
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := e.store.Snapshot()
	v := View{
		Session:        e.session,
		Scenario:       snap.Scenario,
		ActiveStep:     e.step,
		Parameters:     snap.Parameters,
		Outputs:        snap.Outputs,
		Interpretation: e.interpretationLocked(),
	}
	if e.step != "" {
		pv := e.pairViewLocked(e.step)
		v.Prediction = &pv
	}
	return v
}

// Pair returns the request state of a parameter of the current scenario
func (e *Engine) Pair(parameter string) (PairView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sc := e.store.Scenario()
	if sc == "" {
		return PairView{}, ErrNoScenario
	}
	spec, ok := e.registry.Spec(sc, parameter)
	if !ok {
		return PairView{}, fmt.Errorf("%w: %s", ErrUnknownParameter, parameter)
	}
	return e.pairViewLocked(spec.Key), nil
}

func (e *Engine) pairViewLocked(param string) PairView {
	pv := PairView{Parameter: param, Status: StatusIdle, Trajectory: []trajectory.Point{}}
	p, ok := e.pairs[param]
	if ok {
		pv.Status = p.status
		pv.Loading = p.loading
		pv.Error = p.err
		pv.Sequence = p.latest
		if p.points != nil {
			pv.Trajectory = append(pv.Trajectory, p.points...)
		}
	}
	if ok && p.status == StatusAccepted {
		pv.Bundle = p.bundle
	} else {
		pv.Bundle = trajectory.Derive(e.registry, e.store.Scenario(), param, nil)
	}
	return pv
}

// Subscribe registers fn for engine events. Events are delivered one at a time
// on a single engine goroutine, in the order their state changes were applied.
// fn may call back into the engine but must not call Close. The returned func
// removes fn.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

type delivery struct {
	events    []Event
	listeners []func(Event)
}

// flushLocked hands the queued events to the dispatcher. Holding e.mu while
// appending to the outbox keeps deliveries in lock order.
func (e *Engine) flushLocked() {
	if len(e.queue) == 0 {
		return
	}
	d := delivery{events: e.queue}
	e.queue = nil
	for _, fn := range e.listeners {
		d.listeners = append(d.listeners, fn)
	}

	e.outMu.Lock()
	e.outbox = append(e.outbox, d)
	e.outMu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// dispatch delivers flushed events until Close
func (e *Engine) dispatch() {
	defer close(e.dispatched)
	for {
		select {
		case <-e.wake:
			e.deliverPending()
		case <-e.stop:
			e.deliverPending()
			return
		}
	}
}

func (e *Engine) deliverPending() {
	for {
		e.outMu.Lock()
		batch := e.outbox
		e.outbox = nil
		e.outMu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, d := range batch {
			for _, ev := range d.events {
				for _, fn := range d.listeners {
					fn(ev)
				}
			}
		}
	}
}

// Close cancels in-flight backend calls, waits for their goroutines and
// delivers the remaining events
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.cancel()
	e.mu.Unlock()

	e.wg.Wait()
	close(e.stop)
	<-e.dispatched
}
