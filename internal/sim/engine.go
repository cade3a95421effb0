package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/statesim/internal/logging"
	"github.com/aretw0/statesim/internal/presentation/graph"
	"github.com/aretw0/statesim/pkg/action"
	"github.com/aretw0/statesim/pkg/domain"
)

// Clock supplies timestamps for history entries. Injectable for
// deterministic tests.
type Clock func() time.Time

// Engine is the live simulation of one machine definition.
//
// All mutation happens synchronously inside Load, Send and Undo; each runs
// to completion and then notifies subscribers, so on a single goroutine no
// two transitions can interleave. The engine holds no locks: callers that
// share an instance across goroutines must serialize access themselves.
type Engine struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	eval   action.Evaluator
	clock  Clock

	def       *domain.Definition
	graphOpts graph.Options

	current   string
	previous  string
	lastEvent string
	context   map[string]any
	history   []domain.HistoryEntry

	subscribers []func(domain.Snapshot)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithEvaluator replaces the default action expression evaluator.
func WithEvaluator(eval action.Evaluator) Option {
	return func(e *Engine) {
		if eval != nil {
			e.eval = eval
		}
	}
}

// WithClock replaces the history timestamp source.
func WithClock(clock Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// New creates an empty engine. Load a definition before sending events.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NewNop(),
		eval:   action.New(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load installs a definition and resets the simulation to its initial
// state: fresh deep-copied context, cleared previous/lastEvent markers and
// a single-entry history tagged with the initial-state sentinel. On failure
// the engine keeps whatever was loaded before.
func (e *Engine) Load(def *domain.Definition) error {
	if def == nil {
		e.logger.Warn("load skipped: nil definition")
		return domain.ErrNoDefinition
	}
	if def.States == nil || def.States.Len() == 0 {
		e.logger.Warn("load skipped: definition has no states", "machine", def.ID)
		return domain.ErrNoStates
	}

	opts, err := graph.ParseOptions(def.Display)
	if err != nil {
		// Presentation hints never block a load.
		e.logger.Warn("invalid display options, using defaults", "machine", def.ID, "err", err)
	}

	e.def = def
	e.graphOpts = opts
	e.current = def.InitialState
	e.previous = ""
	e.lastEvent = ""
	e.context = domain.CopyContext(def.Context)
	e.history = []domain.HistoryEntry{{
		Timestamp: e.clock(),
		State:     e.current,
		Event:     domain.InitialStateEvent,
		Context:   domain.CopyContext(e.context),
	}}

	e.logger.Info("machine loaded", "machine", def.ID, "initial_state", def.InitialState)
	if e.hooks.OnLoad != nil {
		e.hooks.OnLoad(&domain.LoadEvent{
			Timestamp:    e.clock(),
			MachineID:    def.ID,
			InitialState: def.InitialState,
		})
	}

	e.notify()
	return nil
}

// Reset re-applies the stored definition, producing the identical initial
// snapshot as the original Load. No-op if nothing has ever been loaded.
func (e *Engine) Reset() {
	if e.def == nil {
		return
	}
	// Cannot fail: the definition already passed Load's checks.
	_ = e.Load(e.def)
}

// Loaded reports whether a definition is installed.
func (e *Engine) Loaded() bool {
	return e.def != nil
}

// Definition returns the loaded definition, or nil.
func (e *Engine) Definition() *domain.Definition {
	return e.def
}

// Send applies an event to the machine.
//
// The transition is atomic: the action (if any) runs against a deep copy of
// the context, and only when it succeeds does the machine move, commit the
// new context and append a history entry. Any failure leaves current state,
// context and history exactly as they were.
//
// Unrecognized events return domain.ErrNoTransition. Action failures return
// the evaluator's structured error (*action.Error for the default dialect).
func (e *Engine) Send(event string, input any) error {
	if e.def == nil {
		return domain.ErrNoDefinition
	}

	state := e.def.States.Get(e.current)
	var tr *domain.TransitionDef
	if state != nil {
		tr = state.On.Get(event)
	}
	if tr == nil {
		e.logger.Debug("no transition", "machine", e.def.ID, "state", e.current, "event", event)
		return fmt.Errorf("event %q in state %q: %w", event, e.current, domain.ErrNoTransition)
	}

	// Action evaluation works on an independent copy so a failing or
	// half-applied script can never leak into the live context or history.
	nextContext := domain.CopyContext(e.context)
	if tr.Action != "" {
		evaluated, err := e.eval.Evaluate(tr.Action, nextContext, input)
		if err != nil {
			e.logger.Warn("action evaluation failed",
				"machine", e.def.ID,
				"state", e.current,
				"event", event,
				"err", err,
			)
			if e.hooks.OnActionFailure != nil {
				e.hooks.OnActionFailure(&domain.ActionFailureEvent{
					Timestamp: e.clock(),
					MachineID: e.def.ID,
					Event:     event,
					State:     e.current,
					Message:   err.Error(),
				})
			}
			return err
		}
		if evaluated != nil {
			nextContext = evaluated
		}
	}

	from := e.current
	e.previous = e.current
	e.current = tr.To
	e.lastEvent = event
	e.context = nextContext
	e.history = append(e.history, domain.HistoryEntry{
		Timestamp: e.clock(),
		State:     e.current,
		Event:     event,
		Context:   domain.CopyContext(nextContext),
		Input:     domain.DeepCopy(input),
	})

	e.logger.Info("transition", "machine", e.def.ID, "event", event, "from", from, "to", e.current)
	if e.hooks.OnTransition != nil {
		e.hooks.OnTransition(&domain.TransitionEvent{
			Timestamp:     e.clock(),
			MachineID:     e.def.ID,
			Event:         event,
			From:          from,
			To:            e.current,
			ActionApplied: tr.Action != "",
		})
	}

	e.notify()
	return nil
}

// Undo discards the most recent history entry and restores the machine to
// the one beneath it. Undoing at the initial entry is a silent no-op.
// There is no redo: a subsequent Send continues from the restored point.
func (e *Engine) Undo() {
	if len(e.history) <= 1 {
		return
	}

	e.history = e.history[:len(e.history)-1]
	tail := e.history[len(e.history)-1]

	e.current = tail.State
	e.context = domain.CopyContext(tail.Context)
	if tail.Event == domain.InitialStateEvent {
		e.lastEvent = ""
	} else {
		e.lastEvent = tail.Event
	}
	if len(e.history) >= 2 {
		e.previous = e.history[len(e.history)-2].State
	} else {
		e.previous = ""
	}

	e.logger.Info("undo", "machine", e.def.ID, "restored_state", e.current, "depth", len(e.history))
	if e.hooks.OnUndo != nil {
		e.hooks.OnUndo(&domain.UndoEvent{
			Timestamp:     e.clock(),
			MachineID:     e.def.ID,
			RestoredState: e.current,
			Depth:         len(e.history),
		})
	}

	e.notify()
}

// State builds the read-only projection of the current simulation.
// Everything engine-owned is copied on the way out; the definition data is
// shared but immutable by contract. When the machine was driven into a
// state id the definition does not know, Data is nil and AvailableEvents
// is empty — the machine is stuck until undo or reset.
func (e *Engine) State() domain.Snapshot {
	if e.def == nil {
		return domain.Snapshot{AvailableEvents: domain.NewTransitionMap()}
	}

	snap := domain.Snapshot{
		ID:              e.def.ID,
		StateID:         e.current,
		PreviousStateID: e.previous,
		LastEventID:     e.lastEvent,
		Context:         domain.CopyContext(e.context),
		DiagramSource:   e.diagramSource(),
		History:         e.copyHistory(),
	}

	if state := e.def.States.Get(e.current); state != nil {
		snap.Data = state
		if state.On != nil {
			snap.AvailableEvents = state.On
		} else {
			snap.AvailableEvents = domain.NewTransitionMap()
		}
	} else {
		e.logger.Warn("no state data", "machine", e.def.ID, "state", e.current)
		snap.AvailableEvents = domain.NewTransitionMap()
	}

	return snap
}

// Subscribe registers a callback invoked with a fresh projection after
// every load, send and undo, synchronously and in subscription order.
func (e *Engine) Subscribe(fn func(domain.Snapshot)) {
	if fn == nil {
		return
	}
	e.subscribers = append(e.subscribers, fn)
}

func (e *Engine) notify() {
	if len(e.subscribers) == 0 {
		return
	}
	snap := e.State()
	for _, fn := range e.subscribers {
		fn(snap)
	}
}

func (e *Engine) diagramSource() string {
	return graph.GenerateMermaid(e.def, graph.Overlay{
		CurrentState:  e.current,
		PreviousState: e.previous,
		LastEvent:     e.lastEvent,
	}, e.graphOpts)
}

func (e *Engine) copyHistory() []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, len(e.history))
	for i, entry := range e.history {
		out[i] = domain.HistoryEntry{
			Timestamp: entry.Timestamp,
			State:     entry.State,
			Event:     entry.Event,
			Context:   domain.CopyContext(entry.Context),
			Input:     domain.DeepCopy(entry.Input),
		}
	}
	return out
}
