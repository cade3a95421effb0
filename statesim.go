package statesim

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/statesim/internal/sim"
	"github.com/aretw0/statesim/pkg/action"
	"github.com/aretw0/statesim/pkg/domain"
)

// Version is the library version, reported by the CLI and the MCP server.
const Version = "0.4.0"

// Engine is the high-level entry point for the statesim library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *sim.Engine
}

// Option defines a functional option for configuring the Engine.
type Option func(*options)

type options struct {
	runtimeOpts []sim.Option
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.runtimeOpts = append(o.runtimeOpts, sim.WithLogger(logger))
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.runtimeOpts = append(o.runtimeOpts, sim.WithHooks(hooks))
	}
}

// WithEvaluator replaces the default action expression evaluator.
func WithEvaluator(eval action.Evaluator) Option {
	return func(o *options) {
		o.runtimeOpts = append(o.runtimeOpts, sim.WithEvaluator(eval))
	}
}

// WithClock replaces the history timestamp source, for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.runtimeOpts = append(o.runtimeOpts, sim.WithClock(clock))
	}
}

// New initializes an empty engine. Load a definition before sending events.
func New(opts ...Option) *Engine {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{runtime: sim.New(o.runtimeOpts...)}
}

// Load installs a machine definition and resets the simulation to its
// initial state. On error the engine keeps its previous definition, if any.
func (e *Engine) Load(def *domain.Definition) error {
	return e.runtime.Load(def)
}

// LoadBytes parses a JSON or YAML definition and loads it.
func (e *Engine) LoadBytes(data []byte) error {
	def, err := domain.ParseDefinition(data)
	if err != nil {
		return err
	}
	return e.runtime.Load(def)
}

// Reset re-applies the stored definition. No-op before the first Load.
func (e *Engine) Reset() {
	e.runtime.Reset()
}

// Send applies an event with an optional input payload. See sim.Engine.Send
// for the error contract: domain.ErrNoTransition for unknown events,
// a structured action error for failed expressions; both leave the machine
// untouched.
func (e *Engine) Send(event string, input any) error {
	return e.runtime.Send(event, input)
}

// Undo discards the most recent transition. No-op at the initial entry.
func (e *Engine) Undo() {
	e.runtime.Undo()
}

// Replay resets the machine and re-applies a recorded event sequence with
// the given pacing, through the ordinary Send path. The context cancels
// between steps. Not safe to run concurrently with Send/Undo.
func (e *Engine) Replay(ctx context.Context, steps []domain.ReplayStep, delay time.Duration) error {
	return e.runtime.Replay(ctx, steps, delay)
}

// ReplayRun replays a saved run's transition sequence.
func (e *Engine) ReplayRun(ctx context.Context, run domain.Run, delay time.Duration) error {
	return e.runtime.Replay(ctx, run.Transitions, delay)
}

// State returns the read-only projection of the current simulation.
func (e *Engine) State() domain.Snapshot {
	return e.runtime.State()
}

// Subscribe registers a callback invoked with a fresh projection after
// every load, send and undo, synchronously and in subscription order.
func (e *Engine) Subscribe(fn func(domain.Snapshot)) {
	e.runtime.Subscribe(fn)
}

// Definition returns the loaded definition, or nil.
func (e *Engine) Definition() *domain.Definition {
	return e.runtime.Definition()
}

// Loaded reports whether a definition is installed.
func (e *Engine) Loaded() bool {
	return e.runtime.Loaded()
}
