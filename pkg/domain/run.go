package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReplayStep is one recorded event application: the event id plus the input
// payload it was sent with.
type ReplayStep struct {
	Event string `json:"event"`
	Input any    `json:"input,omitempty"`
}

// Run is a named, persisted simulation: the definition it ran against, the
// context it started from, and the event sequence that was applied. Feeding
// Transitions back through Replay reproduces the run exactly.
type Run struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	CreatedAt      time.Time      `json:"createdAt"`
	ConfigID       string         `json:"configId"`
	InitialContext map[string]any `json:"initialContext,omitempty"`
	Transitions    []ReplayStep   `json:"transitions"`
}

// NewRun assembles a Run with a generated unique id and the current time.
func NewRun(name, configID string, initialContext map[string]any, steps []ReplayStep) Run {
	return Run{
		ID:             uuid.NewString(),
		Name:           name,
		CreatedAt:      time.Now().UTC(),
		ConfigID:       configID,
		InitialContext: CopyContext(initialContext),
		Transitions:    append([]ReplayStep(nil), steps...),
	}
}
