package domain

import "time"

// LoadEvent is emitted after a definition is (re)loaded.
type LoadEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	MachineID    string    `json:"machine_id"`
	InitialState string    `json:"initial_state"`
}

// TransitionEvent is emitted after a successful Send.
type TransitionEvent struct {
	Timestamp time.Time `json:"timestamp"`
	MachineID string    `json:"machine_id"`
	Event     string    `json:"event"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	// ActionApplied is true when the transition carried an action expression.
	ActionApplied bool `json:"action_applied"`
}

// ActionFailureEvent is emitted when an action expression fails to evaluate.
// The transition was rolled back; the machine did not move.
type ActionFailureEvent struct {
	Timestamp time.Time `json:"timestamp"`
	MachineID string    `json:"machine_id"`
	Event     string    `json:"event"`
	State     string    `json:"state"`
	Message   string    `json:"message"`
}

// UndoEvent is emitted after a history entry is discarded.
type UndoEvent struct {
	Timestamp time.Time `json:"timestamp"`
	MachineID string    `json:"machine_id"`
	// RestoredState is the state the machine landed on.
	RestoredState string `json:"restored_state"`
	// Depth is the history length after truncation.
	Depth int `json:"depth"`
}

// ReplayStepEvent is emitted after each attempted step of a replay,
// including steps that failed (Err non-nil) and were skipped over.
type ReplayStepEvent struct {
	Timestamp time.Time `json:"timestamp"`
	MachineID string    `json:"machine_id"`
	Index     int       `json:"index"`
	Event     string    `json:"event"`
	Err       error     `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability. All hooks are
// invoked synchronously on the goroutine that performed the mutation; keep
// them fast or hand off to a channel.
type LifecycleHooks struct {
	OnLoad          func(*LoadEvent)
	OnTransition    func(*TransitionEvent)
	OnActionFailure func(*ActionFailureEvent)
	OnUndo          func(*UndoEvent)
	OnReplayStep    func(*ReplayStepEvent)
}
