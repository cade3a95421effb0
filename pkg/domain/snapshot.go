package domain

import "time"

// InitialStateEvent is the sentinel event id tagged on the first history
// entry after a load. It never collides with real events sent by callers.
const InitialStateEvent = "Initial State"

// HistoryEntry records the machine state immediately after one applied
// transition (or after load, for the first entry). Context and Input are
// independent deep copies; entries are immutable once appended, except for
// truncation during undo.
type HistoryEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	State     string         `json:"state"`
	Event     string         `json:"event"`
	Context   map[string]any `json:"context"`
	Input     any            `json:"input,omitempty"`
}

// Snapshot is the read-only projection handed to subscribers and returned
// by State(). Every field is a copy; mutating a snapshot never affects the
// engine or other snapshots.
type Snapshot struct {
	// ID is the machine definition id.
	ID string `json:"id"`

	// StateID is the current state identifier.
	StateID string `json:"stateId"`

	// PreviousStateID is the immediately prior state, empty at the initial state.
	PreviousStateID string `json:"previousStateId,omitempty"`

	// LastEventID is the most recently applied event, empty at the initial state.
	LastEventID string `json:"lastEventId,omitempty"`

	// Data is the definition of the current state. Nil when the machine was
	// driven into a state id that is not present in the definition.
	Data *StateDef `json:"data,omitempty"`

	// AvailableEvents is the current state's transition table, empty (never
	// nil) when state data is missing.
	AvailableEvents *TransitionMap `json:"availableEvents"`

	// Context is a deep copy of the live context.
	Context map[string]any `json:"context"`

	// DiagramSource is the Mermaid description of the machine, regenerated
	// for every snapshot.
	DiagramSource string `json:"diagramSource"`

	// History is the ordered transition log, oldest first. Entry 0 is always
	// the initial state.
	History []HistoryEntry `json:"history"`
}
