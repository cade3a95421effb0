package domain

import (
	"errors"
	"fmt"
)

// ErrNoDefinition is returned when an operation requires a loaded machine.
var ErrNoDefinition = errors.New("no machine definition loaded")

// ErrNoStates is returned when a definition carries no states mapping.
var ErrNoStates = errors.New("definition has no states")

// ErrNoTransition is returned by Send when the current state does not
// handle the given event. The machine is left untouched.
var ErrNoTransition = errors.New("no transition for event")

// ErrRunNotFound is returned when a saved run id cannot be found in a store.
var ErrRunNotFound = errors.New("run not found")

// UnknownStateError reports a transition target that is not a key in the
// definition's states mapping. It surfaces lazily, at projection time,
// not when the transition is taken.
type UnknownStateError struct {
	StateID string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("no state data for %q", e.StateID)
}
