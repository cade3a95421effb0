package ports

import (
	"context"

	"github.com/aretw0/statesim/pkg/domain"
)

// RunStore persists named simulation runs. A run is the full recipe to
// reproduce a session: definition id, initial context and the recorded
// event sequence. The engine itself never touches a store; it only accepts
// a run's transitions as a replay sequence.
type RunStore interface {
	// Save persists a run keyed by its id, overwriting any previous value.
	Save(ctx context.Context, run domain.Run) error

	// Load retrieves a run by id.
	// Returns domain.ErrRunNotFound if the id is unknown.
	Load(ctx context.Context, id string) (domain.Run, error)

	// Delete removes a run. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all stored runs, newest first.
	List(ctx context.Context) ([]domain.Run, error)
}
