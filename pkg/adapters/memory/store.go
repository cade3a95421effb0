// Package memory provides in-memory adapters, used as defaults and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/statesim/pkg/domain"
)

// Store implements ports.RunStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.Run
	mu   sync.RWMutex
}

// NewStore creates a new in-memory run store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.Run),
	}
}

// Save persists the run in memory.
func (s *Store) Save(ctx context.Context, run domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[run.ID] = copyRun(run)
	return nil
}

// Load retrieves a run by id.
func (s *Store) Load(ctx context.Context, id string) (domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.data[id]
	if !ok {
		return domain.Run{}, domain.ErrRunNotFound
	}
	return copyRun(run), nil
}

// Delete removes a run. Unknown ids are ignored.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns stored runs, newest first.
func (s *Store) List(ctx context.Context) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.Run, 0, len(s.data))
	for _, run := range s.data {
		runs = append(runs, copyRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	return runs, nil
}

// copyRun isolates stored runs from caller mutation, the same guarantee a
// serialization-backed store gives for free.
func copyRun(run domain.Run) domain.Run {
	out := run
	out.InitialContext = domain.CopyContext(run.InitialContext)
	out.Transitions = make([]domain.ReplayStep, len(run.Transitions))
	for i, step := range run.Transitions {
		out.Transitions[i] = domain.ReplayStep{
			Event: step.Event,
			Input: domain.DeepCopy(step.Input),
		}
	}
	return out
}
