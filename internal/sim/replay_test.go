package sim_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/statesim/internal/sim"
	"github.com/aretw0/statesim/pkg/domain"
)

func TestReplay_ReproducesRun(t *testing.T) {
	e := sim.New()
	if err := e.Load(coffeeDefinition()); err != nil {
		t.Fatal(err)
	}

	// Drift the live state first; replay must reset before stepping.
	if err := e.Send("BREW", nil); err != nil {
		t.Fatal(err)
	}

	steps := []domain.ReplayStep{
		{Event: "BREW"},
		{Event: "FINISH"},
		{Event: "BREW"},
	}
	if err := e.Replay(context.Background(), steps, 0); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	snap := e.State()
	if snap.StateID != "brewing" {
		t.Errorf("StateID = %q, want brewing", snap.StateID)
	}
	if snap.Context["water"] != float64(80) {
		t.Errorf("context.water = %v, want 80", snap.Context["water"])
	}
	if len(snap.History) != 4 {
		t.Errorf("history length = %d, want 4", len(snap.History))
	}
}

func TestReplay_SkipsFailedSteps(t *testing.T) {
	var stepErrs []error
	e := sim.New(sim.WithHooks(domain.LifecycleHooks{
		OnReplayStep: func(ev *domain.ReplayStepEvent) { stepErrs = append(stepErrs, ev.Err) },
	}))
	if err := e.Load(coffeeDefinition()); err != nil {
		t.Fatal(err)
	}

	steps := []domain.ReplayStep{
		{Event: "BREW"},
		{Event: "BOGUS"}, // silently skipped, like live interaction
		{Event: "FINISH"},
	}
	if err := e.Replay(context.Background(), steps, 0); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	if len(stepErrs) != 3 {
		t.Fatalf("step events = %d, want 3", len(stepErrs))
	}
	if stepErrs[0] != nil || stepErrs[2] != nil {
		t.Errorf("valid steps reported errors: %v", stepErrs)
	}
	if !errors.Is(stepErrs[1], domain.ErrNoTransition) {
		t.Errorf("stepErrs[1] = %v, want ErrNoTransition", stepErrs[1])
	}

	snap := e.State()
	if snap.StateID != "idle" || len(snap.History) != 3 {
		t.Errorf("after replay: state=%s history=%d", snap.StateID, len(snap.History))
	}
}

func TestReplay_Cancellation(t *testing.T) {
	e := sim.New()
	if err := e.Load(coffeeDefinition()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Replay(ctx, []domain.ReplayStep{{Event: "BREW"}}, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Replay() = %v, want context.Canceled", err)
	}

	// Cancelled before the first step: machine sits at the initial state.
	snap := e.State()
	if snap.StateID != "idle" || len(snap.History) != 1 {
		t.Errorf("after cancelled replay: state=%s history=%d", snap.StateID, len(snap.History))
	}
}

func TestReplay_RequiresDefinition(t *testing.T) {
	e := sim.New()
	err := e.Replay(context.Background(), nil, 0)
	if !errors.Is(err, domain.ErrNoDefinition) {
		t.Errorf("Replay() = %v, want ErrNoDefinition", err)
	}
}
