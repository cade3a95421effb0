package statesim_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/statesim"
	"github.com/aretw0/statesim/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coffeeJSON = `{
  "id": "coffee",
  "initialState": "idle",
  "context": {"water": 100},
  "states": {
    "idle": {
      "label": "Idle",
      "on": {
        "BREW": {"to": "brewing", "action": "context.water -= 20"}
      }
    },
    "brewing": {
      "label": "Brewing",
      "on": {
        "FINISH": {"to": "idle"}
      }
    }
  }
}`

func TestEngine_LoadBytesAndSend(t *testing.T) {
	eng := statesim.New()
	require.NoError(t, eng.LoadBytes([]byte(coffeeJSON)))

	snap := eng.State()
	assert.Equal(t, "idle", snap.StateID)
	assert.Equal(t, float64(100), snap.Context["water"])

	require.NoError(t, eng.Send("BREW", nil))
	snap = eng.State()
	assert.Equal(t, "brewing", snap.StateID)
	assert.Equal(t, float64(80), snap.Context["water"])
	assert.Equal(t, "BREW", snap.LastEventID)
	assert.Equal(t, "idle", snap.PreviousStateID)
}

func TestEngine_LoadBytesRejectsGarbage(t *testing.T) {
	eng := statesim.New()
	assert.Error(t, eng.LoadBytes([]byte("not a definition")))
	assert.False(t, eng.Loaded())
}

func TestEngine_UndoAndReset(t *testing.T) {
	eng := statesim.New()
	require.NoError(t, eng.LoadBytes([]byte(coffeeJSON)))

	require.NoError(t, eng.Send("BREW", nil))
	eng.Undo()
	snap := eng.State()
	assert.Equal(t, "idle", snap.StateID)
	assert.Equal(t, float64(100), snap.Context["water"])

	require.NoError(t, eng.Send("BREW", nil))
	eng.Reset()
	snap = eng.State()
	assert.Equal(t, "idle", snap.StateID)
	assert.Len(t, snap.History, 1)
}

func TestEngine_ReplayRun(t *testing.T) {
	eng := statesim.New()
	require.NoError(t, eng.LoadBytes([]byte(coffeeJSON)))

	run := domain.NewRun("smoke", "coffee", nil, []domain.ReplayStep{
		{Event: "BREW"},
		{Event: "FINISH"},
	})

	require.NoError(t, eng.ReplayRun(context.Background(), run, 0))
	snap := eng.State()
	assert.Equal(t, "idle", snap.StateID)
	assert.Equal(t, float64(80), snap.Context["water"])
	assert.Len(t, snap.History, 3)
}

func TestEngine_SubscribeThroughFacade(t *testing.T) {
	eng := statesim.New(statesim.WithClock(func() time.Time {
		return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	}))

	var states []string
	eng.Subscribe(func(s domain.Snapshot) {
		states = append(states, s.StateID)
	})

	require.NoError(t, eng.LoadBytes([]byte(coffeeJSON)))
	require.NoError(t, eng.Send("BREW", nil))
	eng.Undo()

	assert.Equal(t, []string{"idle", "brewing", "idle"}, states)
}

func TestRunner_InteractiveSession(t *testing.T) {
	eng := statesim.New()
	require.NoError(t, eng.LoadBytes([]byte(coffeeJSON)))

	input := strings.NewReader("BREW\nundo\nhistory\ngraph\nexit\n")
	var output strings.Builder

	runner := statesim.NewRunner()
	runner.Input = input
	runner.Output = &output
	runner.Headless = true

	require.NoError(t, runner.Run(eng))

	out := output.String()
	assert.Contains(t, out, "Brewing")
	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, "Initial State")

	snap := eng.State()
	assert.Equal(t, "idle", snap.StateID)
	assert.Equal(t, float64(100), snap.Context["water"])
}

func TestRunner_ReportsSendErrors(t *testing.T) {
	eng := statesim.New()
	require.NoError(t, eng.LoadBytes([]byte(coffeeJSON)))

	input := strings.NewReader("NOPE\nexit\n")
	var output strings.Builder

	runner := statesim.NewRunner()
	runner.Input = input
	runner.Output = &output
	runner.Headless = true

	require.NoError(t, runner.Run(eng))
	assert.Contains(t, output.String(), "error:")
	assert.Equal(t, "idle", eng.State().StateID)
}

func TestRunner_RequiresIO(t *testing.T) {
	eng := statesim.New()
	require.NoError(t, eng.LoadBytes([]byte(coffeeJSON)))

	runner := statesim.NewRunner()
	assert.Error(t, runner.Run(eng))
}
