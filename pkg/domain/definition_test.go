package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/statesim/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trafficJSON = `{
  "id": "traffic",
  "initialState": "green",
  "context": {"cycles": 0},
  "states": {
    "green": {
      "label": "Go",
      "on": {
        "TIMER": {"to": "yellow"}
      }
    },
    "yellow": {
      "on": {
        "TIMER": {"to": "red", "label": "Expire"},
        "CANCEL": {"to": "green"}
      }
    },
    "red": {
      "on": {
        "TIMER": {"to": "green", "action": "context.cycles += 1"}
      }
    }
  }
}`

const trafficYAML = `
id: traffic
initialState: green
context:
  cycles: 0
states:
  green:
    label: Go
    "on":
      TIMER:
        to: yellow
  yellow:
    "on":
      TIMER:
        to: red
        label: Expire
      CANCEL:
        to: green
  red:
    "on":
      TIMER:
        to: green
        action: "context.cycles += 1"
`

func TestParseDefinition_JSON(t *testing.T) {
	def, err := domain.ParseDefinition([]byte(trafficJSON))
	require.NoError(t, err)

	assert.Equal(t, "traffic", def.ID)
	assert.Equal(t, "green", def.InitialState)
	assert.Equal(t, float64(0), def.Context["cycles"])
	assert.Equal(t, []string{"green", "yellow", "red"}, def.States.Keys())

	yellow := def.States.Get("yellow")
	require.NotNil(t, yellow)
	assert.Equal(t, []string{"TIMER", "CANCEL"}, yellow.On.Keys())
	assert.Equal(t, "red", yellow.On.Get("TIMER").To)
}

func TestParseDefinition_YAML(t *testing.T) {
	def, err := domain.ParseDefinition([]byte(trafficYAML))
	require.NoError(t, err)

	assert.Equal(t, "traffic", def.ID)
	assert.Equal(t, []string{"green", "yellow", "red"}, def.States.Keys())

	yellow := def.States.Get("yellow")
	require.NotNil(t, yellow)
	assert.Equal(t, []string{"TIMER", "CANCEL"}, yellow.On.Keys())

	red := def.States.Get("red")
	require.NotNil(t, red)
	assert.Equal(t, "context.cycles += 1", red.On.Get("TIMER").Action)
}

func TestParseDefinition_PreservesDeclarationOrder(t *testing.T) {
	// Key order must survive decoding because diagram edge indices
	// follow document order.
	doc := `{"id":"m","initialState":"z","states":{"z":{},"a":{},"m":{}}}`
	def, err := domain.ParseDefinition([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, def.States.Keys())
}

func TestParseDefinition_Errors(t *testing.T) {
	_, err := domain.ParseDefinition([]byte(`{"id":"x","states":{}}`))
	assert.ErrorIs(t, err, domain.ErrNoStates)

	_, err = domain.ParseDefinition([]byte(`{"broken`))
	assert.Error(t, err)

	_, err = domain.ParseDefinition([]byte("\t[ not a mapping"))
	assert.Error(t, err)
}

func TestStateMap_RoundTripsJSONInOrder(t *testing.T) {
	def, err := domain.ParseDefinition([]byte(trafficJSON))
	require.NoError(t, err)

	data, err := json.Marshal(def.States)
	require.NoError(t, err)

	var again domain.StateMap
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, def.States.Keys(), again.Keys())
}

func TestDisplayLabelFallbacks(t *testing.T) {
	def, err := domain.ParseDefinition([]byte(trafficJSON))
	require.NoError(t, err)

	assert.Equal(t, "Go", def.States.Get("green").DisplayLabel("green"))
	assert.Equal(t, "yellow", def.States.Get("yellow").DisplayLabel("yellow"))

	yellow := def.States.Get("yellow")
	assert.Equal(t, "Expire", yellow.On.Get("TIMER").DisplayLabel("TIMER"))
	assert.Equal(t, "CANCEL", yellow.On.Get("CANCEL").DisplayLabel("CANCEL"))
}

func TestLint(t *testing.T) {
	def, err := domain.ParseDefinition([]byte(trafficJSON))
	require.NoError(t, err)
	assert.Empty(t, domain.Lint(def))

	dangling, err := domain.ParseDefinition([]byte(`{
	  "id": "d",
	  "initialState": "a",
	  "states": {
	    "a": {"on": {"GO": {"to": "ghost"}}},
	    "island": {}
	  }
	}`))
	require.NoError(t, err)

	issues := domain.Lint(dangling)
	require.Len(t, issues, 2)
	assert.Contains(t, issues[0].String(), "ghost")
	assert.Contains(t, issues[1].String(), "unreachable")
}

func TestLint_MissingInitialState(t *testing.T) {
	def, err := domain.ParseDefinition([]byte(`{"id":"m","initialState":"nope","states":{"a":{}}}`))
	require.NoError(t, err)

	issues := domain.Lint(def)
	require.NotEmpty(t, issues)
	assert.Contains(t, issues[0].String(), "nope")
}

func TestNewRun(t *testing.T) {
	steps := []domain.ReplayStep{{Event: "TIMER"}}
	run := domain.NewRun("nightly", "traffic", map[string]any{"cycles": 0}, steps)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "nightly", run.Name)
	assert.Equal(t, "traffic", run.ConfigID)
	assert.False(t, run.CreatedAt.IsZero())
	assert.Equal(t, steps, run.Transitions)

	other := domain.NewRun("nightly", "traffic", nil, steps)
	assert.NotEqual(t, run.ID, other.ID)
}

func TestUnknownStateError(t *testing.T) {
	err := error(&domain.UnknownStateError{StateID: "ghost"})

	var ue *domain.UnknownStateError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "ghost", ue.StateID)
	assert.Contains(t, err.Error(), "ghost")
}
