package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Definition is a declarative machine description, supplied as JSON or YAML.
// It is treated as immutable once loaded into an engine.
type Definition struct {
	ID           string         `json:"id" yaml:"id"`
	InitialState string         `json:"initialState" yaml:"initialState"`
	Context      map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	States       *StateMap      `json:"states" yaml:"states"`

	// Display holds optional presentation hints (diagram direction, colors).
	// It is decoded by the graph package, not interpreted here.
	Display map[string]any `json:"display,omitempty" yaml:"display,omitempty"`
}

// StateDef describes a single state and its outgoing transitions.
type StateDef struct {
	Label string         `json:"label,omitempty" yaml:"label,omitempty"`
	On    *TransitionMap `json:"on,omitempty" yaml:"on,omitempty"`
}

// DisplayLabel returns the human-readable label, falling back to the given id.
func (s *StateDef) DisplayLabel(id string) string {
	if s != nil && s.Label != "" {
		return s.Label
	}
	return id
}

// TransitionDef describes one event-keyed transition out of a state.
type TransitionDef struct {
	To     string `json:"to" yaml:"to"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
}

// DisplayLabel returns the transition label, falling back to the event id.
func (t *TransitionDef) DisplayLabel(event string) string {
	if t != nil && t.Label != "" {
		return t.Label
	}
	return event
}

// ParseDefinition decodes a machine definition from JSON or YAML bytes.
// The format is sniffed: documents starting with '{' are treated as JSON.
// Only minimal structural checks are performed; dangling transition targets
// are intentionally not validated here (the engine discovers them lazily).
func ParseDefinition(data []byte) (*Definition, error) {
	var def Definition
	if looksLikeJSON(data) {
		if err := json.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse definition: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, fmt.Errorf("parse definition: %w", err)
		}
	}

	if def.States == nil || def.States.Len() == 0 {
		return nil, fmt.Errorf("parse definition: %w", ErrNoStates)
	}
	return &def, nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimLeftFunc(data, unicode.IsSpace)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
