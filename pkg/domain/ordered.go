package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// StateMap is a mapping from state id to StateDef that remembers the order
// in which keys appeared in the source document. Edge enumeration for the
// diagram is positional, so document order must survive decoding; a plain
// Go map would randomize it.
type StateMap struct {
	keys  []string
	items map[string]*StateDef
}

// NewStateMap builds a StateMap from explicit (id, def) pairs, in order.
func NewStateMap() *StateMap {
	return &StateMap{items: make(map[string]*StateDef)}
}

// Set adds or replaces a state. New keys are appended to the order.
func (m *StateMap) Set(id string, def *StateDef) *StateMap {
	if _, exists := m.items[id]; !exists {
		m.keys = append(m.keys, id)
	}
	m.items[id] = def
	return m
}

// Get returns the state definition for id, or nil if absent.
func (m *StateMap) Get(id string) *StateDef {
	if m == nil {
		return nil
	}
	return m.items[id]
}

// Has reports whether id is a known state.
func (m *StateMap) Has(id string) bool {
	if m == nil {
		return false
	}
	_, ok := m.items[id]
	return ok
}

// Len returns the number of states.
func (m *StateMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns state ids in document order. The slice is a copy.
func (m *StateMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// UnmarshalJSON decodes the object token by token to preserve key order.
func (m *StateMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.items = make(map[string]*StateDef)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("states: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("states: expected string key, got %v", keyTok)
		}
		var def StateDef
		if err := dec.Decode(&def); err != nil {
			return fmt.Errorf("states[%s]: %w", key, err)
		}
		m.Set(key, &def)
	}

	_, err = dec.Token() // closing '}'
	return err
}

// MarshalJSON emits the object with keys in document order.
func (m *StateMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.items[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML mapping node, preserving pair order.
func (m *StateMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("states: expected mapping, got %v", value.Tag)
	}
	m.keys = nil
	m.items = make(map[string]*StateDef)

	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		var def StateDef
		if err := value.Content[i+1].Decode(&def); err != nil {
			return fmt.Errorf("states[%s]: %w", key, err)
		}
		m.Set(key, &def)
	}
	return nil
}

// TransitionMap is an event-id keyed, order-preserving transition table.
// Event-key uniqueness within a state is enforced by the mapping itself.
type TransitionMap struct {
	keys  []string
	items map[string]*TransitionDef
}

// NewTransitionMap builds an empty TransitionMap.
func NewTransitionMap() *TransitionMap {
	return &TransitionMap{items: make(map[string]*TransitionDef)}
}

// Set adds or replaces a transition keyed by event id.
func (m *TransitionMap) Set(event string, t *TransitionDef) *TransitionMap {
	if _, exists := m.items[event]; !exists {
		m.keys = append(m.keys, event)
	}
	m.items[event] = t
	return m
}

// Get returns the transition for an event, or nil if the event is unknown.
func (m *TransitionMap) Get(event string) *TransitionDef {
	if m == nil {
		return nil
	}
	return m.items[event]
}

// Len returns the number of transitions.
func (m *TransitionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns event ids in document order. The slice is a copy.
func (m *TransitionMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// UnmarshalJSON decodes the object token by token to preserve key order.
func (m *TransitionMap) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.items = make(map[string]*TransitionDef)

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("on: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("on: expected string key, got %v", keyTok)
		}
		var t TransitionDef
		if err := dec.Decode(&t); err != nil {
			return fmt.Errorf("on[%s]: %w", key, err)
		}
		m.Set(key, &t)
	}

	_, err = dec.Token()
	return err
}

// MarshalJSON emits the object with keys in document order.
func (m *TransitionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.items[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalYAML decodes a YAML mapping node, preserving pair order.
func (m *TransitionMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("on: expected mapping, got %v", value.Tag)
	}
	m.keys = nil
	m.items = make(map[string]*TransitionDef)

	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		var t TransitionDef
		if err := value.Content[i+1].Decode(&t); err != nil {
			return fmt.Errorf("on[%s]: %w", key, err)
		}
		m.Set(key, &t)
	}
	return nil
}
