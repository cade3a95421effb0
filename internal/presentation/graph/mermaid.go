package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/statesim/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Overlay carries the dynamic simulation state to visualize on top of the
// static machine shape.
type Overlay struct {
	// CurrentState gets the "current" emphasis class.
	CurrentState string
	// PreviousState gets the "previous" emphasis class. Current wins if the
	// two somehow coincide.
	PreviousState string
	// LastEvent selects, together with PreviousState, the edge that was just
	// traversed; it is highlighted by positional index.
	LastEvent string
}

// Options are presentation hints, typically decoded from a definition's
// optional "display" block.
type Options struct {
	// Direction is the Mermaid flow direction (default "LR").
	Direction string `mapstructure:"direction"`
	// HighlightColor styles the most recently traversed edge.
	HighlightColor string `mapstructure:"highlightColor"`
}

// DefaultOptions returns the options used when a definition has no display block.
func DefaultOptions() Options {
	return Options{Direction: "LR", HighlightColor: "#fbc02d"}
}

// ParseOptions decodes a raw display block into Options, filling defaults
// for absent fields. Unknown keys are ignored.
func ParseOptions(display map[string]any) (Options, error) {
	opts := DefaultOptions()
	if len(display) == 0 {
		return opts, nil
	}
	if err := mapstructure.Decode(display, &opts); err != nil {
		return DefaultOptions(), fmt.Errorf("decode display options: %w", err)
	}
	if opts.Direction == "" {
		opts.Direction = "LR"
	}
	if opts.HighlightColor == "" {
		opts.HighlightColor = "#fbc02d"
	}
	return opts, nil
}

// GenerateMermaid produces a Mermaid flowchart for a machine definition.
// It is a pure function of its arguments: same definition and overlay, same
// output. Nodes appear in the definition's document order, then each node's
// edges in event document order; that positional order is what makes the
// linkStyle highlight index stable.
func GenerateMermaid(def *domain.Definition, overlay Overlay, opts Options) string {
	var sb strings.Builder
	sb.WriteString("graph " + opts.Direction + "\n")

	stateIDs := def.States.Keys()

	for _, id := range stateIDs {
		state := def.States.Get(id)
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", sanitizeID(id), escapeLabel(state.DisplayLabel(id))))
	}

	// Edges, tracking the positional index of the just-traversed one.
	edgeIndex := 0
	highlight := -1
	for _, id := range stateIDs {
		state := def.States.Get(id)
		for _, event := range state.On.Keys() {
			tr := state.On.Get(event)
			sb.WriteString(fmt.Sprintf("    %s -->|\"%s\"| %s\n",
				sanitizeID(id), escapeLabel(tr.DisplayLabel(event)), sanitizeID(tr.To)))

			if highlight < 0 && id == overlay.PreviousState && event == overlay.LastEvent {
				highlight = edgeIndex
			}
			edgeIndex++
		}
	}

	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
	sb.WriteString("    classDef previous fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")

	if overlay.CurrentState != "" {
		sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeID(overlay.CurrentState)))
	}
	if overlay.PreviousState != "" && overlay.PreviousState != overlay.CurrentState {
		sb.WriteString(fmt.Sprintf("    class %s previous;\n", sanitizeID(overlay.PreviousState)))
	}

	if highlight >= 0 {
		sb.WriteString(fmt.Sprintf("    linkStyle %d stroke:%s,stroke-width:3px;\n", highlight, opts.HighlightColor))
	}

	return sb.String()
}

func sanitizeID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
