package graph

import (
	"strings"
	"testing"

	"github.com/aretw0/statesim/pkg/domain"
	"github.com/sebdah/goldie/v2"
)

func coffeeDefinition() *domain.Definition {
	return &domain.Definition{
		ID:           "coffee-machine",
		InitialState: "idle",
		States: domain.NewStateMap().
			Set("idle", &domain.StateDef{
				Label: "Ready",
				On: domain.NewTransitionMap().
					Set("BREW", &domain.TransitionDef{To: "brewing", Action: "context.water -= 10"}),
			}).
			Set("brewing", &domain.StateDef{
				On: domain.NewTransitionMap().
					Set("FINISH", &domain.TransitionDef{To: "idle"}).
					Set("ABORT", &domain.TransitionDef{To: "idle", Label: "Cancel"}),
			}),
	}
}

func TestGenerateMermaid_Golden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	t.Run("initial", func(t *testing.T) {
		out := GenerateMermaid(coffeeDefinition(), Overlay{CurrentState: "idle"}, DefaultOptions())
		g.Assert(t, "initial", []byte(out))
	})

	t.Run("after_brew", func(t *testing.T) {
		overlay := Overlay{CurrentState: "brewing", PreviousState: "idle", LastEvent: "BREW"}
		out := GenerateMermaid(coffeeDefinition(), overlay, DefaultOptions())
		g.Assert(t, "after_brew", []byte(out))
	})
}

func TestGenerateMermaid_Deterministic(t *testing.T) {
	def := coffeeDefinition()
	overlay := Overlay{CurrentState: "brewing", PreviousState: "idle", LastEvent: "BREW"}

	first := GenerateMermaid(def, overlay, DefaultOptions())
	second := GenerateMermaid(def, overlay, DefaultOptions())
	if first != second {
		t.Error("diagram generation is not deterministic")
	}
}

func TestGenerateMermaid_HighlightIndex(t *testing.T) {
	def := coffeeDefinition()

	// FINISH is the second edge overall (index 1).
	overlay := Overlay{CurrentState: "idle", PreviousState: "brewing", LastEvent: "FINISH"}
	out := GenerateMermaid(def, overlay, DefaultOptions())
	if !strings.Contains(out, "linkStyle 1 ") {
		t.Errorf("expected linkStyle 1 directive, got:\n%s", out)
	}

	// No traversed edge: no linkStyle at all.
	out = GenerateMermaid(def, Overlay{CurrentState: "idle"}, DefaultOptions())
	if strings.Contains(out, "linkStyle") {
		t.Errorf("unexpected linkStyle directive:\n%s", out)
	}
}

func TestGenerateMermaid_CurrentTakesPrecedence(t *testing.T) {
	def := coffeeDefinition()
	overlay := Overlay{CurrentState: "idle", PreviousState: "idle"}

	out := GenerateMermaid(def, overlay, DefaultOptions())
	if !strings.Contains(out, "class idle current;") {
		t.Errorf("missing current class:\n%s", out)
	}
	if strings.Contains(out, "class idle previous;") {
		t.Errorf("previous class should not duplicate current:\n%s", out)
	}
}

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(map[string]any{"direction": "TD", "highlightColor": "#ff0000"})
	if err != nil {
		t.Fatalf("ParseOptions() error = %v", err)
	}
	if opts.Direction != "TD" || opts.HighlightColor != "#ff0000" {
		t.Errorf("opts = %+v", opts)
	}

	opts, err = ParseOptions(nil)
	if err != nil {
		t.Fatalf("ParseOptions(nil) error = %v", err)
	}
	if opts != DefaultOptions() {
		t.Errorf("nil display should yield defaults, got %+v", opts)
	}
}
