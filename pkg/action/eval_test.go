package action

import (
	"errors"
	"testing"
)

func TestEvaluate_Decrement(t *testing.T) {
	ctx := map[string]any{"water": float64(100)}

	out, err := New().Evaluate("context.water -= 10", ctx, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got := out["water"]; got != float64(90) {
		t.Errorf("water = %v, want 90", got)
	}
}

func TestEvaluate_MultipleStatements(t *testing.T) {
	ctx := map[string]any{"count": float64(1)}

	out, err := New().Evaluate("context.count += 1; context.label = 'cup #' + context.count", ctx, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got := out["count"]; got != float64(2) {
		t.Errorf("count = %v, want 2", got)
	}
	if got := out["label"]; got != "cup #2" {
		t.Errorf("label = %q, want %q", got, "cup #2")
	}
}

func TestEvaluate_InputBinding(t *testing.T) {
	ctx := map[string]any{}
	input := map[string]any{"size": "large", "shots": float64(2)}

	out, err := New().Evaluate("context.size = input.size; context.shots = input.shots * 2", ctx, input)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if out["size"] != "large" {
		t.Errorf("size = %v, want large", out["size"])
	}
	if out["shots"] != float64(4) {
		t.Errorf("shots = %v, want 4", out["shots"])
	}
}

func TestEvaluate_NestedAssignmentCreatesMaps(t *testing.T) {
	ctx := map[string]any{}

	out, err := New().Evaluate("context.stats.brews = 1", ctx, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	stats, ok := out["stats"].(map[string]any)
	if !ok {
		t.Fatalf("stats = %T, want map", out["stats"])
	}
	if stats["brews"] != float64(1) {
		t.Errorf("brews = %v, want 1", stats["brews"])
	}
}

func TestEvaluate_Precedence(t *testing.T) {
	out, err := New().Evaluate("context.x = 2 + 3 * 4; context.y = (2 + 3) * 4; context.z = -2 * 3", map[string]any{}, nil)
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if out["x"] != float64(14) {
		t.Errorf("x = %v, want 14", out["x"])
	}
	if out["y"] != float64(20) {
		t.Errorf("y = %v, want 20", out["y"])
	}
	if out["z"] != float64(-6) {
		t.Errorf("z = %v, want -6", out["z"])
	}
}

func TestEvaluate_Errors(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"syntax", "context.water -= "},
		{"unterminated string", "context.name = 'oops"},
		{"unknown binding", "context.x = session.user"},
		{"assign to input", "input.x = 1"},
		{"reassign context root", "context = 1"},
		{"compound on unset key", "context.missing += 1"},
		{"non numeric arithmetic", "context.x = 'a' - 1"},
		{"division by zero", "context.x = 1 / 0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New().Evaluate(tc.src, map[string]any{}, nil)
			if err == nil {
				t.Fatalf("Evaluate(%q) succeeded, want error", tc.src)
			}
			var actionErr *Error
			if !errors.As(err, &actionErr) {
				t.Errorf("error type = %T, want *action.Error", err)
			}
		})
	}
}

func TestEvaluate_FailureLeavesNoHalfState(t *testing.T) {
	// The second statement fails; the caller is expected to discard the map.
	// Verify we at least report the failure rather than silently stopping.
	ctx := map[string]any{"a": float64(1)}
	_, err := New().Evaluate("context.a += 1; context.b -= 1", ctx, nil)
	if err == nil {
		t.Fatal("expected error from second statement")
	}
}
