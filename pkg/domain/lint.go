package domain

import "fmt"

// LintIssue is a single structural finding in a machine definition.
type LintIssue struct {
	State   string
	Event   string
	Message string
}

func (i LintIssue) String() string {
	switch {
	case i.State != "" && i.Event != "":
		return fmt.Sprintf("state %q, event %q: %s", i.State, i.Event, i.Message)
	case i.State != "":
		return fmt.Sprintf("state %q: %s", i.State, i.Message)
	default:
		return i.Message
	}
}

// Lint performs the strict structural checks that ParseDefinition skips:
// a declared initial state, no dangling transition targets, and no states
// unreachable from the initial state. It returns all findings rather than
// stopping at the first.
func Lint(def *Definition) []LintIssue {
	var issues []LintIssue
	if def == nil || def.States == nil || def.States.Len() == 0 {
		return []LintIssue{{Message: "definition declares no states"}}
	}

	if def.InitialState == "" {
		issues = append(issues, LintIssue{Message: "missing initialState"})
	} else if !def.States.Has(def.InitialState) {
		issues = append(issues, LintIssue{Message: fmt.Sprintf("initialState %q is not a declared state", def.InitialState)})
	}

	reachable := map[string]bool{}
	if def.States.Has(def.InitialState) {
		walkReachable(def, def.InitialState, reachable)
	}

	for _, stateID := range def.States.Keys() {
		state := def.States.Get(stateID)
		if state != nil && state.On != nil {
			for _, event := range state.On.Keys() {
				tr := state.On.Get(event)
				if !def.States.Has(tr.To) {
					issues = append(issues, LintIssue{
						State:   stateID,
						Event:   event,
						Message: fmt.Sprintf("transition targets undeclared state %q", tr.To),
					})
				}
			}
		}
		if len(reachable) > 0 && !reachable[stateID] {
			issues = append(issues, LintIssue{
				State:   stateID,
				Message: "unreachable from the initial state",
			})
		}
	}

	return issues
}

func walkReachable(def *Definition, stateID string, seen map[string]bool) {
	if seen[stateID] {
		return
	}
	seen[stateID] = true

	state := def.States.Get(stateID)
	if state == nil || state.On == nil {
		return
	}
	for _, event := range state.On.Keys() {
		tr := state.On.Get(event)
		if def.States.Has(tr.To) {
			walkReachable(def, tr.To, seen)
		}
	}
}
