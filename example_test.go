package statesim_test

import (
	"fmt"
	"log"

	"github.com/aretw0/statesim"
	"github.com/aretw0/statesim/pkg/domain"
)

// ExampleNew demonstrates driving a machine built in code, without
// touching the file system.
func ExampleNew() {
	// 1. Define the machine using the fluent map builders.
	def := &domain.Definition{
		ID:           "door",
		InitialState: "closed",
		Context:      map[string]any{"openCount": 0},
		States: domain.NewStateMap().
			Set("closed", &domain.StateDef{
				Label: "Closed",
				On: domain.NewTransitionMap().
					Set("OPEN", &domain.TransitionDef{To: "open", Action: "context.openCount += 1"}),
			}).
			Set("open", &domain.StateDef{
				Label: "Open",
				On: domain.NewTransitionMap().
					Set("CLOSE", &domain.TransitionDef{To: "closed"}),
			}),
	}

	// 2. Load it into an engine.
	eng := statesim.New()
	if err := eng.Load(def); err != nil {
		log.Fatal(err)
	}

	// 3. Drive it.
	if err := eng.Send("OPEN", nil); err != nil {
		log.Fatal(err)
	}

	snap := eng.State()
	fmt.Println(snap.StateID, snap.Context["openCount"])
	// Output: open 1
}

// ExampleEngine_Subscribe shows observing every state change.
func ExampleEngine_Subscribe() {
	eng := statesim.New()
	eng.Subscribe(func(s domain.Snapshot) {
		fmt.Println(s.StateID)
	})

	if err := eng.LoadBytes([]byte(`{
	  "id": "toggle",
	  "initialState": "off",
	  "states": {
	    "off": {"on": {"FLIP": {"to": "on"}}},
	    "on": {"on": {"FLIP": {"to": "off"}}}
	  }
	}`)); err != nil {
		log.Fatal(err)
	}

	_ = eng.Send("FLIP", nil)
	eng.Undo()
	// Output:
	// off
	// on
	// off
}
