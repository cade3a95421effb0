/*
Package statesim is a declarative state-machine simulation engine.

A machine is described as data (JSON or YAML): states, event-keyed
transitions and optional action expressions that mutate a shared context.
The engine keeps a live simulation of one machine at a time: it applies
events, records a replayable history, supports undo, and derives a Mermaid
diagram of the machine's current and past shape.

	def, _ := domain.ParseDefinition(data)
	eng := statesim.New()
	_ = eng.Load(def)
	_ = eng.Send("BREW", nil)
	fmt.Println(eng.State().DiagramSource)

The engine is single-threaded by design: every mutating operation runs to
completion and then notifies subscribers synchronously. Callers sharing an
instance across goroutines must serialize access.
*/
package statesim
