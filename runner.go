package statesim

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Runner drives an interactive simulation loop over the provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
}

// ContentRenderer is a function that transforms the state summary before
// outputting it. This allows for TUI rendering (markdown to ANSI) without
// coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a new Runner. The caller must set Input and Output
// (typically os.Stdin and os.Stdout) before calling Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the interactive loop until EOF or an exit command.
// Each prompt accepts an event name with an optional JSON input payload,
// or one of: undo, reset, graph, history, exit.
func (r *Runner) Run(engine *Engine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if !engine.Loaded() {
		return fmt.Errorf("no definition loaded")
	}

	lineReader := bufio.NewReader(r.Input)
	writer := r.Output

	if !r.Headless {
		fmt.Fprintf(writer, "--- statesim (%s) ---\n", engine.Definition().ID)
	}

	r.printState(writer, engine)

	for {
		if !r.Headless {
			fmt.Fprint(writer, "> ")
		}
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("input error: %w", err)
		}

		line := strings.TrimSpace(text)
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		switch cmd {
		case "exit", "quit":
			if !r.Headless {
				fmt.Fprintln(writer, "Bye!")
			}
			return nil
		case "undo":
			engine.Undo()
		case "reset":
			engine.Reset()
		case "graph":
			fmt.Fprintln(writer, engine.State().DiagramSource)
			continue
		case "history":
			r.printHistory(writer, engine)
			continue
		default:
			var input any
			if rest != "" {
				if err := json.Unmarshal([]byte(rest), &input); err != nil {
					fmt.Fprintf(writer, "invalid input payload: %v\n", err)
					continue
				}
			}
			if err := engine.Send(cmd, input); err != nil {
				fmt.Fprintf(writer, "error: %v\n", err)
				continue
			}
		}

		r.printState(writer, engine)
	}
	return nil
}

func (r *Runner) printState(w io.Writer, engine *Engine) {
	snap := engine.State()

	var b strings.Builder
	if snap.Data != nil && snap.Data.Label != "" {
		fmt.Fprintf(&b, "# %s\n\n", snap.Data.Label)
	} else {
		fmt.Fprintf(&b, "# %s\n\n", snap.StateID)
	}
	if len(snap.Context) > 0 {
		ctxJSON, err := json.MarshalIndent(snap.Context, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "```json\n%s\n```\n\n", ctxJSON)
		}
	}
	if snap.AvailableEvents != nil && snap.AvailableEvents.Len() > 0 {
		b.WriteString("Events:")
		for _, ev := range snap.AvailableEvents.Keys() {
			fmt.Fprintf(&b, " %s", ev)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No events available.\n")
	}

	output := b.String()
	if r.Renderer != nil {
		rendered, err := r.Renderer(output)
		if err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(w, strings.TrimSpace(output))
}

func (r *Runner) printHistory(w io.Writer, engine *Engine) {
	for i, entry := range engine.State().History {
		fmt.Fprintf(w, "%d. [%s] %s -> %s\n", i, entry.Timestamp.Format("15:04:05"), entry.Event, entry.State)
	}
}
