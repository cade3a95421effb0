package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/statesim"
	"github.com/aretw0/statesim/internal/logging"
	"github.com/aretw0/statesim/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive simulation session",
	Long:  `Loads the machine definition and starts an interactive prompt. Type an event name (optionally followed by a JSON input payload), or undo, reset, graph, history, exit.`,
	Run: func(cmd *cobra.Command, args []string) {
		headless, _ := cmd.Flags().GetBool("headless")
		verbose, _ := cmd.Flags().GetBool("verbose")

		logger := logging.NewNop()
		if verbose {
			logger = logging.New(slog.LevelDebug)
		}

		eng, err := loadEngine(cmd, args, statesim.WithLogger(logger))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		isTTY := term.IsTerminal(int(os.Stdout.Fd()))

		runner := statesim.NewRunner()
		runner.Input = os.Stdin
		runner.Output = os.Stdout
		runner.Headless = headless || !isTTY

		if isTTY && !headless {
			tui.PrintBanner()
			runner.Renderer = tui.NewRenderer()
		}

		if err := runner.Run(eng); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner, no prompts)")
	runCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
}
