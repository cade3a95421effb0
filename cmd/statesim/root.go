package main

import (
	"fmt"
	"os"

	"github.com/aretw0/statesim"
	"github.com/aretw0/statesim/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "statesim",
	Short: "Statesim is a declarative state machine simulator",
	Long:  `Statesim loads JSON or YAML machine definitions and lets you drive them interactively, over HTTP or via MCP, with history, undo and Mermaid diagrams.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("file", "f", "machine.json", "Machine definition file (JSON or YAML)")
}

// loadDefinition reads and parses the machine definition named by --file.
// A positional argument overrides the flag when the flag was not set.
func loadDefinition(cmd *cobra.Command, args []string) (*domain.Definition, error) {
	path, _ := cmd.Flags().GetString("file")
	if !cmd.Flags().Changed("file") && len(args) > 0 {
		path = args[0]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.ParseDefinition(data)
}

// loadEngine builds an engine with the definition from --file installed.
func loadEngine(cmd *cobra.Command, args []string, opts ...statesim.Option) (*statesim.Engine, error) {
	def, err := loadDefinition(cmd, args)
	if err != nil {
		return nil, err
	}
	eng := statesim.New(opts...)
	if err := eng.Load(def); err != nil {
		return nil, err
	}
	return eng, nil
}
