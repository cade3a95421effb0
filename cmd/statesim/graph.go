package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the machine as a Mermaid diagram",
	Long:  `Loads the machine definition and prints a Mermaid diagram (graph LR) of its states and transitions.`,
	Run: func(cmd *cobra.Command, args []string) {
		eng, err := loadEngine(cmd, args)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Print(eng.State().DiagramSource)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
