package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/statesim"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of statesim",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("statesim version %s\n", strings.TrimSpace(statesim.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
