package main

import (
	"fmt"
	"os"

	"github.com/aretw0/statesim/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the machine definition for consistency",
	Long:  `Parses the machine definition and reports dangling transition targets, a missing or undeclared initial state, and states unreachable from it.`,
	Run: func(cmd *cobra.Command, args []string) {
		def, err := loadDefinition(cmd, args)
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}

		issues := domain.Lint(def)
		if len(issues) > 0 {
			for _, issue := range issues {
				fmt.Println(issue)
			}
			os.Exit(1)
		}
		fmt.Println("Machine is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
