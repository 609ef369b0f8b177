// Package main provides the skillsearch command line tool for running the
// skill extraction pipeline against local files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skillsearch-backend/internal/shared/telemetry"
)

var rootCmd = &cobra.Command{
	Use:          "skillsearch",
	Short:        "Extract skills and years of experience from resumes",
	Long:         "skillsearch runs the resume skill extraction pipeline locally: PDF text extraction, prompt rendering and model response validation.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		// Keep stdout for command output only.
		telemetry.SetOutput(cmd.ErrOrStderr())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
