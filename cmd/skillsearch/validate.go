package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"skillsearch-backend/internal/skills"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a raw model response",
	Long:  "Reads a raw model response from a file (or stdin with --in -) and prints the validated skill list, or the rejection reason.",
	RunE:  runValidate,
}

var validateInput string

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "-", "Path to raw response file, - for stdin")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var (
		raw []byte
		err error
	)
	if validateInput == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(validateInput)
	}
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	records, err := skills.ValidateResponse(string(raw))
	if err != nil {
		return fmt.Errorf("response rejected: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
