package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skillsearch-backend/internal/extract"
	"skillsearch-backend/internal/skills"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Render the model prompt for a resume",
	Long:  "Extracts text from a PDF (or reads plain text with --text) and prints the exact prompt that would be sent to the model.",
	RunE:  runPrompt,
}

var (
	promptInput    string
	promptIsText   bool
	promptMaxChars int
)

func init() {
	promptCmd.Flags().StringVarP(&promptInput, "in", "i", "", "Path to PDF or text file (required)")
	promptCmd.Flags().BoolVar(&promptIsText, "text", false, "Treat the input as plain text instead of PDF")
	promptCmd.Flags().IntVar(&promptMaxChars, "max-chars", skills.DefaultPromptMaxChars, "Maximum document characters embedded in the prompt")

	if err := promptCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(promptInput)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	text := string(data)
	if !promptIsText {
		text, err = extract.ExtractTextFromBytes(cmd.Context(), data, extract.MimePDF)
		if err != nil {
			return fmt.Errorf("failed to extract text: %w", err)
		}
	}

	p := skills.PromptBuilder{MaxChars: promptMaxChars}.Build(text)
	if p.Truncated {
		fmt.Fprintf(cmd.ErrOrStderr(), "note: document truncated to %d of %d characters\n", p.IncludedChars, p.SourceChars)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), p.Text)
	return err
}
