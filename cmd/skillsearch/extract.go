package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"skillsearch-backend/internal/bootstrap"
	"skillsearch-backend/internal/extract"
	"skillsearch-backend/internal/shared/config"
	"skillsearch-backend/internal/skills"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract skills from a PDF resume",
	Long:  "Runs the full pipeline against a local PDF using the model provider from the environment and prints the skill list as JSON.",
	RunE:  runExtract,
}

var (
	extractInput    string
	extractProvider string
	extractModel    string
	extractTextOnly bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractInput, "in", "i", "", "Path to PDF file (required)")
	extractCmd.Flags().StringVar(&extractProvider, "provider", "", "Model provider override (anthropic, openai, gemini, stub)")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "Model name override")
	extractCmd.Flags().BoolVar(&extractTextOnly, "text-only", false, "Print the extracted document text and stop")

	if err := extractCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	data, err := os.ReadFile(extractInput)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}
	ctx := cmd.Context()

	if extractTextOnly {
		text, err := extract.ExtractTextFromBytes(ctx, data, extract.MimePDF)
		if err != nil {
			return fmt.Errorf("failed to extract text: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}

	app, err := bootstrap.Build(ctx, extractConfig())
	if err != nil {
		return err
	}
	defer app.Close()

	records, err := app.SkillsService.Run(ctx, skills.UploadedDocument{
		Data:             data,
		DeclaredMimeType: extract.MimePDF,
		SizeBytes:        int64(len(data)),
		FileName:         extractInput,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", skills.Code(err), err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// extractConfig applies the --provider and --model overrides on top of the environment.
func extractConfig() config.Config {
	cfg := config.Load()
	if extractProvider != "" {
		cfg = cfg.WithProvider(extractProvider)
	}
	if extractModel != "" {
		cfg.LLMModel = extractModel
	}
	return cfg
}
