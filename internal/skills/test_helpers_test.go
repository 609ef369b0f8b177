package skills

import (
	"context"
	"sync/atomic"

	"skillsearch-backend/internal/llm"
)

type fakeExtractor struct {
	text  string
	err   error
	calls atomic.Int32
}

func (f *fakeExtractor) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	f.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.text, f.err
}

type recordingClient struct {
	response string
	err      error
	prompts  []string
}

func (r *recordingClient) Complete(ctx context.Context, prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return r.response, r.err
}

func newTestService(extractor TextExtractor, client llm.Client) *Service {
	return &Service{
		Extractor:      extractor,
		LLM:            client,
		Prompts:        PromptBuilder{MaxChars: 2000},
		MaxUploadBytes: DefaultMaxUploadBytes,
		ModelTimeout:   DefaultModelTimeout,
	}
}

func pdfDocument(data []byte) UploadedDocument {
	return UploadedDocument{Data: data, DeclaredMimeType: "application/pdf", SizeBytes: int64(len(data)), FileName: "resume.pdf"}
}
