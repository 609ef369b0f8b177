package skills

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillsearch-backend/internal/extract"
	"skillsearch-backend/internal/llm"
	"skillsearch-backend/internal/shared/metrics"
	"skillsearch-backend/internal/shared/telemetry"
	"skillsearch-backend/internal/shared/util"
)

const (
	DefaultMaxUploadBytes = 10 << 20
	DefaultModelTimeout   = 30 * time.Second
)

// TextExtractor turns a document into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (string, error)
}

// Service runs the extraction pipeline: admission checks, text extraction,
// prompt construction, a bounded model call and response validation.
// Stages run in order and the first failure ends the run.
type Service struct {
	Extractor      TextExtractor
	LLM            llm.Client
	Limiter        *llm.Limiter
	Prompts        PromptBuilder
	MaxUploadBytes int64
	ModelTimeout   time.Duration
	ModelName      string
}

// Run extracts skills from doc. Caller cancellation is returned as ctx.Err()
// without being mapped to a pipeline error.
func (s *Service) Run(ctx context.Context, doc UploadedDocument) ([]SkillRecord, error) {
	start := time.Now()
	reqID := telemetry.RequestIDFromContext(ctx)
	metrics.IncExtractionStarted()

	records, err := s.run(ctx, doc, reqID)
	fields := map[string]any{
		"request_id":  reqID,
		"duration_ms": time.Since(start).Milliseconds(),
		"size_bytes":  doc.SizeBytes,
		"file_name":   doc.FileName,
	}
	if err != nil {
		code := Code(err)
		metrics.IncExtractionFailed(code)
		fields["code"] = code
		fields["error"] = util.SanitizeError(err)
		if errors.Is(err, context.Canceled) {
			telemetry.Info("skills.extract.canceled", fields)
		} else {
			telemetry.Warn("skills.extract.failed", fields)
		}
		return nil, err
	}
	metrics.IncExtractionCompleted()
	fields["records"] = len(records)
	telemetry.Info("skills.extract.complete", fields)
	return records, nil
}

func (s *Service) run(ctx context.Context, doc UploadedDocument, reqID string) ([]SkillRecord, error) {
	if err := s.admit(doc); err != nil {
		return nil, err
	}
	if s.Extractor == nil || s.LLM == nil {
		return nil, errors.New("skills service is not configured")
	}

	text, err := s.Extractor.ExtractText(ctx, doc.Data, doc.DeclaredMimeType)
	if err != nil {
		return nil, mapExtractError(ctx, err)
	}
	if strings.TrimSpace(text) == "" {
		telemetry.Info("skills.extract.no_text", map[string]any{"request_id": reqID})
		return []SkillRecord{}, nil
	}

	prompt := s.Prompts.Build(text)
	telemetry.Info("skills.extract.prompt", map[string]any{
		"request_id":     reqID,
		"model":          s.ModelName,
		"prompt_version": prompt.Version,
		"prompt_hash":    util.ShortHash(prompt.Text),
		"source_chars":   prompt.SourceChars,
		"included_chars": prompt.IncludedChars,
		"truncated":      prompt.Truncated,
	})

	raw, err := s.complete(ctx, prompt.Text)
	if err != nil {
		return nil, err
	}

	records, err := ValidateResponse(raw)
	if err != nil {
		telemetry.Warn("skills.extract.invalid_output", map[string]any{
			"request_id":    reqID,
			"response_hash": util.ShortHash(raw),
			"response_len":  len(raw),
			"reason":        err.Error(),
		})
		return nil, err
	}
	return records, nil
}

// admit rejects documents before any parsing happens.
func (s *Service) admit(doc UploadedDocument) error {
	if doc.Data == nil {
		return ErrFileMissing
	}
	if mime := extract.NormalizeMimeType(doc.DeclaredMimeType); mime != extract.MimePDF {
		return fmt.Errorf("%w: got %q", ErrInvalidMimeType, mime)
	}
	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	size := doc.SizeBytes
	if n := int64(len(doc.Data)); n > size {
		size = n
	}
	if size > limit {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, size, limit)
	}
	return nil
}

// complete performs the single model call under the in-flight limit and timeout.
func (s *Service) complete(ctx context.Context, prompt string) (string, error) {
	release, err := s.Limiter.Acquire(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %w", ErrTooManyRequests, err)
	}
	metrics.SetModelCallsInFlight(s.Limiter.InFlight())
	defer func() {
		release()
		metrics.SetModelCallsInFlight(s.Limiter.InFlight())
	}()

	timeout := s.ModelTimeout
	if timeout <= 0 {
		timeout = DefaultModelTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.LLM.Complete(callCtx, prompt)
	metrics.ObserveModelCallMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	return raw, nil
}

func mapExtractError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	switch {
	case errors.Is(err, extract.ErrUnsupportedMimeType):
		return fmt.Errorf("%w: %w", ErrInvalidMimeType, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrDocumentCorrupt, err)
	}
}
