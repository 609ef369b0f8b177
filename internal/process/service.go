package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillsearch-backend/internal/llm"
	"skillsearch-backend/internal/shared/metrics"
	"skillsearch-backend/internal/shared/telemetry"
	"skillsearch-backend/internal/shared/util"
)

var (
	ErrInvalidInput     = errors.New("data and task are required")
	ErrModelUnavailable = errors.New("model unavailable")
	ErrTooManyRequests  = errors.New("too many requests")
)

// Result is the outcome of a free-form processing task.
type Result struct {
	Result       string    `json:"result"`
	ProcessedAt  time.Time `json:"processedAt"`
	OriginalTask string    `json:"originalTask"`
}

// Service asks the model to apply a caller-described task to arbitrary JSON data.
type Service struct {
	LLM     llm.Client
	Limiter *llm.Limiter
	Timeout time.Duration
	Now     func() time.Time
}

// Process runs task over data. data must be a JSON value other than null or "".
func (s *Service) Process(ctx context.Context, task string, data json.RawMessage) (Result, error) {
	task = strings.TrimSpace(task)
	if task == "" || isEmptyData(data) {
		return Result{}, ErrInvalidInput
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return Result{}, fmt.Errorf("%w: data is not valid JSON", ErrInvalidInput)
	}
	prompt := fmt.Sprintf("Please %s this data: %s", task, compact.String())

	release, err := s.Limiter.Acquire(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		return Result{}, fmt.Errorf("%w: %w", ErrTooManyRequests, err)
	}
	metrics.SetModelCallsInFlight(s.Limiter.InFlight())
	defer func() {
		release()
		metrics.SetModelCallsInFlight(s.Limiter.InFlight())
	}()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := s.LLM.Complete(callCtx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		telemetry.Warn("process.failed", map[string]any{
			"request_id":  telemetry.RequestIDFromContext(ctx),
			"prompt_hash": util.ShortHash(prompt),
			"error":       util.SanitizeError(err),
		})
		return Result{}, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return Result{Result: out, ProcessedAt: now().UTC(), OriginalTask: task}, nil
}

func isEmptyData(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	switch string(trimmed) {
	case "", "null", `""`:
		return true
	default:
		return false
	}
}
