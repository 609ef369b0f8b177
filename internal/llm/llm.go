package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Client sends a single prompt to a generative model and returns its raw text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderError reports a failed call as described by the provider.
type ProviderError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s http status %d: %s (%s)", e.Provider, e.StatusCode, e.Message, e.Type)
	}
	return fmt.Sprintf("%s http status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Temporary reports whether the same request may succeed when repeated.
func (e *ProviderError) Temporary() bool {
	switch {
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= 500:
		return true
	default:
		return false
	}
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("llm response empty content")

// StubClient returns a fixed response without any network I/O.
type StubClient struct {
	Response string
	Err      error
}

// Complete returns the configured response or error.
func (s StubClient) Complete(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Response, nil
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
