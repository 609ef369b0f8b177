package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"skillsearch-backend/internal/llm"
)

const providerName = "gemini"

// Options tunes generation.
type Options struct {
	MaxTokens int32
	// Temperature defaults to 0.1 when nil.
	Temperature *float32
	// ClientOptions are appended after the API key; tests use them to point at a fake endpoint.
	ClientOptions []option.ClientOption
}

// Client implements llm.Client for Google Gemini.
type Client struct {
	client *genai.Client
	model  string
	opts   Options
}

// NewClient creates a Gemini client. Close must be called to release the connection.
func NewClient(ctx context.Context, apiKey, model string, opts Options) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	if opts.Temperature == nil {
		temp := float32(0.1)
		opts.Temperature = &temp
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts.ClientOptions...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model, opts: opts}, nil
}

// Complete generates content for prompt and returns the joined text parts.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(*c.opts.Temperature)
	if c.opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(c.opts.MaxTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", &llm.ProviderError{
				Provider:   providerName,
				StatusCode: apiErr.Code,
				Message:    apiErr.Message,
			}
		}
		// gax apierror.APIError exposes the HTTP status through HTTPCode.
		var coded interface{ HTTPCode() int }
		if errors.As(err, &coded) && coded.HTTPCode() > 0 {
			return "", &llm.ProviderError{
				Provider:   providerName,
				StatusCode: coded.HTTPCode(),
				Message:    err.Error(),
			}
		}
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return textFromResponse(resp)
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", llm.ErrEmptyResponse
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	out := strings.TrimSpace(strings.Join(parts, ""))
	if out == "" {
		return "", llm.ErrEmptyResponse
	}
	return out, nil
}

var _ llm.Client = (*Client)(nil)
