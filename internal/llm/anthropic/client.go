package anthropic

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/tidwall/gjson"

	"skillsearch-backend/internal/llm"
	"skillsearch-backend/internal/shared/util"
)

const (
	providerName     = "anthropic"
	defaultMaxTokens = 1000
	defaultTimeout   = 120 * time.Second
)

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxTokens  int
	HTTPClient *http.Client
	// Temperature is sent only when set.
	Temperature *float64
}

// Client implements llm.Client on the Anthropic Messages API.
type Client struct {
	api         sdk.Client
	apiKey      string
	model       string
	maxTokens   int64
	temperature *float64
}

// NewClient constructs a new Anthropic client. SDK retries are disabled;
// llm.NewRetryingClient owns the retry policy.
func NewClient(apiKey, model string, opts Options) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Anthropic")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	if opts.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(opts.HTTPClient))
	}

	return &Client{
		api:         sdk.NewClient(reqOpts...),
		apiKey:      apiKey,
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: opts.Temperature,
	}, nil
}

// Complete returns the concatenated text blocks of the model reply.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(prompt))},
	}
	if c.temperature != nil {
		params.Temperature = sdk.Float(*c.temperature)
	}

	// The SDK only surfaces *sdk.Error for JSON error bodies, so the status is
	// captured here for gateways that answer with HTML.
	var status int
	capture := option.WithMiddleware(func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		resp, err := next(req)
		if resp != nil {
			status = resp.StatusCode
		}
		return resp, err
	})

	msg, err := c.api.Messages.New(ctx, params, capture)
	if err != nil {
		return "", c.mapError(err, status)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return "", llm.ErrEmptyResponse
	}
	return content, nil
}

func (c *Client) mapError(err error, status int) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		raw := apiErr.RawJSON()
		msg := gjson.Get(raw, "error.message").String()
		if msg == "" {
			msg = strings.TrimSpace(raw)
		}
		return c.providerError(apiErr.StatusCode, gjson.Get(raw, "error.type").String(), msg)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("anthropic request timeout: %w", err)
	}
	if status >= 400 {
		return c.providerError(status, "", util.SanitizeError(err))
	}
	return fmt.Errorf("anthropic request: %w", err)
}

func (c *Client) providerError(status int, typ, msg string) error {
	if status < 400 {
		status = http.StatusBadGateway
	}
	return &llm.ProviderError{
		Provider:   providerName,
		StatusCode: status,
		Type:       typ,
		Message:    util.RedactSecret(msg, c.apiKey),
	}
}

var _ llm.Client = (*Client)(nil)
