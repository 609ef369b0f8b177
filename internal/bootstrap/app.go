package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"skillsearch-backend/internal/extract"
	"skillsearch-backend/internal/llm"
	"skillsearch-backend/internal/llm/anthropic"
	"skillsearch-backend/internal/llm/gemini"
	"skillsearch-backend/internal/llm/openai"
	"skillsearch-backend/internal/process"
	"skillsearch-backend/internal/services/health"
	"skillsearch-backend/internal/shared/config"
	"skillsearch-backend/internal/shared/server"
	"skillsearch-backend/internal/shared/telemetry"
	"skillsearch-backend/internal/skills"
)

// App holds shared dependencies.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	LLM            llm.Client
	Limiter        *llm.Limiter
	SkillsService  *skills.Service
	SkillsHandler  *skills.Handler
	ProcessService *process.Service
	ProcessHandler *process.Handler
	HealthService  *health.Service

	closers []io.Closer
}

// Build validates cfg, connects the configured model provider and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, closer, err := BuildLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := BuildWithClient(cfg, client)
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

// BuildWithClient wires the application around an already constructed model client.
func BuildWithClient(cfg config.Config, client llm.Client) *App {
	if cfg.LLMRetry {
		client = llm.NewRetryingClient(client, llm.DefaultRetryDelay)
	}
	limiter := llm.NewLimiter(cfg.LLMMaxInFlight, cfg.LLMQueueWait)

	app := &App{
		Config:        cfg,
		LLM:           client,
		Limiter:       limiter,
		HealthService: health.NewService(),
	}
	app.SkillsService = &skills.Service{
		Extractor:      extract.PDFExtractor{},
		LLM:            client,
		Limiter:        limiter,
		Prompts:        skills.PromptBuilder{MaxChars: cfg.PromptMaxChars},
		MaxUploadBytes: cfg.MaxUploadBytes,
		ModelTimeout:   cfg.LLMTimeout,
		ModelName:      cfg.LLMModel,
	}
	app.SkillsHandler = skills.NewHandler(app.SkillsService)
	app.ProcessService = &process.Service{
		LLM:     client,
		Limiter: limiter,
		Timeout: cfg.LLMTimeout,
	}
	app.ProcessHandler = process.NewHandler(app.ProcessService)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		Health:         app.HealthService,
		SkillsHandler:  app.SkillsHandler,
		ProcessHandler: app.ProcessHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"provider":      cfg.LLMProvider,
		"model":         cfg.LLMModel,
		"max_in_flight": cfg.LLMMaxInFlight,
		"retry":         cfg.LLMRetry,
	})
	return app
}

// BuildLLMClient constructs the provider client named by cfg.LLMProvider.
// The returned closer is nil when the client holds no resources.
func BuildLLMClient(ctx context.Context, cfg config.Config) (llm.Client, io.Closer, error) {
	switch cfg.LLMProvider {
	case config.ProviderAnthropic:
		client, err := anthropic.NewClient(cfg.LLMAPIKey, cfg.LLMModel, anthropic.Options{
			Timeout:   cfg.LLMTimeout,
			MaxTokens: cfg.LLMMaxTokens,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("anthropic client: %w", err)
		}
		return client, nil, nil
	case config.ProviderOpenAI:
		client, err := openai.NewClient(cfg.LLMAPIKey, cfg.LLMModel, openai.Options{
			Timeout:   cfg.LLMTimeout,
			MaxTokens: cfg.LLMMaxTokens,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("openai client: %w", err)
		}
		return client, nil, nil
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.LLMAPIKey, cfg.LLMModel, gemini.Options{
			MaxTokens: int32(cfg.LLMMaxTokens),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("gemini client: %w", err)
		}
		return client, client, nil
	case config.ProviderStub:
		return llm.StubClient{Response: cfg.StubResponse}, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

// Close releases provider connections.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
