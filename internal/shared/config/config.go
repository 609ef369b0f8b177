package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderStub      = "stub"

	// DefaultMaxUploadBytes is the 10 MiB cap applied to uploaded documents.
	DefaultMaxUploadBytes = 10 << 20
)

var defaultModels = map[string]string{
	ProviderAnthropic: "claude-3-sonnet-20240229",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderStub:      "stub",
}

var providerKeyEnv = map[string]string{
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// Config holds application configuration. It is loaded once and passed by value.
type Config struct {
	Port            string   `validate:"required"`
	Env             string   `validate:"oneof=dev local staging production"`
	CORSAllowOrigin []string `validate:"dive,required"`

	LLMProvider     string        `validate:"oneof=anthropic openai gemini stub"`
	LLMModel        string        `validate:"required"`
	LLMAPIKey       string        `validate:"required_unless=LLMProvider stub"`
	LLMTimeout      time.Duration `validate:"gt=0"`
	LLMMaxTokens    int           `validate:"gt=0"`
	LLMRetry        bool
	LLMMaxInFlight  int64         `validate:"gt=0"`
	LLMQueueWait    time.Duration `validate:"gte=0"`
	StubResponse    string

	MaxUploadBytes int64 `validate:"gt=0"`
	PromptMaxChars int   `validate:"gte=1000"`

	RateLimitRPS   float64 `validate:"gte=0"`
	RateLimitBurst int     `validate:"gte=0"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:4200")),
		LLMTimeout:      time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 30)) * time.Second,
		LLMMaxTokens:    getEnvInt("LLM_MAX_TOKENS", 1000),
		LLMRetry:        getEnvBool("LLM_RETRY_TRANSIENT", true),
		LLMMaxInFlight:  int64(getEnvInt("LLM_MAX_IN_FLIGHT", 4)),
		LLMQueueWait:    time.Duration(getEnvInt("LLM_QUEUE_WAIT_MS", 2000)) * time.Millisecond,
		StubResponse:    getEnv("LLM_STUB_RESPONSE", "[]"),
		MaxUploadBytes:  int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		PromptMaxChars:  getEnvInt("PROMPT_MAX_CHARS", 24000),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 5),
	}

	return cfg.WithProvider(getEnv("LLM_PROVIDER", ProviderAnthropic))
}

// WithProvider switches the config to provider and re-derives the model and
// API key from the environment. LLM_MODEL and LLM_API_KEY still take precedence.
func (c Config) WithProvider(provider string) Config {
	provider = normalizeProvider(provider)
	c.LLMProvider = provider
	c.LLMModel = getEnv("LLM_MODEL", defaultModels[provider])
	c.LLMAPIKey = getEnv("LLM_API_KEY", os.Getenv(providerKeyEnv[provider]))
	if c.LLMAPIKey == "" && provider != ProviderStub {
		log.Printf("config: no API key configured for provider %s", provider)
	}
	return c
}

// Validate checks the struct constraints declared on Config.
func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LogValue keeps the API key out of structured logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("port", c.Port),
		slog.String("env", c.Env),
		slog.String("llm_provider", c.LLMProvider),
		slog.String("llm_model", c.LLMModel),
		slog.Bool("llm_api_key_set", c.LLMAPIKey != ""),
		slog.Duration("llm_timeout", c.LLMTimeout),
		slog.Int64("llm_max_in_flight", c.LLMMaxInFlight),
		slog.Int64("max_upload_bytes", c.MaxUploadBytes),
		slog.Int("prompt_max_chars", c.PromptMaxChars),
	)
}

// String never includes the API key.
func (c Config) String() string {
	return fmt.Sprintf("Config{Port:%s Env:%s LLMProvider:%s LLMModel:%s LLMAPIKey:[redacted]}",
		c.Port, c.Env, c.LLMProvider, c.LLMModel)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return parsed
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q", key, raw)
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeProvider(raw string) string {
	switch p := strings.ToLower(strings.TrimSpace(raw)); p {
	case "claude":
		return ProviderAnthropic
	case "google":
		return ProviderGemini
	default:
		return p
	}
}
