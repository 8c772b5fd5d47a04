package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/sosohaeng-api/config"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Request is a single system instruction plus user message.
type Request struct {
	// Kind labels the call for metrics and the interaction log, e.g. "extract".
	Kind   string
	System string
	User   string
	// JSON asks the provider for a JSON object response.
	JSON        bool
	Temperature *float32
}

type Response struct {
	Text     string
	Model    string
	Provider string
}

// Client is the one-shot text generation interface the recommendation engine consumes.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// unconfiguredClient answers every call with ErrLLMUnavailable.
type unconfiguredClient struct {
	reason string
}

func (c unconfiguredClient) Generate(context.Context, Request) (Response, error) {
	return Response{}, fmt.Errorf("%w: %s", types.ErrLLMUnavailable, c.reason)
}

// NewClientFromConfig builds the configured provider wrapped with a timeout and
// circuit breaker. A missing API key yields a client that always reports
// ErrLLMUnavailable so the server can still start.
func NewClientFromConfig(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Client, error) {
	var (
		base  Client
		model string
	)

	switch cfg.Provider {
	case ProviderGemini:
		model = cfg.GeminiModel
		if cfg.GeminiKey == "" {
			logger.Warn("Gemini API key not set, LLM calls will report unavailable")
			return unconfiguredClient{reason: "gemini api key not configured"}, nil
		}
		gc, err := NewGeminiClient(ctx, cfg.GeminiKey, model, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		base = gc
	case ProviderOpenAI, "":
		model = cfg.OpenAIModel
		if cfg.OpenAIKey == "" {
			logger.Warn("OpenAI API key not set, LLM calls will report unavailable")
			return unconfiguredClient{reason: "openai api key not configured"}, nil
		}
		base = NewOpenAIClient(cfg.OpenAIKey, model, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	logger.Info("LLM client configured", slog.String("provider", cfg.Provider), slog.String("model", model))

	return NewResilientClient(base, BreakerSettings{
		Name:             cfg.Provider,
		Timeout:          timeout,
		MaxRequests:      cfg.Breaker.MaxRequests,
		Interval:         cfg.Breaker.Interval,
		OpenTimeout:      cfg.Breaker.OpenTimeout,
		FailureThreshold: cfg.Breaker.FailureThreshold,
	}, logger), nil
}
