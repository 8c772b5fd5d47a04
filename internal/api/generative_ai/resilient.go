package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/sosohaeng-api/app/observability/metrics"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type BreakerSettings struct {
	Name string
	// Timeout bounds a single provider call.
	Timeout time.Duration
	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32
	// Interval resets the closed-state counts; zero never resets.
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// FailureThreshold is the consecutive failure count that opens the breaker.
	FailureThreshold uint32
}

// ResilientClient bounds every call with a timeout and a circuit breaker and
// reports transport failures as ErrLLMUnavailable. It never retries.
type ResilientClient struct {
	next    Client
	name    string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker[Response]
	logger  *slog.Logger
}

var _ Client = (*ResilientClient)(nil)

func NewResilientClient(next Client, s BreakerSettings, logger *slog.Logger) *ResilientClient {
	threshold := s.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	openTimeout := s.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[Response](gobreaker.Settings{
		Name:        "llm-" + s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("LLM circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		// A provider that answers with garbage is reachable; the caller recovers
		// locally, so it does not count against the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, types.ErrLLMMalformedOutput) || errors.Is(err, context.Canceled)
		},
	})

	return &ResilientClient{
		next:    next,
		name:    s.Name,
		timeout: s.Timeout,
		cb:      cb,
		logger:  logger,
	}
}

func (c *ResilientClient) Generate(ctx context.Context, req Request) (Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	attrs := metric.WithAttributes(
		attribute.String("provider", c.name),
		attribute.String("kind", req.Kind),
	)
	start := time.Now()
	resp, err := c.cb.Execute(func() (Response, error) {
		return c.next.Generate(ctx, req)
	})
	metrics.Get().LLMRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err == nil {
		return resp, nil
	}
	metrics.Get().LLMErrorsTotal.Add(ctx, 1, attrs)

	if errors.Is(err, types.ErrLLMMalformedOutput) || errors.Is(err, types.ErrLLMUnavailable) {
		return Response{}, err
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.WarnContext(ctx, "LLM call rejected by circuit breaker", slog.String("provider", c.name))
	}
	return Response{}, fmt.Errorf("%w: %w", types.ErrLLMUnavailable, err)
}

// State exposes the breaker state for health reporting.
func (c *ResilientClient) State() string {
	return c.cb.State().String()
}
