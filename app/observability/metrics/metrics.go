package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	ChatTurnsTotal         metric.Int64Counter
	LLMRequestDuration     metric.Float64Histogram
	LLMErrorsTotal         metric.Int64Counter
	DbQueryDurationSeconds metric.Float64Histogram
	DbQueryErrorsTotal     metric.Int64Counter
	CacheLookupsTotal      metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider, so instruments
// created before the provider is installed are delegated to it afterwards.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("sosohaeng-api")
		var err error
		m := &AppMetrics{}

		m.ChatTurnsTotal, err = meter.Int64Counter(
			"recommend_chat_turns_total",
			metric.WithDescription("Total number of chat turns by resulting mode"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create recommend_chat_turns_total: %v", err)
		}

		m.LLMRequestDuration, err = meter.Float64Histogram(
			"llm_request_duration_seconds",
			metric.WithDescription("Duration of LLM calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_request_duration_seconds: %v", err)
		}

		m.LLMErrorsTotal, err = meter.Int64Counter(
			"llm_errors_total",
			metric.WithDescription("Total number of failed or rejected LLM calls"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create llm_errors_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		m.CacheLookupsTotal, err = meter.Int64Counter(
			"cache_lookups_total",
			metric.WithDescription("Total number of in-process cache lookups by result"),
			metric.WithUnit("{lookup}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create cache_lookups_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
