package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sosohaeng-api/app/observability/metrics"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const minKeywordRunes = 2

// Catalog is the keyword-searchable spot store. poi.RepositoryImpl implements it.
type Catalog interface {
	SearchByKeywords(ctx context.Context, keywords, excludedAreas []string, limit int) ([]types.PointOfInterest, error)
	SampleByKeywords(ctx context.Context, keywords, excludedAreas []string, limit int) ([]types.PointOfInterest, error)
}

type RetrieverConfig struct {
	Limit         int
	MaxKeywords   int
	ExcludedAreas []string
	QueryTimeout  time.Duration
	CacheTTL      time.Duration
}

type Retriever struct {
	catalog  Catalog
	cfg      RetrieverConfig
	excluded []string
	cache    *cache.Cache
	logger   *slog.Logger
}

func NewRetriever(catalog Catalog, cfg RetrieverConfig, logger *slog.Logger) *Retriever {
	if cfg.Limit < 3 || cfg.Limit > 5 {
		cfg.Limit = 5
	}
	if cfg.MaxKeywords <= 0 {
		cfg.MaxKeywords = 5
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}

	excluded := make([]string, 0, len(cfg.ExcludedAreas))
	for _, a := range cfg.ExcludedAreas {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			excluded = append(excluded, a)
		}
	}

	return &Retriever{
		catalog:  catalog,
		cfg:      cfg,
		excluded: excluded,
		cache:    cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		logger:   logger,
	}
}

func (r *Retriever) Limit() int {
	return r.cfg.Limit
}

// UsableKeywords trims, dedupes and caps keywords, dropping those that are too
// short or name an excluded area.
func (r *Retriever) UsableKeywords(keywords []string) []string {
	return r.usable(keywords, r.cfg.MaxKeywords)
}

func (r *Retriever) usable(keywords []string, limit int) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if utf8.RuneCountInString(k) < minKeywordRunes {
			continue
		}
		lower := strings.ToLower(k)
		if _, dup := seen[lower]; dup || r.isExcluded(lower) {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, k)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (r *Retriever) isExcluded(lower string) bool {
	for _, area := range r.excluded {
		if strings.Contains(lower, area) {
			return true
		}
	}
	return false
}

// Search returns at most Limit spots matching any usable keyword. No usable
// keyword and zero rows both yield an empty slice and a nil error.
func (r *Retriever) Search(ctx context.Context, keywords []string) ([]types.PointOfInterest, error) {
	kws := r.UsableKeywords(keywords)

	ctx, span := otel.Tracer("KeywordRetriever").Start(ctx, "Search", trace.WithAttributes(
		attribute.StringSlice("keywords", kws),
		attribute.Int("limit", r.cfg.Limit),
	))
	defer span.End()

	if len(kws) == 0 {
		span.SetStatus(codes.Ok, "no usable keywords")
		return []types.PointOfInterest{}, nil
	}

	key := strings.ToLower(strings.Join(kws, "\x1f"))
	if cached, found := r.cache.Get(key); found {
		metrics.Get().CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", "retrieval"), attribute.String("result", "hit")))
		return cached.([]types.PointOfInterest), nil
	}
	metrics.Get().CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", "retrieval"), attribute.String("result", "miss")))

	pois, err := r.withRetry(ctx, func(ctx context.Context) ([]types.PointOfInterest, error) {
		return r.catalog.SearchByKeywords(ctx, kws, r.cfg.ExcludedAreas, r.cfg.Limit)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog query failed")
		return nil, err
	}

	pois = r.dropExcluded(pois)
	if len(pois) > r.cfg.Limit {
		pois = pois[:r.cfg.Limit]
	}
	r.cache.Set(key, pois, cache.DefaultExpiration)

	span.SetAttributes(attribute.Int("results", len(pois)))
	span.SetStatus(codes.Ok, "retrieved")
	return pois, nil
}

// Sample returns up to limit random spots matching any keyword. It is not cached.
func (r *Retriever) Sample(ctx context.Context, keywords []string, limit int) ([]types.PointOfInterest, error) {
	kws := r.usable(keywords, 0)
	if len(kws) == 0 || limit <= 0 {
		return []types.PointOfInterest{}, nil
	}
	pois, err := r.withRetry(ctx, func(ctx context.Context) ([]types.PointOfInterest, error) {
		return r.catalog.SampleByKeywords(ctx, kws, r.cfg.ExcludedAreas, limit)
	})
	if err != nil {
		return nil, err
	}
	return r.dropExcluded(pois), nil
}

// withRetry runs query with a per-attempt timeout and retries once unless the
// caller's context is done.
func (r *Retriever) withRetry(ctx context.Context, query func(context.Context) ([]types.PointOfInterest, error)) ([]types.PointOfInterest, error) {
	attempt := func() ([]types.PointOfInterest, error) {
		qctx, cancel := context.WithTimeout(ctx, r.cfg.QueryTimeout)
		defer cancel()
		return query(qctx)
	}

	pois, err := attempt()
	if err == nil {
		return pois, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	r.logger.WarnContext(ctx, "Catalog query failed, retrying once", slog.Any("error", err))
	pois, retryErr := attempt()
	if retryErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("catalog query failed after retry: %w", errors.Join(err, retryErr))
	}
	return pois, nil
}

func (r *Retriever) dropExcluded(pois []types.PointOfInterest) []types.PointOfInterest {
	out := make([]types.PointOfInterest, 0, len(pois))
	for _, p := range pois {
		if r.isExcluded(strings.ToLower(p.Address())) {
			continue
		}
		out = append(out, p)
	}
	return out
}
