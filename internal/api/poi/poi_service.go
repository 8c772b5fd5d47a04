package poi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/sosohaeng-api/app/observability/metrics"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const (
	DefaultNearbyRadiusKm = 20.0
	defaultQueryTimeout   = 5 * time.Second
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	GetSpot(ctx context.Context, contentID string) (*types.PointOfInterest, error)
	// GetNearby returns the target spot and the other spots within radiusKm of
	// it, nearest first. A target without coordinates has no neighbours.
	GetNearby(ctx context.Context, contentID string, radiusKm float64) (*types.PointOfInterest, []types.RankedPOI, error)
}

type nearbyResult struct {
	target types.PointOfInterest
	ranked []types.RankedPOI
}

type ServiceImpl struct {
	logger        *slog.Logger
	poiRepository Repository
	cache         *cache.Cache
	group         singleflight.Group
	queryTimeout  time.Duration
}

func NewServiceImpl(poiRepository Repository, ttl, queryTimeout time.Duration, logger *slog.Logger) *ServiceImpl {
	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}
	return &ServiceImpl{
		logger:        logger,
		poiRepository: poiRepository,
		cache:         cache.New(ttl, 2*ttl),
		queryTimeout:  queryTimeout,
	}
}

func (s *ServiceImpl) GetSpot(ctx context.Context, contentID string) (*types.PointOfInterest, error) {
	ctx, span := otel.Tracer("POIService").Start(ctx, "GetSpot", trace.WithAttributes(
		attribute.String("poi.content_id", contentID),
	))
	defer span.End()

	p, err := s.poiRepository.GetByContentID(ctx, contentID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Spot retrieved")
	return p, nil
}

func (s *ServiceImpl) GetNearby(ctx context.Context, contentID string, radiusKm float64) (*types.PointOfInterest, []types.RankedPOI, error) {
	ctx, span := otel.Tracer("POIService").Start(ctx, "GetNearby", trace.WithAttributes(
		attribute.String("poi.content_id", contentID),
		attribute.Float64("radius_km", radiusKm),
	))
	defer span.End()

	if radiusKm <= 0 {
		radiusKm = DefaultNearbyRadiusKm
	}

	key := nearbyCacheKey(contentID, radiusKm)
	if cached, found := s.cache.Get(key); found {
		metrics.Get().CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", "nearby"), attribute.String("result", "hit")))
		res := cached.(nearbyResult)
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return &res.target, res.ranked, nil
	}
	metrics.Get().CacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", "nearby"), attribute.String("result", "miss")))

	// The fill is shared by every waiter on key, so it must outlive the caller
	// that started it.
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.queryTimeout)
		defer cancel()

		target, err := s.poiRepository.GetByContentID(fillCtx, contentID)
		if err != nil {
			return nil, err
		}

		lat, lon, ok := target.Coordinates()
		if !ok {
			s.logger.InfoContext(ctx, "Target spot has no coordinates, returning no neighbours", slog.String("content_id", contentID))
			return nearbyResult{target: *target, ranked: []types.RankedPOI{}}, nil
		}

		candidates, err := s.poiRepository.FindInBounds(fillCtx, NewBoundingBox(lat, lon, radiusKm), contentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load nearby candidates: %w", err)
		}
		res := nearbyResult{
			target: *target,
			ranked: Rank(types.GeoPoint{Lat: lat, Lon: lon}, candidates, &radiusKm),
		}
		s.cache.Set(key, res, cache.DefaultExpiration)
		return res, nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to get nearby spots", slog.String("content_id", contentID), slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "nearby lookup failed")
		return nil, nil, err
	}

	res := v.(nearbyResult)
	span.SetAttributes(attribute.Int("nearby.count", len(res.ranked)))
	span.SetStatus(codes.Ok, "Nearby spots ranked")
	return &res.target, res.ranked, nil
}
