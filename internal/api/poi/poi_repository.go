package poi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/sosohaeng-api/app/db"
	"github.com/FACorreiaa/sosohaeng-api/app/observability/metrics"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	GetByContentID(ctx context.Context, contentID string) (*types.PointOfInterest, error)
	GetByContentIDs(ctx context.Context, contentIDs []string) ([]types.PointOfInterest, error)
	FindInBounds(ctx context.Context, box BoundingBox, excludeContentID string) ([]types.PointOfInterest, error)

	// SearchByKeywords matches any keyword against title, address and category
	// codes, skipping rows whose address contains any excluded area name.
	SearchByKeywords(ctx context.Context, keywords, excludedAreas []string, limit int) ([]types.PointOfInterest, error)
	// SampleByKeywords is SearchByKeywords in random order.
	SampleByKeywords(ctx context.Context, keywords, excludedAreas []string, limit int) ([]types.PointOfInterest, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.DB
}

func NewRepository(pgpool database.DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const poiColumns = `
        content_id, COALESCE(content_type_id, ''), title, addr1, addr2,
        COALESCE(cat1, ''), COALESCE(cat2, ''), COALESCE(cat3, ''),
        COALESCE(tel, ''), COALESCE(overview, ''),
        mapx, mapy, first_image, event_start_date, event_end_date`

func scanPOI(row pgx.Row) (types.PointOfInterest, error) {
	var p types.PointOfInterest
	err := row.Scan(
		&p.ContentID, &p.ContentTypeID, &p.Title, &p.Addr1, &p.Addr2,
		&p.Cat1, &p.Cat2, &p.Cat3,
		&p.Tel, &p.Overview,
		&p.MapX, &p.MapY, &p.FirstImage, &p.EventStartDate, &p.EventEndDate,
	)
	return p, err
}

func collectPOIs(rows pgx.Rows) ([]types.PointOfInterest, error) {
	defer rows.Close()
	pois := make([]types.PointOfInterest, 0)
	for rows.Next() {
		p, err := scanPOI(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan point of interest row: %w", err)
		}
		pois = append(pois, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating point of interest rows: %w", err)
	}
	return pois, nil
}

// observe records query latency and failures under the given operation name.
func observe(ctx context.Context, op string, start time.Time, err error) {
	attrs := metric.WithAttributes(attribute.String("operation", op))
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func (r *RepositoryImpl) GetByContentID(ctx context.Context, contentID string) (*types.PointOfInterest, error) {
	ctx, span := otel.Tracer("POIRepository").Start(ctx, "GetByContentID", trace.WithAttributes(
		attribute.String("poi.content_id", contentID),
	))
	defer span.End()

	start := time.Now()
	p, err := scanPOI(r.pgpool.QueryRow(ctx, `SELECT `+poiColumns+` FROM tour_data WHERE content_id = $1`, contentID))
	observe(ctx, "poi_get", start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, fmt.Errorf("%w: %s", types.ErrPOINotFound, contentID)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get point of interest: %w", err)
	}

	span.SetStatus(codes.Ok, "Point of interest found")
	return &p, nil
}

func (r *RepositoryImpl) GetByContentIDs(ctx context.Context, contentIDs []string) ([]types.PointOfInterest, error) {
	if len(contentIDs) == 0 {
		return []types.PointOfInterest{}, nil
	}
	start := time.Now()
	rows, err := r.pgpool.Query(ctx, `SELECT `+poiColumns+` FROM tour_data WHERE content_id = ANY($1) ORDER BY title`, contentIDs)
	observe(ctx, "poi_get_many", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query points of interest by ids: %w", err)
	}
	return collectPOIs(rows)
}

func (r *RepositoryImpl) FindInBounds(ctx context.Context, box BoundingBox, excludeContentID string) ([]types.PointOfInterest, error) {
	ctx, span := otel.Tracer("POIRepository").Start(ctx, "FindInBounds", trace.WithAttributes(
		attribute.Float64("box.min_lat", box.MinLat),
		attribute.Float64("box.max_lat", box.MaxLat),
	))
	defer span.End()

	query := `
        SELECT ` + poiColumns + `
        FROM tour_data
        WHERE mapx IS NOT NULL AND mapy IS NOT NULL
          AND mapy BETWEEN $1 AND $2
          AND mapx BETWEEN $3 AND $4
          AND content_id <> $5
    `
	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, excludeContentID)
	observe(ctx, "poi_bounds", start, err)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query points of interest in bounds: %w", err)
	}
	pois, err := collectPOIs(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("poi.count", len(pois)))
	return pois, nil
}

const keywordPredicate = `
        NOT ((addr1 || ' ' || addr2) ILIKE ANY($1))
        AND (
            title ILIKE ANY($2)
            OR addr1 ILIKE ANY($2)
            OR addr2 ILIKE ANY($2)
            OR COALESCE(cat1, '') ILIKE ANY($2)
            OR COALESCE(cat2, '') ILIKE ANY($2)
            OR COALESCE(cat3, '') ILIKE ANY($2)
        )`

func (r *RepositoryImpl) SearchByKeywords(ctx context.Context, keywords, excludedAreas []string, limit int) ([]types.PointOfInterest, error) {
	return r.keywordQuery(ctx, "SearchByKeywords", `ORDER BY (first_image IS NULL), title, content_id`, keywords, excludedAreas, limit)
}

func (r *RepositoryImpl) SampleByKeywords(ctx context.Context, keywords, excludedAreas []string, limit int) ([]types.PointOfInterest, error) {
	return r.keywordQuery(ctx, "SampleByKeywords", `ORDER BY random()`, keywords, excludedAreas, limit)
}

func (r *RepositoryImpl) keywordQuery(ctx context.Context, op, orderBy string, keywords, excludedAreas []string, limit int) ([]types.PointOfInterest, error) {
	ctx, span := otel.Tracer("POIRepository").Start(ctx, op, trace.WithAttributes(
		attribute.StringSlice("keywords", keywords),
		attribute.Int("limit", limit),
	))
	defer span.End()

	if len(keywords) == 0 {
		return []types.PointOfInterest{}, nil
	}

	query := `SELECT ` + poiColumns + ` FROM tour_data WHERE ` + keywordPredicate + ` ` + orderBy + ` LIMIT $3`
	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, likePatterns(excludedAreas), likePatterns(keywords), limit)
	observe(ctx, "poi_keywords", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "keyword query failed")
		return nil, fmt.Errorf("failed to search points of interest: %w", err)
	}
	pois, err := collectPOIs(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("poi.count", len(pois)))
	span.SetStatus(codes.Ok, "Keyword search completed")
	return pois, nil
}
