package festival

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/sosohaeng-api/app/db"
	"github.com/FACorreiaa/sosohaeng-api/internal/api/poi"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	// ListByTitle returns one title-ordered page and the total match count.
	ListByTitle(ctx context.Context, query string, limit, offset int) ([]types.Festival, int, error)
	// ListWithCoordinates returns every festival with coordinates inside box.
	ListWithCoordinates(ctx context.Context, query string, box poi.BoundingBox) ([]types.Festival, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Festival, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]types.Festival, error)
	Create(ctx context.Context, f types.Festival) (*types.Festival, error)
	Update(ctx context.Context, id uuid.UUID, f Patch) (*types.Festival, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Patch holds the columns to change; nil fields are kept.
type Patch struct {
	Title          *string
	Location       *string
	Description    *string
	EventStartDate *time.Time
	EventEndDate   *time.Time
	MapX           *float64
	MapY           *float64
	ImageURL       *string
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

const festivalColumns = `
        id, content_id, title, location, description,
        event_start_date, event_end_date, mapx, mapy, image_url,
        created_at, updated_at`

// titleOrLocation matches $1 against title and location; an empty $1 matches all.
const titleOrLocation = `($1 = '' OR title ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%')`

func scanFestival(row pgx.Row) (types.Festival, error) {
	var f types.Festival
	err := row.Scan(
		&f.ID, &f.ContentID, &f.Title, &f.Location, &f.Description,
		&f.EventStartDate, &f.EventEndDate, &f.MapX, &f.MapY, &f.ImageURL,
		&f.CreatedAt, &f.UpdatedAt,
	)
	return f, err
}

func collectFestivals(rows pgx.Rows) ([]types.Festival, error) {
	defer rows.Close()
	festivals := make([]types.Festival, 0)
	for rows.Next() {
		f, err := scanFestival(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan festival row: %w", err)
		}
		festivals = append(festivals, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating festival rows: %w", err)
	}
	return festivals, nil
}

func (r *RepositoryImpl) ListByTitle(ctx context.Context, query string, limit, offset int) ([]types.Festival, int, error) {
	ctx, span := otel.Tracer("FestivalRepository").Start(ctx, "ListByTitle", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	))
	defer span.End()

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM festivals WHERE `+titleOrLocation, query).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count festivals: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, `
        SELECT `+festivalColumns+`
        FROM festivals
        WHERE `+titleOrLocation+`
        ORDER BY title, id
        LIMIT $2 OFFSET $3`, query, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to list festivals: %w", err)
	}
	festivals, err := collectFestivals(rows)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	span.SetStatus(codes.Ok, "Festivals listed")
	return festivals, total, nil
}

func (r *RepositoryImpl) ListWithCoordinates(ctx context.Context, query string, box poi.BoundingBox) ([]types.Festival, error) {
	ctx, span := otel.Tracer("FestivalRepository").Start(ctx, "ListWithCoordinates", trace.WithAttributes(
		attribute.String("query", query),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `
        SELECT `+festivalColumns+`
        FROM festivals
        WHERE `+titleOrLocation+`
          AND mapx IS NOT NULL AND mapy IS NOT NULL
          AND mapy BETWEEN $2 AND $3
          AND mapx BETWEEN $4 AND $5`, query, box.MinLat, box.MaxLat, box.MinLon, box.MaxLon)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list festivals with coordinates: %w", err)
	}
	festivals, err := collectFestivals(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("festival.count", len(festivals)))
	return festivals, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, id uuid.UUID) (*types.Festival, error) {
	f, err := scanFestival(r.pgpool.QueryRow(ctx, `SELECT `+festivalColumns+` FROM festivals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: festival %s", types.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get festival: %w", err)
	}
	return &f, nil
}

func (r *RepositoryImpl) GetMany(ctx context.Context, ids []uuid.UUID) ([]types.Festival, error) {
	if len(ids) == 0 {
		return []types.Festival{}, nil
	}
	rows, err := r.pgpool.Query(ctx, `SELECT `+festivalColumns+` FROM festivals WHERE id = ANY($1) ORDER BY title`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get festivals by ids: %w", err)
	}
	return collectFestivals(rows)
}

func (r *RepositoryImpl) Create(ctx context.Context, f types.Festival) (*types.Festival, error) {
	ctx, span := otel.Tracer("FestivalRepository").Start(ctx, "Create", trace.WithAttributes(
		attribute.String("festival.title", f.Title),
	))
	defer span.End()

	created, err := scanFestival(r.pgpool.QueryRow(ctx, `
        INSERT INTO festivals (content_id, title, location, description, event_start_date, event_end_date, mapx, mapy, image_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+festivalColumns,
		f.ContentID, f.Title, f.Location, f.Description, f.EventStartDate, f.EventEndDate, f.MapX, f.MapY, f.ImageURL,
	))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to create festival: %w", err)
	}

	span.SetStatus(codes.Ok, "Festival created")
	return &created, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, id uuid.UUID, p Patch) (*types.Festival, error) {
	ctx, span := otel.Tracer("FestivalRepository").Start(ctx, "Update", trace.WithAttributes(
		attribute.String("festival.id", id.String()),
	))
	defer span.End()

	updated, err := scanFestival(r.pgpool.QueryRow(ctx, `
        UPDATE festivals SET
            title = COALESCE($2, title),
            location = COALESCE($3, location),
            description = COALESCE($4, description),
            event_start_date = COALESCE($5, event_start_date),
            event_end_date = COALESCE($6, event_end_date),
            mapx = COALESCE($7, mapx),
            mapy = COALESCE($8, mapy),
            image_url = COALESCE($9, image_url),
            updated_at = NOW()
        WHERE id = $1
        RETURNING `+festivalColumns,
		id, p.Title, p.Location, p.Description, p.EventStartDate, p.EventEndDate, p.MapX, p.MapY, p.ImageURL,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: festival %s", types.ErrNotFound, id)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update festival: %w", err)
	}

	span.SetStatus(codes.Ok, "Festival updated")
	return &updated, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM festivals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete festival: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: festival %s", types.ErrNotFound, id)
	}
	return nil
}
