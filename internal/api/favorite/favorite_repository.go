package favorite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/sosohaeng-api/app/db"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	// Toggle removes the favorite when it exists and adds it otherwise.
	// It reports whether the item is a favorite afterwards.
	Toggle(ctx context.Context, userID uuid.UUID, itemType types.FavoriteItemType, itemID string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]types.Favorite, error)
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

func (r *RepositoryImpl) Toggle(ctx context.Context, userID uuid.UUID, itemType types.FavoriteItemType, itemID string) (bool, error) {
	ctx, span := otel.Tracer("FavoriteRepository").Start(ctx, "Toggle", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("favorite.item_type", string(itemType)),
		attribute.String("favorite.item_id", itemID),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `
        DELETE FROM user_favorites
        WHERE user_id = $1 AND item_type = $2 AND item_id = $3`, userID, string(itemType), itemID)
	if err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	if tag.RowsAffected() > 0 {
		span.SetStatus(codes.Ok, "Favorite removed")
		return false, nil
	}

	if _, err = r.pgpool.Exec(ctx, `
        INSERT INTO user_favorites (user_id, item_type, item_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id, item_type, item_id) DO NOTHING`, userID, string(itemType), itemID); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to add favorite: %w", err)
	}

	span.SetStatus(codes.Ok, "Favorite added")
	return true, nil
}

func (r *RepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]types.Favorite, error) {
	rows, err := r.pgpool.Query(ctx, `
        SELECT id, user_id, item_type, item_id, created_at
        FROM user_favorites
        WHERE user_id = $1
        ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := make([]types.Favorite, 0)
	for rows.Next() {
		var f types.Favorite
		var itemType string
		if err := rows.Scan(&f.ID, &f.UserID, &itemType, &f.ItemID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite row: %w", err)
		}
		f.ItemType = types.FavoriteItemType(itemType)
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating favorite rows: %w", err)
	}
	return favorites, nil
}
