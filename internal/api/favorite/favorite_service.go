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
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type FestivalLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*types.Festival, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]types.Festival, error)
}

type ProductLookup interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]types.Product, error)
}

type SpotLookup interface {
	GetByContentID(ctx context.Context, contentID string) (*types.PointOfInterest, error)
	GetByContentIDs(ctx context.Context, contentIDs []string) ([]types.PointOfInterest, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Toggle(ctx context.Context, userID uuid.UUID, req types.ToggleFavoriteRequest) (*types.ToggleFavoriteResponse, error)
	List(ctx context.Context, userID uuid.UUID) (*types.FavoritesResponse, error)
}

type ServiceImpl struct {
	logger             *slog.Logger
	favoriteRepository Repository
	festivals          FestivalLookup
	products           ProductLookup
	spots              SpotLookup
}

func NewServiceImpl(favoriteRepository Repository, festivals FestivalLookup, products ProductLookup, spots SpotLookup, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:             logger,
		favoriteRepository: favoriteRepository,
		festivals:          festivals,
		products:           products,
		spots:              spots,
	}
}

func (s *ServiceImpl) Toggle(ctx context.Context, userID uuid.UUID, req types.ToggleFavoriteRequest) (*types.ToggleFavoriteResponse, error) {
	ctx, span := otel.Tracer("FavoriteService").Start(ctx, "Toggle", trace.WithAttributes(
		attribute.String("favorite.item_type", string(req.ItemType)),
		attribute.String("favorite.item_id", req.ItemID),
	))
	defer span.End()

	if err := s.checkExists(ctx, req.ItemType, req.ItemID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	favorited, err := s.favoriteRepository.Toggle(ctx, userID, req.ItemType, req.ItemID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to toggle favorite", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Favorite toggled",
		slog.String("user_id", userID.String()),
		slog.String("item_type", string(req.ItemType)),
		slog.String("item_id", req.ItemID),
		slog.Bool("favorited", favorited))
	span.SetStatus(codes.Ok, "Favorite toggled")
	return &types.ToggleFavoriteResponse{Favorited: favorited, ItemType: req.ItemType, ItemID: req.ItemID}, nil
}

func (s *ServiceImpl) checkExists(ctx context.Context, itemType types.FavoriteItemType, itemID string) error {
	switch itemType {
	case types.FavoriteFestival, types.FavoriteProduct:
		id, err := uuid.Parse(itemID)
		if err != nil {
			return fmt.Errorf("%w: %s item_id must be a valid UUID", types.ErrInvalidInput, itemType)
		}
		if itemType == types.FavoriteFestival {
			_, err = s.festivals.Get(ctx, id)
		} else {
			_, err = s.products.GetProduct(ctx, id)
		}
		return err
	case types.FavoriteSpot:
		_, err := s.spots.GetByContentID(ctx, itemID)
		return err
	default:
		return fmt.Errorf("%w: unknown item_type %q", types.ErrInvalidInput, itemType)
	}
}

// List resolves the favorites of a user, grouped by item type. Items that no
// longer exist are left out.
func (s *ServiceImpl) List(ctx context.Context, userID uuid.UUID) (*types.FavoritesResponse, error) {
	ctx, span := otel.Tracer("FavoriteService").Start(ctx, "List", trace.WithAttributes(
		attribute.String("user.id", userID.String()),
	))
	defer span.End()

	favorites, err := s.favoriteRepository.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var festivalIDs, productIDs []uuid.UUID
	var spotIDs []string
	for _, f := range favorites {
		switch f.ItemType {
		case types.FavoriteFestival:
			if id, err := uuid.Parse(f.ItemID); err == nil {
				festivalIDs = append(festivalIDs, id)
			}
		case types.FavoriteProduct:
			if id, err := uuid.Parse(f.ItemID); err == nil {
				productIDs = append(productIDs, id)
			}
		case types.FavoriteSpot:
			spotIDs = append(spotIDs, f.ItemID)
		}
	}

	resp := &types.FavoritesResponse{
		Festivals: []types.Festival{},
		Products:  []types.Product{},
		Spots:     []types.PointOfInterest{},
	}

	g, gctx := errgroup.WithContext(ctx)
	if len(festivalIDs) > 0 {
		g.Go(func() error {
			festivals, err := s.festivals.GetMany(gctx, festivalIDs)
			if err != nil {
				return fmt.Errorf("failed to load favorite festivals: %w", err)
			}
			resp.Festivals = festivals
			return nil
		})
	}
	if len(productIDs) > 0 {
		g.Go(func() error {
			products, err := s.products.GetProducts(gctx, productIDs)
			if err != nil {
				return fmt.Errorf("failed to load favorite products: %w", err)
			}
			resp.Products = products
			return nil
		})
	}
	if len(spotIDs) > 0 {
		g.Go(func() error {
			spots, err := s.spots.GetByContentIDs(gctx, spotIDs)
			if err != nil {
				return fmt.Errorf("failed to load favorite spots: %w", err)
			}
			resp.Spots = spots
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to resolve favorites", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("favorites.count", len(favorites)))
	span.SetStatus(codes.Ok, "Favorites listed")
	return resp, nil
}
