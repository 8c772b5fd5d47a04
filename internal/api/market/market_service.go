package market

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*size far from overflow.
	MaxPage = 10000

	OrderName   = "name"
	OrderRecent = "recent"

	SortRecent    = "recent"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	ListMarkets(ctx context.Context, filter types.MarketFilter) (*types.Page[types.Market], error)
	GetMarket(ctx context.Context, id uuid.UUID) (*types.Market, error)
	CreateMarket(ctx context.Context, req types.CreateMarketRequest) (*types.Market, error)
	UpdateMarket(ctx context.Context, id uuid.UUID, req types.UpdateMarketRequest) (*types.Market, error)

	ListProducts(ctx context.Context, filter types.ProductFilter) (*types.Page[types.Product], error)
	GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error)
	CreateProduct(ctx context.Context, req types.CreateProductRequest) (*types.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req types.UpdateProductRequest) (*types.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateReview(ctx context.Context, productID uuid.UUID, req types.CreateReviewRequest) (*types.ProductReview, error)
	ListReviews(ctx context.Context, productID uuid.UUID) (*types.ProductReviews, error)
}

type ServiceImpl struct {
	logger           *slog.Logger
	marketRepository Repository
}

func NewServiceImpl(marketRepository Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:           logger,
		marketRepository: marketRepository,
	}
}

func pageBounds(page, size int) (int, int, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		return 0, 0, fmt.Errorf("%w: page must be at most %d", types.ErrInvalidInput, MaxPage)
	}
	if size < 1 {
		size = DefaultPageSize
	}
	return page, min(size, MaxPageSize), nil
}

func (s *ServiceImpl) ListMarkets(ctx context.Context, filter types.MarketFilter) (*types.Page[types.Market], error) {
	ctx, span := otel.Tracer("MarketService").Start(ctx, "ListMarkets", trace.WithAttributes(
		attribute.String("order_by", filter.OrderBy),
	))
	defer span.End()

	var err error
	if filter.Page, filter.Size, err = pageBounds(filter.Page, filter.Size); err != nil {
		span.RecordError(err)
		return nil, err
	}
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Region = strings.TrimSpace(filter.Region)
	if filter.OrderBy == "" {
		filter.OrderBy = OrderName
	}
	if _, ok := marketOrder[filter.OrderBy]; !ok {
		return nil, fmt.Errorf("%w: order_by must be name or recent", types.ErrInvalidInput)
	}

	markets, total, err := s.marketRepository.ListMarkets(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list markets", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Markets listed")
	return &types.Page[types.Market]{Items: markets, Total: total, Page: filter.Page, Size: filter.Size}, nil
}

func (s *ServiceImpl) GetMarket(ctx context.Context, id uuid.UUID) (*types.Market, error) {
	return s.marketRepository.GetMarket(ctx, id)
}

func (s *ServiceImpl) CreateMarket(ctx context.Context, req types.CreateMarketRequest) (*types.Market, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	created, err := s.marketRepository.CreateMarket(ctx, types.Market{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Address:     req.Address,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Phone:       req.Phone,
		ImageURL:    req.ImageURL,
		Region:      req.Region,
		IsActive:    active,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create market", slog.Any("error", err))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Market created", slog.String("market_id", created.ID.String()))
	return created, nil
}

func (s *ServiceImpl) UpdateMarket(ctx context.Context, id uuid.UUID, req types.UpdateMarketRequest) (*types.Market, error) {
	return s.marketRepository.UpdateMarket(ctx, id, MarketPatch{
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Lat:         req.Lat,
		Lng:         req.Lng,
		Phone:       req.Phone,
		ImageURL:    req.ImageURL,
		Region:      req.Region,
		IsActive:    req.IsActive,
	})
}

func (s *ServiceImpl) ListProducts(ctx context.Context, filter types.ProductFilter) (*types.Page[types.Product], error) {
	ctx, span := otel.Tracer("MarketService").Start(ctx, "ListProducts", trace.WithAttributes(
		attribute.String("sort", filter.Sort),
	))
	defer span.End()

	var err error
	if filter.Page, filter.Size, err = pageBounds(filter.Page, filter.Size); err != nil {
		span.RecordError(err)
		return nil, err
	}
	filter.Query = strings.TrimSpace(filter.Query)
	if filter.Sort == "" {
		filter.Sort = SortRecent
	}
	if _, ok := productOrder[filter.Sort]; !ok {
		return nil, fmt.Errorf("%w: sort must be recent, price_asc, price_desc or name", types.ErrInvalidInput)
	}
	if filter.Status != "" && !validStatus(filter.Status) {
		return nil, fmt.Errorf("%w: unknown product status %q", types.ErrInvalidInput, filter.Status)
	}
	if filter.PriceMin != nil && filter.PriceMax != nil && *filter.PriceMin > *filter.PriceMax {
		return nil, fmt.Errorf("%w: price_min is greater than price_max", types.ErrInvalidInput)
	}

	products, total, err := s.marketRepository.ListProducts(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list products", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "Products listed")
	return &types.Page[types.Product]{Items: products, Total: total, Page: filter.Page, Size: filter.Size}, nil
}

func (s *ServiceImpl) GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	return s.marketRepository.GetProduct(ctx, id)
}

// CreateProduct requires the owning market to exist. Status defaults to ACTIVE.
func (s *ServiceImpl) CreateProduct(ctx context.Context, req types.CreateProductRequest) (*types.Product, error) {
	ctx, span := otel.Tracer("MarketService").Start(ctx, "CreateProduct", trace.WithAttributes(
		attribute.String("product.market_id", req.MarketID),
	))
	defer span.End()

	marketID, err := uuid.Parse(req.MarketID)
	if err != nil {
		return nil, fmt.Errorf("%w: market_id must be a valid UUID", types.ErrInvalidInput)
	}
	if _, err = s.marketRepository.GetMarket(ctx, marketID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = types.ProductActive
	}
	images := req.ImageURLs
	if images == nil {
		images = []string{}
	}

	created, err := s.marketRepository.CreateProduct(ctx, types.Product{
		MarketID:    marketID,
		Name:        strings.TrimSpace(req.Name),
		Summary:     req.Summary,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Unit:        req.Unit,
		ImageURLs:   images,
		Status:      status,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create product", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Product created",
		slog.String("product_id", created.ID.String()),
		slog.String("market_id", marketID.String()))
	span.SetStatus(codes.Ok, "Product created")
	return created, nil
}

func (s *ServiceImpl) UpdateProduct(ctx context.Context, id uuid.UUID, req types.UpdateProductRequest) (*types.Product, error) {
	var status *string
	if req.Status != nil {
		v := string(*req.Status)
		status = &v
	}
	return s.marketRepository.UpdateProduct(ctx, id, ProductPatch{
		Name:        req.Name,
		Summary:     req.Summary,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		Unit:        req.Unit,
		ImageURLs:   req.ImageURLs,
		Status:      status,
	})
}

func (s *ServiceImpl) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.marketRepository.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Product deleted", slog.String("product_id", id.String()))
	return nil
}

func validStatus(s types.ProductStatus) bool {
	switch s {
	case types.ProductActive, types.ProductInactive, types.ProductOutOfStock:
		return true
	}
	return false
}

func (s *ServiceImpl) CreateReview(ctx context.Context, productID uuid.UUID, req types.CreateReviewRequest) (*types.ProductReview, error) {
	ctx, span := otel.Tracer("MarketService").Start(ctx, "CreateReview", trace.WithAttributes(
		attribute.String("product.id", productID.String()),
	))
	defer span.End()

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user_id must be a uuid", types.ErrInvalidInput)
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", types.ErrInvalidInput)
	}
	if _, err = s.marketRepository.GetProduct(ctx, productID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	created, err := s.marketRepository.CreateReview(ctx, types.ProductReview{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create review", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}
	span.SetStatus(codes.Ok, "Review created")
	return created, nil
}

func (s *ServiceImpl) ListReviews(ctx context.Context, productID uuid.UUID) (*types.ProductReviews, error) {
	ctx, span := otel.Tracer("MarketService").Start(ctx, "ListReviews", trace.WithAttributes(
		attribute.String("product.id", productID.String()),
	))
	defer span.End()

	if _, err := s.marketRepository.GetProduct(ctx, productID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	reviews, err := s.marketRepository.ListReviews(ctx, productID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list reviews", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	res := &types.ProductReviews{Items: reviews, Count: len(reviews)}
	if len(reviews) > 0 {
		sum := 0
		for _, rv := range reviews {
			sum += rv.Rating
		}
		res.AverageRating = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	span.SetStatus(codes.Ok, "Reviews listed")
	return res, nil
}
