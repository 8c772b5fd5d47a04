package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/sosohaeng-api/app/db"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	ListMarkets(ctx context.Context, filter types.MarketFilter) ([]types.Market, int, error)
	GetMarket(ctx context.Context, id uuid.UUID) (*types.Market, error)
	CreateMarket(ctx context.Context, m types.Market) (*types.Market, error)
	UpdateMarket(ctx context.Context, id uuid.UUID, p MarketPatch) (*types.Market, error)

	ListProducts(ctx context.Context, filter types.ProductFilter) ([]types.Product, int, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error)
	GetProducts(ctx context.Context, ids []uuid.UUID) ([]types.Product, error)
	CreateProduct(ctx context.Context, p types.Product) (*types.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, p ProductPatch) (*types.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	CreateReview(ctx context.Context, review types.ProductReview) (*types.ProductReview, error)
	ListReviews(ctx context.Context, productID uuid.UUID) ([]types.ProductReview, error)
}

// MarketPatch holds the market columns to change; nil fields are kept.
type MarketPatch struct {
	Name        *string
	Description *string
	Address     *string
	Lat         *float64
	Lng         *float64
	Phone       *string
	ImageURL    *string
	Region      *string
	IsActive    *bool
}

// ProductPatch holds the product columns to change; nil fields are kept.
type ProductPatch struct {
	Name        *string
	Summary     *string
	Description *string
	Price       *int
	Stock       *int
	Unit        *string
	ImageURLs   []string
	Status      *string
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

const marketColumns = `
        id, name, description, address, lat, lng, phone, image_url, region, is_active,
        created_at, updated_at`

const productColumns = `
        id, market_id, name, summary, description, price, stock, unit, image_urls, status,
        created_at, updated_at`

const marketWhere = `
        WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR address ILIKE '%' || $1 || '%')
          AND ($2 = '' OR region = $2)
          AND ($3::boolean IS NULL OR is_active = $3)`

const productWhere = `
        WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR summary ILIKE '%' || $1 || '%')
          AND ($2::uuid IS NULL OR market_id = $2)
          AND ($3 = '' OR status = $3)
          AND ($4::integer IS NULL OR price >= $4)
          AND ($5::integer IS NULL OR price <= $5)`

var marketOrder = map[string]string{
	OrderName:   "name, id",
	OrderRecent: "created_at DESC, id",
}

var productOrder = map[string]string{
	SortRecent:    "created_at DESC, id",
	SortPriceAsc:  "price, id",
	SortPriceDesc: "price DESC, id",
	SortName:      "name, id",
}

func scanMarket(row pgx.Row) (types.Market, error) {
	var m types.Market
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Address, &m.Lat, &m.Lng, &m.Phone, &m.ImageURL, &m.Region, &m.IsActive,
		&m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func scanProduct(row pgx.Row) (types.Product, error) {
	var p types.Product
	var status string
	err := row.Scan(
		&p.ID, &p.MarketID, &p.Name, &p.Summary, &p.Description, &p.Price, &p.Stock, &p.Unit, &p.ImageURLs, &status,
		&p.CreatedAt, &p.UpdatedAt,
	)
	p.Status = types.ProductStatus(status)
	if p.ImageURLs == nil {
		p.ImageURLs = []string{}
	}
	return p, err
}

func collectProducts(rows pgx.Rows) ([]types.Product, error) {
	defer rows.Close()
	products := make([]types.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product rows: %w", err)
	}
	return products, nil
}

func (r *RepositoryImpl) ListMarkets(ctx context.Context, f types.MarketFilter) ([]types.Market, int, error) {
	ctx, span := otel.Tracer("MarketRepository").Start(ctx, "ListMarkets", trace.WithAttributes(
		attribute.String("query", f.Query),
		attribute.String("region", f.Region),
		attribute.Int("page", f.Page),
	))
	defer span.End()

	order, ok := marketOrder[f.OrderBy]
	if !ok {
		order = marketOrder[OrderName]
	}

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM markets`+marketWhere, f.Query, f.Region, f.IsActive).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count markets: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, `SELECT `+marketColumns+` FROM markets`+marketWhere+`
        ORDER BY `+order+`
        LIMIT $4 OFFSET $5`, f.Query, f.Region, f.IsActive, f.Size, (f.Page-1)*f.Size)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to list markets: %w", err)
	}
	defer rows.Close()

	markets := make([]types.Market, 0)
	for rows.Next() {
		m, err := scanMarket(rows)
		if err != nil {
			span.RecordError(err)
			return nil, 0, fmt.Errorf("failed to scan market row: %w", err)
		}
		markets = append(markets, m)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("error iterating market rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Markets listed")
	return markets, total, nil
}

func (r *RepositoryImpl) GetMarket(ctx context.Context, id uuid.UUID) (*types.Market, error) {
	m, err := scanMarket(r.pgpool.QueryRow(ctx, `SELECT `+marketColumns+` FROM markets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: market %s", types.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get market: %w", err)
	}
	return &m, nil
}

func (r *RepositoryImpl) CreateMarket(ctx context.Context, m types.Market) (*types.Market, error) {
	ctx, span := otel.Tracer("MarketRepository").Start(ctx, "CreateMarket", trace.WithAttributes(
		attribute.String("market.name", m.Name),
	))
	defer span.End()

	created, err := scanMarket(r.pgpool.QueryRow(ctx, `
        INSERT INTO markets (name, description, address, lat, lng, phone, image_url, region, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+marketColumns,
		m.Name, m.Description, m.Address, m.Lat, m.Lng, m.Phone, m.ImageURL, m.Region, m.IsActive,
	))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to create market: %w", err)
	}

	span.SetStatus(codes.Ok, "Market created")
	return &created, nil
}

func (r *RepositoryImpl) UpdateMarket(ctx context.Context, id uuid.UUID, p MarketPatch) (*types.Market, error) {
	ctx, span := otel.Tracer("MarketRepository").Start(ctx, "UpdateMarket", trace.WithAttributes(
		attribute.String("market.id", id.String()),
	))
	defer span.End()

	updated, err := scanMarket(r.pgpool.QueryRow(ctx, `
        UPDATE markets SET
            name = COALESCE($2, name),
            description = COALESCE($3, description),
            address = COALESCE($4, address),
            lat = COALESCE($5, lat),
            lng = COALESCE($6, lng),
            phone = COALESCE($7, phone),
            image_url = COALESCE($8, image_url),
            region = COALESCE($9, region),
            is_active = COALESCE($10, is_active),
            updated_at = NOW()
        WHERE id = $1
        RETURNING `+marketColumns,
		id, p.Name, p.Description, p.Address, p.Lat, p.Lng, p.Phone, p.ImageURL, p.Region, p.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: market %s", types.ErrNotFound, id)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update market: %w", err)
	}

	span.SetStatus(codes.Ok, "Market updated")
	return &updated, nil
}

func (r *RepositoryImpl) ListProducts(ctx context.Context, f types.ProductFilter) ([]types.Product, int, error) {
	ctx, span := otel.Tracer("MarketRepository").Start(ctx, "ListProducts", trace.WithAttributes(
		attribute.String("query", f.Query),
		attribute.String("sort", f.Sort),
		attribute.Int("page", f.Page),
	))
	defer span.End()

	order, ok := productOrder[f.Sort]
	if !ok {
		order = productOrder[SortRecent]
	}
	status := string(f.Status)

	var total int
	if err := r.pgpool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+productWhere,
		f.Query, f.MarketID, status, f.PriceMin, f.PriceMax).Scan(&total); err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, `SELECT `+productColumns+` FROM products`+productWhere+`
        ORDER BY `+order+`
        LIMIT $6 OFFSET $7`, f.Query, f.MarketID, status, f.PriceMin, f.PriceMax, f.Size, (f.Page-1)*f.Size)
	if err != nil {
		span.RecordError(err)
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	products, err := collectProducts(rows)
	if err != nil {
		span.RecordError(err)
		return nil, 0, err
	}

	span.SetStatus(codes.Ok, "Products listed")
	return products, total, nil
}

func (r *RepositoryImpl) GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	p, err := scanProduct(r.pgpool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", types.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *RepositoryImpl) GetProducts(ctx context.Context, ids []uuid.UUID) ([]types.Product, error) {
	if len(ids) == 0 {
		return []types.Product{}, nil
	}
	rows, err := r.pgpool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by ids: %w", err)
	}
	return collectProducts(rows)
}

func (r *RepositoryImpl) CreateProduct(ctx context.Context, p types.Product) (*types.Product, error) {
	ctx, span := otel.Tracer("MarketRepository").Start(ctx, "CreateProduct", trace.WithAttributes(
		attribute.String("product.market_id", p.MarketID.String()),
	))
	defer span.End()

	created, err := scanProduct(r.pgpool.QueryRow(ctx, `
        INSERT INTO products (market_id, name, summary, description, price, stock, unit, image_urls, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+productColumns,
		p.MarketID, p.Name, p.Summary, p.Description, p.Price, p.Stock, p.Unit, p.ImageURLs, string(p.Status),
	))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	span.SetStatus(codes.Ok, "Product created")
	return &created, nil
}

func (r *RepositoryImpl) UpdateProduct(ctx context.Context, id uuid.UUID, p ProductPatch) (*types.Product, error) {
	ctx, span := otel.Tracer("MarketRepository").Start(ctx, "UpdateProduct", trace.WithAttributes(
		attribute.String("product.id", id.String()),
	))
	defer span.End()

	updated, err := scanProduct(r.pgpool.QueryRow(ctx, `
        UPDATE products SET
            name = COALESCE($2, name),
            summary = COALESCE($3, summary),
            description = COALESCE($4, description),
            price = COALESCE($5, price),
            stock = COALESCE($6, stock),
            unit = COALESCE($7, unit),
            image_urls = COALESCE($8, image_urls),
            status = COALESCE($9, status),
            updated_at = NOW()
        WHERE id = $1
        RETURNING `+productColumns,
		id, p.Name, p.Summary, p.Description, p.Price, p.Stock, p.Unit, p.ImageURLs, p.Status,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: product %s", types.ErrNotFound, id)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	span.SetStatus(codes.Ok, "Product updated")
	return &updated, nil
}

func (r *RepositoryImpl) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pgpool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", types.ErrNotFound, id)
	}
	return nil
}

const (
	reviewColumns = `id, product_id, user_id, rating, comment, created_at`

	foreignKeyViolation = "23503"
)

func (r *RepositoryImpl) CreateReview(ctx context.Context, review types.ProductReview) (*types.ProductReview, error) {
	ctx, span := otel.Tracer("MarketRepository").Start(ctx, "CreateReview", trace.WithAttributes(
		attribute.String("product.id", review.ProductID.String()),
		attribute.Int("review.rating", review.Rating),
	))
	defer span.End()

	var created types.ProductReview
	err := r.pgpool.QueryRow(ctx, `
        INSERT INTO product_reviews (product_id, user_id, rating, comment)
        VALUES ($1, $2, $3, $4)
        RETURNING `+reviewColumns,
		review.ProductID, review.UserID, review.Rating, review.Comment,
	).Scan(&created.ID, &created.ProductID, &created.UserID, &created.Rating, &created.Comment, &created.CreatedAt)
	if err != nil {
		span.RecordError(err)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, fmt.Errorf("%w: product %s", types.ErrNotFound, review.ProductID)
		}
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	span.SetStatus(codes.Ok, "Review created")
	return &created, nil
}

func (r *RepositoryImpl) ListReviews(ctx context.Context, productID uuid.UUID) ([]types.ProductReview, error) {
	ctx, span := otel.Tracer("MarketRepository").Start(ctx, "ListReviews", trace.WithAttributes(
		attribute.String("product.id", productID.String()),
	))
	defer span.End()

	rows, err := r.pgpool.Query(ctx, `SELECT `+reviewColumns+` FROM product_reviews
        WHERE product_id = $1
        ORDER BY created_at DESC, id`, productID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []types.ProductReview{}
	for rows.Next() {
		var rv types.ProductReview
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	span.SetAttributes(attribute.Int("review.count", len(reviews)))
	span.SetStatus(codes.Ok, "Reviews listed")
	return reviews, nil
}
