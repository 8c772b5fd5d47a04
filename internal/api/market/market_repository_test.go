package market

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

var (
	marketColumnNames = []string{
		"id", "name", "description", "address", "lat", "lng", "phone", "image_url", "region", "is_active",
		"created_at", "updated_at",
	}
	productColumnNames = []string{
		"id", "market_id", "name", "summary", "description", "price", "stock", "unit", "image_urls", "status",
		"created_at", "updated_at",
	}
)

func productRow(rows *pgxmock.Rows, p types.Product) *pgxmock.Rows {
	return rows.AddRow(
		p.ID, p.MarketID, p.Name, p.Summary, p.Description, p.Price, p.Stock, p.Unit, p.ImageURLs, string(p.Status),
		p.CreatedAt, p.UpdatedAt,
	)
}

func setupRepositoryTest(t *testing.T) (pgxmock.PgxPoolIface, *RepositoryImpl) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool, NewRepository(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRepositoryListMarkets(t *testing.T) {
	pool, repo := setupRepositoryTest(t)
	now := time.Now()
	active := true
	id := uuid.New()

	pool.ExpectQuery("SELECT COUNT\\(\\*\\) FROM markets").
		WithArgs("시장", "전북", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	pool.ExpectQuery("ORDER BY created_at DESC, id").
		WithArgs("시장", "전북", pgxmock.AnyArg(), 10, 10).
		WillReturnRows(pgxmock.NewRows(marketColumnNames).AddRow(
			id, "남부시장", "", "전주시 완산구", nil, nil, nil, nil, nil, true, now, now,
		))

	markets, total, err := repo.ListMarkets(context.Background(), types.MarketFilter{
		Query: "시장", Region: "전북", IsActive: &active, Page: 2, Size: 10, OrderBy: OrderRecent,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, markets, 1)
	assert.Equal(t, "남부시장", markets[0].Name)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepositoryGetMarketNotFound(t *testing.T) {
	pool, repo := setupRepositoryTest(t)
	id := uuid.New()
	pool.ExpectQuery("FROM markets WHERE id = \\$1").WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetMarket(context.Background(), id)
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestRepositoryListProducts(t *testing.T) {
	t.Run("price sort with bounds", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		now := time.Now()
		p := types.Product{ID: uuid.New(), MarketID: uuid.New(), Name: "한과", Price: 12000, ImageURLs: []string{}, Status: types.ProductActive, CreatedAt: now, UpdatedAt: now}
		lo, hi := 1000, 20000

		pool.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
			WithArgs("", pgxmock.AnyArg(), "ACTIVE", &lo, &hi).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
		pool.ExpectQuery("ORDER BY price DESC, id").
			WithArgs("", pgxmock.AnyArg(), "ACTIVE", &lo, &hi, 20, 0).
			WillReturnRows(productRow(pgxmock.NewRows(productColumnNames), p))

		products, total, err := repo.ListProducts(context.Background(), types.ProductFilter{
			Status: types.ProductActive, PriceMin: &lo, PriceMax: &hi, Sort: SortPriceDesc, Page: 1, Size: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, products, 1)
		assert.Equal(t, types.ProductActive, products[0].Status)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestRepositoryCreateProduct(t *testing.T) {
	pool, repo := setupRepositoryTest(t)
	in := types.Product{MarketID: uuid.New(), Name: "한과", Price: 12000, Stock: 3, ImageURLs: []string{}, Status: types.ProductActive}
	out := in
	out.ID = uuid.New()

	pool.ExpectQuery("INSERT INTO products").
		WithArgs(in.MarketID, in.Name, in.Summary, in.Description, in.Price, in.Stock, in.Unit, in.ImageURLs, "ACTIVE").
		WillReturnRows(productRow(pgxmock.NewRows(productColumnNames), out))

	got, err := repo.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, out.ID, got.ID)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestRepositoryDeleteProduct(t *testing.T) {
	pool, repo := setupRepositoryTest(t)
	id := uuid.New()
	pool.ExpectExec("DELETE FROM products").WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.DeleteProduct(context.Background(), id), types.ErrNotFound)
}

var reviewColumnNames = []string{"id", "product_id", "user_id", "rating", "comment", "created_at"}

func TestRepositoryCreateReview(t *testing.T) {
	review := types.ProductReview{ProductID: uuid.New(), UserID: uuid.New(), Rating: 5, Comment: "좋아요"}

	t.Run("returns the stored review", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		id := uuid.New()
		now := time.Now()
		pool.ExpectQuery("INSERT INTO product_reviews").
			WithArgs(review.ProductID, review.UserID, 5, "좋아요").
			WillReturnRows(pgxmock.NewRows(reviewColumnNames).AddRow(id, review.ProductID, review.UserID, 5, "좋아요", now))

		got, err := repo.CreateReview(context.Background(), review)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, now, got.CreatedAt)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("deleted product is not found", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		pool.ExpectQuery("INSERT INTO product_reviews").
			WithArgs(review.ProductID, review.UserID, 5, "좋아요").
			WillReturnError(&pgconn.PgError{Code: "23503"})

		_, err := repo.CreateReview(context.Background(), review)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("other failures are wrapped", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		pool.ExpectQuery("INSERT INTO product_reviews").
			WithArgs(review.ProductID, review.UserID, 5, "좋아요").
			WillReturnError(errors.New("conn reset"))

		_, err := repo.CreateReview(context.Background(), review)
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrNotFound)
		assert.Contains(t, err.Error(), "failed to create review")
	})
}

func TestRepositoryListReviews(t *testing.T) {
	pool, repo := setupRepositoryTest(t)
	productID := uuid.New()
	now := time.Now()
	pool.ExpectQuery("FROM product_reviews").
		WithArgs(productID).
		WillReturnRows(pgxmock.NewRows(reviewColumnNames).
			AddRow(uuid.New(), productID, uuid.New(), 4, "", now).
			AddRow(uuid.New(), productID, uuid.New(), 2, "별로", now.Add(-time.Hour)))

	reviews, err := repo.ListReviews(context.Background(), productID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, 4, reviews[0].Rating)
	assert.Equal(t, "별로", reviews[1].Comment)
	assert.NoError(t, pool.ExpectationsWereMet())
}
