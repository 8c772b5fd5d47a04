package favorite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

type MockFavoriteRepository struct {
	mock.Mock
}

func (m *MockFavoriteRepository) Toggle(ctx context.Context, userID uuid.UUID, itemType types.FavoriteItemType, itemID string) (bool, error) {
	args := m.Called(ctx, userID, itemType, itemID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]types.Favorite, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Favorite), args.Error(1)
}

type MockLookups struct {
	mock.Mock
}

func (m *MockLookups) Get(ctx context.Context, id uuid.UUID) (*types.Festival, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Festival), args.Error(1)
}

func (m *MockLookups) GetMany(ctx context.Context, ids []uuid.UUID) ([]types.Festival, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Festival), args.Error(1)
}

func (m *MockLookups) GetProduct(ctx context.Context, id uuid.UUID) (*types.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Product), args.Error(1)
}

func (m *MockLookups) GetProducts(ctx context.Context, ids []uuid.UUID) ([]types.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Product), args.Error(1)
}

func (m *MockLookups) GetByContentID(ctx context.Context, contentID string) (*types.PointOfInterest, error) {
	args := m.Called(ctx, contentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PointOfInterest), args.Error(1)
}

func (m *MockLookups) GetByContentIDs(ctx context.Context, contentIDs []string) ([]types.PointOfInterest, error) {
	args := m.Called(ctx, contentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PointOfInterest), args.Error(1)
}

func setupFavoriteServiceTest() (*ServiceImpl, *MockFavoriteRepository, *MockLookups) {
	repo := new(MockFavoriteRepository)
	lookups := new(MockLookups)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServiceImpl(repo, lookups, lookups, lookups, logger), repo, lookups
}

func TestRepositoryToggle(t *testing.T) {
	userID := uuid.New()

	t.Run("removes an existing favorite", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()
		repo := NewRepository(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))

		pool.ExpectExec("DELETE FROM user_favorites").
			WithArgs(userID, "SPOT", "126508").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		favorited, err := repo.Toggle(context.Background(), userID, types.FavoriteSpot, "126508")
		require.NoError(t, err)
		assert.False(t, favorited)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("adds a missing favorite", func(t *testing.T) {
		pool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer pool.Close()
		repo := NewRepository(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))

		pool.ExpectExec("DELETE FROM user_favorites").
			WithArgs(userID, "SPOT", "126508").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		pool.ExpectExec("INSERT INTO user_favorites").
			WithArgs(userID, "SPOT", "126508").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		favorited, err := repo.Toggle(context.Background(), userID, types.FavoriteSpot, "126508")
		require.NoError(t, err)
		assert.True(t, favorited)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestRepositoryListByUser(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()
	repo := NewRepository(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
	userID := uuid.New()

	pool.ExpectQuery("FROM user_favorites").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "item_type", "item_id", "created_at"}).
			AddRow(uuid.New(), userID, "PRODUCT", uuid.NewString(), time.Now()))

	favorites, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, types.FavoriteProduct, favorites[0].ItemType)
}

func TestServiceToggle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("missing spot is not toggled", func(t *testing.T) {
		service, repo, lookups := setupFavoriteServiceTest()
		lookups.On("GetByContentID", mock.Anything, "999").Return(nil, types.ErrPOINotFound).Once()

		_, err := service.Toggle(ctx, userID, types.ToggleFavoriteRequest{ItemType: types.FavoriteSpot, ItemID: "999"})
		assert.ErrorIs(t, err, types.ErrPOINotFound)
		repo.AssertNotCalled(t, "Toggle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("festival id must be a uuid", func(t *testing.T) {
		service, _, _ := setupFavoriteServiceTest()
		_, err := service.Toggle(ctx, userID, types.ToggleFavoriteRequest{ItemType: types.FavoriteFestival, ItemID: "42"})
		assert.ErrorIs(t, err, types.ErrInvalidInput)
	})

	t.Run("existing product is toggled", func(t *testing.T) {
		service, repo, lookups := setupFavoriteServiceTest()
		productID := uuid.New()
		lookups.On("GetProduct", mock.Anything, productID).Return(&types.Product{ID: productID}, nil).Once()
		repo.On("Toggle", mock.Anything, userID, types.FavoriteProduct, productID.String()).Return(true, nil).Once()

		resp, err := service.Toggle(ctx, userID, types.ToggleFavoriteRequest{ItemType: types.FavoriteProduct, ItemID: productID.String()})
		require.NoError(t, err)
		assert.True(t, resp.Favorited)
		repo.AssertExpectations(t)
	})
}

func TestServiceList(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("groups by type", func(t *testing.T) {
		service, repo, lookups := setupFavoriteServiceTest()
		festivalID := uuid.New()
		repo.On("ListByUser", mock.Anything, userID).Return([]types.Favorite{
			{ItemType: types.FavoriteFestival, ItemID: festivalID.String()},
			{ItemType: types.FavoriteSpot, ItemID: "126508"},
			{ItemType: types.FavoriteSpot, ItemID: "126509"},
		}, nil).Once()
		lookups.On("GetMany", mock.Anything, []uuid.UUID{festivalID}).Return([]types.Festival{{ID: festivalID}}, nil).Once()
		lookups.On("GetByContentIDs", mock.Anything, []string{"126508", "126509"}).Return([]types.PointOfInterest{{ContentID: "126508"}}, nil).Once()

		resp, err := service.List(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, resp.Festivals, 1)
		assert.NotNil(t, resp.Products)
		assert.Empty(t, resp.Products)
		assert.Len(t, resp.Spots, 1)
		lookups.AssertNotCalled(t, "GetProducts", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure", func(t *testing.T) {
		service, repo, lookups := setupFavoriteServiceTest()
		repo.On("ListByUser", mock.Anything, userID).Return([]types.Favorite{
			{ItemType: types.FavoriteSpot, ItemID: "126508"},
		}, nil).Once()
		lookups.On("GetByContentIDs", mock.Anything, []string{"126508"}).Return(nil, errors.New("db down")).Once()

		_, err := service.List(ctx, userID)
		assert.Error(t, err)
	})
}

func newFavoriteRouter(svc Service) http.Handler {
	h := NewHandlerImpl(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Post("/users/{userID}/favorites", h.ToggleFavorite)
	r.Get("/users/{userID}/favorites", h.ListFavorites)
	return r
}

func TestHandlerFavorites(t *testing.T) {
	userID := uuid.New()

	t.Run("toggle missing item is 404", func(t *testing.T) {
		service, _, lookups := setupFavoriteServiceTest()
		lookups.On("GetByContentID", mock.Anything, "999").Return(nil, types.ErrPOINotFound).Once()

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/"+userID.String()+"/favorites", bytes.NewBufferString(`{"item_type":"SPOT","item_id":"999"}`))
		newFavoriteRouter(service).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("unknown item type is 400", func(t *testing.T) {
		service, _, _ := setupFavoriteServiceTest()
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users/"+userID.String()+"/favorites", bytes.NewBufferString(`{"item_type":"HOTEL","item_id":"1"}`))
		newFavoriteRouter(service).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("list renders empty groups", func(t *testing.T) {
		service, repo, _ := setupFavoriteServiceTest()
		repo.On("ListByUser", mock.Anything, userID).Return([]types.Favorite{}, nil).Once()

		rr := httptest.NewRecorder()
		newFavoriteRouter(service).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users/"+userID.String()+"/favorites", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var body map[string][]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.NotNil(t, body["festivals"])
		assert.Empty(t, body["festivals"])
		assert.NotNil(t, body["spots"])
	})

	t.Run("bad user id", func(t *testing.T) {
		service, _, _ := setupFavoriteServiceTest()
		rr := httptest.NewRecorder()
		newFavoriteRouter(service).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/users/abc/favorites", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
