package poi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

var poiColumnNames = []string{
	"content_id", "content_type_id", "title", "addr1", "addr2",
	"cat1", "cat2", "cat3", "tel", "overview",
	"mapx", "mapy", "first_image", "event_start_date", "event_end_date",
}

func poiRow(rows *pgxmock.Rows, p types.PointOfInterest) *pgxmock.Rows {
	return rows.AddRow(
		p.ContentID, p.ContentTypeID, p.Title, p.Addr1, p.Addr2,
		p.Cat1, p.Cat2, p.Cat3, p.Tel, p.Overview,
		p.MapX, p.MapY, p.FirstImage, p.EventStartDate, p.EventEndDate,
	)
}

func setupRepositoryTest(t *testing.T) (pgxmock.PgxPoolIface, *RepositoryImpl) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool, NewRepository(pool, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRepositoryGetByContentID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		spot := types.PointOfInterest{
			ContentID: "126508", ContentTypeID: "12", Title: "담양 죽녹원", Addr1: "전라남도 담양군 담양읍",
			Cat1: "A01", MapX: ptr(126.985), MapY: ptr(35.327), FirstImage: ptr("http://img/1.jpg"),
			EventStartDate: (*time.Time)(nil), EventEndDate: (*time.Time)(nil),
		}
		pool.ExpectQuery("FROM tour_data WHERE content_id = \\$1").
			WithArgs("126508").
			WillReturnRows(poiRow(pgxmock.NewRows(poiColumnNames), spot))

		got, err := repo.GetByContentID(context.Background(), "126508")
		require.NoError(t, err)
		assert.Equal(t, "담양 죽녹원", got.Title)
		require.NotNil(t, got.MapY)
		assert.InDelta(t, 35.327, *got.MapY, 1e-9)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("not found maps to ErrPOINotFound", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		pool.ExpectQuery("FROM tour_data WHERE content_id").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByContentID(context.Background(), "missing")
		assert.ErrorIs(t, err, types.ErrPOINotFound)
	})

	t.Run("database error is wrapped", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		pool.ExpectQuery("FROM tour_data WHERE content_id").
			WithArgs("1").
			WillReturnError(errors.New("connection reset"))

		_, err := repo.GetByContentID(context.Background(), "1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, types.ErrPOINotFound)
		assert.Contains(t, err.Error(), "failed to get point of interest")
	})
}

func TestRepositorySearchByKeywords(t *testing.T) {
	t.Run("passes exclusion and keyword patterns", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		spot := types.PointOfInterest{
			ContentID: "1", Title: "순천만 습지", Addr1: "전라남도 순천시",
			MapX: ptr(127.5), MapY: ptr(34.9), FirstImage: (*string)(nil),
			EventStartDate: (*time.Time)(nil), EventEndDate: (*time.Time)(nil),
		}
		pool.ExpectQuery("ILIKE ANY\\(\\$2\\)").
			WithArgs([]string{"%서울%"}, []string{"%습지%", "%자연%"}, 5).
			WillReturnRows(poiRow(pgxmock.NewRows(poiColumnNames), spot))

		got, err := repo.SearchByKeywords(context.Background(), []string{"습지", "자연"}, []string{"서울"}, 5)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].ContentID)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("zero rows is an empty result", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		pool.ExpectQuery("FROM tour_data WHERE").
			WithArgs([]string{}, []string{"%없는곳%"}, 5).
			WillReturnRows(pgxmock.NewRows(poiColumnNames))

		got, err := repo.SearchByKeywords(context.Background(), []string{"없는곳"}, nil, 5)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("no keywords skips the query", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)

		got, err := repo.SearchByKeywords(context.Background(), nil, []string{"서울"}, 5)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("sample orders randomly", func(t *testing.T) {
		pool, repo := setupRepositoryTest(t)
		pool.ExpectQuery("ORDER BY random\\(\\)").
			WithArgs([]string{}, []string{"%휴양%"}, 5).
			WillReturnRows(pgxmock.NewRows(poiColumnNames))

		_, err := repo.SampleByKeywords(context.Background(), []string{"휴양"}, nil, 5)
		require.NoError(t, err)
		assert.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestRepositoryFindInBounds(t *testing.T) {
	pool, repo := setupRepositoryTest(t)
	box := NewBoundingBox(35.0, 127.0, 10)
	pool.ExpectQuery("mapy BETWEEN \\$1 AND \\$2").
		WithArgs(box.MinLat, box.MaxLat, box.MinLon, box.MaxLon, "target").
		WillReturnRows(pgxmock.NewRows(poiColumnNames))

	got, err := repo.FindInBounds(context.Background(), box, "target")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, pool.ExpectationsWereMet())
}
