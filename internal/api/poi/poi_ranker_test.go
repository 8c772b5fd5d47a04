package poi

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/sosohaeng-api/internal/api"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

func ptr[T any](v T) *T { return &v }

func spotAt(id string, lat, lon float64) types.PointOfInterest {
	return types.PointOfInterest{ContentID: id, Title: id, MapY: ptr(lat), MapX: ptr(lon)}
}

func TestHaversine(t *testing.T) {
	t.Run("zero for identical points", func(t *testing.T) {
		assert.Equal(t, 0.0, Haversine(37.0, 127.0, 37.0, 127.0))
	})

	t.Run("symmetric", func(t *testing.T) {
		r := rand.New(rand.NewSource(7))
		for i := 0; i < 200; i++ {
			lat1, lon1 := r.Float64()*180-90, r.Float64()*360-180
			lat2, lon2 := r.Float64()*180-90, r.Float64()*360-180
			assert.InDelta(t, Haversine(lat1, lon1, lat2, lon2), Haversine(lat2, lon2, lat1, lon1), 1e-9)
		}
	})

	t.Run("known distance", func(t *testing.T) {
		// Seoul City Hall to Busan City Hall is about 325 km.
		d := Haversine(37.5663, 126.9779, 35.1798, 129.0750)
		assert.InDelta(t, 325, d, 5)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		assert.InDelta(t, 111.19, Haversine(0, 0, 1, 0), 0.01)
	})
}

func TestRank(t *testing.T) {
	origin := types.GeoPoint{Lat: 37.0, Lon: 127.0}

	t.Run("filters by radius after ranking", func(t *testing.T) {
		candidates := []types.PointOfInterest{
			spotAt("far", 37.5, 127.9),
			spotAt("here", 37.0, 127.0),
		}

		all := Rank(origin, candidates, nil)
		require.Len(t, all, 2)
		assert.Equal(t, "here", all[0].POI.ContentID)
		assert.InDelta(t, 0.0, all[0].DistanceKm, 1e-9)
		assert.Equal(t, "far", all[1].POI.ContentID)
		assert.Greater(t, all[1].DistanceKm, 85.0)
		assert.Less(t, all[1].DistanceKm, 100.0)

		within := Rank(origin, candidates, ptr(50.0))
		require.Len(t, within, 1)
		assert.Equal(t, "here", within[0].POI.ContentID)
	})

	t.Run("excludes candidates without coordinates", func(t *testing.T) {
		candidates := []types.PointOfInterest{
			{ContentID: "no-lon", MapY: ptr(37.0)},
			{ContentID: "no-lat", MapX: ptr(127.0)},
			{ContentID: "none"},
			spotAt("ok", 37.01, 127.01),
		}
		ranked := Rank(origin, candidates, nil)
		require.Len(t, ranked, 1)
		assert.Equal(t, "ok", ranked[0].POI.ContentID)
	})

	t.Run("ties keep input order", func(t *testing.T) {
		candidates := []types.PointOfInterest{
			spotAt("a", 37.1, 127.0),
			spotAt("b", 37.1, 127.0),
			spotAt("c", 37.1, 127.0),
		}
		ranked := Rank(origin, candidates, nil)
		require.Len(t, ranked, 3)
		assert.Equal(t, []string{"a", "b", "c"}, []string{ranked[0].POI.ContentID, ranked[1].POI.ContentID, ranked[2].POI.ContentID})
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Rank(origin, nil, ptr(10.0)))
	})

	t.Run("sorted and bounded for random inputs", func(t *testing.T) {
		r := rand.New(rand.NewSource(42))
		for round := 0; round < 50; round++ {
			candidates := make([]types.PointOfInterest, 0, 40)
			for i := 0; i < 40; i++ {
				if r.Intn(5) == 0 {
					candidates = append(candidates, types.PointOfInterest{ContentID: "missing"})
					continue
				}
				candidates = append(candidates, spotAt("x", 33+r.Float64()*6, 125+r.Float64()*5))
			}
			radius := r.Float64() * 300

			ranked := Rank(origin, candidates, &radius)
			assert.True(t, sort.SliceIsSorted(ranked, func(i, j int) bool {
				return ranked[i].DistanceKm < ranked[j].DistanceKm
			}))
			for _, rp := range ranked {
				assert.LessOrEqual(t, rp.DistanceKm, radius)
				assert.NotEqual(t, "missing", rp.POI.ContentID)
			}
		}
	})
}

func TestRankByKeepsDistancesUnrounded(t *testing.T) {
	type place struct{ lat, lon float64 }
	// about 2 meters north, which rounds to 0.00 km
	items := []place{{37.00002, 127}}
	ranked := RankBy(types.GeoPoint{Lat: 37, Lon: 127}, items, func(p place) (float64, float64, bool) {
		return p.lat, p.lon, true
	}, nil)
	require.Len(t, ranked, 1)
	d := ranked[0].DistanceKm
	assert.InDelta(t, 0.00222, d, 1e-5)
	assert.Equal(t, 0.0, api.RoundKm(d))
	assert.NotEqual(t, api.RoundKm(d), d)
}

func TestNewBoundingBox(t *testing.T) {
	box := NewBoundingBox(37.0, 127.0, 20)
	assert.InDelta(t, 37.0-20/111.32, box.MinLat, 1e-9)
	assert.InDelta(t, 37.0+20/111.32, box.MaxLat, 1e-9)
	assert.Less(t, box.MinLon, 127.0)
	assert.Greater(t, box.MaxLon, 127.0)

	// Every point inside the radius lies inside the box.
	for _, p := range [][2]float64{{37.17, 127.0}, {37.0, 127.22}, {36.83, 126.78}} {
		if Haversine(37, 127, p[0], p[1]) <= 20 {
			assert.True(t, p[0] >= box.MinLat && p[0] <= box.MaxLat && p[1] >= box.MinLon && p[1] <= box.MaxLon, "point %v", p)
		}
	}

	polar := NewBoundingBox(89.99, 0, 50)
	assert.Equal(t, 90.0, polar.MaxLat)
}

func TestLikePatterns(t *testing.T) {
	assert.Equal(t, []string{"%바다%", `%100\%%`, `%a\_b%`}, likePatterns([]string{"바다", "100%", "a_b"}))
	assert.Empty(t, likePatterns(nil))
}

func BenchmarkRank(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	candidates := make([]types.PointOfInterest, 2000)
	for i := range candidates {
		candidates[i] = spotAt("x", 33+r.Float64()*6, 125+r.Float64()*5)
	}
	origin := types.GeoPoint{Lat: 36.5, Lon: 127.5}
	radius := 50.0

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Rank(origin, candidates, &radius)
	}
}

func BenchmarkHaversine(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Haversine(37.5663, 126.9779, 35.1798, 129.0750)
	}
}
