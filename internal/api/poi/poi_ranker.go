package poi

import (
	"math"
	"sort"

	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometers between two
// coordinates given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Ranked is an item with its unrounded distance from the ranking origin.
type Ranked[T any] struct {
	Item       T
	DistanceKm float64
}

// RankBy orders items by distance from origin, nearest first. Items whose
// coordinates are missing are dropped before ranking. When radiusKm is set,
// items farther than it are dropped after ranking. Ties keep input order.
func RankBy[T any](origin types.GeoPoint, items []T, coords func(T) (lat, lon float64, ok bool), radiusKm *float64) []Ranked[T] {
	ranked := make([]Ranked[T], 0, len(items))
	for _, item := range items {
		lat, lon, ok := coords(item)
		if !ok {
			continue
		}
		ranked = append(ranked, Ranked[T]{
			Item:       item,
			DistanceKm: Haversine(origin.Lat, origin.Lon, lat, lon),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})

	if radiusKm == nil {
		return ranked
	}
	cut := sort.Search(len(ranked), func(i int) bool {
		return ranked[i].DistanceKm > *radiusKm
	})
	return ranked[:cut]
}

// Rank is RankBy for catalog spots.
func Rank(origin types.GeoPoint, candidates []types.PointOfInterest, radiusKm *float64) []types.RankedPOI {
	ranked := RankBy(origin, candidates, types.PointOfInterest.Coordinates, radiusKm)
	out := make([]types.RankedPOI, len(ranked))
	for i, r := range ranked {
		out[i] = types.RankedPOI{POI: r.Item, DistanceKm: r.DistanceKm}
	}
	return out
}
