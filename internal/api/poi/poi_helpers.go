package poi

import (
	"fmt"
	"math"
	"strings"

	"github.com/FACorreiaa/sosohaeng-api/internal/api"
	"github.com/FACorreiaa/sosohaeng-api/internal/types"
)

// BoundingBox is a lat/lon rectangle enclosing a circle of radiusKm around a
// center. It is a coarse SQL prefilter; Rank does the exact cut.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

func NewBoundingBox(lat, lon, radiusKm float64) BoundingBox {
	const kmPerDegree = 111.32
	dLat := radiusKm / kmPerDegree
	cosLat := math.Cos(lat * math.Pi / 180)
	dLon := 180.0
	if cosLat > 1e-6 {
		dLon = math.Min(radiusKm/(kmPerDegree*cosLat), 180)
	}
	return BoundingBox{
		MinLat: math.Max(lat-dLat, -90),
		MaxLat: math.Min(lat+dLat, 90),
		MinLon: lon - dLon,
		MaxLon: lon + dLon,
	}
}

func nearbyCacheKey(contentID string, radiusKm float64) string {
	return fmt.Sprintf("poi_nearby:%s:%.3f", contentID, radiusKm)
}

// likePatterns turns words into ILIKE substring patterns with wildcards escaped.
func likePatterns(words []string) []string {
	escaper := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	patterns := make([]string, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, "%"+escaper.Replace(w)+"%")
	}
	return patterns
}

func toNearbySpots(ranked []types.RankedPOI) []types.NearbySpot {
	spots := make([]types.NearbySpot, len(ranked))
	for i, r := range ranked {
		spots[i] = types.NearbySpot{
			PointOfInterest: r.POI,
			Distance:        api.RoundKm(r.DistanceKm),
		}
	}
	return spots
}
