package types

import "time"

// PointOfInterest is a travel spot row of the tour_data catalog.
// MapX is the longitude and MapY the latitude; either may be missing.
type PointOfInterest struct {
	ContentID      string     `json:"content_id"`
	ContentTypeID  string     `json:"content_type_id,omitempty"`
	Title          string     `json:"title"`
	Addr1          string     `json:"addr1"`
	Addr2          string     `json:"addr2,omitempty"`
	Cat1           string     `json:"cat1,omitempty"`
	Cat2           string     `json:"cat2,omitempty"`
	Cat3           string     `json:"cat3,omitempty"`
	Tel            string     `json:"tel,omitempty"`
	Overview       string     `json:"overview,omitempty"`
	MapX           *float64   `json:"mapx"`
	MapY           *float64   `json:"mapy"`
	FirstImage     *string    `json:"first_image"`
	EventStartDate *time.Time `json:"event_start_date,omitempty"`
	EventEndDate   *time.Time `json:"event_end_date,omitempty"`
}

// Coordinates returns the latitude and longitude of the spot. ok is false when
// either coordinate is missing.
func (p PointOfInterest) Coordinates() (lat, lon float64, ok bool) {
	if p.MapX == nil || p.MapY == nil {
		return 0, 0, false
	}
	return *p.MapY, *p.MapX, true
}

// Address joins addr1 and addr2 the way it is shown to users.
func (p PointOfInterest) Address() string {
	if p.Addr2 == "" {
		return p.Addr1
	}
	if p.Addr1 == "" {
		return p.Addr2
	}
	return p.Addr1 + " " + p.Addr2
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RankedPOI is a spot annotated with its unrounded distance from an origin.
type RankedPOI struct {
	POI        PointOfInterest
	DistanceKm float64
}

// NearbySpot is the presentation shape of a ranked spot; Distance is rounded.
type NearbySpot struct {
	PointOfInterest
	Distance float64 `json:"distance"`
}

type NearbySpotsResponse struct {
	Target      PointOfInterest `json:"target"`
	NearbySpots []NearbySpot    `json:"nearby_spots"`
}

// RecommendationCandidate is produced per request and never persisted.
type RecommendationCandidate struct {
	POI        PointOfInterest
	DistanceKm *float64
	Reason     string
}

// RecommendationItem is the wire form of a RecommendationCandidate.
type RecommendationItem struct {
	ContentID  string   `json:"content_id"`
	Title      string   `json:"title"`
	Address    string   `json:"address"`
	Category   string   `json:"category,omitempty"`
	FirstImage *string  `json:"first_image"`
	MapX       *float64 `json:"mapx"`
	MapY       *float64 `json:"mapy"`
	Reason     string   `json:"reason"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
