package types

import (
	"time"

	"github.com/google/uuid"
)

type Festival struct {
	ID             uuid.UUID  `json:"id"`
	ContentID      *string    `json:"content_id,omitempty"`
	Title          string     `json:"title"`
	Location       string     `json:"location"`
	Description    string     `json:"description"`
	EventStartDate *time.Time `json:"event_start_date,omitempty"`
	EventEndDate   *time.Time `json:"event_end_date,omitempty"`
	MapX           *float64   `json:"mapx"`
	MapY           *float64   `json:"mapy"`
	ImageURL       *string    `json:"image_url"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Coordinates returns latitude and longitude; ok is false when either is missing.
func (f Festival) Coordinates() (lat, lon float64, ok bool) {
	if f.MapX == nil || f.MapY == nil {
		return 0, 0, false
	}
	return *f.MapY, *f.MapX, true
}

// FestivalListItem carries the rounded distance when the listing is ordered by distance.
type FestivalListItem struct {
	Festival
	Distance *float64 `json:"distance,omitempty"`
}

const (
	FestivalOrderDistance = "distance"
	FestivalOrderTitle    = "title"
)

type FestivalFilter struct {
	Lat      *float64
	Lon      *float64
	RadiusKm float64
	Query    string
	Page     int
	Size     int
	OrderBy  string
}

type CreateFestivalRequest struct {
	ContentID      *string  `json:"content_id,omitempty" validate:"omitempty,max=50"`
	Title          string   `json:"title" validate:"required,max=200"`
	Location       string   `json:"location" validate:"max=300"`
	Description    string   `json:"description" validate:"max=5000"`
	EventStartDate *string  `json:"event_start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EventEndDate   *string  `json:"event_end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MapX           *float64 `json:"mapx,omitempty" validate:"omitempty,longitude"`
	MapY           *float64 `json:"mapy,omitempty" validate:"omitempty,latitude"`
	ImageURL       *string  `json:"image_url,omitempty" validate:"omitempty,url"`
}

type UpdateFestivalRequest struct {
	Title          *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Location       *string  `json:"location,omitempty" validate:"omitempty,max=300"`
	Description    *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	EventStartDate *string  `json:"event_start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EventEndDate   *string  `json:"event_end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	MapX           *float64 `json:"mapx,omitempty" validate:"omitempty,longitude"`
	MapY           *float64 `json:"mapy,omitempty" validate:"omitempty,latitude"`
	ImageURL       *string  `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}
