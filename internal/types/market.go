package types

import (
	"time"

	"github.com/google/uuid"
)

type Market struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Address     string    `json:"address"`
	Lat         *float64  `json:"lat"`
	Lng         *float64  `json:"lng"`
	Phone       *string   `json:"phone"`
	ImageURL    *string   `json:"image_url"`
	Region      *string   `json:"region"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MarketFilter struct {
	Query    string
	Region   string
	IsActive *bool
	Page     int
	Size     int
	OrderBy  string // name | recent
}

type CreateMarketRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Address     string   `json:"address" validate:"max=300"`
	Lat         *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng         *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	Region      *string  `json:"region,omitempty" validate:"omitempty,max=50"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type UpdateMarketRequest struct {
	Name        *string  `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,max=300"`
	Lat         *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng         *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
	Phone       *string  `json:"phone,omitempty" validate:"omitempty,max=30"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	Region      *string  `json:"region,omitempty" validate:"omitempty,max=50"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

type ProductStatus string

const (
	ProductActive     ProductStatus = "ACTIVE"
	ProductInactive   ProductStatus = "INACTIVE"
	ProductOutOfStock ProductStatus = "OUT_OF_STOCK"
)

type Product struct {
	ID          uuid.UUID     `json:"id"`
	MarketID    uuid.UUID     `json:"market_id"`
	Name        string        `json:"name"`
	Summary     string        `json:"summary"`
	Description string        `json:"description"`
	Price       int           `json:"price"`
	Stock       int           `json:"stock"`
	Unit        string        `json:"unit"`
	ImageURLs   []string      `json:"image_urls"`
	Status      ProductStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ProductFilter struct {
	Query    string
	MarketID *uuid.UUID
	Status   ProductStatus
	PriceMin *int
	PriceMax *int
	Sort     string // recent | price_asc | price_desc | name
	Page     int
	Size     int
}

type CreateProductRequest struct {
	MarketID    string        `json:"market_id" validate:"required,uuid"`
	Name        string        `json:"name" validate:"required,max=200"`
	Summary     string        `json:"summary" validate:"max=500"`
	Description string        `json:"description" validate:"max=5000"`
	Price       int           `json:"price" validate:"min=0"`
	Stock       int           `json:"stock" validate:"min=0"`
	Unit        string        `json:"unit" validate:"max=30"`
	ImageURLs   []string      `json:"image_urls" validate:"max=10,dive,url"`
	Status      ProductStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE OUT_OF_STOCK"`
}

type UpdateProductRequest struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Summary     *string        `json:"summary,omitempty" validate:"omitempty,max=500"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=5000"`
	Price       *int           `json:"price,omitempty" validate:"omitempty,min=0"`
	Stock       *int           `json:"stock,omitempty" validate:"omitempty,min=0"`
	Unit        *string        `json:"unit,omitempty" validate:"omitempty,max=30"`
	ImageURLs   []string       `json:"image_urls,omitempty" validate:"omitempty,max=10,dive,url"`
	Status      *ProductStatus `json:"status,omitempty" validate:"omitempty,oneof=ACTIVE INACTIVE OUT_OF_STOCK"`
}

// ProductReview is a buyer's rating of a product after a trade.
type ProductReview struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateReviewRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

// ProductReviews lists reviews newest first. AverageRating is 0 without reviews.
type ProductReviews struct {
	Items         []ProductReview `json:"items"`
	Count         int             `json:"count"`
	AverageRating float64         `json:"average_rating"`
}
