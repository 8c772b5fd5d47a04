package types

import (
	"time"

	"github.com/google/uuid"
)

type FavoriteItemType string

const (
	FavoriteFestival FavoriteItemType = "FESTIVAL"
	FavoriteProduct  FavoriteItemType = "PRODUCT"
	FavoriteSpot     FavoriteItemType = "SPOT"
)

type Favorite struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"user_id"`
	ItemType  FavoriteItemType `json:"item_type"`
	ItemID    string           `json:"item_id"`
	CreatedAt time.Time        `json:"created_at"`
}

type ToggleFavoriteRequest struct {
	ItemType FavoriteItemType `json:"item_type" validate:"required,oneof=FESTIVAL PRODUCT SPOT"`
	ItemID   string           `json:"item_id" validate:"required,max=64"`
}

type ToggleFavoriteResponse struct {
	Favorited bool             `json:"favorited"`
	ItemType  FavoriteItemType `json:"item_type"`
	ItemID    string           `json:"item_id"`
}

type FavoritesResponse struct {
	Festivals []Festival        `json:"festivals"`
	Products  []Product         `json:"products"`
	Spots     []PointOfInterest `json:"spots"`
}
