package models

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is one (variant, quantity) line. UnitPrice and TotalPrice are a
// cached view of the owning product's current price; they are refreshed on
// every cart mutation and recomputed again at order placement.
type CartItem struct {
	VariantID  uuid.UUID `json:"variant_id"`
	ProductID  uuid.UUID `json:"product_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	TotalPrice float64   `json:"total_price"`
}

type Cart struct {
	ID        uuid.UUID           `json:"id"`
	UserID    uuid.UUID           `json:"user_id"`
	Items     map[string]CartItem `json:"items"`
	Total     float64             `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type AddItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	VariantID uuid.UUID `json:"variant_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"min=0"`
}
