package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID          uuid.UUID `json:"id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Rating      float64   `json:"rating"`
	Material    string    `json:"material"`
	// Denormalized sum of the variants' quantities. Only written next to the
	// variant write that invalidates it, or by the batch recalculation.
	TotalStock int        `json:"total_stock"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Category   *Category  `json:"category,omitempty"`
	Variants   []*Variant `json:"variants,omitempty"`
}

// Variant is the unit at which stock is tracked: one size/color combination
// of a product.
type Variant struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Name        string    `json:"name" validate:"required,min=3,max=200"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price" validate:"required,gt=0"`
	Rating      float64   `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Material    string    `json:"material,omitempty" validate:"omitempty,max=100"`
}

type UpdateProductRequest struct {
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	Name        *string    `json:"name,omitempty" validate:"omitempty,min=3,max=200"`
	Description *string    `json:"description,omitempty"`
	Price       *float64   `json:"price,omitempty" validate:"omitempty,gt=0"`
	Rating      *float64   `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Material    *string    `json:"material,omitempty" validate:"omitempty,max=100"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=active inactive discontinued"`
}

type CreateVariantRequest struct {
	Size     string `json:"size" validate:"required,max=20"`
	Color    string `json:"color" validate:"required,max=50"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type RestockRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size" validate:"required"`
	Color     string    `json:"color" validate:"required"`
	Amount    int       `json:"amount" validate:"required,gt=0"`
}
