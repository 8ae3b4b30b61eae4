package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
)

// CategoryDTO is the transport shape of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCategoryInput creates a category; an empty Slug is derived from Name.
type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required"`
	Slug        string  `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateCategoryInput is a partial category update.
type UpdateCategoryInput struct {
	Name        *string `json:"name,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ProductFilters narrow the product listing.
type ProductFilters struct {
	CategoryID *uuid.UUID
	IsActive   *bool
	Query      string
}

// ProductDTO is the transport shape of a product.
type ProductDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description,omitempty"`
	SKU         string       `json:"sku"`
	Price       string       `json:"price"`
	Stock       int          `json:"stock"`
	ImageURL    *string      `json:"image_url,omitempty"`
	CategoryID  *uuid.UUID   `json:"category_id,omitempty"`
	Category    *CategoryDTO `json:"category,omitempty"`
	IsActive    bool         `json:"is_active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CreateProductInput creates a product.
type CreateProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Description *string         `json:"description,omitempty"`
	SKU         string          `json:"sku" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock" validate:"min=0"`
	ImageURL    *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

// UpdateProductInput is a partial product update.
type UpdateProductInput struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	SKU         *string          `json:"sku,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	ImageURL    *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	CategoryID  *uuid.UUID       `json:"category_id,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

func CategoryFromModel(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ProductFromModel(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.SKU,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.Category != nil {
		category := CategoryFromModel(*p.Category)
		dto.Category = &category
	}
	return dto
}
