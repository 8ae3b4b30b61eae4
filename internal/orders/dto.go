package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
)

// OrderFilters describe the inputs supported by the admin orders list.
type OrderFilters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	UserID        *uuid.UUID
}

// CreateOrderInput carries the caller-controlled fields of a new order.
// TaxAmount and TotalAmount are always derived; nil pricing fields are
// resolved from settings.
type CreateOrderInput struct {
	OrderNumber     string               `json:"order_number,omitempty"`
	UserID          uuid.UUID            `json:"user_id" validate:"required"`
	Subtotal        *decimal.Decimal     `json:"subtotal,omitempty"`
	TaxRate         *decimal.Decimal     `json:"tax_rate,omitempty"`
	ShippingCost    *decimal.Decimal     `json:"shipping_cost,omitempty"`
	Status          *enums.OrderStatus   `json:"status,omitempty"`
	PaymentStatus   *enums.PaymentStatus `json:"payment_status,omitempty"`
	ShippingAddress string               `json:"shipping_address" validate:"required"`
	PaymentMethod   *string              `json:"payment_method,omitempty"`
	Notes           *string              `json:"notes,omitempty"`
}

// UpdateOrderInput is a partial update. Order number and owner are fixed
// once the order exists.
type UpdateOrderInput struct {
	Subtotal        *decimal.Decimal     `json:"subtotal,omitempty"`
	TaxRate         *decimal.Decimal     `json:"tax_rate,omitempty"`
	ShippingCost    *decimal.Decimal     `json:"shipping_cost,omitempty"`
	Status          *enums.OrderStatus   `json:"status,omitempty"`
	PaymentStatus   *enums.PaymentStatus `json:"payment_status,omitempty"`
	ShippingAddress *string              `json:"shipping_address,omitempty"`
	PaymentMethod   *string              `json:"payment_method,omitempty"`
	Notes           *string              `json:"notes,omitempty"`
}

// CreateItemInput adds a product line. A nil Price snapshots the product's
// current price.
type CreateItemInput struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  int              `json:"quantity" validate:"required,min=1"`
	Price     *decimal.Decimal `json:"price,omitempty"`
}

// UpdateItemInput changes quantity and/or unit price of a line.
type UpdateItemInput struct {
	Quantity *int             `json:"quantity,omitempty" validate:"omitempty,min=1"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// OrderItemDTO is the transport shape of an order line.
type OrderItemDTO struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name,omitempty"`
	ProductSKU  string    `json:"product_sku,omitempty"`
	Quantity    int       `json:"quantity"`
	Price       string    `json:"price"`
	Subtotal    string    `json:"subtotal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OrderUserSummary identifies the order owner in read models.
type OrderUserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// OrderDTO is the transport shape of an order. Money fields are fixed to two
// decimal places.
type OrderDTO struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     string              `json:"order_number"`
	UserID          uuid.UUID           `json:"user_id"`
	User            *OrderUserSummary   `json:"user,omitempty"`
	Subtotal        string              `json:"subtotal"`
	TaxRate         string              `json:"tax_rate"`
	TaxAmount       string              `json:"tax_amount"`
	ShippingCost    string              `json:"shipping_cost"`
	TotalAmount     string              `json:"total_amount"`
	Status          enums.OrderStatus   `json:"status"`
	PaymentStatus   enums.PaymentStatus `json:"payment_status"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   *string             `json:"payment_method,omitempty"`
	Notes           *string             `json:"notes,omitempty"`
	Items           []OrderItemDTO      `json:"items,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ItemFromModel maps an order item row.
func ItemFromModel(item models.OrderItem) OrderItemDTO {
	dto := OrderItemDTO{
		ID:        item.ID,
		OrderID:   item.OrderID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Price:     money(item.Price),
		Subtotal:  money(item.Subtotal),
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if item.Product != nil {
		dto.ProductName = item.Product.Name
		dto.ProductSKU = item.Product.SKU
	}
	return dto
}

// FromModel maps an order row plus any loaded associations.
func FromModel(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		UserID:          order.UserID,
		Subtotal:        money(order.Subtotal),
		TaxRate:         money(order.TaxRate),
		TaxAmount:       money(order.TaxAmount),
		ShippingCost:    money(order.ShippingCost),
		TotalAmount:     money(order.TotalAmount),
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		ShippingAddress: order.ShippingAddress,
		PaymentMethod:   order.PaymentMethod,
		Notes:           order.Notes,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.User != nil {
		dto.User = &OrderUserSummary{ID: order.User.ID, Name: order.User.Name, Email: order.User.Email}
	}
	if len(order.Items) > 0 {
		dto.Items = make([]OrderItemDTO, 0, len(order.Items))
		for _, item := range order.Items {
			dto.Items = append(dto.Items, ItemFromModel(item))
		}
	}
	return dto
}
