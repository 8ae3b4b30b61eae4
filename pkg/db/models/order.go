package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
)

// Order is a customer purchase. TaxAmount and TotalAmount are derived from
// Subtotal, TaxRate and ShippingCost on every write.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber     string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	Subtotal        decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null"`
	TaxRate         decimal.Decimal     `gorm:"column:tax_rate;type:numeric(5,2);not null"`
	TaxAmount       decimal.Decimal     `gorm:"column:tax_amount;type:numeric(10,2);not null"`
	ShippingCost    decimal.Decimal     `gorm:"column:shipping_cost;type:numeric(10,2);not null"`
	TotalAmount     decimal.Decimal     `gorm:"column:total_amount;type:numeric(10,2);not null"`
	Status          enums.OrderStatus   `gorm:"column:status;type:order_status;not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null"`
	ShippingAddress string              `gorm:"column:shipping_address;not null"`
	PaymentMethod   *string             `gorm:"column:payment_method"`
	Notes           *string             `gorm:"column:notes"`
	User            *User               `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
