package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Name:         "Buyer",
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:     "Widget",
		SKU:      "SKU-" + uuid.NewString()[:8],
		Price:    dec(price),
		Stock:    10,
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, number, subtotal, total string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:     number,
		UserID:          userID,
		Subtotal:        dec(subtotal),
		TaxRate:         dec("10"),
		ShippingCost:    dec("5"),
		TotalAmount:     dec(total),
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		ShippingAddress: "1 Main St",
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

type gormProducts struct {
	db *gorm.DB
}

func (p gormProducts) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := p.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
