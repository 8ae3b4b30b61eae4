package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/pagination"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	SaveOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*pagination.Page[models.Order], error)
	ListOrdersWithItems(ctx context.Context) ([]models.Order, error)
	UpdateOrderTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
	DeleteOrder(ctx context.Context, id uuid.UUID) (bool, error)

	CreateItem(ctx context.Context, item *models.OrderItem) error
	SaveItem(ctx context.Context, item *models.OrderItem) error
	FindItem(ctx context.Context, orderID, itemID uuid.UUID) (*models.OrderItem, error)
	ListItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	DeleteItem(ctx context.Context, orderID, itemID uuid.UUID) (bool, error)
}

// ProductReader resolves catalog products for price snapshots.
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// UserChecker confirms an order owner exists.
type UserChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
