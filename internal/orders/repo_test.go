package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
	"github.com/angelmondragon/storeadmin-backend/pkg/pagination"
)

func TestRepositoryOrderDetailLoadsItemsAndUser(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	product := seedProduct(t, db, "4.50")
	order := seedOrder(t, db, user.ID, "ORD-1", "9.00", "14.90")

	require.NoError(t, repo.CreateItem(ctx, &models.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 2, Price: dec("4.50"), Subtotal: dec("9.00")}))

	detail, err := repo.FindOrderDetail(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.User)
	require.Equal(t, user.Email, detail.User.Email)
	require.Len(t, detail.Items, 1)
	require.NotNil(t, detail.Items[0].Product)
	require.Equal(t, product.SKU, detail.Items[0].Product.SKU)

	_, err = repo.FindOrderDetail(ctx, uuid.New())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryListOrdersFilters(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db)
	bob := seedUser(t, db)
	seedOrder(t, db, alice.ID, "ORD-A1", "1", "1")
	seedOrder(t, db, alice.ID, "ORD-A2", "1", "1")
	shipped := seedOrder(t, db, bob.ID, "ORD-B1", "1", "1")
	require.NoError(t, db.Model(shipped).Update("status", enums.OrderStatusShipped).Error)

	page, err := repo.ListOrders(ctx, pagination.Params{}, OrderFilters{UserID: &alice.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	status := enums.OrderStatusShipped
	page, err = repo.ListOrders(ctx, pagination.Params{}, OrderFilters{Status: &status})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "ORD-B1", page.Items[0].OrderNumber)
	require.NotNil(t, page.Items[0].User)

	paid := enums.PaymentStatusPaid
	page, err = repo.ListOrders(ctx, pagination.Params{}, OrderFilters{PaymentStatus: &paid})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	page, err = repo.ListOrders(ctx, pagination.Params{Limit: 2}, OrderFilters{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)
}

func TestRepositoryListOrdersWithItemsOldestFirst(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	product := seedProduct(t, db, "1")
	newer := seedOrder(t, db, user.ID, "ORD-NEW", "0", "0")
	older := seedOrder(t, db, user.ID, "ORD-OLD", "0", "0")
	require.NoError(t, db.Model(older).UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)
	require.NoError(t, repo.CreateItem(ctx, &models.OrderItem{OrderID: newer.ID, ProductID: product.ID, Quantity: 1, Price: dec("1"), Subtotal: dec("1")}))

	rows, err := repo.ListOrdersWithItems(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "ORD-OLD", rows[0].OrderNumber)
	require.Empty(t, rows[0].Items)
	require.Len(t, rows[1].Items, 1)
}

func TestRepositoryUpdateOrderTotalTouchesOnlyTotal(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	order := seedOrder(t, db, user.ID, "ORD-1", "10", "99")

	require.NoError(t, repo.UpdateOrderTotal(ctx, order.ID, dec("12.34")))

	reloaded, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, reloaded.TotalAmount.Equal(dec("12.34")))
	require.True(t, reloaded.Subtotal.Equal(dec("10")))

	err = repo.UpdateOrderTotal(ctx, uuid.New(), dec("1"))
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryDeleteOrderRemovesItems(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	product := seedProduct(t, db, "2")
	order := seedOrder(t, db, user.ID, "ORD-1", "2", "2")
	require.NoError(t, repo.CreateItem(ctx, &models.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 1, Price: dec("2"), Subtotal: dec("2")}))

	deleted, err := repo.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	items, err := repo.ListItems(ctx, order.ID)
	require.NoError(t, err)
	require.Empty(t, items)

	deleted, err = repo.DeleteOrder(ctx, order.ID)
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestRepositoryItemScopedToOrder(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	product := seedProduct(t, db, "2")
	order := seedOrder(t, db, user.ID, "ORD-1", "2", "2")
	other := seedOrder(t, db, user.ID, "ORD-2", "2", "2")
	item := &models.OrderItem{OrderID: order.ID, ProductID: product.ID, Quantity: 1, Price: dec("2"), Subtotal: dec("2")}
	require.NoError(t, repo.CreateItem(ctx, item))

	_, err := repo.FindItem(ctx, other.ID, item.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	deleted, err := repo.DeleteItem(ctx, other.ID, item.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	deleted, err = repo.DeleteItem(ctx, order.ID, item.ID)
	require.NoError(t, err)
	require.True(t, deleted)
}
