package orders

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/internal/pricing"
	"github.com/angelmondragon/storeadmin-backend/internal/settings"
	"github.com/angelmondragon/storeadmin-backend/internal/users"
	"github.com/angelmondragon/storeadmin-backend/pkg/db"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
	"github.com/angelmondragon/storeadmin-backend/pkg/pagination"
)

type mapSettings map[string]any

func (m mapSettings) Lookup(_ context.Context, key string) (any, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func newTestService(t *testing.T, conn *gorm.DB, values mapSettings) Service {
	t.Helper()
	logg := logger.Nop()
	deriver, err := pricing.NewDeriver(pricing.DeriverParams{Settings: values, Logger: logg})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Tx:       db.Wrap(conn),
		Deriver:  deriver,
		Products: gormProducts{db: conn},
		Users:    users.NewRepository(conn),
		Logger:   logg,
	})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCreateOrderAppliesSettingsDefaults(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	svc := newTestService(t, conn, mapSettings{
		settings.KeyGlobalTaxRate:       float64(8),
		settings.KeyShippingCost:        float64(7.5),
		settings.KeyFreeShippingMinimum: float64(50),
	})

	got, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:          user.ID,
		Subtotal:        decPtr("40"),
		ShippingAddress: " 1 Main St ",
	})
	require.NoError(t, err)
	require.Equal(t, "40.00", got.Subtotal)
	require.Equal(t, "8.00", got.TaxRate)
	require.Equal(t, "3.20", got.TaxAmount)
	require.Equal(t, "7.50", got.ShippingCost)
	require.Equal(t, "50.70", got.TotalAmount)
	require.Equal(t, enums.OrderStatusPending, got.Status)
	require.Equal(t, enums.PaymentStatusPending, got.PaymentStatus)
	require.Equal(t, "1 Main St", got.ShippingAddress)
	require.True(t, strings.HasPrefix(got.OrderNumber, "ORD-"))
	require.NotNil(t, got.User)
}

func TestCreateOrderFreeShipping(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	svc := newTestService(t, conn, mapSettings{
		settings.KeyGlobalTaxRate:       float64(10),
		settings.KeyShippingCost:        float64(5),
		settings.KeyFreeShippingMinimum: float64(50),
	})

	got, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:          user.ID,
		Subtotal:        decPtr("50"),
		ShippingAddress: "1 Main St",
	})
	require.NoError(t, err)
	require.Equal(t, "0.00", got.ShippingCost)
	require.Equal(t, "55.00", got.TotalAmount)
}

func TestCreateOrderWithoutSettingsUsesSchemaDefaults(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	svc := newTestService(t, conn, mapSettings{})

	got, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, ShippingAddress: "1 Main St"})
	require.NoError(t, err)
	require.Equal(t, "0.00", got.Subtotal)
	require.Equal(t, "10.00", got.TaxRate)
	require.Equal(t, "5.00", got.ShippingCost)
	require.Equal(t, "5.00", got.TotalAmount)
}

func TestCreateOrderValidation(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	svc := newTestService(t, conn, mapSettings{})
	bad := enums.OrderStatus("lost")

	cases := []struct {
		name  string
		input CreateOrderInput
		field string
	}{
		{"missing user", CreateOrderInput{ShippingAddress: "x"}, "user_id"},
		{"unknown user", CreateOrderInput{UserID: uuid.New(), ShippingAddress: "x"}, "user_id"},
		{"missing address", CreateOrderInput{UserID: user.ID, ShippingAddress: "  "}, "shipping_address"},
		{"negative subtotal", CreateOrderInput{UserID: user.ID, ShippingAddress: "x", Subtotal: decPtr("-1")}, "subtotal"},
		{"negative shipping", CreateOrderInput{UserID: user.ID, ShippingAddress: "x", ShippingCost: decPtr("-0.01")}, "shipping_cost"},
		{"tax rate too high", CreateOrderInput{UserID: user.ID, ShippingAddress: "x", TaxRate: decPtr("101")}, "tax_rate"},
		{"bad status", CreateOrderInput{UserID: user.ID, ShippingAddress: "x", Status: &bad}, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), tc.input)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
			details, ok := pkgerrors.As(err).Details().(map[string]string)
			require.True(t, ok)
			require.Contains(t, details, tc.field)
		})
	}

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateOrderRejectsNegativeSettingDefault(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	svc := newTestService(t, conn, mapSettings{settings.KeyShippingCost: float64(-3)})

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{UserID: user.ID, ShippingAddress: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestCreateOrderDuplicateOrderNumber(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	svc := newTestService(t, conn, mapSettings{})
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, CreateOrderInput{OrderNumber: "ORD-FIXED", UserID: user.ID, ShippingAddress: "x"})
	require.NoError(t, err)

	_, err = svc.CreateOrder(ctx, CreateOrderInput{OrderNumber: "ORD-FIXED", UserID: user.ID, ShippingAddress: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestUpdateOrderRecomputesTotalsAndKeepsNumber(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	svc := newTestService(t, conn, mapSettings{})
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: user.ID, Subtotal: decPtr("100"), ShippingAddress: "x"})
	require.NoError(t, err)
	require.Equal(t, "115.00", created.TotalAmount)

	paid := enums.PaymentStatusPaid
	updated, err := svc.UpdateOrder(ctx, created.ID, UpdateOrderInput{
		TaxRate:       decPtr("20"),
		ShippingCost:  decPtr("0"),
		PaymentStatus: &paid,
	})
	require.NoError(t, err)
	require.Equal(t, created.OrderNumber, updated.OrderNumber)
	require.Equal(t, "20.00", updated.TaxAmount)
	require.Equal(t, "120.00", updated.TotalAmount)
	require.Equal(t, enums.PaymentStatusPaid, updated.PaymentStatus)

	notes := "leave at door"
	again, err := svc.UpdateOrder(ctx, created.ID, UpdateOrderInput{Notes: &notes})
	require.NoError(t, err)
	require.Equal(t, "120.00", again.TotalAmount)
	require.Equal(t, notes, *again.Notes)
}

func TestUpdateOrderErrors(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	svc := newTestService(t, conn, mapSettings{})
	ctx := context.Background()

	_, err := svc.UpdateOrder(ctx, uuid.New(), UpdateOrderInput{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	created, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: user.ID, ShippingAddress: "x"})
	require.NoError(t, err)
	_, err = svc.UpdateOrder(ctx, created.ID, UpdateOrderInput{Subtotal: decPtr("-5")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	reloaded, err := svc.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Subtotal, reloaded.Subtotal)
}

func TestItemLifecycleLeavesOrderTotalsAlone(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	product := seedProduct(t, conn, "19.99")
	svc := newTestService(t, conn, mapSettings{})
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: user.ID, Subtotal: decPtr("10"), ShippingAddress: "x"})
	require.NoError(t, err)

	item, err := svc.CreateItem(ctx, order.ID, CreateItemInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, "19.99", item.Price)
	require.Equal(t, "59.97", item.Subtotal)
	require.Equal(t, product.SKU, item.ProductSKU)

	qty := 2
	updated, err := svc.UpdateItem(ctx, order.ID, item.ID, UpdateItemInput{Quantity: &qty, Price: decPtr("2.50")})
	require.NoError(t, err)
	require.Equal(t, "5.00", updated.Subtotal)

	items, err := svc.ListItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "5.00", items[0].Subtotal)

	reloaded, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.TotalAmount, reloaded.TotalAmount)
	require.Equal(t, "10.00", reloaded.Subtotal)

	require.NoError(t, svc.DeleteItem(ctx, order.ID, item.ID))
	err = svc.DeleteItem(ctx, order.ID, item.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestCreateItemValidation(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	product := seedProduct(t, conn, "1")
	svc := newTestService(t, conn, mapSettings{})
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: user.ID, ShippingAddress: "x"})
	require.NoError(t, err)

	_, err = svc.CreateItem(ctx, order.ID, CreateItemInput{ProductID: product.ID, Quantity: 0})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.CreateItem(ctx, order.ID, CreateItemInput{ProductID: product.ID, Quantity: 1, Price: decPtr("-1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.CreateItem(ctx, order.ID, CreateItemInput{ProductID: uuid.New(), Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)

	_, err = svc.CreateItem(ctx, uuid.New(), CreateItemInput{ProductID: product.ID, Quantity: 1})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	item, err := svc.CreateItem(ctx, order.ID, CreateItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	zero := 0
	_, err = svc.UpdateItem(ctx, order.ID, item.ID, UpdateItemInput{Quantity: &zero})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestDeleteOrderCascadesItems(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	product := seedProduct(t, conn, "1")
	svc := newTestService(t, conn, mapSettings{})
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: user.ID, ShippingAddress: "x"})
	require.NoError(t, err)
	_, err = svc.CreateItem(ctx, order.ID, CreateItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(ctx, order.ID))

	var count int64
	require.NoError(t, conn.Model(&models.OrderItem{}).Count(&count).Error)
	require.Zero(t, count)

	err = svc.DeleteOrder(ctx, order.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestListOrders(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	svc := newTestService(t, conn, mapSettings{})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: user.ID, ShippingAddress: "x"})
		require.NoError(t, err)
	}

	page, err := svc.ListOrders(ctx, pagination.Params{Limit: 2}, OrderFilters{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	bad := enums.PaymentStatus("comped")
	_, err = svc.ListOrders(ctx, pagination.Params{}, OrderFilters{PaymentStatus: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

func TestOrderAmountsMustFitStorage(t *testing.T) {
	conn := dbtest.Open(t)
	user := seedUser(t, conn)
	product := seedProduct(t, conn, "1")
	svc := newTestService(t, conn, mapSettings{})
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: user.ID, ShippingAddress: "x", Subtotal: decPtr("90000000"), TaxRate: decPtr("20")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	require.Contains(t, details, "total_amount")

	var count int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)

	created, err := svc.CreateOrder(ctx, CreateOrderInput{UserID: user.ID, ShippingAddress: "x", Subtotal: decPtr("100")})
	require.NoError(t, err)
	_, err = svc.UpdateOrder(ctx, created.ID, UpdateOrderInput{Subtotal: decPtr("99999999.99")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
	reloaded, err := svc.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.TotalAmount, reloaded.TotalAmount)

	_, err = svc.CreateItem(ctx, created.ID, CreateItemInput{ProductID: product.ID, Quantity: 3, Price: decPtr("50000000")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}
