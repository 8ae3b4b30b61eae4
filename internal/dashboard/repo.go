package dashboard

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storeadmin-backend/internal/repo"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
)

// Repository runs the aggregate queries behind the dashboard.
type Repository struct {
	repo.Base
}

// NewRepository binds a dashboard repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Totals holds the row counts shown to admins.
type Totals struct {
	Users      int64
	Products   int64
	Orders     int64
	Categories int64
	Pending    int64
}

// Totals counts users, products, orders, categories and pending orders.
func (r *Repository) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	db := r.DB(ctx)
	counts := []struct {
		model any
		dst   *int64
	}{
		{&models.User{}, &t.Users},
		{&models.Product{}, &t.Products},
		{&models.Order{}, &t.Orders},
		{&models.Category{}, &t.Categories},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return Totals{}, err
		}
	}
	if err := db.Model(&models.Order{}).Where("status = ?", enums.OrderStatusPending).Count(&t.Pending).Error; err != nil {
		return Totals{}, err
	}
	return t, nil
}

// PaidRevenue sums total_amount over paid orders, optionally scoped to one user.
func (r *Repository) PaidRevenue(ctx context.Context, userID *uuid.UUID) (decimal.Decimal, error) {
	q := r.DB(ctx).Model(&models.Order{}).Where("payment_status = ?", enums.PaymentStatusPaid)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var sum decimal.Decimal
	if err := q.Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&sum); err != nil {
		return decimal.Zero, err
	}
	return sum, nil
}

// RecentOrders returns the newest orders with their owners, optionally scoped to one user.
func (r *Repository) RecentOrders(ctx context.Context, userID *uuid.UUID, limit int) ([]models.Order, error) {
	q := r.DB(ctx).Model(&models.Order{}).Preload("User")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var rows []models.Order
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
