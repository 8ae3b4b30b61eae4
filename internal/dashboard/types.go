package dashboard

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
)

// RecentOrder is a compact order row for dashboard listings.
type RecentOrder struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	TotalAmount   string              `json:"total_amount"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	UserName      string              `json:"user_name,omitempty"`
	UserEmail     string              `json:"user_email,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// AdminSummary is the system-wide view served to admins.
type AdminSummary struct {
	TotalUsers      int64         `json:"total_users"`
	TotalProducts   int64         `json:"total_products"`
	TotalOrders     int64         `json:"total_orders"`
	TotalCategories int64         `json:"total_categories"`
	TotalRevenue    string        `json:"total_revenue"`
	PendingOrders   int64         `json:"pending_orders"`
	RecentOrders    []RecentOrder `json:"recent_orders"`
}

// UserSummary is the per-account view served to regular users.
type UserSummary struct {
	RecentOrders []RecentOrder `json:"recent_orders"`
	TotalSpent   string        `json:"total_spent"`
}

// Summary carries exactly one of Admin or User depending on the caller's role.
type Summary struct {
	Role  enums.UserRole `json:"role"`
	Admin *AdminSummary  `json:"admin,omitempty"`
	User  *UserSummary   `json:"user,omitempty"`
}

func recentFromModels(rows []models.Order) []RecentOrder {
	out := make([]RecentOrder, 0, len(rows))
	for _, row := range rows {
		item := RecentOrder{
			ID:            row.ID,
			OrderNumber:   row.OrderNumber,
			TotalAmount:   row.TotalAmount.StringFixed(2),
			Status:        row.Status,
			PaymentStatus: row.PaymentStatus,
			CreatedAt:     row.CreatedAt,
		}
		if row.User != nil {
			item.UserName = row.User.Name
			item.UserEmail = row.User.Email
		}
		out = append(out, item)
	}
	return out
}
