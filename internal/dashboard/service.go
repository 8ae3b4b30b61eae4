package dashboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storeadmin-backend/pkg/errors"
)

// RecentLimit caps the recent order listings.
const RecentLimit = 5

// Service builds the dashboard for the calling account.
type Service interface {
	Summary(ctx context.Context, userID uuid.UUID, role enums.UserRole) (*Summary, error)
}

type store interface {
	Totals(ctx context.Context) (Totals, error)
	PaidRevenue(ctx context.Context, userID *uuid.UUID) (decimal.Decimal, error)
	RecentOrders(ctx context.Context, userID *uuid.UUID, limit int) ([]models.Order, error)
}

type service struct {
	repo store
}

// NewService constructs the dashboard service.
func NewService(repo store) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dashboard repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Summary(ctx context.Context, userID uuid.UUID, role enums.UserRole) (*Summary, error) {
	if role == enums.UserRoleAdmin {
		admin, err := s.admin(ctx)
		if err != nil {
			return nil, err
		}
		return &Summary{Role: role, Admin: admin}, nil
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Summary{Role: enums.UserRoleUser, User: user}, nil
}

func (s *service) admin(ctx context.Context) (*AdminSummary, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count dashboard totals")
	}
	revenue, err := s.repo.PaidRevenue(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}
	recent, err := s.repo.RecentOrders(ctx, nil, RecentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent orders")
	}
	return &AdminSummary{
		TotalUsers:      totals.Users,
		TotalProducts:   totals.Products,
		TotalOrders:     totals.Orders,
		TotalCategories: totals.Categories,
		TotalRevenue:    revenue.StringFixed(2),
		PendingOrders:   totals.Pending,
		RecentOrders:    recentFromModels(recent),
	}, nil
}

func (s *service) user(ctx context.Context, userID uuid.UUID) (*UserSummary, error) {
	recent, err := s.repo.RecentOrders(ctx, &userID, RecentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recent orders")
	}
	spent, err := s.repo.PaidRevenue(ctx, &userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum spending")
	}
	return &UserSummary{RecentOrders: recentFromModels(recent), TotalSpent: spent.StringFixed(2)}, nil
}
