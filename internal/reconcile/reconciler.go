// Package reconcile rewrites order totals from the sum of their items.
package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storeadmin-backend/internal/pricing"
	"github.com/angelmondragon/storeadmin-backend/pkg/db/models"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
	"github.com/angelmondragon/storeadmin-backend/pkg/metrics"
)

type orderStore interface {
	ListOrdersWithItems(ctx context.Context) ([]models.Order, error)
	UpdateOrderTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
}

// Report summarizes one reconciliation run.
type Report struct {
	Processed    int `json:"processed"`
	Updated      int `json:"updated"`
	SkippedEmpty int `json:"skipped_empty"`
	Unchanged    int `json:"unchanged"`
}

// Params configure a Reconciler.
type Params struct {
	Orders  orderStore
	Logger  *logger.Logger
	Metrics *metrics.OrderMetrics
}

// Reconciler sets each order's total to the rounded sum of its item
// subtotals. Orders without items keep their total.
type Reconciler struct {
	orders  orderStore
	logg    *logger.Logger
	metrics *metrics.OrderMetrics
}

// New builds a Reconciler.
func New(params Params) (*Reconciler, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Reconciler{orders: params.Orders, logg: params.Logger, metrics: params.Metrics}, nil
}

// Run visits every order oldest first and stops at the first error. The
// report reflects the orders handled before the failure.
func (r *Reconciler) Run(ctx context.Context) (Report, error) {
	var report Report

	orders, err := r.orders.ListOrdersWithItems(ctx)
	if err != nil {
		return report, fmt.Errorf("load orders: %w", err)
	}

	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++
		orderCtx := r.logg.WithFields(r.logg.WithOrderID(ctx, order.ID.String()), map[string]any{
			"order_number": order.OrderNumber,
		})

		if len(order.Items) == 0 {
			report.SkippedEmpty++
			r.metrics.IncReconciled(metrics.ReconcileEmpty)
			r.logg.Warn(orderCtx, "order has no items; total left unchanged")
			continue
		}

		sum := pricing.SumItemSubtotals(order.Items)
		if sum.Equal(order.TotalAmount) {
			report.Unchanged++
			r.metrics.IncReconciled(metrics.ReconcileUnchanged)
			continue
		}

		if err := r.orders.UpdateOrderTotal(ctx, order.ID, sum); err != nil {
			return report, fmt.Errorf("update total for order %s: %w", order.OrderNumber, err)
		}
		report.Updated++
		r.metrics.IncReconciled(metrics.ReconcileUpdated)
		r.logg.Info(r.logg.WithFields(orderCtx, map[string]any{
			"previous_total": order.TotalAmount.StringFixed(2),
			"total_amount":   sum.StringFixed(2),
			"item_count":     len(order.Items),
		}), "order total reconciled")
	}

	r.logg.Info(r.logg.WithFields(ctx, map[string]any{
		"processed":     report.Processed,
		"updated":       report.Updated,
		"skipped_empty": report.SkippedEmpty,
		"unchanged":     report.Unchanged,
	}), "order reconciliation complete")
	return report, nil
}
