package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/storeadmin-backend/internal/reconcile"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
)

// ReconcileJobName identifies the order total reconciliation job in logs
// and metrics.
const ReconcileJobName = "order_total_reconcile"

type orderReconciler interface {
	Run(ctx context.Context) (reconcile.Report, error)
}

// ReconcileJobParams configure the reconciliation job.
type ReconcileJobParams struct {
	Logger     *logger.Logger
	Reconciler orderReconciler
}

type reconcileJob struct {
	logg       *logger.Logger
	reconciler orderReconciler
}

// NewReconcileJob wraps a reconciler as a cron job.
func NewReconcileJob(params ReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reconciler == nil {
		return nil, fmt.Errorf("reconciler required")
	}
	return &reconcileJob{logg: params.Logger, reconciler: params.Reconciler}, nil
}

func (j *reconcileJob) Name() string { return ReconcileJobName }

func (j *reconcileJob) Run(ctx context.Context) error {
	report, err := j.reconciler.Run(ctx)
	if err != nil {
		return fmt.Errorf("reconcile order totals: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"processed":     report.Processed,
		"updated":       report.Updated,
		"skipped_empty": report.SkippedEmpty,
		"unchanged":     report.Unchanged,
	}), "reconcile job finished")
	return nil
}
