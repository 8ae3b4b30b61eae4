package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storeadmin-backend/internal/reconcile"
	"github.com/angelmondragon/storeadmin-backend/pkg/logger"
)

type stubReconciler struct {
	report reconcile.Report
	err    error
	runs   int
}

func (s *stubReconciler) Run(context.Context) (reconcile.Report, error) {
	s.runs++
	return s.report, s.err
}

func TestNewReconcileJobRequiresDependencies(t *testing.T) {
	if _, err := NewReconcileJob(ReconcileJobParams{Reconciler: &stubReconciler{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewReconcileJob(ReconcileJobParams{Logger: logger.Nop()}); err == nil {
		t.Fatal("expected error without reconciler")
	}
}

func TestReconcileJobRun(t *testing.T) {
	rec := &stubReconciler{report: reconcile.Report{Processed: 2, Updated: 1}}
	job, err := NewReconcileJob(ReconcileJobParams{Logger: logger.Nop(), Reconciler: rec})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	if job.Name() != ReconcileJobName {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if rec.runs != 1 {
		t.Fatalf("expected 1 run, got %d", rec.runs)
	}
}

func TestReconcileJobPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	job, _ := NewReconcileJob(ReconcileJobParams{Logger: logger.Nop(), Reconciler: &stubReconciler{err: boom}})
	if err := job.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}
