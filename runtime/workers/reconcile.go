package workers

import (
	"context"
	"log/slog"
	"time"

	"roster-lab/contract"
)

var _ contract.Worker = (*ReconcileWorker)(nil)

// ReconcileWorker runs a full reconcile pass on a fixed interval.
// It bounds the drift window to one interval even when nobody reads the roster.
type ReconcileWorker struct {
	reconciler contract.IReconciler
	interval   time.Duration
	log        *slog.Logger
}

func NewReconcileWorker(reconciler contract.IReconciler, interval time.Duration, log *slog.Logger) *ReconcileWorker {
	return &ReconcileWorker{reconciler: reconciler, interval: interval, log: log}
}

func (w *ReconcileWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping scheduled reconcile")
			return nil
		case <-ticker.C:
			w.reconciler.ReconcileAll(ctx)
		}
	}
}
