package services

import (
	"context"
	"log/slog"
	"time"

	"roster-lab/domain/roster"
	"roster-lab/repositories"
)

// Reconciler repairs drift between a roster's stored counter and its member set.
// It is best-effort: every failure is logged and swallowed, and it can run
// concurrently with Join and Leave since it only writes a count derived from
// the set it just read in the same transaction.
type Reconciler struct {
	repo repositories.IRosterRepository
	log  *slog.Logger
	now  func() time.Time
}

func NewReconciler(repo repositories.IRosterRepository, log *slog.Logger) *Reconciler {
	return &Reconciler{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (r *Reconciler) Reconcile(ctx context.Context, rosterID string) {
	var fix *roster.AuditEntry
	_, err := r.repo.Transact(ctx, rosterID, func(current roster.Roster) (*roster.Roster, *roster.AuditEntry, error) {
		fix = nil
		if !current.HasDrift() {
			return nil, nil, nil
		}
		unique := current.UniqueMembers()
		next := current.WithMembers(unique)
		entry := roster.NewConsistencyFix(current.ID, len(unique), current.MemberCount, unique, r.now())
		fix = &entry
		return &next, &entry, nil
	})
	if err != nil {
		r.log.Warn("Reconcile failed", "roster", rosterID, "error", err)
		return
	}
	if fix != nil {
		r.log.Info("Roster counter repaired", "roster", rosterID, "expected", fix.Expected, "actual", fix.Actual)
	}
}

// ReconcileAll is the scheduled pass. Rosters whose snapshot shows no drift
// are skipped without opening a write transaction.
func (r *Reconciler) ReconcileAll(ctx context.Context) {
	rosters, err := r.repo.List(ctx)
	if err != nil {
		r.log.Warn("Reconcile pass aborted", "error", err)
		return
	}
	drifted := 0
	for _, ros := range rosters {
		if ctx.Err() != nil {
			return
		}
		if !ros.HasDrift() {
			continue
		}
		drifted++
		r.Reconcile(ctx, ros.ID)
	}
	r.log.Debug("Reconcile pass done", "rosters", len(rosters), "drifted", drifted)
}
