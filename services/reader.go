package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"roster-lab/contract"
	"roster-lab/domain/roster"
	apperrors "roster-lab/errors"
	"roster-lab/repositories"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type IRosterReader interface {
	GetRoster(ctx context.Context, rosterID string) (roster.Roster, error)
	MemberCount(ctx context.Context, rosterID string) (int, error)
	IsMember(ctx context.Context, rosterID, userID string) (bool, error)
	RemainingCapacity(ctx context.Context, rosterID string) (int, error)
	ListMembersWithProfiles(ctx context.Context, rosterID string) ([]roster.MemberView, error)
	ListUserRosters(ctx context.Context, userID string) ([]roster.Roster, error)
	AuditLog(ctx context.Context, rosterID string) ([]roster.AuditEntry, error)
	ListOpenRosters(ctx context.Context, kind roster.Kind) ([]roster.Roster, error)
	SearchRosters(ctx context.Context, q roster.SearchQuery) ([]roster.Roster, error)
}

// RosterReader answers from the member set itself, never from the stored
// counter, so its answers stay right until the next reconcile fixes the counter.
type RosterReader struct {
	repo       repositories.IRosterRepository
	profiles   repositories.IProfileRepository
	reconciler contract.IReconciler
	index      contract.IRosterIndex
	log        *slog.Logger
}

func NewRosterReader(repo repositories.IRosterRepository, profiles repositories.IProfileRepository,
	reconciler contract.IReconciler, index contract.IRosterIndex, log *slog.Logger) *RosterReader {
	return &RosterReader{repo: repo, profiles: profiles, reconciler: reconciler, index: index, log: log}
}

// GetRoster is the detail read. A drifted snapshot triggers a reconcile and
// a fresh read; if that read fails the first snapshot is returned.
func (r *RosterReader) GetRoster(ctx context.Context, rosterID string) (roster.Roster, error) {
	ros, err := r.repo.Get(ctx, rosterID)
	if err != nil {
		return roster.Roster{}, err
	}
	if !ros.HasDrift() || r.reconciler == nil {
		return ros, nil
	}
	r.reconciler.Reconcile(ctx, rosterID)
	fresh, err := r.repo.Get(ctx, rosterID)
	if err != nil {
		r.log.Debug("Fresh read after reconcile failed", "roster", rosterID, "error", err)
		return ros, nil
	}
	return fresh, nil
}

func (r *RosterReader) MemberCount(ctx context.Context, rosterID string) (int, error) {
	ros, err := r.repo.Get(ctx, rosterID)
	if err != nil {
		return 0, err
	}
	return ros.TrueCount(), nil
}

func (r *RosterReader) IsMember(ctx context.Context, rosterID, userID string) (bool, error) {
	ros, err := r.repo.Get(ctx, rosterID)
	if err != nil {
		return false, err
	}
	return ros.Contains(userID), nil
}

func (r *RosterReader) RemainingCapacity(ctx context.Context, rosterID string) (int, error) {
	ros, err := r.repo.Get(ctx, rosterID)
	if err != nil {
		return 0, err
	}
	return ros.Remaining(), nil
}

// ListMembersWithProfiles resolves every member in batches of at most
// MaxProfileBatch ids, queried in parallel and merged in roster order.
// A member without a profile gets a placeholder. An access denial on any
// batch fails the whole call with ErrPermissionDenied.
func (r *RosterReader) ListMembersWithProfiles(ctx context.Context, rosterID string) ([]roster.MemberView, error) {
	ros, err := r.repo.Get(ctx, rosterID)
	if err != nil {
		return nil, err
	}
	ids := ros.UniqueMembers()
	batches := lo.Chunk(ids, repositories.MaxProfileBatch)
	results := make([]map[string]repositories.ProfileRecord, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			profiles, err := r.profiles.GetProfiles(gctx, batch)
			if err != nil {
				return err
			}
			results[i] = profiles
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		if errors.Is(err, apperrors.ErrPermissionDenied) {
			r.log.Warn("Profile lookup denied", "roster", rosterID, "error", err)
			return nil, fmt.Errorf("%w: members of roster %s", apperrors.ErrPermissionDenied, rosterID)
		}
		return nil, fmt.Errorf("profile lookup failed for roster %s: %w", rosterID, err)
	}

	merged := lo.Assign(results...)
	return lo.Map(ids, func(id string, _ int) roster.MemberView {
		record, ok := merged[id]
		if !ok {
			return roster.PlaceholderView(id)
		}
		return ToMemberView(id, record)
	}), nil
}

// ListUserRosters returns every roster the user belongs to or owns.
func (r *RosterReader) ListUserRosters(ctx context.Context, userID string) ([]roster.Roster, error) {
	rosters, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(rosters, func(ros roster.Roster, _ int) bool {
		return ros.OwnerID == userID || ros.Contains(userID)
	}), nil
}

func (r *RosterReader) AuditLog(ctx context.Context, rosterID string) ([]roster.AuditEntry, error) {
	if _, err := r.repo.Get(ctx, rosterID); err != nil {
		return nil, err
	}
	return r.repo.ListAudit(ctx, rosterID)
}

// ListOpenRosters returns the rosters one can still join, oldest first:
// open matches and active teams. An empty kind lists both.
func (r *RosterReader) ListOpenRosters(ctx context.Context, kind roster.Kind) ([]roster.Roster, error) {
	q := roster.SearchQuery{Kind: kind}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	rosters, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	listed := lo.Filter(rosters, func(ros roster.Roster, _ int) bool {
		return q.Admits(ros)
	})
	sort.SliceStable(listed, func(i, j int) bool {
		return listed[i].CreatedAt.Before(listed[j].CreatedAt)
	})
	return listed, nil
}

// SearchRosters asks the index for candidates, then loads each one from the
// store and drops those that no longer qualify, so a lagging index can miss a
// roster but never return a stale one. Results are sorted by name.
func (r *RosterReader) SearchRosters(ctx context.Context, q roster.SearchQuery) ([]roster.Roster, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if r.index == nil {
		return nil, fmt.Errorf("%w: no search index", apperrors.ErrInvalidCommand)
	}
	ids, err := r.index.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	found := make([]roster.Roster, 0, len(ids))
	for _, id := range lo.Uniq(ids) {
		ros, err := r.repo.Get(ctx, id)
		if errors.Is(err, apperrors.ErrRosterNotFound) {
			r.log.Debug("Indexed roster is gone", "roster", id)
			continue
		}
		if err != nil {
			return nil, err
		}
		if !q.Admits(ros) {
			r.log.Debug("Indexed roster no longer listed", "roster", id, "status", ros.Status)
			continue
		}
		found = append(found, ros)
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Name != found[j].Name {
			return found[i].Name < found[j].Name
		}
		return found[i].ID < found[j].ID
	})
	return found, nil
}
