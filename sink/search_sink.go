package sink

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"roster-lab/contract"
	"roster-lab/domain/event"
	"roster-lab/errors"
	"roster-lab/repositories"
)

// SearchSink refreshes the roster index after every committed change.
// It indexes the roster as stored now rather than the event snapshot, so
// events handled out of order still leave the latest state behind.
type SearchSink struct {
	rosters repositories.IRosterRepository
	index   contract.IRosterIndex
	log     *slog.Logger
}

func NewSearchSink(rosters repositories.IRosterRepository, index contract.IRosterIndex, log *slog.Logger) SearchSink {
	return SearchSink{rosters: rosters, index: index, log: log}
}

func (s SearchSink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.RosterCreated, event.MembershipChanged, event.RosterClosed:
		return s.refresh(ctx, evt.RosterID())
	default:
		s.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}

func (s SearchSink) refresh(ctx context.Context, rosterID string) error {
	ros, err := s.rosters.Get(ctx, rosterID)
	if stderrors.Is(err, errors.ErrRosterNotFound) {
		s.log.Debug("Roster gone, nothing to index", "roster", rosterID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: search index %s: %w", errors.ErrPartialSideEffect, rosterID, err)
	}
	if err = s.index.Index(ros); err != nil {
		return fmt.Errorf("%w: search index %s: %w", errors.ErrPartialSideEffect, rosterID, err)
	}
	return nil
}
