package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"roster-lab/contract"
	"roster-lab/domain/event"
	"roster-lab/domain/roster"
	"roster-lab/errors"
	"roster-lab/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IMembershipService interface {
	CreateRoster(ctx context.Context, cmd roster.CreateRosterCommand) (roster.Roster, error)
	Join(ctx context.Context, cmd roster.JoinCommand) error
	JoinTeamIntoMatch(ctx context.Context, matchID, teamID, callerID, displayName string) error
	Leave(ctx context.Context, cmd roster.LeaveCommand) error
	CloseRoster(ctx context.Context, rosterID, callerID string) error
}

// MembershipService is the only writer of roster members besides the Reconciler.
// Every mutation is one optimistic transaction on one roster; side effects are
// published only after the commit.
type MembershipService struct {
	repo      repositories.IRosterRepository
	publisher contract.IPublisher
	log       *slog.Logger
	now       func() time.Time
}

func NewMembershipService(repo repositories.IRosterRepository, publisher contract.IPublisher, log *slog.Logger) *MembershipService {
	return &MembershipService{
		repo:      repo,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *MembershipService) CreateRoster(ctx context.Context, cmd roster.CreateRosterCommand) (roster.Roster, error) {
	if err := cmd.Validate(); err != nil {
		return roster.Roster{}, err
	}
	id := cmd.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := roster.New(id, cmd.Kind, cmd.Name, cmd.OwnerID, cmd.OperatorID, cmd.Capacity, s.now())
	created.Sport = cmd.Sport
	if err := s.repo.Create(ctx, created); err != nil {
		return roster.Roster{}, err
	}
	s.log.Info("Roster created", "roster", id, "kind", cmd.Kind, "capacity", cmd.Capacity)
	s.publisher.Publish(event.RosterCreated{
		Roster:  created.ID,
		Kind:    created.Kind,
		Name:    created.Name,
		OwnerID: created.OwnerID,
		At:      created.CreatedAt,
	})
	return created, nil
}

// Join adds the candidates to the roster, all or nothing.
// Joining when every candidate is already a member is a successful no-op,
// even on a closed roster.
func (s *MembershipService) Join(ctx context.Context, cmd roster.JoinCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	candidates := cmd.Candidates()

	var added []string
	committed, err := s.repo.Transact(ctx, cmd.RosterID, func(current roster.Roster) (*roster.Roster, *roster.AuditEntry, error) {
		added = nil
		if current.ContainsAll(candidates) {
			return nil, nil, nil
		}
		if current.Status == roster.StatusClosed {
			return nil, nil, fmt.Errorf("%w: %s", errors.ErrRosterClosed, current.ID)
		}

		members := current.UniqueMembers()
		union := roster.Dedup(append(members, candidates...))
		needed := len(union) - len(members)
		if len(members)+needed > current.Capacity {
			return nil, nil, fmt.Errorf("%w: roster %s holds %d of %d, %d more requested",
				errors.ErrCapacityExceeded, current.ID, len(members), current.Capacity, needed)
		}

		next := current.WithMembers(union)
		added = lo.Without(union, members...)
		return &next, nil, nil
	})
	if err != nil {
		s.log.Debug("Join rejected", "roster", cmd.RosterID, "caller", cmd.CallerID, "error", err)
		return err
	}
	if len(added) == 0 {
		s.log.Debug("Already a member, nothing to do", "roster", cmd.RosterID, "caller", cmd.CallerID)
		return nil
	}

	s.log.Info("Members joined", "roster", committed.ID, "added", len(added), "count", committed.MemberCount)
	evt := event.NewMembershipChanged(committed, event.ActionJoined, cmd.CallerID, cmd.DisplayName, added)
	evt.TeamName = cmd.TeamName
	s.publisher.Publish(evt)
	return nil
}

// JoinTeamIntoMatch reads the team once and joins its members into the match.
// The two rosters are not updated atomically: the team read and the match
// write are separate transactions.
func (s *MembershipService) JoinTeamIntoMatch(ctx context.Context, matchID, teamID, callerID, displayName string) error {
	team, err := s.repo.Get(ctx, teamID)
	if err != nil {
		return err
	}
	if team.Kind != roster.KindTeam {
		return fmt.Errorf("%w: roster %s is not a team", errors.ErrInvalidCommand, teamID)
	}
	return s.Join(ctx, roster.JoinCommand{
		RosterID:     matchID,
		CallerID:     callerID,
		CandidateIDs: team.UniqueMembers(),
		DisplayName:  displayName,
		TeamName:     team.Name,
	})
}

// Leave removes the user. The owner can never leave; leaving a roster one is
// not part of is a successful no-op.
func (s *MembershipService) Leave(ctx context.Context, cmd roster.LeaveCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	removed := false
	committed, err := s.repo.Transact(ctx, cmd.RosterID, func(current roster.Roster) (*roster.Roster, *roster.AuditEntry, error) {
		removed = false
		if current.OwnerID == cmd.UserID {
			return nil, nil, fmt.Errorf("%w: %s owns roster %s", errors.ErrOwnerCannotLeave, cmd.UserID, current.ID)
		}
		members := current.UniqueMembers()
		if !lo.Contains(members, cmd.UserID) {
			return nil, nil, nil
		}
		next := current.WithMembers(lo.Without(members, cmd.UserID))
		removed = true
		return &next, nil, nil
	})
	if err != nil {
		s.log.Debug("Leave rejected", "roster", cmd.RosterID, "user", cmd.UserID, "error", err)
		return err
	}
	if !removed {
		s.log.Debug("Not a member, nothing to do", "roster", cmd.RosterID, "user", cmd.UserID)
		return nil
	}

	s.log.Info("Member left", "roster", committed.ID, "user", cmd.UserID, "count", committed.MemberCount)
	s.publisher.Publish(event.NewMembershipChanged(committed, event.ActionLeft, cmd.UserID, cmd.DisplayName, []string{cmd.UserID}))
	return nil
}

// CloseRoster stops further joins. Only the owner or the operator may close;
// closing twice is a no-op.
func (s *MembershipService) CloseRoster(ctx context.Context, rosterID, callerID string) error {
	closed := false
	committed, err := s.repo.Transact(ctx, rosterID, func(current roster.Roster) (*roster.Roster, *roster.AuditEntry, error) {
		closed = false
		if callerID == "" || (callerID != current.OwnerID && callerID != current.OperatorID) {
			return nil, nil, fmt.Errorf("%w: %s cannot close roster %s", errors.ErrPermissionDenied, callerID, current.ID)
		}
		if current.Status == roster.StatusClosed {
			return nil, nil, nil
		}
		next := current
		next.Status = roster.StatusClosed
		closed = true
		return &next, nil, nil
	})
	if err != nil {
		return err
	}
	if !closed {
		return nil
	}
	s.log.Info("Roster closed", "roster", rosterID, "by", callerID)
	s.publisher.Publish(event.RosterClosed{
		Roster:  committed.ID,
		ActorID: callerID,
		Version: committed.Version,
		At:      committed.UpdatedAt,
	})
	return nil
}
