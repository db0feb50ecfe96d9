package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"roster-lab/domain/event"
	"roster-lab/domain/roster"
	"roster-lab/errors"
	"roster-lab/mocks"
	"roster-lab/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func openDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newRosterRepository(t *testing.T) *repositories.RosterRepository {
	return repositories.NewRosterRepository(openDB(t), slog.Default(), 50, time.Millisecond)
}

// recordingPublisher keeps every published event, safe for concurrent use.
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (p *recordingPublisher) Publish(e event.DomainEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func createMatch(t *testing.T, service *MembershipService, capacity int, members ...string) roster.Roster {
	t.Helper()
	ctx := context.Background()
	created, err := service.CreateRoster(ctx, roster.CreateRosterCommand{
		ID: "m1", Kind: roster.KindMatch, Name: "Sunday", OwnerID: "cap", OperatorID: "venue", Capacity: capacity,
	})
	require.NoError(t, err)
	if len(members) > 0 {
		require.NoError(t, service.Join(ctx, roster.JoinCommand{RosterID: created.ID, CallerID: "cap", CandidateIDs: members}))
	}
	return created
}

func Test_Batch_Join_Counts_Only_New_Slots(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := newRosterRepository(t)
	publisher := &recordingPublisher{}
	service := NewMembershipService(repo, publisher, slog.Default())
	createMatch(t, service, 4, "u2")

	err := service.Join(ctx, roster.JoinCommand{RosterID: "m1", CallerID: "u2", CandidateIDs: []string{"u2", "u3", "u4"}})
	req.NoError(err)

	ros, err := repo.Get(ctx, "m1")
	req.NoError(err)
	req.Equal([]string{"cap", "u2", "u3", "u4"}, ros.Members)
	req.Equal(4, ros.MemberCount)
	req.Zero(ros.Remaining())
	req.Equal(roster.StatusFull, ros.Status)

	req.Len(publisher.events, 3)
	req.IsType(event.RosterCreated{}, publisher.events[0])
	joined := publisher.events[2].(event.MembershipChanged)
	req.Equal(event.ActionJoined, joined.Action)
	req.Equal([]string{"u3", "u4"}, joined.Affected)
	req.Equal("u2", joined.ActorID)
}

func Test_Fifth_Join_Exceeds_Capacity_And_Changes_Nothing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := newRosterRepository(t)
	service := NewMembershipService(repo, &recordingPublisher{}, slog.Default())
	createMatch(t, service, 5)

	for _, user := range []string{"u1", "u2", "u3", "u4"} {
		req.NoError(service.Join(ctx, roster.JoinCommand{RosterID: "m1", CallerID: user}))
	}
	before, err := repo.Get(ctx, "m1")
	req.NoError(err)

	err = service.Join(ctx, roster.JoinCommand{RosterID: "m1", CallerID: "u5"})
	req.ErrorIs(err, errors.ErrCapacityExceeded)

	after, err := repo.Get(ctx, "m1")
	req.NoError(err)
	req.Equal(before, after)
	req.Equal(5, after.MemberCount)
}

func Test_Join_Twice_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newRosterRepository(t)
	publisher := mocks.NewMockIPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.AssignableToTypeOf(event.RosterCreated{})).Times(1)
	service := NewMembershipService(repo, publisher, slog.Default())
	_, err := service.CreateRoster(ctx, roster.CreateRosterCommand{
		ID: "t1", Kind: roster.KindTeam, Name: "Tigers", OwnerID: "cap", Capacity: 10,
	})
	req.NoError(err)

	// Only the first join commits, so only one event goes out
	publisher.EXPECT().Publish(gomock.AssignableToTypeOf(event.MembershipChanged{})).Times(1)

	req.NoError(service.Join(ctx, roster.JoinCommand{RosterID: "t1", CallerID: "ana"}))
	first, err := repo.Get(ctx, "t1")
	req.NoError(err)

	req.NoError(service.Join(ctx, roster.JoinCommand{RosterID: "t1", CallerID: "ana"}))
	second, err := repo.Get(ctx, "t1")
	req.NoError(err)
	req.Equal(first.Members, second.Members)
	req.Equal(first.Version, second.Version)
}

func Test_Owner_Cannot_Leave(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := newRosterRepository(t)
	publisher := mocks.NewMockIPublisher(ctrl)
	// Creation and the join of u1, nothing for the refused leave
	publisher.EXPECT().Publish(gomock.Any()).Times(2)
	service := NewMembershipService(repo, publisher, slog.Default())
	createMatch(t, service, 5, "u1")

	err := service.Leave(ctx, roster.LeaveCommand{RosterID: "m1", UserID: "cap"})
	req.ErrorIs(err, errors.ErrOwnerCannotLeave)
}

func Test_Leave_Absent_User_Is_A_No_Op(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := newRosterRepository(t)
	publisher := &recordingPublisher{}
	service := NewMembershipService(repo, publisher, slog.Default())
	createMatch(t, service, 5, "u1")
	before, err := repo.Get(ctx, "m1")
	req.NoError(err)

	req.NoError(service.Leave(ctx, roster.LeaveCommand{RosterID: "m1", UserID: "ghost"}))

	after, err := repo.Get(ctx, "m1")
	req.NoError(err)
	req.Equal(before, after)
	req.Len(publisher.events, 2)
}

func Test_Leave_Removes_Member_And_Publishes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := newRosterRepository(t)
	publisher := &recordingPublisher{}
	service := NewMembershipService(repo, publisher, slog.Default())
	createMatch(t, service, 2, "u1")

	req.NoError(service.Leave(ctx, roster.LeaveCommand{RosterID: "m1", UserID: "u1", DisplayName: "Uma"}))

	ros, err := repo.Get(ctx, "m1")
	req.NoError(err)
	req.Equal([]string{"cap"}, ros.Members)
	req.Equal(1, ros.MemberCount)
	req.Equal(roster.StatusOpen, ros.Status)

	left := publisher.events[len(publisher.events)-1].(event.MembershipChanged)
	req.Equal(event.ActionLeft, left.Action)
	req.Equal([]string{"u1"}, left.Affected)
	req.Equal("Uma", left.ActorName)
	req.Equal(ros.Version, left.Version)
}

func Test_Join_Unknown_Roster(t *testing.T) {
	req := require.New(t)
	service := NewMembershipService(newRosterRepository(t), &recordingPublisher{}, slog.Default())

	err := service.Join(context.Background(), roster.JoinCommand{RosterID: "missing", CallerID: "ana"})
	req.ErrorIs(err, errors.ErrRosterNotFound)
}

func Test_Closed_Roster_Rejects_Joins_But_Not_Leaves(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := newRosterRepository(t)
	publisher := &recordingPublisher{}
	service := NewMembershipService(repo, publisher, slog.Default())
	createMatch(t, service, 5, "u1")

	req.ErrorIs(service.CloseRoster(ctx, "m1", "u1"), errors.ErrPermissionDenied)
	req.NoError(service.CloseRoster(ctx, "m1", "venue"))
	req.NoError(service.CloseRoster(ctx, "m1", "cap"))
	closed := lo.Filter(publisher.events, func(e event.DomainEvent, _ int) bool {
		_, ok := e.(event.RosterClosed)
		return ok
	})
	req.Len(closed, 1)
	req.Equal("venue", closed[0].(event.RosterClosed).ActorID)

	err := service.Join(ctx, roster.JoinCommand{RosterID: "m1", CallerID: "u2"})
	req.ErrorIs(err, errors.ErrRosterClosed)
	// A member joining again is still a no-op
	req.NoError(service.Join(ctx, roster.JoinCommand{RosterID: "m1", CallerID: "u1"}))
	err = service.Join(ctx, roster.JoinCommand{RosterID: "m1", CallerID: "u1", CandidateIDs: []string{"u1", "u2"}})
	req.ErrorIs(err, errors.ErrRosterClosed)

	req.NoError(service.Leave(ctx, roster.LeaveCommand{RosterID: "m1", UserID: "u1"}))
	ros, err := repo.Get(ctx, "m1")
	req.NoError(err)
	req.Equal(roster.StatusClosed, ros.Status)
	req.Equal([]string{"cap"}, ros.Members)
}

func Test_Team_Joins_Match_All_Or_Nothing(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := newRosterRepository(t)
	publisher := &recordingPublisher{}
	service := NewMembershipService(repo, publisher, slog.Default())
	createMatch(t, service, 4)

	_, err := service.CreateRoster(ctx, roster.CreateRosterCommand{ID: "big", Kind: roster.KindTeam, Name: "Giants", OwnerID: "g1", Capacity: 10})
	req.NoError(err)
	req.NoError(service.Join(ctx, roster.JoinCommand{RosterID: "big", CallerID: "g1", CandidateIDs: []string{"g2", "g3", "g4"}}))

	err = service.JoinTeamIntoMatch(ctx, "m1", "big", "g1", "Gina")
	req.ErrorIs(err, errors.ErrCapacityExceeded)
	ros, err := repo.Get(ctx, "m1")
	req.NoError(err)
	req.Equal([]string{"cap"}, ros.Members)

	_, err = service.CreateRoster(ctx, roster.CreateRosterCommand{ID: "small", Kind: roster.KindTeam, Name: "Tigers", OwnerID: "t1", Capacity: 10})
	req.NoError(err)
	req.NoError(service.Join(ctx, roster.JoinCommand{RosterID: "small", CallerID: "t1", CandidateIDs: []string{"t2"}}))

	req.NoError(service.JoinTeamIntoMatch(ctx, "m1", "small", "t1", "Tom"))
	ros, err = repo.Get(ctx, "m1")
	req.NoError(err)
	req.Equal([]string{"cap", "t1", "t2"}, ros.Members)

	joined := publisher.events[len(publisher.events)-1].(event.MembershipChanged)
	req.Equal("Tigers", joined.TeamName)
	req.Equal([]string{"t1", "t2"}, joined.Affected)
}

func Test_Join_Team_Into_Match_Needs_A_Team(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	service := NewMembershipService(newRosterRepository(t), &recordingPublisher{}, slog.Default())
	createMatch(t, service, 4)

	err := service.JoinTeamIntoMatch(ctx, "m1", "m1", "cap", "")
	req.ErrorIs(err, errors.ErrInvalidCommand)
}

func Test_Concurrent_Joins_Keep_Counter_Exact(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repo := newRosterRepository(t)
	publisher := &recordingPublisher{}
	service := NewMembershipService(repo, publisher, slog.Default())
	createMatch(t, service, 8)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = service.Join(ctx, roster.JoinCommand{RosterID: "m1", CallerID: fmt.Sprintf("u%02d", i)})
		}()
	}
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
			continue
		}
		req.ErrorIs(err, errors.ErrCapacityExceeded)
	}
	req.Equal(7, accepted)

	ros, err := repo.Get(ctx, "m1")
	req.NoError(err)
	req.NoError(ros.CheckInvariants())
	req.Equal(8, ros.MemberCount)
	req.Len(publisher.events, 8)
}

func Test_Create_Roster_Validates_And_Generates_Id(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	service := NewMembershipService(newRosterRepository(t), &recordingPublisher{}, slog.Default())

	_, err := service.CreateRoster(ctx, roster.CreateRosterCommand{Kind: roster.KindMatch, Name: "", OwnerID: "cap", Capacity: 4})
	req.ErrorIs(err, errors.ErrInvalidCommand)

	created, err := service.CreateRoster(ctx, roster.CreateRosterCommand{Kind: roster.KindMatch, Name: "Sunday", OwnerID: "cap", Capacity: 4})
	req.NoError(err)
	req.NotEmpty(created.ID)
	req.Equal([]string{"cap"}, created.Members)
}

func Test_Conflict_Exhaustion_Surfaces_As_Conflict(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockIRosterRepository(ctrl)
	repo.EXPECT().
		Transact(gomock.Any(), "m1", gomock.Any()).
		Return(roster.Roster{}, fmt.Errorf("%w: roster m1 after 8 attempts", errors.ErrConflict))

	publisher := mocks.NewMockIPublisher(ctrl)
	service := NewMembershipService(repo, publisher, slog.Default())

	err := service.Join(context.Background(), roster.JoinCommand{RosterID: "m1", CallerID: "ana"})
	req.ErrorIs(err, errors.ErrConflict)
}
