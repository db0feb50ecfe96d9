package e2e

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"roster-lab/domain/roster"
	"roster-lab/errors"

	"github.com/stretchr/testify/suite"
)

type testRosterSuite struct {
	BaseEngineSuite
}

func TestRosterSuite(t *testing.T) {
	suite.Run(t, &testRosterSuite{})
}

func (s *testRosterSuite) TestConcurrentJoinsNeverOverfillAMatch() {
	const capacity = 10
	var match roster.Roster

	s.Run("Step 1: Create a match", func() {
		s.Step("Owner opens a 10 seat match", func(ctx context.Context) {
			var err error
			match, err = s.Engine.CreateRoster(ctx, roster.CreateRosterCommand{
				Kind: roster.KindMatch, Name: "Friday night", OwnerID: "owner", OperatorID: "venue", Capacity: capacity,
			})
			s.Require().NoError(err)
			s.Require().Equal(roster.StatusOpen, match.Status)
		})
	})

	s.Run("Step 2: Players race for the remaining seats", func() {
		s.Step(fmt.Sprintf("%d players join at once", s.Config.Concurrency), func(ctx context.Context) {
			var wg sync.WaitGroup
			var mu sync.Mutex
			accepted, rejected := 0, 0
			for i := range s.Config.Concurrency {
				wg.Add(1)
				go func(caller string) {
					defer wg.Done()
					err := s.Engine.Join(ctx, roster.JoinCommand{RosterID: match.ID, CallerID: caller})
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						accepted++
					case stderrors.Is(err, errors.ErrCapacityExceeded):
						rejected++
					default:
						s.Failf("unexpected join error", "%s: %v", caller, err)
					}
				}(fmt.Sprintf("player-%02d", i))
			}
			wg.Wait()

			s.Require().Equal(capacity-1, accepted)
			s.Require().Equal(s.Config.Concurrency-capacity+1, rejected)
		})
	})

	s.Run("Step 3: The match is exactly full", func() {
		s.Step("Stored roster holds no duplicate and a right counter", func(ctx context.Context) {
			ros, err := s.Engine.GetRoster(ctx, match.ID)
			s.Require().NoError(err)
			s.Dump(ros)
			s.Require().NoError(ros.CheckInvariants())
			s.Require().Equal(capacity, ros.MemberCount)
			s.Require().Equal(roster.StatusFull, ros.Status)

			remaining, err := s.Engine.RemainingCapacity(ctx, match.ID)
			s.Require().NoError(err)
			s.Require().Zero(remaining)
		})
	})
}

func (s *testRosterSuite) TestInterleavedJoinAndLeaveKeepTheCounterExact() {
	s.Step("Members come and go concurrently", func(ctx context.Context) {
		team, err := s.Engine.CreateRoster(ctx, roster.CreateRosterCommand{
			Kind: roster.KindTeam, Name: "Rovers", OwnerID: "captain", Capacity: 100,
		})
		s.Require().NoError(err)

		var wg sync.WaitGroup
		for i := range s.Config.Concurrency {
			wg.Add(1)
			go func(user string) {
				defer wg.Done()
				s.NoError(s.Engine.Join(ctx, roster.JoinCommand{RosterID: team.ID, CallerID: user}))
				if i%2 == 0 {
					s.NoError(s.Engine.Leave(ctx, roster.LeaveCommand{RosterID: team.ID, UserID: user}))
				}
			}(fmt.Sprintf("user-%02d", i))
		}
		wg.Wait()

		ros, err := s.Engine.GetRoster(ctx, team.ID)
		s.Require().NoError(err)
		s.Require().NoError(ros.CheckInvariants())
		s.Require().Equal(1+s.Config.Concurrency/2, ros.MemberCount)
	})
}

func (s *testRosterSuite) TestTeamJoinsMatchAllOrNothing() {
	var match roster.Roster

	s.Run("Step 1: A six player team does not fit in five seats", func() {
		s.Step("Whole team rejected", func(ctx context.Context) {
			team, err := s.Engine.CreateRoster(ctx, roster.CreateRosterCommand{
				ID: "big-team", Kind: roster.KindTeam, Name: "Giants", OwnerID: "g1", Capacity: 10,
			})
			s.Require().NoError(err)
			s.Require().NoError(s.Engine.Join(ctx, roster.JoinCommand{
				RosterID: team.ID, CallerID: "g1", CandidateIDs: []string{"g2", "g3", "g4", "g5", "g6"},
			}))

			match, err = s.Engine.CreateRoster(ctx, roster.CreateRosterCommand{
				Kind: roster.KindMatch, Name: "Five a side", OwnerID: "host", Capacity: 5,
			})
			s.Require().NoError(err)

			err = s.Engine.JoinTeamIntoMatch(ctx, match.ID, team.ID, "g1", "Gina")
			s.Require().ErrorIs(err, errors.ErrCapacityExceeded)

			count, err := s.Engine.MemberCount(ctx, match.ID)
			s.Require().NoError(err)
			s.Require().Equal(1, count)
		})
	})

	s.Run("Step 2: A three player team fits", func() {
		s.Step("Whole team joins and the chat says so", func(ctx context.Context) {
			team, err := s.Engine.CreateRoster(ctx, roster.CreateRosterCommand{
				ID: "small-team", Kind: roster.KindTeam, Name: "Tigers", OwnerID: "t1", Capacity: 10,
			})
			s.Require().NoError(err)
			s.Require().NoError(s.Engine.Join(ctx, roster.JoinCommand{
				RosterID: team.ID, CallerID: "t1", CandidateIDs: []string{"t2", "t3"},
			}))

			s.Require().NoError(s.Engine.JoinTeamIntoMatch(ctx, match.ID, team.ID, "t1", "Tom"))

			ros, err := s.Engine.GetRoster(ctx, match.ID)
			s.Require().NoError(err)
			s.Require().ElementsMatch([]string{"host", "t1", "t2", "t3"}, ros.Members)

			s.Require().Eventually(func() bool {
				messages, _, err := s.Engine.Chats.GetMessages(ctx, match.ID, nil)
				if err != nil {
					return false
				}
				for _, m := range messages {
					if m.Content == "team Tigers joined the match" && m.AuthorID == roster.SystemActorID {
						return true
					}
				}
				return false
			}, 5*time.Second, 20*time.Millisecond)
		})
	})
}

func (s *testRosterSuite) TestLegacyDuplicatesAreRepairedOnRead() {
	s.Step("A roster written by an old client is healed by the first detail read", func(ctx context.Context) {
		legacy := roster.New("legacy", roster.KindMatch, "Legacy", "A", "", 4, time.Now().UTC())
		legacy.Members = []string{"A", "A", "B"}
		legacy.MemberCount = 3
		s.Require().NoError(s.Engine.Rosters.Create(ctx, legacy))

		count, err := s.Engine.MemberCount(ctx, "legacy")
		s.Require().NoError(err)
		s.Require().Equal(2, count)

		ros, err := s.Engine.GetRoster(ctx, "legacy")
		s.Require().NoError(err)
		s.Dump(ros)
		s.Require().Equal([]string{"A", "B"}, ros.Members)
		s.Require().Equal(2, ros.MemberCount)

		audit, err := s.Engine.AuditLog(ctx, "legacy")
		s.Require().NoError(err)
		s.Require().Len(audit, 1)
		s.Require().Equal(2, audit[0].Expected)
		s.Require().Equal(3, audit[0].Actual)

		s.Engine.Reconcile(ctx, "legacy")
		audit, err = s.Engine.AuditLog(ctx, "legacy")
		s.Require().NoError(err)
		s.Require().Len(audit, 1, "a healthy roster is left alone")
	})
}

func (s *testRosterSuite) TestSideEffectsFollowCommittedChanges() {
	s.Step("Owner and operator hear about joins and leaves, never the actor", func(ctx context.Context) {
		match, err := s.Engine.CreateRoster(ctx, roster.CreateRosterCommand{
			Kind: roster.KindMatch, Name: "Sunday", OwnerID: "owner", OperatorID: "venue", Capacity: 6,
		})
		s.Require().NoError(err)

		s.Require().NoError(s.Engine.Join(ctx, roster.JoinCommand{RosterID: match.ID, CallerID: "ana", DisplayName: "Ana"}))
		s.Require().Eventually(func() bool {
			thread, err := s.Engine.Chats.GetThread(ctx, match.ID)
			return err == nil && thread.LastMessage == "Ana joined the match"
		}, 5*time.Second, 20*time.Millisecond)

		s.Require().NoError(s.Engine.Leave(ctx, roster.LeaveCommand{RosterID: match.ID, UserID: "ana", DisplayName: "Ana"}))

		s.Require().Eventually(func() bool {
			owner, err := s.Engine.Notifications.ListForUser(ctx, "owner")
			if err != nil || len(owner) != 2 {
				return false
			}
			venue, err := s.Engine.Notifications.ListForUser(ctx, "venue")
			return err == nil && len(venue) == 2
		}, 5*time.Second, 20*time.Millisecond)

		ana, err := s.Engine.Notifications.ListForUser(ctx, "ana")
		s.Require().NoError(err)
		s.Require().Empty(ana)

		s.Require().Eventually(func() bool {
			thread, err := s.Engine.Chats.GetThread(ctx, match.ID)
			return err == nil && thread.LastMessage == "Ana left the match"
		}, 5*time.Second, 20*time.Millisecond)

		thread, err := s.Engine.Chats.GetThread(ctx, match.ID)
		s.Require().NoError(err)
		s.Require().Equal([]string{"owner"}, thread.Participants)
	})
}

func (s *testRosterSuite) TestFullMatchesDropOutOfDiscovery() {
	var match roster.Roster

	s.Run("Step 1: A padel match is listed", func() {
		s.Step("Owner opens a 2 seat match", func(ctx context.Context) {
			var err error
			match, err = s.Engine.CreateRoster(ctx, roster.CreateRosterCommand{
				Kind: roster.KindMatch, Name: "Padel at noon", Sport: "padel", OwnerID: "owner", Capacity: 2,
			})
			s.Require().NoError(err)
			s.Require().Eventually(func() bool {
				found, err := s.Engine.SearchRosters(ctx, roster.SearchQuery{Term: "padel", Sport: "padel"})
				return err == nil && len(found) == 1 && found[0].ID == match.ID
			}, 5*time.Second, 20*time.Millisecond)
		})
	})

	s.Run("Step 2: The last seat is taken", func() {
		s.Step("Full match is neither listed nor found", func(ctx context.Context) {
			s.Require().NoError(s.Engine.Join(ctx, roster.JoinCommand{RosterID: match.ID, CallerID: "ana"}))

			open, err := s.Engine.ListOpenRosters(ctx, roster.KindMatch)
			s.Require().NoError(err)
			s.Require().Empty(open)

			found, err := s.Engine.SearchRosters(ctx, roster.SearchQuery{Term: "padel"})
			s.Require().NoError(err)
			s.Require().Empty(found)
		})
	})

	s.Run("Step 3: A seat frees up", func() {
		s.Step("Match comes back to discovery", func(ctx context.Context) {
			s.Require().NoError(s.Engine.Leave(ctx, roster.LeaveCommand{RosterID: match.ID, UserID: "ana"}))

			open, err := s.Engine.ListOpenRosters(ctx, roster.KindMatch)
			s.Require().NoError(err)
			s.Require().Len(open, 1)

			s.Require().Eventually(func() bool {
				found, err := s.Engine.SearchRosters(ctx, roster.SearchQuery{Term: "noon"})
				return err == nil && len(found) == 1
			}, 5*time.Second, 20*time.Millisecond)
		})
	})
}
