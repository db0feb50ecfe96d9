package projection

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"roster-lab/domain/roster"

	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *RosterIndex {
	t.Helper()
	writer, err := OpenWriter("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewRosterIndex(writer, slog.Default(), 50)
}

func match(id, name, sport string, capacity int) roster.Roster {
	ros := roster.New(id, roster.KindMatch, name, "owner", "venue", capacity, time.Now().UTC())
	ros.Sport = sport
	return ros
}

func Test_Roster_Index_Search(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	tigers := roster.New("t1", roster.KindTeam, "Tigers Futbol Club", "cap", "", 12, time.Now().UTC())
	tigers.Sport = "futbol"
	req.NoError(index.Rebuild([]roster.Roster{
		match("m1", "Sunday 5v5 Palermo", "futbol", 10),
		match("m2", "Sunday Padel", "padel", 4),
		tigers,
	}))

	t.Run("should match word prefixes whatever the case", func(t *testing.T) {
		req := require.New(t)
		ids, err := index.Search(ctx, roster.SearchQuery{Term: "SUN"})
		req.NoError(err)
		req.ElementsMatch([]string{"m1", "m2"}, ids)

		ids, err = index.Search(ctx, roster.SearchQuery{Term: "sun pal"})
		req.NoError(err)
		req.Equal([]string{"m1"}, ids)
	})

	t.Run("should narrow by kind and sport", func(t *testing.T) {
		req := require.New(t)
		ids, err := index.Search(ctx, roster.SearchQuery{Kind: roster.KindMatch, Sport: "Futbol"})
		req.NoError(err)
		req.Equal([]string{"m1"}, ids)

		ids, err = index.Search(ctx, roster.SearchQuery{Term: "tig", Kind: roster.KindTeam})
		req.NoError(err)
		req.Equal([]string{"t1"}, ids)
	})

	t.Run("should find nothing for an unknown word", func(t *testing.T) {
		req := require.New(t)
		ids, err := index.Search(ctx, roster.SearchQuery{Term: "tennis"})
		req.NoError(err)
		req.Empty(ids)
	})
}

func Test_Roster_Index_Follows_Status(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	sunday := match("m1", "Sunday", "futbol", 2)
	req.NoError(index.Index(sunday))
	ids, err := index.Search(ctx, roster.SearchQuery{Term: "sunday"})
	req.NoError(err)
	req.Equal([]string{"m1"}, ids)

	full := sunday.WithMembers([]string{"owner", "ana"})
	req.Equal(roster.StatusFull, full.Status)
	req.NoError(index.Index(full))
	ids, err = index.Search(ctx, roster.SearchQuery{Term: "sunday"})
	req.NoError(err)
	req.Empty(ids)

	reopened := full.WithMembers([]string{"owner"})
	req.NoError(index.Index(reopened))
	ids, err = index.Search(ctx, roster.SearchQuery{Term: "sunday"})
	req.NoError(err)
	req.Equal([]string{"m1"}, ids)

	closed := reopened
	closed.Status = roster.StatusClosed
	req.NoError(index.Index(closed))
	ids, err = index.Search(ctx, roster.SearchQuery{})
	req.NoError(err)
	req.Empty(ids)
}
