package repositories

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"roster-lab/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Chat_Thread_Is_Created_Once(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewChatRepository(openDB(t), slog.Default(), nil, 20, time.Millisecond)

	_, err := repository.GetThread(ctx, "m1")
	req.ErrorIs(err, errors.ErrChatNotFound)

	created, err := repository.CreateThreadIfMissing(ctx, ChatThread{RosterID: "m1", Name: "Sunday", Participants: []string{"owner"}})
	req.NoError(err)
	req.True(created)

	created, err = repository.CreateThreadIfMissing(ctx, ChatThread{RosterID: "m1", Name: "Renamed"})
	req.NoError(err)
	req.False(created)

	thread, err := repository.GetThread(ctx, "m1")
	req.NoError(err)
	req.Equal("Sunday", thread.Name)
	req.Equal([]string{"owner"}, thread.Participants)
}

func Test_Append_Message_Moves_Last_Message(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewChatRepository(openDB(t), slog.Default(), nil, 20, time.Millisecond)
	_, err := repository.CreateThreadIfMissing(ctx, ChatThread{RosterID: "m1"})
	req.NoError(err)

	at := time.Now().UTC()
	req.NoError(repository.AppendMessage(ctx, ChatMessage{
		ID: uuid.New(), RosterID: "m1", AuthorID: "system", Content: "Ana joined the match", At: at,
	}))

	thread, err := repository.GetThread(ctx, "m1")
	req.NoError(err)
	req.Equal("Ana joined the match", thread.LastMessage)
	req.True(at.Equal(thread.LastMessageAt))
}

func Test_Set_Participants_Needs_A_Thread(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewChatRepository(openDB(t), slog.Default(), nil, 20, time.Millisecond)

	err := repository.SetParticipants(ctx, "m1", []string{"owner"}, 1)
	req.ErrorIs(err, errors.ErrChatNotFound)

	_, err = repository.CreateThreadIfMissing(ctx, ChatThread{RosterID: "m1"})
	req.NoError(err)
	req.NoError(repository.SetParticipants(ctx, "m1", []string{"owner", "ana"}, 2))

	thread, err := repository.GetThread(ctx, "m1")
	req.NoError(err)
	req.Equal([]string{"owner", "ana"}, thread.Participants)
	req.Equal(uint64(2), thread.ParticipantsVersion)
}

func Test_Set_Participants_Ignores_Older_Versions(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewChatRepository(openDB(t), slog.Default(), nil, 20, time.Millisecond)
	_, err := repository.CreateThreadIfMissing(ctx, ChatThread{RosterID: "m1", Participants: []string{"owner"}, ParticipantsVersion: 1})
	req.NoError(err)

	req.NoError(repository.SetParticipants(ctx, "m1", []string{"owner", "ana", "bruno"}, 4))
	req.NoError(repository.SetParticipants(ctx, "m1", []string{"owner", "ana"}, 3))
	req.NoError(repository.SetParticipants(ctx, "m1", []string{"owner"}, 4))

	thread, err := repository.GetThread(ctx, "m1")
	req.NoError(err)
	req.Equal([]string{"owner", "ana", "bruno"}, thread.Participants)
	req.Equal(uint64(4), thread.ParticipantsVersion)
}

func Test_Append_Message_Keeps_The_Newest_Last_Message(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewChatRepository(openDB(t), slog.Default(), nil, 20, time.Millisecond)
	_, err := repository.CreateThreadIfMissing(ctx, ChatThread{RosterID: "m1"})
	req.NoError(err)

	at := time.Now().UTC()
	req.NoError(repository.AppendMessage(ctx, ChatMessage{ID: uuid.New(), RosterID: "m1", Content: "newer", At: at}))
	req.NoError(repository.AppendMessage(ctx, ChatMessage{ID: uuid.New(), RosterID: "m1", Content: "older", At: at.Add(-time.Second)}))

	thread, err := repository.GetThread(ctx, "m1")
	req.NoError(err)
	req.Equal("newer", thread.LastMessage)

	messages, _, err := repository.GetMessages(ctx, "m1", nil)
	req.NoError(err)
	req.Len(messages, 2)
}

func Test_Concurrent_Appends_Lose_No_Message(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	repository := NewChatRepository(openDB(t), slog.Default(), nil, 100, time.Millisecond)
	_, err := repository.CreateThreadIfMissing(ctx, ChatThread{RosterID: "m1"})
	req.NoError(err)

	var wg sync.WaitGroup
	errs := make([]error, 40)
	at := time.Now().UTC()
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = repository.AppendMessage(ctx, ChatMessage{
				ID: uuid.New(), RosterID: "m1", Content: "hello", At: at.Add(time.Duration(i) * time.Millisecond),
			})
		}()
	}
	wg.Wait()
	for _, err := range errs {
		req.NoError(err)
	}

	messages, _, err := repository.GetMessages(ctx, "m1", nil)
	req.NoError(err)
	req.Len(messages, 40)
	thread, err := repository.GetThread(ctx, "m1")
	req.NoError(err)
	req.True(at.Add(39 * time.Millisecond).Equal(thread.LastMessageAt))
}

func Test_Get_Messages_Newest_First_With_Cursor(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	limit := 2
	repository := NewChatRepository(openDB(t), slog.Default(), &limit, 20, time.Millisecond)

	at := time.Now().UTC()
	for i, content := range []string{"first", "second", "third"} {
		req.NoError(repository.AppendMessage(ctx, ChatMessage{
			ID: uuid.New(), RosterID: "m1", Content: content, At: at.Add(time.Duration(i) * time.Minute),
		}))
	}
	// Another roster never leaks into the scan
	req.NoError(repository.AppendMessage(ctx, ChatMessage{ID: uuid.New(), RosterID: "m2", Content: "other", At: at}))

	page, cursor, err := repository.GetMessages(ctx, "m1", nil)
	req.NoError(err)
	req.Len(page, 2)
	req.Equal("third", page[0].Content)
	req.Equal("second", page[1].Content)

	page, _, err = repository.GetMessages(ctx, "m1", cursor)
	req.NoError(err)
	req.Len(page, 1)
	req.Equal("first", page[0].Content)
}
