//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "roster-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	threadPrefix  = "chat:"
	messagePrefix = "chatmsg:"
)

type IChatRepository interface {
	GetThread(ctx context.Context, rosterID string) (ChatThread, error)
	CreateThreadIfMissing(ctx context.Context, thread ChatThread) (bool, error)
	AppendMessage(ctx context.Context, message ChatMessage) error
	SetParticipants(ctx context.Context, rosterID string, participants []string, version uint64) error
	GetMessages(ctx context.Context, rosterID string, cursor *string) ([]ChatMessage, *string, error)
}

// ChatRepository is written by several side-effect workers at once. Thread
// updates retry their optimistic conflicts like roster transactions do.
type ChatRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
	maxAttempts   int
	retryDelay    time.Duration
}

func NewChatRepository(db *badger.DB, log *slog.Logger, limitMessages *int, maxAttempts int, retryDelay time.Duration) *ChatRepository {
	return &ChatRepository{
		db:            db,
		log:           log,
		limitMessages: limitMessages,
		maxAttempts:   max(1, maxAttempts),
		retryDelay:    retryDelay,
	}
}

// ChatThread mirrors a roster for the chat collaborator. It is keyed by roster id.
// ParticipantsVersion is the roster version the participant list was taken from.
type ChatThread struct {
	RosterID            string
	Name                string
	Kind                string
	OwnerID             string
	Participants        []string
	ParticipantsVersion uint64
	LastMessage         string
	LastMessageAt       time.Time
}

type ChatMessage struct {
	ID          uuid.UUID
	RosterID    string
	AuthorID    string
	ActorID     string
	Role        string
	Content     string
	DispatchKey string
	At          time.Time
}

type diskThread struct {
	RosterID            string   `json:"rosterId"`
	Name                string   `json:"name"`
	Kind                string   `json:"kind"`
	OwnerID             string   `json:"ownerId"`
	Participants        []string `json:"participantsUids"`
	ParticipantsVersion uint64   `json:"participantsVersion"`
	LastMessage         string   `json:"lastMessage"`
	LastMessageAt       int64    `json:"lastMessageTimestamp"`
}

type diskChatMessage struct {
	ID          string `json:"id"`
	RosterID    string `json:"rosterId"`
	AuthorID    string `json:"authorId"`
	ActorID     string `json:"actorId"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	DispatchKey string `json:"dispatchKey"`
	At          int64  `json:"at"`
}

func (c *ChatRepository) GetThread(_ context.Context, rosterID string) (ChatThread, error) {
	var thread ChatThread
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		thread, err = readThread(txn, rosterID)
		return err
	})
	return thread, err
}

// CreateThreadIfMissing stores the thread unless one already exists for the
// roster. It reports whether it created it.
func (c *ChatRepository) CreateThreadIfMissing(_ context.Context, thread ChatThread) (bool, error) {
	created := false
	err := c.db.Update(func(txn *badger.Txn) error {
		_, err := readThread(txn, thread.RosterID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, apperrors.ErrChatNotFound) {
			return err
		}
		created = true
		return writeThread(txn, thread)
	})
	if errors.Is(err, badger.ErrConflict) {
		// Someone else created it in between.
		return false, nil
	}
	return created, err
}

// AppendMessage persists a message under "chatmsg:{roster}:{timestamp_padded}:{uuid}"
// and then moves the thread's last message forward when the thread exists.
// The message key is written alone: that transaction reads nothing, so it
// cannot lose a conflict.
func (c *ChatRepository) AppendMessage(ctx context.Context, message ChatMessage) error {
	key := fmt.Sprintf("%s%s:%019d:%s", messagePrefix, message.RosterID, message.At.UnixNano(), message.ID)
	data, err := json.Marshal(fromChatMessage(message))
	if err != nil {
		return err
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return err
	}
	return c.updateThread(ctx, message.RosterID, func(thread *ChatThread) bool {
		if message.At.Before(thread.LastMessageAt) {
			return false
		}
		thread.LastMessage = message.Content
		thread.LastMessageAt = message.At
		return true
	}, false)
}

// SetParticipants replaces the participant list with the one taken from the
// given roster version. A list from an older or equal version is ignored, so
// out-of-order dispatches never roll the thread back.
func (c *ChatRepository) SetParticipants(ctx context.Context, rosterID string, participants []string, version uint64) error {
	return c.updateThread(ctx, rosterID, func(thread *ChatThread) bool {
		if version <= thread.ParticipantsVersion {
			c.log.Debug("Stale participant list, skipping", "roster", rosterID,
				"version", version, "current", thread.ParticipantsVersion)
			return false
		}
		thread.Participants = participants
		thread.ParticipantsVersion = version
		return true
	}, true)
}

// updateThread applies change to the stored thread in a retried transaction.
// A missing thread is an error only when mustExist is set.
func (c *ChatRepository) updateThread(ctx context.Context, rosterID string, change func(thread *ChatThread) bool, mustExist bool) error {
	_, err := retryOnConflict(ctx, c.log, "chat "+rosterID, c.maxAttempts, c.retryDelay, func() (struct{}, error) {
		return struct{}{}, c.db.Update(func(txn *badger.Txn) error {
			thread, err := readThread(txn, rosterID)
			if errors.Is(err, apperrors.ErrChatNotFound) && !mustExist {
				return nil
			}
			if err != nil {
				return err
			}
			if !change(&thread) {
				return nil
			}
			return writeThread(txn, thread)
		})
	})
	return err
}

// GetMessages returns the newest messages of a thread first, using a reverse
// prefix scan. The returned cursor resumes right after the last message read.
func (c *ChatRepository) GetMessages(_ context.Context, rosterID string, cursor *string) ([]ChatMessage, *string, error) {
	var messages []ChatMessage
	var lastKey string
	err := c.db.View(func(txn *badger.Txn) error {
		prefixStr := messagePrefix + rosterID + ":"
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			seekKey = append([]byte(prefixStr), []byte("9999999999999999999")...)
		default:
			seekKey = append([]byte(prefixStr), []byte(*cursor)...)
		}
		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if c.limitMessages != nil && len(messages) == *c.limitMessages {
				c.log.Debug(fmt.Sprintf("Maximum of %d message reached", *c.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(val []byte) error {
				var d diskChatMessage
				if err := json.Unmarshal(val, &d); err != nil {
					return err
				}
				message, err := toChatMessage(d)
				if err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return messages, &lastKey, nil
}

func readThread(txn *badger.Txn, rosterID string) (ChatThread, error) {
	item, err := txn.Get([]byte(threadPrefix + rosterID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ChatThread{}, fmt.Errorf("%w: %s", apperrors.ErrChatNotFound, rosterID)
	}
	if err != nil {
		return ChatThread{}, err
	}
	var d diskThread
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &d)
	})
	if err != nil {
		return ChatThread{}, err
	}
	return toThread(d), nil
}

func writeThread(txn *badger.Txn, thread ChatThread) error {
	data, err := json.Marshal(fromThread(thread))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set([]byte(threadPrefix+thread.RosterID), data)
}

func fromThread(t ChatThread) diskThread {
	return diskThread{
		RosterID:            t.RosterID,
		Name:                t.Name,
		Kind:                t.Kind,
		OwnerID:             t.OwnerID,
		Participants:        t.Participants,
		ParticipantsVersion: t.ParticipantsVersion,
		LastMessage:         t.LastMessage,
		LastMessageAt:       t.LastMessageAt.UnixNano(),
	}
}

func toThread(d diskThread) ChatThread {
	return ChatThread{
		RosterID:            d.RosterID,
		Name:                d.Name,
		Kind:                d.Kind,
		OwnerID:             d.OwnerID,
		Participants:        d.Participants,
		ParticipantsVersion: d.ParticipantsVersion,
		LastMessage:         d.LastMessage,
		LastMessageAt:       time.Unix(0, d.LastMessageAt).UTC(),
	}
}

func fromChatMessage(m ChatMessage) diskChatMessage {
	return diskChatMessage{
		ID:          m.ID.String(),
		RosterID:    m.RosterID,
		AuthorID:    m.AuthorID,
		ActorID:     m.ActorID,
		Role:        m.Role,
		Content:     m.Content,
		DispatchKey: m.DispatchKey,
		At:          m.At.UnixNano(),
	}
}

func toChatMessage(d diskChatMessage) (ChatMessage, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{
		ID:          id,
		RosterID:    d.RosterID,
		AuthorID:    d.AuthorID,
		ActorID:     d.ActorID,
		Role:        d.Role,
		Content:     d.Content,
		DispatchKey: d.DispatchKey,
		At:          time.Unix(0, d.At).UTC(),
	}, nil
}
