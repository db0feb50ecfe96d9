//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const notificationPrefix = "notif:"

type NotificationType string

const (
	NotificationRosterJoin  NotificationType = "roster-join"
	NotificationRosterLeave NotificationType = "roster-leave"
)

type INotificationRepository interface {
	Enqueue(ctx context.Context, notification Notification) error
	ListForUser(ctx context.Context, userID string) ([]Notification, error)
}

type NotificationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNotificationRepository(db *badger.DB, log *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, log: log}
}

// Notification is a record the push collaborator picks up and delivers.
type Notification struct {
	ID          uuid.UUID
	UserID      string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]string
	DispatchKey string
	Read        bool
	CreatedAt   time.Time
}

type diskNotification struct {
	ID          string            `json:"id"`
	UserID      string            `json:"userId"`
	Type        string            `json:"type"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Data        map[string]string `json:"data"`
	DispatchKey string            `json:"dispatchKey"`
	Read        bool              `json:"read"`
	CreatedAt   int64             `json:"createdAt"`
}

// Enqueue stores the notification under "notif:{user}:{timestamp_padded}:{uuid}".
func (n *NotificationRepository) Enqueue(_ context.Context, notification Notification) error {
	key := fmt.Sprintf("%s%s:%019d:%s",
		notificationPrefix,
		notification.UserID,
		notification.CreatedAt.UnixNano(),
		notification.ID)

	data, err := json.Marshal(fromNotification(notification))
	if err != nil {
		return err
	}
	return n.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// ListForUser returns the notifications of a user, oldest first.
func (n *NotificationRepository) ListForUser(_ context.Context, userID string) ([]Notification, error) {
	var notifications []Notification
	prefix := []byte(notificationPrefix + userID + ":")

	err := n.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(v []byte) error {
				var d diskNotification
				if err := json.Unmarshal(v, &d); err != nil {
					return fmt.Errorf("failed to unmarshal notification: %w", err)
				}
				notification, err := toNotification(d)
				if err != nil {
					return err
				}
				notifications = append(notifications, notification)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during notification fetch: %w", err)
	}
	return notifications, nil
}

func fromNotification(n Notification) diskNotification {
	return diskNotification{
		ID:          n.ID.String(),
		UserID:      n.UserID,
		Type:        string(n.Type),
		Title:       n.Title,
		Message:     n.Message,
		Data:        n.Data,
		DispatchKey: n.DispatchKey,
		Read:        n.Read,
		CreatedAt:   n.CreatedAt.UnixNano(),
	}
}

func toNotification(d diskNotification) (Notification, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		ID:          id,
		UserID:      d.UserID,
		Type:        NotificationType(d.Type),
		Title:       d.Title,
		Message:     d.Message,
		Data:        d.Data,
		DispatchKey: d.DispatchKey,
		Read:        d.Read,
		CreatedAt:   time.Unix(0, d.CreatedAt).UTC(),
	}, nil
}
