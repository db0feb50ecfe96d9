//go:generate go run go.uber.org/mock/mockgen -source=roster.go -destination=../mocks/mock_roster_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"roster-lab/domain/roster"
	apperrors "roster-lab/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const (
	rosterPrefix = "roster:"
	auditPrefix  = "audit:"
)

// Mutator receives the freshly read roster and returns the roster to store.
// A nil roster means nothing to write. The audit entry, when set, is written
// in the same transaction.
type Mutator func(current roster.Roster) (*roster.Roster, *roster.AuditEntry, error)

type IRosterRepository interface {
	Create(ctx context.Context, r roster.Roster) error
	Get(ctx context.Context, id string) (roster.Roster, error)
	Transact(ctx context.Context, id string, mutate Mutator) (roster.Roster, error)
	List(ctx context.Context) ([]roster.Roster, error)
	ListAudit(ctx context.Context, rosterID string) ([]roster.AuditEntry, error)
}

type RosterRepository struct {
	db          *badger.DB
	log         *slog.Logger
	maxAttempts int
	retryDelay  time.Duration
	now         func() time.Time
}

func NewRosterRepository(db *badger.DB, log *slog.Logger, maxAttempts int, retryDelay time.Duration) *RosterRepository {
	return &RosterRepository{
		db:          db,
		log:         log,
		maxAttempts: max(1, maxAttempts),
		retryDelay:  retryDelay,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type diskRoster struct {
	ID          string   `json:"id"`
	Kind        string   `json:"kind"`
	Name        string   `json:"name"`
	Sport       string   `json:"sport,omitempty"`
	Capacity    int      `json:"capacity"`
	Members     []string `json:"members"`
	MemberCount int      `json:"memberCount"`
	OwnerID     string   `json:"ownerId"`
	OperatorID  string   `json:"operatorId,omitempty"`
	Status      string   `json:"status"`
	Version     uint64   `json:"version"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
}

type diskAudit struct {
	ID       string   `json:"id"`
	RosterID string   `json:"rosterId"`
	Type     string   `json:"type"`
	Expected int      `json:"expected"`
	Actual   int      `json:"actual"`
	Members  []string `json:"members"`
	At       int64    `json:"at"`
}

// Create stores the roster as given, members included. It refuses to
// overwrite an existing roster.
func (r *RosterRepository) Create(_ context.Context, ros roster.Roster) error {
	if ros.ID == "" || strings.Contains(ros.ID, ":") {
		return fmt.Errorf("%w: roster id %q", apperrors.ErrInvalidCommand, ros.ID)
	}
	data, err := json.Marshal(fromRoster(ros))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		key := rosterKey(ros.ID)
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("%w: %s", apperrors.ErrRosterExists, ros.ID)
		}
		return txn.Set(key, data)
	})
}

func (r *RosterRepository) Get(_ context.Context, id string) (roster.Roster, error) {
	var ros roster.Roster
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		ros, err = readRoster(txn, id)
		return err
	})
	return ros, err
}

// Transact runs one read-validate-write cycle on a single roster inside a
// Badger transaction. A commit losing an optimistic conflict is replayed from
// a fresh read with a jittered backoff, at most maxAttempts times.
func (r *RosterRepository) Transact(ctx context.Context, id string, mutate Mutator) (roster.Roster, error) {
	return retryOnConflict(ctx, r.log, "roster "+id, r.maxAttempts, r.retryDelay, func() (roster.Roster, error) {
		return r.transactOnce(id, mutate)
	})
}

func (r *RosterRepository) transactOnce(id string, mutate Mutator) (roster.Roster, error) {
	var committed roster.Roster
	err := r.db.Update(func(txn *badger.Txn) error {
		current, err := readRoster(txn, id)
		if err != nil {
			return err
		}
		next, audit, err := mutate(current)
		if err != nil {
			return err
		}
		if next == nil {
			committed = current
			return nil
		}
		next.Version = current.Version + 1
		next.UpdatedAt = r.stamp(current.UpdatedAt)
		if err = writeRoster(txn, *next); err != nil {
			return err
		}
		if audit != nil {
			if err = writeAudit(txn, *audit); err != nil {
				return err
			}
		}
		committed = *next
		return nil
	})
	return committed, err
}

// stamp returns the store time, strictly after the previous write of the roster.
func (r *RosterRepository) stamp(previous time.Time) time.Time {
	now := r.now()
	if !now.After(previous) {
		return previous.Add(time.Nanosecond)
	}
	return now
}

func (r *RosterRepository) List(_ context.Context) ([]roster.Roster, error) {
	var rosters []roster.Roster
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(rosterPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				ros, err := DecodeRoster(val)
				if err != nil {
					return err
				}
				rosters = append(rosters, ros)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error during roster scan: %w", err)
	}
	return rosters, nil
}

// ListAudit returns the consistency fixes of a roster, oldest first.
func (r *RosterRepository) ListAudit(_ context.Context, rosterID string) ([]roster.AuditEntry, error) {
	var entries []roster.AuditEntry
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(auditPrefix + rosterID + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var d diskAudit
				if err := json.Unmarshal(val, &d); err != nil {
					return fmt.Errorf("failed to unmarshal audit entry: %w", err)
				}
				entry, err := toAudit(d)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return entries, err
}

// DecodeRoster turns a stored roster value back into the domain type.
func DecodeRoster(val []byte) (roster.Roster, error) {
	var d diskRoster
	if err := json.Unmarshal(val, &d); err != nil {
		return roster.Roster{}, fmt.Errorf("failed to unmarshal roster: %w", err)
	}
	return toRoster(d), nil
}

// RosterIDFromKey strips the storage prefix, or returns "" for a foreign key.
func RosterIDFromKey(key string) string {
	id, ok := strings.CutPrefix(key, rosterPrefix)
	if !ok {
		return ""
	}
	return id
}

func readRoster(txn *badger.Txn, id string) (roster.Roster, error) {
	item, err := txn.Get(rosterKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return roster.Roster{}, fmt.Errorf("%w: %s", apperrors.ErrRosterNotFound, id)
	}
	if err != nil {
		return roster.Roster{}, err
	}
	var ros roster.Roster
	err = item.Value(func(val []byte) error {
		ros, err = DecodeRoster(val)
		return err
	})
	return ros, err
}

func writeRoster(txn *badger.Txn, ros roster.Roster) error {
	data, err := json.Marshal(fromRoster(ros))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return txn.Set(rosterKey(ros.ID), data)
}

// writeAudit keys entries as "audit:{roster}:{timestamp_padded}:{uuid}" so a
// prefix scan returns them in chronological order.
func writeAudit(txn *badger.Txn, entry roster.AuditEntry) error {
	data, err := json.Marshal(fromAudit(entry))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	key := fmt.Sprintf("%s%s:%019d:%s", auditPrefix, entry.RosterID, entry.At.UnixNano(), entry.ID)
	return txn.Set([]byte(key), data)
}

func rosterKey(id string) []byte {
	return []byte(rosterPrefix + id)
}

func fromRoster(r roster.Roster) diskRoster {
	return diskRoster{
		ID:          r.ID,
		Kind:        string(r.Kind),
		Name:        r.Name,
		Sport:       r.Sport,
		Capacity:    r.Capacity,
		Members:     r.Members,
		MemberCount: r.MemberCount,
		OwnerID:     r.OwnerID,
		OperatorID:  r.OperatorID,
		Status:      string(r.Status),
		Version:     r.Version,
		CreatedAt:   r.CreatedAt.UnixNano(),
		UpdatedAt:   r.UpdatedAt.UnixNano(),
	}
}

func toRoster(d diskRoster) roster.Roster {
	return roster.Roster{
		ID:          d.ID,
		Kind:        roster.Kind(d.Kind),
		Name:        d.Name,
		Sport:       d.Sport,
		Capacity:    d.Capacity,
		Members:     d.Members,
		MemberCount: d.MemberCount,
		OwnerID:     d.OwnerID,
		OperatorID:  d.OperatorID,
		Status:      roster.Status(d.Status),
		Version:     d.Version,
		CreatedAt:   time.Unix(0, d.CreatedAt).UTC(),
		UpdatedAt:   time.Unix(0, d.UpdatedAt).UTC(),
	}
}

func fromAudit(a roster.AuditEntry) diskAudit {
	return diskAudit{
		ID:       a.ID.String(),
		RosterID: a.RosterID,
		Type:     a.Type,
		Expected: a.Expected,
		Actual:   a.Actual,
		Members:  a.Members,
		At:       a.At.UnixNano(),
	}
}

func toAudit(d diskAudit) (roster.AuditEntry, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return roster.AuditEntry{}, err
	}
	return roster.AuditEntry{
		ID:       id,
		RosterID: d.RosterID,
		Type:     d.Type,
		Expected: d.Expected,
		Actual:   d.Actual,
		Members:  d.Members,
		At:       time.Unix(0, d.At).UTC(),
	}, nil
}
