//go:generate go run go.uber.org/mock/mockgen -source=profile.go -destination=../mocks/mock_profile_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "roster-lab/errors"

	"github.com/dgraph-io/badger/v4"
)

const profilePrefix = "profile:"

// MaxProfileBatch is the largest id list one GetProfiles call accepts.
const MaxProfileBatch = 10

// ProfileRecord is a user profile as the profile collaborator stores it.
// Field names vary between records; only the services adapter reads them.
type ProfileRecord map[string]any

type IProfileRepository interface {
	GetProfiles(ctx context.Context, ids []string) (map[string]ProfileRecord, error)
	PutProfile(ctx context.Context, id string, record ProfileRecord) error
}

type ProfileRepository struct {
	db *badger.DB
}

func NewProfileRepository(db *badger.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetProfiles is an "id in list" lookup. Ids without a profile are absent
// from the result.
func (p ProfileRepository) GetProfiles(_ context.Context, ids []string) (map[string]ProfileRecord, error) {
	if len(ids) > MaxProfileBatch {
		return nil, fmt.Errorf("%w: %d ids, at most %d", apperrors.ErrBatchTooLarge, len(ids), MaxProfileBatch)
	}
	profiles := make(map[string]ProfileRecord, len(ids))
	err := p.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			item, err := txn.Get([]byte(profilePrefix + id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			var record ProfileRecord
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal profile %s: %w", id, err)
			}
			profiles[id] = record
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (p ProfileRepository) PutProfile(_ context.Context, id string, record ProfileRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profilePrefix+id), data)
	})
}
