// Package projection keeps read-side views of the rosters.
// Views are rebuilt from the store and fed by committed events.
// Nothing here writes to the store.
package projection

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"roster-lab/contract"
	"roster-lab/domain/roster"

	"github.com/blugelabs/bluge"
)

var _ contract.IRosterIndex = (*RosterIndex)(nil)

const (
	fieldID     = "_id"
	fieldName   = "name"
	fieldKind   = "kind"
	fieldSport  = "sport"
	fieldListed = "listed"
)

// RosterIndex is a full-text index of roster names over a bluge writer.
// One document per roster, replaced on every change.
type RosterIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
	limit  int
}

// OpenWriter opens the index on disk, or in memory when path is empty.
func OpenWriter(path string) (*bluge.Writer, error) {
	config := bluge.InMemoryOnlyConfig()
	if path != "" {
		config = bluge.DefaultConfig(path)
	}
	writer, err := bluge.OpenWriter(config)
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return writer, nil
}

func NewRosterIndex(writer *bluge.Writer, log *slog.Logger, limit int) *RosterIndex {
	return &RosterIndex{writer: writer, log: log, limit: max(1, limit)}
}

func (i *RosterIndex) Index(ros roster.Roster) error {
	doc := toDocument(ros)
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("failed to index roster %s: %w", ros.ID, err)
	}
	return nil
}

// Rebuild indexes every given roster in one batch.
func (i *RosterIndex) Rebuild(rosters []roster.Roster) error {
	batch := bluge.NewBatch()
	for _, ros := range rosters {
		doc := toDocument(ros)
		batch.Update(doc.ID(), doc)
	}
	if err := i.writer.Batch(batch); err != nil {
		return fmt.Errorf("failed to rebuild roster index: %w", err)
	}
	i.log.Debug("Roster index rebuilt", "rosters", len(rosters))
	return nil
}

// Search returns the ids of the listed rosters matching q, best match first.
func (i *RosterIndex) Search(ctx context.Context, q roster.SearchQuery) ([]string, error) {
	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewTermQuery(strconv.FormatBool(true)).SetField(fieldListed))
	if q.Kind != "" {
		query.AddMust(bluge.NewTermQuery(string(q.Kind)).SetField(fieldKind))
	}
	if q.Sport != "" {
		query.AddMust(bluge.NewTermQuery(strings.ToLower(q.Sport)).SetField(fieldSport))
	}
	for _, term := range q.Terms() {
		query.AddMust(bluge.NewPrefixQuery(term).SetField(fieldName))
	}

	reader, err := i.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(i.limit, query))
	if err != nil {
		return nil, fmt.Errorf("roster search failed: %w", err)
	}

	var ids []string
	match, err := matches.Next()
	for err == nil && match != nil {
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == fieldID {
				ids = append(ids, string(value))
				return false
			}
			return true
		})
		if err != nil {
			break
		}
		match, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("roster search failed: %w", err)
	}
	return ids, nil
}

func toDocument(ros roster.Roster) *bluge.Document {
	doc := bluge.NewDocument(ros.ID).
		AddField(bluge.NewTextField(fieldName, ros.Name)).
		AddField(bluge.NewKeywordField(fieldKind, string(ros.Kind))).
		AddField(bluge.NewKeywordField(fieldListed, strconv.FormatBool(ros.Listed())))
	if ros.Sport != "" {
		doc.AddField(bluge.NewKeywordField(fieldSport, strings.ToLower(ros.Sport)))
	}
	return doc
}
