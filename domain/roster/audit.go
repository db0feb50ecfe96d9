package roster

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const AuditConsistencyFix = "consistency_fix"

// AuditEntry records one counter repair made by the reconciler.
type AuditEntry struct {
	ID       uuid.UUID
	RosterID string
	Type     string
	Expected int
	Actual   int
	Members  []string
	At       time.Time
}

func NewConsistencyFix(rosterID string, expected, actual int, members []string, at time.Time) AuditEntry {
	return AuditEntry{
		ID:       uuid.New(),
		RosterID: rosterID,
		Type:     AuditConsistencyFix,
		Expected: expected,
		Actual:   actual,
		Members:  slices.Clone(members),
		At:       at,
	}
}
