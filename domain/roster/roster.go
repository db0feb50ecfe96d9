// Package roster contains the core concepts of the membership engine.
// This file defines the Roster aggregate and its invariants.
// No storage, runtime, or transport logic should be added here.
package roster

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

type Kind string

const (
	KindTeam  Kind = "team"
	KindMatch Kind = "match"
)

type Status string

const (
	StatusActive Status = "active"
	StatusOpen   Status = "open"
	StatusFull   Status = "full"
	StatusClosed Status = "closed"
)

// SystemActorID is the reserved author of every system message.
// It never collides with a real user id.
const SystemActorID = "system:roster-lab"

// Roster is a capacity-bounded set of member ids backing a Team or a Match.
// Members is the stored representation and may hold legacy duplicates;
// MemberCount is derived and only trusted after a Reconcile.
type Roster struct {
	ID          string
	Kind        Kind
	Name        string
	Sport       string
	Capacity    int
	Members     []string
	MemberCount int
	OwnerID     string
	OperatorID  string
	Status      Status
	Version     uint64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New builds a roster holding only its owner.
func New(id string, kind Kind, name, ownerID, operatorID string, capacity int, at time.Time) Roster {
	r := Roster{
		ID:          id,
		Kind:        kind,
		Name:        name,
		Capacity:    capacity,
		Members:     []string{ownerID},
		MemberCount: 1,
		OwnerID:     ownerID,
		OperatorID:  operatorID,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	r.RefreshStatus()
	return r
}

// Dedup drops empty ids and duplicates, keeping first-seen order.
func Dedup(ids []string) []string {
	return lo.Uniq(lo.Compact(ids))
}

func (r Roster) UniqueMembers() []string {
	return Dedup(r.Members)
}

// TrueCount is the cardinality of the member set, whatever the stored counter says.
func (r Roster) TrueCount() int {
	return len(r.UniqueMembers())
}

// HasDrift reports a stored counter that diverges from the set cardinality.
func (r Roster) HasDrift() bool {
	return r.MemberCount != r.TrueCount()
}

// Listed reports whether the roster shows up in discovery: a match while it
// is open, a team while it is active.
func (r Roster) Listed() bool {
	return r.Status == StatusOpen || r.Status == StatusActive
}

func (r Roster) Contains(userID string) bool {
	return lo.Contains(r.Members, userID)
}

func (r Roster) ContainsAll(userIDs []string) bool {
	return lo.Every(r.Members, userIDs)
}

func (r Roster) Remaining() int {
	return max(0, r.Capacity-r.TrueCount())
}

// WithMembers returns a copy holding the deduplicated members and the matching counter.
func (r Roster) WithMembers(members []string) Roster {
	next := r
	next.Members = Dedup(members)
	next.MemberCount = len(next.Members)
	next.RefreshStatus()
	return next
}

// RefreshStatus recomputes the derived status. Closed is sticky.
func (r *Roster) RefreshStatus() {
	if r.Status == StatusClosed {
		return
	}
	switch r.Kind {
	case KindMatch:
		if r.TrueCount() >= r.Capacity {
			r.Status = StatusFull
		} else {
			r.Status = StatusOpen
		}
	default:
		r.Status = StatusActive
	}
}

// CheckInvariants returns the first violated invariant, if any.
func (r Roster) CheckInvariants() error {
	unique := r.UniqueMembers()
	switch {
	case len(unique) != len(r.Members):
		return fmt.Errorf("roster %s stores duplicated members %v", r.ID, r.Members)
	case r.MemberCount != len(unique):
		return fmt.Errorf("roster %s counter %d differs from %d members", r.ID, r.MemberCount, len(unique))
	case len(unique) > r.Capacity:
		return fmt.Errorf("roster %s holds %d members over capacity %d", r.ID, len(unique), r.Capacity)
	case !lo.Contains(unique, r.OwnerID):
		return fmt.Errorf("roster %s owner %s is not a member", r.ID, r.OwnerID)
	}
	return nil
}
