package event

import (
	"fmt"
	"time"

	"roster-lab/domain/roster"

	"github.com/google/uuid"
)

type Action string

const (
	ActionJoined Action = "joined"
	ActionLeft   Action = "left"
)

// MembershipChanged is emitted once per committed Join or Leave.
// Members is the committed member set, Affected the ids added or removed.
type MembershipChanged struct {
	MutationID uuid.UUID
	Roster     string
	Kind       roster.Kind
	Name       string
	Version    uint64
	Action     Action
	ActorID    string
	ActorName  string
	TeamName   string
	Affected   []string
	Members    []string
	OwnerID    string
	OperatorID string
	At         time.Time
}

func (m MembershipChanged) RosterID() string {
	return m.Roster
}

// DispatchKey identifies one dispatch of this mutation. It is recorded on every
// side-effect record but nothing deduplicates on it yet.
func (m MembershipChanged) DispatchKey() string {
	return fmt.Sprintf("%s:v%d:%s", m.Roster, m.Version, m.MutationID)
}

func NewMembershipChanged(r roster.Roster, action Action, actorID, actorName string, affected []string) MembershipChanged {
	return MembershipChanged{
		MutationID: uuid.New(),
		Roster:     r.ID,
		Kind:       r.Kind,
		Name:       r.Name,
		Version:    r.Version,
		Action:     action,
		ActorID:    actorID,
		ActorName:  actorName,
		Affected:   affected,
		Members:    r.UniqueMembers(),
		OwnerID:    r.OwnerID,
		OperatorID: r.OperatorID,
		At:         r.UpdatedAt,
	}
}
