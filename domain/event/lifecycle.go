package event

import (
	"time"

	"roster-lab/domain/roster"
)

// RosterCreated is emitted once a new roster is stored.
type RosterCreated struct {
	Roster  string
	Kind    roster.Kind
	Name    string
	OwnerID string
	At      time.Time
}

func (r RosterCreated) RosterID() string {
	return r.Roster
}

// RosterClosed is emitted when a roster stops accepting joins.
type RosterClosed struct {
	Roster  string
	ActorID string
	Version uint64
	At      time.Time
}

func (r RosterClosed) RosterID() string {
	return r.Roster
}
