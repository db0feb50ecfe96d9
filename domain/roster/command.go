package roster

import (
	"fmt"

	"roster-lab/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Ids end up inside storage keys, where ':' separates segments.
type CreateRosterCommand struct {
	ID         string `validate:"excludes=:"`
	Kind       Kind   `validate:"required,oneof=team match"`
	Name       string `validate:"required,max=120"`
	Sport      string `validate:"max=40"`
	OwnerID    string `validate:"required,excludes=:"`
	OperatorID string `validate:"excludes=:"`
	Capacity   int    `validate:"min=1"`
}

// JoinCommand adds CandidateIDs to a roster on behalf of CallerID.
// An empty CandidateIDs means the caller joins alone.
// TeamName is set when a whole team is joining a match.
type JoinCommand struct {
	RosterID     string   `validate:"required"`
	CallerID     string   `validate:"required,excludes=:"`
	CandidateIDs []string `validate:"dive,required,excludes=:"`
	DisplayName  string
	TeamName     string
}

type LeaveCommand struct {
	RosterID    string `validate:"required"`
	UserID      string `validate:"required"`
	DisplayName string
}

func (c CreateRosterCommand) Validate() error {
	return check(c)
}

func (c JoinCommand) Validate() error {
	return check(c)
}

func (c LeaveCommand) Validate() error {
	return check(c)
}

// Candidates returns the deduplicated ids to add, defaulting to the caller.
func (c JoinCommand) Candidates() []string {
	if len(c.CandidateIDs) == 0 {
		return []string{c.CallerID}
	}
	return Dedup(c.CandidateIDs)
}

func check(cmd any) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidCommand, err)
	}
	return nil
}
