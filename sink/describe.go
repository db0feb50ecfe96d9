package sink

import (
	"fmt"

	"roster-lab/domain/event"
)

const someone = "A player"

// Describe renders the system message for a membership change,
// e.g. "Ana joined the team" or "team Tigers joined the match".
func Describe(evt event.MembershipChanged) string {
	actor := evt.ActorName
	if actor == "" {
		actor = someone
	}
	switch {
	case evt.Action == event.ActionLeft:
		return fmt.Sprintf("%s left the %s", actor, evt.Kind)
	case evt.TeamName != "":
		return fmt.Sprintf("team %s joined the %s", evt.TeamName, evt.Kind)
	case len(evt.Affected) > 1:
		return fmt.Sprintf("%s added %d players to the %s", actor, len(evt.Affected), evt.Kind)
	default:
		return fmt.Sprintf("%s joined the %s", actor, evt.Kind)
	}
}

func title(evt event.MembershipChanged) string {
	if evt.Action == event.ActionLeft {
		return fmt.Sprintf("A member left %s", evt.Name)
	}
	return fmt.Sprintf("New members in %s", evt.Name)
}
