package roster

import "strings"

// SearchQuery finds listed rosters by name. Every word of Term must start a
// word of the roster name. Kind and Sport narrow the result when set.
type SearchQuery struct {
	Term  string `validate:"max=120"`
	Kind  Kind   `validate:"omitempty,oneof=team match"`
	Sport string `validate:"max=40"`
}

func (q SearchQuery) Validate() error {
	return check(q)
}

// Terms are the lowercased words of Term.
func (q SearchQuery) Terms() []string {
	return strings.Fields(strings.ToLower(q.Term))
}

// Admits checks everything but the name: the roster is listed and has the
// requested kind and sport.
func (q SearchQuery) Admits(r Roster) bool {
	return r.Listed() &&
		(q.Kind == "" || r.Kind == q.Kind) &&
		(q.Sport == "" || strings.EqualFold(r.Sport, q.Sport))
}
