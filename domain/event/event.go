package event

// DomainEvent is anything a committed roster mutation emits for side effects.
type DomainEvent interface {
	RosterID() string
}
