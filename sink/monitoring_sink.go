package sink

import (
	"context"

	"roster-lab/domain/event"
	"roster-lab/observability"
)

// MonitoringSink feeds the debug page with committed membership changes.
type MonitoringSink struct {
	monitoring *observability.MonitoringManager
}

func NewMonitoringSink(monitoring *observability.MonitoringManager) MonitoringSink {
	return MonitoringSink{monitoring: monitoring}
}

func (m MonitoringSink) Consume(_ context.Context, e event.DomainEvent) error {
	evt, ok := e.(event.MembershipChanged)
	if !ok {
		return nil
	}
	if evt.Action == event.ActionLeft {
		m.monitoring.IncrLeaves()
	} else {
		m.monitoring.IncrJoins()
	}
	m.monitoring.AddChange(observability.RecentChange{
		Roster:    evt.Roster,
		Action:    string(evt.Action),
		Actor:     evt.ActorID,
		Affected:  len(evt.Affected),
		Version:   evt.Version,
		Timestamp: observability.Stamp(evt.At),
	})
	return nil
}
