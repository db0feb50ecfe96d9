package sink

import (
	"context"
	"fmt"
	"log/slog"

	"roster-lab/contract"
	"roster-lab/domain/event"
	"roster-lab/errors"
)

var _ contract.IDispatcher = (*Dispatcher)(nil)

// Dispatcher propagates a committed roster event to every sink.
//
// It is best-effort: each sink is attempted once, in order, and a failing or
// panicking sink is logged and skipped. Nothing is retried and nothing is
// deduplicated, so a replayed event produces duplicate records downstream.
type Dispatcher struct {
	log   *slog.Logger
	sinks []contract.EventSink
}

func NewDispatcher(log *slog.Logger, sinks ...contract.EventSink) *Dispatcher {
	return &Dispatcher{log: log, sinks: sinks}
}

func (d *Dispatcher) Dispatch(ctx context.Context, e event.DomainEvent) {
	for _, s := range d.sinks {
		if err := d.consume(ctx, s, e); err != nil {
			d.log.Warn("Side effect failed",
				"sink", contract.GetTypeName(s),
				"roster", e.RosterID(),
				"error", err)
		}
	}
}

func (d *Dispatcher) consume(ctx context.Context, s contract.EventSink, e event.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: sink panicked: %v", errors.ErrPartialSideEffect, r)
		}
	}()
	return s.Consume(ctx, e)
}
