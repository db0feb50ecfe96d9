package workers

import (
	"context"
	"log/slog"

	"roster-lab/contract"
	"roster-lab/domain/event"
)

var _ contract.Worker = (*SideEffectWorker)(nil)

// SideEffectWorker drains committed membership events and dispatches them.
// Several of them may share the same channel.
type SideEffectWorker struct {
	events     <-chan event.DomainEvent
	dispatcher contract.IDispatcher
	log        *slog.Logger
}

func NewSideEffectWorker(events <-chan event.DomainEvent, dispatcher contract.IDispatcher, log *slog.Logger) *SideEffectWorker {
	return &SideEffectWorker{events: events, dispatcher: dispatcher, log: log}
}

func (w *SideEffectWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping side effects")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				w.log.Debug("Channel is closed")
				return nil
			}
			w.dispatcher.Dispatch(ctx, evt)
		}
	}
}
