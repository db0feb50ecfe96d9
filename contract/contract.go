//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"roster-lab/domain/event"
	"roster-lab/domain/roster"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetTypeName uses reflection to retrieve the type name of a worker or a sink.
// It is used for logging during supervision and dispatch.
func GetTypeName(v any) string {
	if v == nil {
		return "Nil"
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink consumes committed membership events. A sink failure is the
// sink's own problem and never reaches the mutation that emitted the event.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IPublisher hands a committed event over to asynchronous side effects.
// Publish never blocks.
type IPublisher interface {
	Publish(e event.DomainEvent)
}

type IDispatcher interface {
	Dispatch(ctx context.Context, e event.DomainEvent)
}

type IReconciler interface {
	Reconcile(ctx context.Context, rosterID string)
	ReconcileAll(ctx context.Context)
}

// IRosterIndex is the searchable projection of the rosters. It may lag the
// store, so callers re-check what it returns.
type IRosterIndex interface {
	Index(ros roster.Roster) error
	Search(ctx context.Context, q roster.SearchQuery) ([]string, error)
}
