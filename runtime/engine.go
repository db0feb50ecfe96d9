// Package runtime wires the roster stores, services and side-effect workers.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"roster-lab/contract"
	"roster-lab/domain/event"
	"roster-lab/domain/roster"
	"roster-lab/observability"
	"roster-lab/projection"
	"roster-lab/repositories"
	"roster-lab/runtime/workers"
	"roster-lab/services"
	"roster-lab/sink"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
)

var _ contract.IPublisher = (*Engine)(nil)

type Options struct {
	EventBufferSize   int
	NumberOfWorkers   int
	MaxTxAttempts     int
	TxRetryDelay      time.Duration
	ReconcileInterval time.Duration
	RestartInterval   time.Duration
	LimitMessages     *int
	SearchLimit       int

	MetricInterval       time.Duration
	LowCapacityThreshold int
}

// Engine is the library surface. Mutations commit synchronously, their side
// effects run on supervised workers fed by a buffered channel.
type Engine struct {
	mu            sync.Mutex
	log           *slog.Logger
	options       Options
	events        chan event.DomainEvent
	supervisor    contract.ISupervisor
	membership    services.IMembershipService
	reader        services.IRosterReader
	reconciler    contract.IReconciler
	dispatcher    contract.IDispatcher
	Rosters       repositories.IRosterRepository
	Chats         repositories.IChatRepository
	Notifications repositories.INotificationRepository
	Profiles      repositories.IProfileRepository
	Index         *projection.RosterIndex
	Monitoring    *observability.MonitoringManager
	cancel        context.CancelFunc
	done          chan struct{}
}

// NewEngine builds the engine over an open store and search index writer.
// The caller owns both and closes them after Stop.
func NewEngine(log *slog.Logger, db *badger.DB, writer *bluge.Writer, options Options) *Engine {
	e := &Engine{
		log:           log,
		options:       options,
		events:        make(chan event.DomainEvent, options.EventBufferSize),
		supervisor:    workers.NewSupervisor(log, options.RestartInterval),
		Rosters:       repositories.NewRosterRepository(db, log, options.MaxTxAttempts, options.TxRetryDelay),
		Chats:         repositories.NewChatRepository(db, log, options.LimitMessages, options.MaxTxAttempts, options.TxRetryDelay),
		Notifications: repositories.NewNotificationRepository(db, log),
		Profiles:      repositories.NewProfileRepository(db),
		Index:         projection.NewRosterIndex(writer, log, options.SearchLimit),
		Monitoring:    observability.NewMonitoringManager(log),
	}
	reconciler := services.NewReconciler(e.Rosters, log)
	e.reconciler = reconciler
	e.membership = services.NewMembershipService(e.Rosters, e, log)
	e.reader = services.NewRosterReader(e.Rosters, e.Profiles, reconciler, e.Index, log)
	e.dispatcher = sink.NewDispatcher(log,
		sink.NewChatSink(e.Chats, log),
		sink.NewNotificationSink(e.Notifications, log),
		sink.NewSearchSink(e.Rosters, e.Index, log),
		sink.NewMonitoringSink(e.Monitoring),
	)
	return e
}

// RebuildIndex reindexes every stored roster. Run it once before Start so
// search also covers rosters written by an earlier process.
func (e *Engine) RebuildIndex(ctx context.Context) error {
	rosters, err := e.Rosters.List(ctx)
	if err != nil {
		return err
	}
	return e.Index.Rebuild(rosters)
}

// Publish hands a committed event to the side-effect workers.
// It never blocks: when the buffer is full the event is dropped.
func (e *Engine) Publish(evt event.DomainEvent) {
	select {
	case e.events <- evt:
	default:
		e.Monitoring.IncrDroppedEvents()
		e.log.Warn("Side-effect buffer full, dropping event", "roster", evt.RosterID())
	}
}

// Start registers the workers and runs the supervisor in the background.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done != nil {
		return
	}

	for i := 0; i < max(1, e.options.NumberOfWorkers); i++ {
		e.supervisor.Add(workers.NewSideEffectWorker(e.events, e.dispatcher, e.log))
	}
	if e.options.ReconcileInterval > 0 {
		e.supervisor.Add(workers.NewReconcileWorker(e.reconciler, e.options.ReconcileInterval, e.log))
	}
	if e.options.MetricInterval > 0 {
		e.supervisor.Add(workers.NewChannelCapacityWorker(e.log,
			[]workers.NamedChannel{{Name: "side_effects", Channel: e.events}},
			e.options.MetricInterval, e.options.LowCapacityThreshold))
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	e.cancel = cancel
	e.done = done
	go func() {
		defer close(done)
		e.log.Info("Starting engine and all supervised workers")
		e.supervisor.Run(runCtx)
	}()
}

// Stop cancels the workers and waits for them. Events still buffered are lost.
func (e *Engine) Stop() {
	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.mu.Unlock()
	if done == nil {
		return
	}
	e.log.Info("Requesting engine shutdown")
	e.supervisor.Stop()
	cancel()
	<-done
}

func (e *Engine) CreateRoster(ctx context.Context, cmd roster.CreateRosterCommand) (roster.Roster, error) {
	return e.membership.CreateRoster(ctx, cmd)
}

func (e *Engine) Join(ctx context.Context, cmd roster.JoinCommand) error {
	return e.membership.Join(ctx, cmd)
}

func (e *Engine) JoinTeamIntoMatch(ctx context.Context, matchID, teamID, callerID, displayName string) error {
	return e.membership.JoinTeamIntoMatch(ctx, matchID, teamID, callerID, displayName)
}

func (e *Engine) Leave(ctx context.Context, cmd roster.LeaveCommand) error {
	return e.membership.Leave(ctx, cmd)
}

func (e *Engine) CloseRoster(ctx context.Context, rosterID, callerID string) error {
	return e.membership.CloseRoster(ctx, rosterID, callerID)
}

func (e *Engine) GetRoster(ctx context.Context, rosterID string) (roster.Roster, error) {
	return e.reader.GetRoster(ctx, rosterID)
}

func (e *Engine) MemberCount(ctx context.Context, rosterID string) (int, error) {
	return e.reader.MemberCount(ctx, rosterID)
}

func (e *Engine) IsMember(ctx context.Context, rosterID, userID string) (bool, error) {
	return e.reader.IsMember(ctx, rosterID, userID)
}

func (e *Engine) RemainingCapacity(ctx context.Context, rosterID string) (int, error) {
	return e.reader.RemainingCapacity(ctx, rosterID)
}

func (e *Engine) ListMembersWithProfiles(ctx context.Context, rosterID string) ([]roster.MemberView, error) {
	return e.reader.ListMembersWithProfiles(ctx, rosterID)
}

func (e *Engine) ListUserRosters(ctx context.Context, userID string) ([]roster.Roster, error) {
	return e.reader.ListUserRosters(ctx, userID)
}

func (e *Engine) AuditLog(ctx context.Context, rosterID string) ([]roster.AuditEntry, error) {
	return e.reader.AuditLog(ctx, rosterID)
}

func (e *Engine) ListOpenRosters(ctx context.Context, kind roster.Kind) ([]roster.Roster, error) {
	return e.reader.ListOpenRosters(ctx, kind)
}

func (e *Engine) SearchRosters(ctx context.Context, q roster.SearchQuery) ([]roster.Roster, error) {
	return e.reader.SearchRosters(ctx, q)
}

func (e *Engine) Reconcile(ctx context.Context, rosterID string) {
	e.reconciler.Reconcile(ctx, rosterID)
}

func (e *Engine) ReconcileAll(ctx context.Context) {
	e.reconciler.ReconcileAll(ctx)
}

// Pending reports how many committed events wait for their side effects.
func (e *Engine) Pending() int {
	return len(e.events)
}

// Stats is the flat view of the monitoring counters for the debug page.
func (e *Engine) Stats() map[string]any {
	stats := e.Monitoring.Refresh(e.Pending())
	return map[string]any{
		"joins":          stats.Joins,
		"leaves":         stats.Leaves,
		"dropped events": stats.DroppedEvents,
		"pending events": stats.PendingEvents,
		"alloc MB":       stats.AllocMemMb,
		"GC":             stats.NumGC,
		"CPU %":          stats.CPUPercent,
		"RAM %":          stats.RAMPercent,
	}
}
