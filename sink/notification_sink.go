package sink

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"roster-lab/domain/event"
	"roster-lab/errors"
	"roster-lab/repositories"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// NotificationSink enqueues one notification for the owner and one for the
// operator of the roster, never for the user who acted.
type NotificationSink struct {
	repository repositories.INotificationRepository
	log        *slog.Logger
	now        func() time.Time
}

func NewNotificationSink(repository repositories.INotificationRepository, log *slog.Logger) NotificationSink {
	return NotificationSink{
		repository: repository,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (n NotificationSink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MembershipChanged:
		return n.apply(ctx, evt)
	default:
		n.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}

func (n NotificationSink) apply(ctx context.Context, evt event.MembershipChanged) error {
	var errs []error
	for _, target := range Targets(evt) {
		err := n.repository.Enqueue(ctx, repositories.Notification{
			ID:      uuid.New(),
			UserID:  target,
			Type:    notificationType(evt.Action),
			Title:   title(evt),
			Message: Describe(evt),
			Data: map[string]string{
				"rosterId": evt.Roster,
				"actorId":  evt.ActorID,
			},
			DispatchKey: evt.DispatchKey(),
			CreatedAt:   n.now(),
		})
		if err != nil {
			n.log.Error("Notification not enqueued", "roster", evt.Roster, "user", target, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: notifications %s: %w", errors.ErrPartialSideEffect, evt.Roster, stderrors.Join(errs...))
	}
	return nil
}

// Targets lists who hears about the change: owner and operator, minus the actor.
func Targets(evt event.MembershipChanged) []string {
	targets := lo.Uniq(lo.Compact([]string{evt.OwnerID, evt.OperatorID}))
	return lo.Without(targets, evt.ActorID)
}

func notificationType(action event.Action) repositories.NotificationType {
	if action == event.ActionLeft {
		return repositories.NotificationRosterLeave
	}
	return repositories.NotificationRosterJoin
}
