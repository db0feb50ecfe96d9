package sink

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"roster-lab/domain/event"
	"roster-lab/domain/roster"
	"roster-lab/errors"
	"roster-lab/repositories"

	"github.com/google/uuid"
)

const RoleSystem = "system"

// ChatSink keeps the roster's chat thread in step with its members.
// The system message and the participant list are two independent writes;
// the list carries the roster version so a late event cannot roll it back.
type ChatSink struct {
	repository repositories.IChatRepository
	log        *slog.Logger
	now        func() time.Time
}

func NewChatSink(repository repositories.IChatRepository, log *slog.Logger) ChatSink {
	return ChatSink{
		repository: repository,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (c ChatSink) Consume(ctx context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.MembershipChanged:
		return c.apply(ctx, evt)
	default:
		c.log.Debug(fmt.Sprintf("Not implemented event : %v", evt))
		return nil
	}
}

func (c ChatSink) apply(ctx context.Context, evt event.MembershipChanged) error {
	at := c.now()
	participants := roster.Dedup(append([]string{evt.OwnerID}, evt.Members...))
	content := Describe(evt)

	switch evt.Action {
	case event.ActionJoined:
		created, err := c.repository.CreateThreadIfMissing(ctx, repositories.ChatThread{
			RosterID:            evt.Roster,
			Name:                evt.Name,
			Kind:                string(evt.Kind),
			OwnerID:             evt.OwnerID,
			Participants:        participants,
			ParticipantsVersion: evt.Version,
			LastMessage:         content,
			LastMessageAt:       at,
		})
		if err != nil {
			return fmt.Errorf("%w: chat thread %s: %w", errors.ErrPartialSideEffect, evt.Roster, err)
		}
		if created {
			c.log.Debug("Chat thread created", "roster", evt.Roster)
		}
	default:
		_, err := c.repository.GetThread(ctx, evt.Roster)
		if stderrors.Is(err, errors.ErrChatNotFound) {
			c.log.Debug("No chat thread, skipping", "roster", evt.Roster)
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: chat thread %s: %w", errors.ErrPartialSideEffect, evt.Roster, err)
		}
	}

	var errs []error
	err := c.repository.AppendMessage(ctx, repositories.ChatMessage{
		ID:          uuid.New(),
		RosterID:    evt.Roster,
		AuthorID:    roster.SystemActorID,
		ActorID:     evt.ActorID,
		Role:        RoleSystem,
		Content:     content,
		DispatchKey: evt.DispatchKey(),
		At:          at,
	})
	if err != nil {
		c.log.Error("System message not appended", "roster", evt.Roster, "error", err)
		errs = append(errs, err)
	}
	if err = c.repository.SetParticipants(ctx, evt.Roster, participants, evt.Version); err != nil {
		c.log.Error("Chat participants not updated", "roster", evt.Roster, "error", err)
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: chat %s: %w", errors.ErrPartialSideEffect, evt.Roster, stderrors.Join(errs...))
	}
	return nil
}
