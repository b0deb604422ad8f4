package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/domain"
	"github.com/spec-kit/applicant-tracker/internal/events"
)

// publish stamps and dispatches an event. Subscriber failures are logged and
// never reach the caller.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event subscriber failed",
			zap.String("event_type", string(event.Type)),
			zap.String("aggregate_id", event.AggregateID),
			zap.Error(err))
	}
}

func userActor(user *domain.User) events.Actor {
	if user == nil {
		return events.Actor{}
	}
	id := user.ID
	return events.Actor{UserID: &id, Role: user.Role}
}
