package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/events"
	"github.com/spec-kit/applicant-tracker/internal/notify"
	"github.com/spec-kit/applicant-tracker/internal/observability"
)

// NotificationService reacts to domain events with candidate e-mails and
// audit log lines.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   notify.Notifier
	metrics    *observability.Metrics
	logger     *zap.Logger
	timeout    time.Duration
	inflight   sync.WaitGroup
}

const defaultNotifyTimeout = 15 * time.Second

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier notify.Notifier, metrics *observability.Metrics, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger,
		timeout:    defaultNotifyTimeout,
	}
}

// Wait blocks until every e-mail already handed off has finished.
func (n *NotificationService) Wait() {
	n.inflight.Wait()
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventCandidateStageChanged, n.handleStageChanged)
	n.dispatcher.Subscribe(events.EventApplicationSubmitted, n.handleApplicationSubmitted)
	n.dispatcher.Subscribe(events.EventPositionStatusChanged, n.handlePositionStatusChanged)
}

// handleStageChanged e-mails the candidate off the request path. Failures are
// logged and counted but never returned: the stage change has already been
// committed.
func (n *NotificationService) handleStageChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CandidateStageChangedPayload)
	if !ok {
		return errors.New("unexpected payload for candidate_stage_changed")
	}
	if n.notifier == nil {
		return nil
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		defer cancel()
		n.send(sendCtx, event.AggregateID, payload)
	}()
	return nil
}

func (n *NotificationService) send(ctx context.Context, candidateID string, payload events.CandidateStageChangedPayload) {
	err := n.notifier.Notify(ctx, payload.CandidateEmail, payload.CandidateName, payload.NewStage)
	if err != nil {
		n.metrics.RecordNotification("failed")
		n.logger.Warn("candidate notification failed",
			zap.String("candidate_id", candidateID),
			zap.String("stage", string(payload.NewStage)),
			zap.Error(err))
		return
	}
	n.metrics.RecordNotification("sent")
}

func (n *NotificationService) handleApplicationSubmitted(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.ApplicationSubmittedPayload)
	n.logger.Info("ApplicationSubmitted",
		zap.String("candidate_id", event.AggregateID),
		zap.String("position_id", payload.PositionID))
	return nil
}

func (n *NotificationService) handlePositionStatusChanged(_ context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.PositionStatusChangedPayload)
	n.logger.Info("PositionStatusChanged",
		zap.String("position_id", event.AggregateID),
		zap.String("from", string(payload.OldStatus)),
		zap.String("to", string(payload.NewStatus)))
	return nil
}
