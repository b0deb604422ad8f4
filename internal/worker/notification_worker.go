package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/service"
)

// StartNotificationWorker subscribes candidate notifications to the event
// dispatcher. Stage e-mails run on their own goroutines; call Wait on the
// service during shutdown to drain them.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		logger.Warn("notification worker disabled")
		return
	}
	notifications.RegisterHandlers()
	logger.Info("notification worker registered")
}
