package notify

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/applicant-tracker/internal/config"
	"github.com/spec-kit/applicant-tracker/internal/domain"
)

// Notifier delivers a status e-mail to a candidate.
type Notifier interface {
	Notify(ctx context.Context, candidateEmail, candidateName string, newStage domain.Stage) error
}

// New picks the Resend notifier when an API key is configured.
func New(cfg config.NotificationConfig, logger *zap.Logger) Notifier {
	if strings.TrimSpace(cfg.ResendAPIKey) == "" {
		logger.Warn("NOTIFY_RESEND_API_KEY not provided; candidate e-mails will only be logged")
		return NewLogNotifier(logger)
	}
	return NewResendNotifier(resend.NewClient(cfg.ResendAPIKey), cfg.EmailFrom, cfg.Timeout())
}

// ResendNotifier sends e-mails through the Resend API.
type ResendNotifier struct {
	client  *resend.Client
	from    string
	timeout time.Duration
}

// NewResendNotifier constructs the notifier.
func NewResendNotifier(client *resend.Client, from string, timeout time.Duration) *ResendNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ResendNotifier{client: client, from: from, timeout: timeout}
}

// Notify composes and sends the message.
func (n *ResendNotifier) Notify(ctx context.Context, candidateEmail, candidateName string, newStage domain.Stage) error {
	if strings.TrimSpace(candidateEmail) == "" {
		return errors.New("candidate email required")
	}
	msg := Compose(newStage, candidateName)

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	_, err := n.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{candidateEmail},
		Subject: msg.Subject,
		Html:    msg.HTML(),
	})
	return err
}

// LogNotifier writes the message to the log instead of sending it.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs the notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the composed message.
func (n *LogNotifier) Notify(_ context.Context, candidateEmail, candidateName string, newStage domain.Stage) error {
	msg := Compose(newStage, candidateName)
	n.logger.Info("candidate notification",
		zap.String("to", candidateEmail),
		zap.String("stage", string(newStage)),
		zap.String("subject", msg.Subject))
	return nil
}
