package notification

import (
	"context"

	notificationdomain "github.com/brightframelabs/portal/internal/notification/domain"
	"go.uber.org/zap"
)

// LogSender records the intent instead of delivering mail. The production
// email transport is an external collaborator swapped in at wiring time.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.Named("notification.sender")}
}

func (s *LogSender) Send(ctx context.Context, n notificationdomain.Notification) error {
	s.log.Info("notification delivered",
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("payment_id", n.PaymentID.String()),
		zap.String("proposal_id", n.ProposalID.String()),
		zap.Int64("amount", n.Amount),
		zap.String("currency", n.Currency))
	return nil
}
