package notification

import (
	"context"
	"errors"
	"time"

	notificationdomain "github.com/brightframelabs/portal/internal/notification/domain"
	"go.uber.org/zap"
)

// Worker drains the outbox and hands each intent to the sender. Send
// failures are logged and the intent is dropped; the payment itself is
// already committed and the audit log remains the durable record.
type Worker struct {
	outbox *Outbox
	sender notificationdomain.Sender
	log    *zap.Logger
}

func NewWorker(outbox *Outbox, sender notificationdomain.Sender, log *zap.Logger) *Worker {
	return &Worker{
		outbox: outbox,
		sender: sender,
		log:    log.Named("notification.worker"),
	}
}

func (w *Worker) Run(ctx context.Context) {
	w.log.Info("notification worker started")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("notification worker stopped")
			return
		default:
		}

		n, err := w.outbox.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				continue
			}
			w.log.Error("outbox dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if n == nil {
			continue
		}

		if err := w.sender.Send(ctx, *n); err != nil {
			w.log.Error("notification send failed",
				zap.String("id", n.ID),
				zap.String("kind", string(n.Kind)),
				zap.Error(err))
		}
	}
}
