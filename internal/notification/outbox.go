package notification

import (
	"context"
	"encoding/json"
	"time"

	notificationdomain "github.com/brightframelabs/portal/internal/notification/domain"
	paymentdomain "github.com/brightframelabs/portal/internal/payment/domain"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const outboxKey = "portal:notifications:outbox"

// Outbox is a Redis-list backed queue of notification intents.
type Outbox struct {
	client *redis.Client
	log    *zap.Logger
}

func NewOutbox(client *redis.Client, log *zap.Logger) *Outbox {
	return &Outbox{
		client: client,
		log:    log.Named("notification.outbox"),
	}
}

func (o *Outbox) EnqueuePaymentCompleted(ctx context.Context, p *paymentdomain.Payment) error {
	n := notificationdomain.Notification{
		ID:         ulid.Make().String(),
		Kind:       notificationdomain.KindPaymentCompleted,
		PaymentID:  p.ID,
		ProposalID: p.ProposalID,
		Amount:     p.Amount,
		Currency:   p.Currency,
		EnqueuedAt: time.Now().UTC(),
	}

	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}

	if err := o.client.LPush(ctx, outboxKey, raw).Err(); err != nil {
		return err
	}

	o.log.Debug("notification enqueued",
		zap.String("id", n.ID),
		zap.String("kind", string(n.Kind)),
		zap.String("payment_id", n.PaymentID.String()))
	return nil
}

// Dequeue blocks up to timeout waiting for the next intent. A nil
// notification with nil error means the wait timed out.
func (o *Outbox) Dequeue(ctx context.Context, timeout time.Duration) (*notificationdomain.Notification, error) {
	values, err := o.client.BRPop(ctx, timeout, outboxKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	if len(values) < 2 {
		return nil, nil
	}

	var n notificationdomain.Notification
	if err := json.Unmarshal([]byte(values[1]), &n); err != nil {
		return nil, err
	}
	return &n, nil
}
