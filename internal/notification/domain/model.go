package domain

import (
	"context"
	"time"

	paymentdomain "github.com/brightframelabs/portal/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
)

type Kind string

const KindPaymentCompleted Kind = "payment.completed"

// Notification is one intent waiting on the outbox. It carries everything
// the sender needs so the worker never reads payment rows.
type Notification struct {
	ID         string       `json:"id"`
	Kind       Kind         `json:"kind"`
	PaymentID  snowflake.ID `json:"payment_id"`
	ProposalID snowflake.ID `json:"proposal_id"`
	Amount     int64        `json:"amount"`
	Currency   string       `json:"currency"`
	EnqueuedAt time.Time    `json:"enqueued_at"`
}

// Enqueuer pushes an intent onto the outbox after the payment transaction
// committed. A slow or failing email provider never blocks the webhook's
// critical path.
type Enqueuer interface {
	EnqueuePaymentCompleted(ctx context.Context, p *paymentdomain.Payment) error
}

// Sender delivers one notification. The real email transport lives outside
// this service; LogSender stands in when none is wired.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}
