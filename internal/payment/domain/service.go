package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrSecretNotConfigured = errors.New("webhook_secret_not_configured")
	ErrInvalidSignature    = errors.New("invalid_signature")
	ErrInvalidPayload      = errors.New("invalid_payload")
	ErrPaymentNotFound     = errors.New("payment_not_found")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidCurrency     = errors.New("invalid_currency")
)

// IngestService processes one webhook delivery end to end. The returned
// error is only ever one of the sentinels the transport maps to a non-200
// response (bad signature, unparsable payload, missing secret); domain and
// infrastructure failures are absorbed into the Result and the audit log.
type IngestService interface {
	Ingest(ctx context.Context, d Delivery) (Result, error)
}

// Repository mutates payments exclusively through conditional updates; the
// row-level atomicity of a guarded UPDATE is the pipeline's only
// concurrency primitive. A nil db means the repository's own handle.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, p *Payment) error
	FindByProviderOrderID(ctx context.Context, db *gorm.DB, orderID string) (*Payment, error)

	// MarkCompleted transitions to completed unless the row already is;
	// returns the number of rows affected.
	MarkCompleted(ctx context.Context, db *gorm.DB, orderID, providerPaymentID, method string, paidAt time.Time) (int64, error)

	// MarkFailed transitions to failed unless the row reached a terminal
	// success state; returns the number of rows affected.
	MarkFailed(ctx context.Context, db *gorm.DB, orderID, reason string, at time.Time) (int64, error)

	List(ctx context.Context, req ListRequest) ([]Payment, error)
	FindStuckBefore(ctx context.Context, cutoff time.Time) ([]Payment, error)
}

type ListRequest struct {
	Status PaymentStatus
	Limit  int
	Offset int
}

// OrderService initiates provider orders and the pending payment rows the
// webhook pipeline later transitions.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*Payment, error)
}

type CreateOrderInput struct {
	ProposalID  snowflake.ID
	Amount      int64
	Currency    string
	PaymentType PaymentType
	Notes       map[string]string
}
