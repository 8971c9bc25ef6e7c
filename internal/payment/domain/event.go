package domain

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

// EventKind is the closed set of webhook event kinds the pipeline acts on.
// Everything else maps to KindUnrecognized and is acknowledged untouched.
type EventKind int

const (
	KindUnrecognized EventKind = iota
	KindCaptured
	KindFailed
)

func (k EventKind) String() string {
	switch k {
	case KindCaptured:
		return "captured"
	case KindFailed:
		return "failed"
	default:
		return "unrecognized"
	}
}

func KindOf(eventType string) EventKind {
	switch strings.ToLower(strings.TrimSpace(eventType)) {
	case "payment.captured", "order.paid":
		return KindCaptured
	case "payment.failed":
		return KindFailed
	default:
		return KindUnrecognized
	}
}

// PaymentEvent is the canonical event parsed out of a provider webhook.
type PaymentEvent struct {
	Kind              EventKind
	Type              string
	ProviderEventID   string
	ProviderOrderID   string
	ProviderPaymentID string
	Method            string
	FailureReason     string
	Amount            int64
	Currency          string
	Raw               []byte
}

// Delivery is one inbound webhook delivery attempt, body untouched as
// received. Re-serializing parsed JSON before verification would break the
// signature.
type Delivery struct {
	Body      []byte
	Signature string
	EventID   string
	SourceIP  string
}

type ResultStatus string

const (
	ResultOK               ResultStatus = "ok"
	ResultError            ResultStatus = "error"
	ResultAlreadyProcessed ResultStatus = "already_processed"
)

// Result is what the webhook endpoint reports back to the provider. The
// true outcome lives in the audit log; Result only drives the response body.
type Result struct {
	Status    ResultStatus `json:"status"`
	Event     string       `json:"event"`
	Processed bool         `json:"processed"`

	PaymentID *snowflake.ID `json:"-"`
}
