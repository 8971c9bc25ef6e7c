package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	paymentdomain "github.com/brightframelabs/portal/internal/payment/domain"
)

// Adapter verifies and parses Razorpay webhook deliveries.
type Adapter struct {
	webhookSecret string
}

func NewAdapter(webhookSecret string) *Adapter {
	return &Adapter{webhookSecret: strings.TrimSpace(webhookSecret)}
}

// Verify computes HMAC-SHA256 over the raw body with the shared secret and
// compares the hex digest against the X-Razorpay-Signature value.
func (a *Adapter) Verify(payload []byte, signature string) error {
	if a.webhookSecret == "" {
		return paymentdomain.ErrSecretNotConfigured
	}

	signature = strings.TrimSpace(signature)
	if signature == "" {
		return paymentdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return paymentdomain.ErrInvalidSignature
	}
	return nil
}

// Parse maps the provider envelope onto the canonical PaymentEvent. Event
// types outside the known set come back as KindUnrecognized, not an error.
func (a *Adapter) Parse(payload []byte) (*paymentdomain.PaymentEvent, error) {
	var envelope webhookEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, paymentdomain.ErrInvalidPayload
	}
	if strings.TrimSpace(envelope.Event) == "" {
		return nil, paymentdomain.ErrInvalidPayload
	}

	payment := envelope.Payload.Payment.Entity
	order := envelope.Payload.Order.Entity

	orderID := strings.TrimSpace(payment.OrderID)
	if orderID == "" {
		orderID = strings.TrimSpace(order.ID)
	}

	amount := payment.Amount
	currency := payment.Currency
	if amount == 0 && order.Amount != 0 {
		amount = order.Amount
		currency = order.Currency
	}

	return &paymentdomain.PaymentEvent{
		Kind:              paymentdomain.KindOf(envelope.Event),
		Type:              strings.TrimSpace(envelope.Event),
		ProviderEventID:   strings.TrimSpace(envelope.ID),
		ProviderOrderID:   orderID,
		ProviderPaymentID: strings.TrimSpace(payment.ID),
		Method:            strings.TrimSpace(payment.Method),
		FailureReason:     strings.TrimSpace(payment.ErrorDescription),
		Amount:            amount,
		Currency:          currency,
		Raw:               payload,
	}, nil
}

// Some envelope variants carry an event id in the body; the delivery header
// overrides it when present.
type webhookEnvelope struct {
	ID      string `json:"id"`
	Entity  string `json:"entity"`
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity orderEntity `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

type paymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Method           string `json:"method"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	ErrorDescription string `json:"error_description"`
}

type orderEntity struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
