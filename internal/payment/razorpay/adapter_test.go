package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	paymentdomain "github.com/brightframelabs/portal/internal/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	adapter := NewAdapter("topsecret")
	body := []byte(`{"event":"payment.captured"}`)

	assert.NoError(t, adapter.Verify(body, sign(body, "topsecret")))
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	adapter := NewAdapter("topsecret")
	body := []byte(`{"event":"payment.captured"}`)
	signature := sign(body, "topsecret")

	tampered := []byte(`{"event":"payment.captured","amount":1}`)
	err := adapter.Verify(tampered, signature)
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	adapter := NewAdapter("topsecret")
	body := []byte(`{"event":"payment.captured"}`)

	err := adapter.Verify(body, sign(body, "othersecret"))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
}

func TestVerifyRejectsEmptySignature(t *testing.T) {
	adapter := NewAdapter("topsecret")

	err := adapter.Verify([]byte(`{}`), "")
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidSignature)
}

func TestVerifyFailsClosedWithoutSecret(t *testing.T) {
	adapter := NewAdapter("")
	body := []byte(`{"event":"payment.captured"}`)

	err := adapter.Verify(body, sign(body, "anything"))
	assert.ErrorIs(t, err, paymentdomain.ErrSecretNotConfigured)
}

func TestParseCapturedEvent(t *testing.T) {
	payload := []byte(`{
		"entity": "event",
		"event": "payment.captured",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_abc123",
					"order_id": "order_abc",
					"method": "upi",
					"amount": 250000,
					"currency": "INR"
				}
			}
		},
		"created_at": 1724800000
	}`)

	adapter := NewAdapter("s")
	event, err := adapter.Parse(payload)
	require.NoError(t, err)

	assert.Equal(t, paymentdomain.KindCaptured, event.Kind)
	assert.Equal(t, "payment.captured", event.Type)
	assert.Equal(t, "order_abc", event.ProviderOrderID)
	assert.Equal(t, "pay_abc123", event.ProviderPaymentID)
	assert.Equal(t, "upi", event.Method)
	assert.Equal(t, int64(250000), event.Amount)
	assert.Equal(t, "INR", event.Currency)
}

func TestParseOrderPaidFallsBackToOrderEntity(t *testing.T) {
	payload := []byte(`{
		"entity": "event",
		"event": "order.paid",
		"payload": {
			"order": {
				"entity": {
					"id": "order_xyz",
					"amount": 90000,
					"currency": "INR"
				}
			}
		}
	}`)

	adapter := NewAdapter("s")
	event, err := adapter.Parse(payload)
	require.NoError(t, err)

	assert.Equal(t, paymentdomain.KindCaptured, event.Kind)
	assert.Equal(t, "order_xyz", event.ProviderOrderID)
	assert.Equal(t, int64(90000), event.Amount)
}

func TestParseEnvelopeEventID(t *testing.T) {
	payload := []byte(`{
		"id": "evt_body_1",
		"entity": "event",
		"event": "payment.captured",
		"payload": {"payment": {"entity": {"id": "pay_1", "order_id": "order_abc"}}}
	}`)

	adapter := NewAdapter("s")
	event, err := adapter.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, "evt_body_1", event.ProviderEventID)
}

func TestParseFailedEvent(t *testing.T) {
	payload := []byte(`{
		"entity": "event",
		"event": "payment.failed",
		"payload": {
			"payment": {
				"entity": {
					"id": "pay_bad",
					"order_id": "order_abc",
					"method": "upi",
					"error_description": "Payment declined by bank"
				}
			}
		}
	}`)

	adapter := NewAdapter("s")
	event, err := adapter.Parse(payload)
	require.NoError(t, err)

	assert.Equal(t, paymentdomain.KindFailed, event.Kind)
	assert.Equal(t, "Payment declined by bank", event.FailureReason)
}

func TestParseUnrecognizedEventIsNotAnError(t *testing.T) {
	payload := []byte(`{"entity":"event","event":"refund.created","payload":{}}`)

	adapter := NewAdapter("s")
	event, err := adapter.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.KindUnrecognized, event.Kind)
}

func TestParseInvalidJSON(t *testing.T) {
	adapter := NewAdapter("s")

	_, err := adapter.Parse([]byte(`{"event":`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}

func TestParseMissingEventType(t *testing.T) {
	adapter := NewAdapter("s")

	_, err := adapter.Parse([]byte(`{"entity":"event"}`))
	assert.ErrorIs(t, err, paymentdomain.ErrInvalidPayload)
}
