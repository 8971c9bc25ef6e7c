package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	auditdomain "github.com/brightframelabs/portal/internal/audit/domain"
	"github.com/brightframelabs/portal/internal/clock"
	"github.com/brightframelabs/portal/internal/config"
	notificationdomain "github.com/brightframelabs/portal/internal/notification/domain"
	paymentdomain "github.com/brightframelabs/portal/internal/payment/domain"
	"github.com/brightframelabs/portal/internal/payment/razorpay"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Cfg      config.Config
	Clock    clock.Clock
	Metrics  Recorder `optional:"true"`
	Payments paymentdomain.Repository
	Logs     auditdomain.Repository
	Outbox   notificationdomain.Enqueuer `optional:"true"`
}

// Recorder is the slice of observability.Metrics the pipeline touches.
type Recorder interface {
	DeliveryObserved(outcome string)
	TransitionCommitted(status string)
}

// handlerFunc resolves the payment for an event. The bool reports whether a
// status transition actually committed; idempotent re-deliveries resolve the
// row without one.
type handlerFunc func(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent) (*paymentdomain.Payment, bool, error)

// Service processes Razorpay webhook deliveries: verify against the raw
// body, dedupe by provider event id, then run the handler and the audit
// write in one transaction. The transport always answers 200 except for
// trust failures, malformed payloads, and missing configuration.
type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	metrics  Recorder
	adapter  *razorpay.Adapter
	payments paymentdomain.Repository
	logs     auditdomain.Repository
	outbox   notificationdomain.Enqueuer
	handlers map[paymentdomain.EventKind]handlerFunc
}

func NewService(p Params) paymentdomain.IngestService {
	s := &Service{
		db:       p.DB,
		log:      p.Log.Named("payment.webhook"),
		clock:    p.Clock,
		metrics:  p.Metrics,
		adapter:  razorpay.NewAdapter(p.Cfg.Razorpay.WebhookSecret),
		payments: p.Payments,
		logs:     p.Logs,
		outbox:   p.Outbox,
	}
	s.handlers = map[paymentdomain.EventKind]handlerFunc{
		paymentdomain.KindCaptured: s.handleCaptured,
		paymentdomain.KindFailed:   s.handleFailed,
	}
	return s
}

func (s *Service) Ingest(ctx context.Context, d paymentdomain.Delivery) (paymentdomain.Result, error) {
	if err := s.adapter.Verify(d.Body, d.Signature); err != nil {
		if errors.Is(err, paymentdomain.ErrSecretNotConfigured) {
			s.log.Error("webhook secret not configured, refusing delivery")
			s.writeEntry(ctx, nil, entryInput{
				delivery:  d,
				eventType: "unknown",
				status:    auditdomain.StatusFailed,
				errText:   "webhook secret not configured",
			})
			s.observe("config_error")
			return paymentdomain.Result{Status: paymentdomain.ResultError}, err
		}

		s.log.Warn("webhook signature rejected", zap.String("source_ip", d.SourceIP))
		s.writeEntry(ctx, nil, entryInput{
			delivery:  d,
			eventType: "unknown",
			status:    auditdomain.StatusFailed,
			errText:   "invalid signature",
		})
		s.observe("signature_rejected")
		return paymentdomain.Result{Status: paymentdomain.ResultError}, err
	}

	event, err := s.adapter.Parse(d.Body)
	if err != nil {
		s.writeEntry(ctx, nil, entryInput{
			delivery:  d,
			eventType: "unparsable",
			verified:  true,
			status:    auditdomain.StatusFailed,
			errText:   "invalid payload",
		})
		s.observe("invalid_payload")
		return paymentdomain.Result{Status: paymentdomain.ResultError}, err
	}
	if d.EventID != "" {
		event.ProviderEventID = d.EventID
	}

	result := paymentdomain.Result{Event: event.Type}

	// Idempotency guard. A lookup failure deliberately falls through to
	// processing: a duplicate attempt is neutralized by the conditional
	// update downstream, a dropped capture event is not.
	if event.ProviderEventID != "" {
		prior, err := s.logs.FindByProviderEventID(ctx, event.ProviderEventID)
		if err != nil {
			s.log.Warn("idempotency lookup failed, proceeding with processing",
				zap.String("provider_event_id", event.ProviderEventID),
				zap.Error(err))
		} else if prior != nil {
			s.writeEntry(ctx, nil, entryInput{
				delivery:  d,
				event:     event,
				verified:  true,
				status:    auditdomain.StatusReceived,
				errText:   "duplicate delivery",
				paymentID: prior.PaymentID,
			})
			s.observe("duplicate")
			result.Status = paymentdomain.ResultAlreadyProcessed
			return result, nil
		}
	}

	handler, ok := s.handlers[event.Kind]
	if !ok {
		// Providers send many event types this system does not act on;
		// failing them would only trigger needless retries.
		s.log.Info("unhandled webhook event acknowledged", zap.String("event", event.Type))
		s.writeEntry(ctx, nil, entryInput{
			delivery: d,
			event:    event,
			verified: true,
			status:   auditdomain.StatusReceived,
		})
		s.observe("ignored")
		result.Status = paymentdomain.ResultOK
		return result, nil
	}

	var (
		resolved     *paymentdomain.Payment
		transitioned bool
	)
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, changed, err := handler(ctx, tx, event)
		if err != nil {
			return err
		}
		resolved = p
		transitioned = changed

		processedAt := s.clock.Now()
		return s.insertEntry(ctx, tx, entryInput{
			delivery:    d,
			event:       event,
			verified:    true,
			status:      auditdomain.StatusProcessed,
			payment:     p,
			processedAt: &processedAt,
		})
	})
	if txErr != nil {
		// Data changes rolled back; the failure record must still land, so
		// it is written outside the transaction, best effort.
		s.log.Error("webhook processing failed",
			zap.String("event", event.Type),
			zap.String("provider_order_id", event.ProviderOrderID),
			zap.Error(txErr))
		s.writeEntry(ctx, nil, entryInput{
			delivery: d,
			event:    event,
			verified: true,
			status:   auditdomain.StatusFailed,
			errText:  txErr.Error(),
		})
		s.observe("failed")
		result.Status = paymentdomain.ResultError
		return result, nil
	}

	s.observe("processed")
	if s.metrics != nil {
		s.metrics.TransitionCommitted(event.Kind.String())
	}

	result.Status = paymentdomain.ResultOK
	result.Processed = true
	if resolved != nil {
		id := resolved.ID
		result.PaymentID = &id
	}

	// Only a committed transition notifies; the idempotent zero-rows path
	// must not produce a second customer email.
	if event.Kind == paymentdomain.KindCaptured && transitioned && s.outbox != nil && resolved != nil {
		if err := s.outbox.EnqueuePaymentCompleted(ctx, resolved); err != nil {
			s.log.Warn("notification enqueue failed",
				zap.String("payment_id", resolved.ID.String()),
				zap.Error(err))
		}
	}

	return result, nil
}

// handleCaptured applies the conditional completion. Zero rows affected is
// resolved by re-reading the row: an already-terminal payment is an
// idempotent success, a missing row is a genuine failure.
func (s *Service) handleCaptured(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent) (*paymentdomain.Payment, bool, error) {
	rows, err := s.payments.MarkCompleted(ctx, tx, event.ProviderOrderID, event.ProviderPaymentID, event.Method, s.clock.Now())
	if err != nil {
		return nil, false, err
	}

	p, err := s.payments.FindByProviderOrderID(ctx, tx, event.ProviderOrderID)
	if err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, fmt.Errorf("%w: payment not found for order %s", paymentdomain.ErrPaymentNotFound, event.ProviderOrderID)
	}
	if rows == 0 {
		s.log.Info("payment already terminal, treating delivery as no-op",
			zap.String("provider_order_id", event.ProviderOrderID),
			zap.String("status", string(p.Status)))
	}
	return p, rows > 0, nil
}

// handleFailed refuses to regress a terminal success: providers deliver
// failed events for earlier attempts after a retry already captured.
func (s *Service) handleFailed(ctx context.Context, tx *gorm.DB, event *paymentdomain.PaymentEvent) (*paymentdomain.Payment, bool, error) {
	reason := event.FailureReason
	if reason == "" {
		reason = "payment failed"
	}

	rows, err := s.payments.MarkFailed(ctx, tx, event.ProviderOrderID, reason, s.clock.Now())
	if err != nil {
		return nil, false, err
	}

	p, err := s.payments.FindByProviderOrderID(ctx, tx, event.ProviderOrderID)
	if err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, fmt.Errorf("%w: payment not found for order %s", paymentdomain.ErrPaymentNotFound, event.ProviderOrderID)
	}
	if rows == 0 {
		s.log.Info("failed event for terminal payment ignored",
			zap.String("provider_order_id", event.ProviderOrderID),
			zap.String("status", string(p.Status)))
	}
	return p, rows > 0, nil
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.DeliveryObserved(outcome)
	}
}

type entryInput struct {
	delivery    paymentdomain.Delivery
	event       *paymentdomain.PaymentEvent
	eventType   string
	verified    bool
	status      auditdomain.LogStatus
	errText     string
	payment     *paymentdomain.Payment
	paymentID   *snowflake.ID
	processedAt *time.Time
}

// writeEntry is the best-effort variant used outside transactions; insert
// failures are logged, never propagated.
func (s *Service) writeEntry(ctx context.Context, tx *gorm.DB, in entryInput) {
	if err := s.insertEntry(ctx, tx, in); err != nil {
		s.log.Error("audit log write failed", zap.Error(err))
	}
}

func (s *Service) insertEntry(ctx context.Context, tx *gorm.DB, in entryInput) error {
	entry := &auditdomain.WebhookLogEntry{
		EventType:         in.eventType,
		Payload:           payloadJSON(in.delivery.Body),
		Signature:         in.delivery.Signature,
		SignatureVerified: in.verified,
		Status:            in.status,
		SourceIP:          in.delivery.SourceIP,
		ReceivedAt:        s.clock.Now(),
		ProcessedAt:       in.processedAt,
	}

	if in.event != nil {
		entry.EventType = in.event.Type
		if in.event.ProviderEventID != "" {
			id := in.event.ProviderEventID
			entry.ProviderEventID = &id
		}
		entry.ProviderOrderID = in.event.ProviderOrderID
		if in.event.ProviderPaymentID != "" {
			id := in.event.ProviderPaymentID
			entry.ProviderPaymentID = &id
		}
	}
	if in.errText != "" {
		msg := in.errText
		entry.Error = &msg
	}
	if in.payment != nil {
		id := in.payment.ID
		entry.PaymentID = &id
	} else if in.paymentID != nil {
		entry.PaymentID = in.paymentID
	}

	return s.logs.Insert(ctx, tx, entry)
}

// payloadJSON keeps the jsonb column happy when a rejected body is not
// valid JSON.
func payloadJSON(body []byte) datatypes.JSON {
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	wrapped, err := json.Marshal(map[string]string{"raw": string(body)})
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(wrapped)
}
