package service

import (
	"context"
	"strings"

	"github.com/brightframelabs/portal/internal/clock"
	"github.com/brightframelabs/portal/internal/config"
	"github.com/brightframelabs/portal/internal/payment/domain"
	"github.com/brightframelabs/portal/internal/payment/razorpay"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	Clock    clock.Clock
	Payments domain.Repository
}

// OrderService creates provider orders and their pending payment rows. The
// webhook pipeline owns every mutation after this point.
type OrderService struct {
	log      *zap.Logger
	client   *razorpay.Client
	clock    clock.Clock
	payments domain.Repository
}

func NewOrderService(p Params) domain.OrderService {
	return &OrderService{
		log:      p.Log.Named("payment.orders"),
		client:   razorpay.NewClient(p.Cfg.Razorpay.KeyID, p.Cfg.Razorpay.KeySecret, p.Cfg.Razorpay.BaseURL),
		clock:    p.Clock,
		payments: p.Payments,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, input domain.CreateOrderInput) (*domain.Payment, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if len(currency) != 3 {
		return nil, domain.ErrInvalidCurrency
	}

	paymentType := input.PaymentType
	if paymentType == "" {
		paymentType = domain.TypeAdvance
	}

	receipt := uuid.NewString()
	order, err := s.client.CreateOrder(ctx, input.Amount, currency, receipt, input.Notes)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	p := &domain.Payment{
		ProposalID:      input.ProposalID,
		Amount:          input.Amount,
		Currency:        currency,
		PaymentType:     paymentType,
		Status:          domain.StatusPending,
		ProviderOrderID: order.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.payments.Insert(ctx, nil, p); err != nil {
		return nil, err
	}

	s.log.Info("payment order created",
		zap.String("payment_id", p.ID.String()),
		zap.String("provider_order_id", order.ID),
		zap.Int64("amount", input.Amount),
		zap.String("currency", currency))
	return p, nil
}
