package payment

import (
	"github.com/brightframelabs/portal/internal/observability"
	"github.com/brightframelabs/portal/internal/payment/repository"
	paymentservice "github.com/brightframelabs/portal/internal/payment/service"
	"github.com/brightframelabs/portal/internal/payment/webhook"
	"go.uber.org/fx"
)

var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(paymentservice.NewOrderService),
	fx.Provide(func(m *observability.Metrics) webhook.Recorder { return m }),
	fx.Provide(webhook.NewService),
)
