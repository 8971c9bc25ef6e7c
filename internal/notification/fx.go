package notification

import (
	"context"

	notificationdomain "github.com/brightframelabs/portal/internal/notification/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notification",
	fx.Provide(NewOutbox),
	fx.Provide(func(o *Outbox) notificationdomain.Enqueuer { return o }),
	fx.Provide(func(log *zap.Logger) notificationdomain.Sender { return NewLogSender(log) }),
	fx.Provide(NewWorker),
)

// WorkerModule runs the outbox consumer for the worker entrypoint.
var WorkerModule = fx.Module("notification.worker",
	fx.Invoke(func(lc fx.Lifecycle, w *Worker) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					defer close(done)
					w.Run(ctx)
				}()
				return nil
			},
			OnStop: func(stopCtx context.Context) error {
				cancel()
				select {
				case <-done:
					return nil
				case <-stopCtx.Done():
					return stopCtx.Err()
				}
			},
		})
	}),
)
