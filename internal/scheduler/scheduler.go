package scheduler

import (
	"context"
	"time"

	auditdomain "github.com/brightframelabs/portal/internal/audit/domain"
	"github.com/brightframelabs/portal/internal/clock"
	"github.com/brightframelabs/portal/internal/config"
	"github.com/brightframelabs/portal/internal/observability"
	paymentdomain "github.com/brightframelabs/portal/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Cfg      config.Config
	Clock    clock.Clock
	Metrics  *observability.Metrics
	Payments paymentdomain.Repository
	Logs     auditdomain.Repository
}

// Scheduler runs the periodic reconciliation sweep and webhook-log
// retention. Both jobs are read-mostly and safe to re-run.
type Scheduler struct {
	log      *zap.Logger
	cfg      config.SchedulerConfig
	clock    clock.Clock
	metrics  *observability.Metrics
	payments paymentdomain.Repository
	logs     auditdomain.Repository
}

func New(p Params) *Scheduler {
	return &Scheduler{
		log:      p.Log.Named("scheduler"),
		cfg:      p.Cfg.Scheduler,
		clock:    p.Clock,
		metrics:  p.Metrics,
		payments: p.Payments,
		logs:     p.Logs,
	}
}

func (s *Scheduler) Run(ctx context.Context) {
	interval := s.cfg.ReconcileInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("scheduler started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			if err := s.ReconcileJob(ctx); err != nil {
				s.log.Error("reconcile sweep failed", zap.Error(err))
			}
			if err := s.RetentionJob(ctx); err != nil {
				s.log.Error("webhook log retention failed", zap.Error(err))
			}
		}
	}
}

// ReconcileJob flags payments stuck in a non-terminal state past the
// cutoff. These are orders whose webhook never arrived or never resolved;
// an operator follows up against the provider dashboard.
func (s *Scheduler) ReconcileJob(ctx context.Context) error {
	cutoffWindow := s.cfg.PendingCutoff
	if cutoffWindow <= 0 {
		cutoffWindow = 24 * time.Hour
	}
	cutoff := s.clock.Now().Add(-cutoffWindow)

	stuck, err := s.payments.FindStuckBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, p := range stuck {
		s.metrics.ReconcileFlagged.Inc()
		s.log.Warn("payment stuck without webhook resolution",
			zap.String("payment_id", p.ID.String()),
			zap.String("provider_order_id", p.ProviderOrderID),
			zap.String("status", string(p.Status)),
			zap.Time("created_at", p.CreatedAt))
	}

	if len(stuck) > 0 {
		s.log.Info("reconcile sweep completed", zap.Int("flagged", len(stuck)))
	}
	return nil
}

// RetentionJob prunes webhook log entries past the retention window. A
// non-positive retention disables pruning.
func (s *Scheduler) RetentionJob(ctx context.Context) error {
	days := s.cfg.WebhookRetentionDays
	if days <= 0 {
		return nil
	}

	cutoff := s.clock.Now().AddDate(0, 0, -days)
	deleted, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return err
	}
	if deleted > 0 {
		s.log.Info("webhook log retention completed",
			zap.Time("cutoff", cutoff),
			zap.Int64("deleted", deleted))
	}
	return nil
}
