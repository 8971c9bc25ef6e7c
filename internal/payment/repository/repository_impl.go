package repository

import (
	"context"
	"errors"
	"time"

	"github.com/brightframelabs/portal/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type paymentRepo struct {
	db   *gorm.DB
	node *snowflake.Node
}

func Provide(db *gorm.DB, node *snowflake.Node) domain.Repository {
	return &paymentRepo{db: db, node: node}
}

func (r *paymentRepo) Insert(ctx context.Context, db *gorm.DB, p *domain.Payment) error {
	if db == nil {
		db = r.db
	}
	if p.ID == 0 {
		p.ID = r.node.Generate()
	}
	if p.Status == "" {
		p.Status = domain.StatusPending
	}
	return db.WithContext(ctx).Create(p).Error
}

func (r *paymentRepo) FindByProviderOrderID(ctx context.Context, db *gorm.DB, orderID string) (*domain.Payment, error) {
	if db == nil {
		db = r.db
	}
	var p domain.Payment
	if err := db.WithContext(ctx).
		Where("provider_order_id = ?", orderID).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// MarkCompleted is the captured-path conditional update. Two concurrent
// deliveries for the same order race on the WHERE clause: at most one
// affects the row, the other sees zero rows and resolves it as already
// handled. Terminal states never transition; a captured event for a
// refunded payment must not erase the refund.
func (r *paymentRepo) MarkCompleted(ctx context.Context, db *gorm.DB, orderID, providerPaymentID, method string, paidAt time.Time) (int64, error) {
	if db == nil {
		db = r.db
	}
	result := db.WithContext(ctx).Model(&domain.Payment{}).
		Where("provider_order_id = ? AND status NOT IN ?", orderID,
			[]domain.PaymentStatus{domain.StatusCompleted, domain.StatusRefunded}).
		Updates(map[string]any{
			"status":              domain.StatusCompleted,
			"provider_payment_id": providerPaymentID,
			"method":              method,
			"failure_reason":      nil,
			"paid_at":             paidAt,
			"updated_at":          paidAt,
		})
	return result.RowsAffected, result.Error
}

// MarkFailed refuses to regress a payment that already reached a terminal
// success state; providers may deliver a failed event for an earlier
// attempt after a retry captured.
func (r *paymentRepo) MarkFailed(ctx context.Context, db *gorm.DB, orderID, reason string, at time.Time) (int64, error) {
	if db == nil {
		db = r.db
	}
	result := db.WithContext(ctx).Model(&domain.Payment{}).
		Where("provider_order_id = ? AND status NOT IN ?", orderID,
			[]domain.PaymentStatus{domain.StatusCompleted, domain.StatusRefunded}).
		Updates(map[string]any{
			"status":         domain.StatusFailed,
			"failure_reason": reason,
			"updated_at":     at,
		})
	return result.RowsAffected, result.Error
}

func (r *paymentRepo) List(ctx context.Context, req domain.ListRequest) ([]domain.Payment, error) {
	query := r.db.WithContext(ctx).Model(&domain.Payment{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var payments []domain.Payment
	if err := query.Order("created_at DESC").Limit(limit).Offset(req.Offset).Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepo) FindStuckBefore(ctx context.Context, cutoff time.Time) ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]domain.PaymentStatus{domain.StatusPending, domain.StatusFailed}, cutoff).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
