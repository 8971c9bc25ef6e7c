package repository

import (
	"context"
	"errors"
	"time"

	"github.com/brightframelabs/portal/internal/audit/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type webhookLogRepo struct {
	db   *gorm.DB
	node *snowflake.Node
}

func Provide(db *gorm.DB, node *snowflake.Node) domain.Repository {
	return &webhookLogRepo{db: db, node: node}
}

func (r *webhookLogRepo) Insert(ctx context.Context, db *gorm.DB, entry *domain.WebhookLogEntry) error {
	if db == nil {
		db = r.db
	}
	if entry.ID == 0 {
		entry.ID = r.node.Generate()
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *webhookLogRepo) FindByProviderEventID(ctx context.Context, eventID string) (*domain.WebhookLogEntry, error) {
	var entry domain.WebhookLogEntry
	if err := r.db.WithContext(ctx).
		Where("provider_event_id = ?", eventID).
		Order("received_at ASC").
		First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *webhookLogRepo) List(ctx context.Context, req domain.ListRequest) ([]domain.WebhookLogEntry, error) {
	query := r.db.WithContext(ctx).Model(&domain.WebhookLogEntry{})
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}

	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var entries []domain.WebhookLogEntry
	if err := query.Order("received_at DESC").Limit(limit).Offset(req.Offset).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *webhookLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&domain.WebhookLogEntry{}, "received_at < ?", cutoff)
	return result.RowsAffected, result.Error
}
