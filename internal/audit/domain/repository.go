package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository is append-only. A nil db means the repository's own handle;
// passing a transaction handle scopes the insert to that transaction.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *WebhookLogEntry) error
	FindByProviderEventID(ctx context.Context, eventID string) (*WebhookLogEntry, error)
	List(ctx context.Context, req ListRequest) ([]WebhookLogEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type ListRequest struct {
	Status LogStatus
	Limit  int
	Offset int
}
