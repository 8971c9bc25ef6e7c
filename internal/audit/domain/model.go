package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type LogStatus string

const (
	StatusReceived  LogStatus = "RECEIVED"
	StatusProcessed LogStatus = "PROCESSED"
	StatusFailed    LogStatus = "FAILED"
)

// WebhookLogEntry is the append-only record of one webhook delivery
// attempt. It doubles as the idempotency log: the first entry for a
// provider event id is canonical, later deliveries short-circuit on it.
// Entries are never mutated or deleted except by retention.
type WebhookLogEntry struct {
	ID                snowflake.ID   `json:"id" gorm:"primaryKey"`
	EventType         string         `json:"event_type" gorm:"type:text;not null"`
	ProviderEventID   *string        `json:"provider_event_id" gorm:"type:text;index"`
	ProviderOrderID   string         `json:"provider_order_id" gorm:"type:text"`
	ProviderPaymentID *string        `json:"provider_payment_id" gorm:"type:text"`
	Payload           datatypes.JSON `json:"payload" gorm:"type:jsonb;not null"`
	Signature         string         `json:"signature" gorm:"type:text"`
	SignatureVerified bool           `json:"signature_verified" gorm:"not null"`
	Status            LogStatus      `json:"status" gorm:"type:text;not null"`
	Error             *string        `json:"error" gorm:"type:text"`
	SourceIP          string         `json:"source_ip" gorm:"type:text"`
	PaymentID         *snowflake.ID  `json:"payment_id"`
	ReceivedAt        time.Time      `json:"received_at" gorm:"not null;index"`
	ProcessedAt       *time.Time     `json:"processed_at"`
}

func (WebhookLogEntry) TableName() string { return "webhook_logs" }
