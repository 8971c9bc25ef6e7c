package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
	StatusRefunded  PaymentStatus = "refunded"
)

// Terminal reports whether no further transition is permitted by the
// webhook pipeline. failed is retryable and therefore not terminal.
func (s PaymentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRefunded
}

type PaymentType string

const (
	TypeAdvance PaymentType = "advance"
	TypeBalance PaymentType = "balance"
)

// Payment is one expected or completed transaction tied to a proposal.
// Amount is in minor currency units. Rows are created at order initiation
// and mutated only through conditional updates; they are never deleted.
type Payment struct {
	ID                snowflake.ID  `json:"id" gorm:"primaryKey"`
	ProposalID        snowflake.ID  `json:"proposal_id" gorm:"not null;index"`
	Amount            int64         `json:"amount" gorm:"not null"`
	Currency          string        `json:"currency" gorm:"type:text;not null"`
	PaymentType       PaymentType   `json:"payment_type" gorm:"type:text;not null"`
	Status            PaymentStatus `json:"status" gorm:"type:text;not null;index"`
	ProviderOrderID   string        `json:"provider_order_id" gorm:"type:text;not null;uniqueIndex"`
	ProviderPaymentID *string       `json:"provider_payment_id" gorm:"type:text"`
	Method            *string       `json:"method" gorm:"type:text"`
	FailureReason     *string       `json:"failure_reason" gorm:"type:text"`
	CreatedAt         time.Time     `json:"created_at" gorm:"not null"`
	UpdatedAt         time.Time     `json:"updated_at" gorm:"not null"`
	PaidAt            *time.Time    `json:"paid_at"`
}

func (Payment) TableName() string { return "payments" }
