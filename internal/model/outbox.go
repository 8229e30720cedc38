package model

import (
	"time"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED"
)

// Billing event types carried through the outbox. Entitlement events are
// consumed by the platform side that unlocks/locks plan access; payment
// events feed order bookkeeping and support tooling.
const (
	EventEntitlementGrant  = "entitlement.grant"
	EventEntitlementRevoke = "entitlement.revoke"
	EventPaymentPerformed  = "payment.performed"
	EventPaymentCancelled  = "payment.cancelled"
)

// OutboxMessage is written in the same database transaction as the state it
// announces and drained asynchronously into Kafka. Delivery failures are
// retried; rows that exhaust retries are marked FAILED for alerting.
type OutboxMessage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageKey string    `gorm:"type:varchar(64);not null" json:"message_key"`
	Topic      string    `gorm:"type:varchar(64);not null" json:"topic"`
	Payload    string    `gorm:"type:text;not null" json:"payload"`
	Status     string    `gorm:"type:varchar(20);index;not null;default:PENDING" json:"status"`
	RetryCount int       `gorm:"not null;default:0" json:"retry_count"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_message"
}

// BillingEvent is the payload serialized into outbox messages.
type BillingEvent struct {
	Type          string `json:"type"`
	OrderID       int64  `json:"order_id"`
	UserID        int64  `json:"user_id"`
	PlanID        string `json:"plan_id"`
	TransactionNo string `json:"transaction_no"`
	PaymeID       string `json:"payme_id"`
	Amount        int64  `json:"amount"`
	Reason        *int   `json:"reason,omitempty"`
	OccurredAt    string `json:"occurred_at"` // RFC3339
}
