package model

import (
	"time"
)

const (
	OrderStatusCreated   = "CREATED"
	OrderStatusPaid      = "PAID"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusExpired   = "EXPIRED"
	OrderStatusRefunded  = "REFUNDED"
)

var ValidStatusTransitions = map[string][]string{
	OrderStatusCreated: {OrderStatusPaid, OrderStatusCancelled, OrderStatusExpired},
	OrderStatusPaid:    {OrderStatusRefunded},
}

func CanTransitionTo(currentStatus, targetStatus string) bool {
	allowedStatuses, exists := ValidStatusTransitions[currentStatus]
	if !exists {
		return false
	}
	for _, s := range allowedStatuses {
		if s == targetStatus {
			return true
		}
	}
	return false
}

// Order is a user's intent to purchase a plan. The amount is copied from the
// plan at creation time so later plan price changes never affect an order the
// gateway is already validating against.
//
// The webhook flow reads orders but never writes them: PAID/REFUNDED are
// applied downstream by the consumer of the payment events.
type Order struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RequestID string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"request_id"` // client idempotency key
	UserID    int64      `gorm:"index;not null" json:"user_id"`
	PlanID    string     `gorm:"type:varchar(64);not null" json:"plan_id"`
	Amount    int64      `gorm:"not null" json:"amount"` // tiyin
	Status    string     `gorm:"type:varchar(20);index;not null" json:"status"`
	ExpiredAt time.Time  `gorm:"not null" json:"expired_at"`
	PaidAt    *time.Time `json:"paid_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string {
	return "pay_order"
}

// Payable reports whether the order can still accept a gateway payment.
func (o *Order) Payable() bool {
	return o.Status == OrderStatusCreated
}
