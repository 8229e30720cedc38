package model

import (
	"time"
)

// ============================================================================
// Payme transaction states
// ============================================================================
//
// The gateway drives transactions along one of two monotonic paths:
//
//	(absent) -> 1 (created) -> 2 (performed) -> -2 (cancelled after perform)
//	(absent) -> 1 (created) -> -1 (cancelled before perform)
//
// Negative states are terminal. There is no way back from -1/-2, and no
// 2 -> 1 transition.
const (
	TxStateCreated               = 1
	TxStatePerformed             = 2
	TxStateCancelled             = -1
	TxStateCancelledAfterPerform = -2
)

// TxStateCancelTarget returns the cancelled state reachable from the given
// state, or 0 when cancellation is not a valid transition.
func TxStateCancelTarget(state int) int {
	switch state {
	case TxStateCreated:
		return TxStateCancelled
	case TxStatePerformed:
		return TxStateCancelledAfterPerform
	default:
		return 0
	}
}

// IsTxStateCancelled reports whether the state is one of the two terminal
// cancelled states.
func IsTxStateCancelled(state int) bool {
	return state == TxStateCancelled || state == TxStateCancelledAfterPerform
}

// PaymeTransaction is one gateway-initiated payment attempt against an order.
//
// PaymeID is the gateway's transaction id and the idempotency key for every
// webhook operation; the unique index on it guarantees at most one row per
// gateway transaction. Rows are never deleted; the table doubles as the
// audit trail for reconciliation.
type PaymeTransaction struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	PaymeID       string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"payme_id"`       // gateway transaction id
	TransactionNo string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"transaction_no"` // local id returned to the gateway
	OrderID       int64     `gorm:"index;not null" json:"order_id"`
	Amount        int64     `gorm:"not null" json:"amount"` // tiyin
	State         int       `gorm:"not null" json:"state"`
	CreateTime    int64     `gorm:"not null" json:"create_time"` // gateway-supplied, ms since epoch
	PerformTime   *int64    `json:"perform_time"`                // set exactly once, on 1 -> 2
	CancelTime    *int64    `json:"cancel_time"`                 // set exactly once, on cancellation
	Reason        *int      `json:"reason"`                      // gateway cancellation reason code
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PaymeTransaction) TableName() string {
	return "payme_transaction"
}
