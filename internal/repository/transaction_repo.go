package repository

import (
	"context"
	"errors"

	"exampay/internal/model"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetByPaymeID returns (nil, nil) when no transaction exists for the gateway
// id; absence is how the state machine distinguishes first delivery from
// replay.
func (r *TransactionRepository) GetByPaymeID(ctx context.Context, paymeID string) (*model.PaymeTransaction, error) {
	var txn model.PaymeTransaction
	err := r.db.WithContext(ctx).Where("payme_id = ?", paymeID).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// Create inserts a new transaction row. The unique index on payme_id is the
// final arbiter against duplicate creation should two deliveries ever slip
// past the per-key lock.
func (r *TransactionRepository) Create(ctx context.Context, txn *model.PaymeTransaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

// Transition moves a transaction from one state to another as a single-row
// compare-and-set: the UPDATE is keyed by the already-resolved payme_id and
// guarded on the expected current state. Exactly one of two concurrent
// callers observes rows affected; the loser must re-read and take the
// idempotent-replay branch. The extra column values (perform_time,
// cancel_time, reason) ride in the same statement, so the write is
// all-or-nothing.
func (r *TransactionRepository) Transition(ctx context.Context, paymeID string, fromState, toState int, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["state"] = toState

	result := r.db.WithContext(ctx).
		Model(&model.PaymeTransaction{}).
		Where("payme_id = ? AND state = ?", paymeID, fromState).
		Updates(updates)

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// HasLiveTransaction reports whether the order has a transaction the gateway
// still owns (created or performed). Used by the expiry job to leave such
// orders alone.
func (r *TransactionRepository) HasLiveTransaction(ctx context.Context, orderID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PaymeTransaction{}).
		Where("order_id = ? AND state IN ?", orderID, []int{model.TxStateCreated, model.TxStatePerformed}).
		Count(&count).Error
	return count > 0, err
}

func (r *TransactionRepository) ListByOrderID(ctx context.Context, orderID int64) ([]*model.PaymeTransaction, error) {
	var txns []*model.PaymeTransaction
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&txns).Error
	return txns, err
}
