package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exampay/internal/config"
	"exampay/internal/model"
	"exampay/internal/repository"

	"gorm.io/gorm"
)

// EntitlementService is the production entitlement collaborator: grant and
// revoke become transactional-outbox rows, delivered to Kafka by the outbox
// sender with retries and a FAILED terminal status for alerting. The
// webhook's state transition is already committed by the time these run, so
// an enqueue error here leaves the transaction state intact and is surfaced
// to the caller for logging.
type EntitlementService struct {
	db         *gorm.DB
	cfg        *config.Config
	outboxRepo *repository.OutboxRepository
}

func NewEntitlementService(db *gorm.DB, cfg *config.Config) *EntitlementService {
	return &EntitlementService{
		db:         db,
		cfg:        cfg,
		outboxRepo: repository.NewOutboxRepository(db),
	}
}

// Grant enqueues the plan unlock plus the payment.performed event in one
// database transaction.
func (s *EntitlementService) Grant(ctx context.Context, order *model.Order, txn *model.PaymeTransaction) error {
	return s.enqueuePair(ctx, order, txn, model.EventEntitlementGrant, model.EventPaymentPerformed)
}

// Revoke enqueues the plan lock plus the payment.cancelled event in one
// database transaction.
func (s *EntitlementService) Revoke(ctx context.Context, order *model.Order, txn *model.PaymeTransaction) error {
	return s.enqueuePair(ctx, order, txn, model.EventEntitlementRevoke, model.EventPaymentCancelled)
}

func (s *EntitlementService) enqueuePair(ctx context.Context, order *model.Order, txn *model.PaymeTransaction, entitlementType, paymentType string) error {
	now := time.Now().Format(time.RFC3339)

	event := model.BillingEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		PlanID:        order.PlanID,
		TransactionNo: txn.TransactionNo,
		PaymeID:       txn.PaymeID,
		Amount:        txn.Amount,
		Reason:        txn.Reason,
		OccurredAt:    now,
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		event.Type = entitlementType
		if err := s.enqueue(ctx, tx, s.cfg.Kafka.Topic.Entitlement, txn.TransactionNo, event); err != nil {
			return err
		}

		event.Type = paymentType
		return s.enqueue(ctx, tx, s.cfg.Kafka.Topic.PaymentResult, txn.TransactionNo, event)
	})
}

func (s *EntitlementService) enqueue(ctx context.Context, tx *gorm.DB, topic, key string, event model.BillingEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal billing event: %w", err)
	}

	return s.outboxRepo.Create(ctx, tx, &model.OutboxMessage{
		MessageKey: key,
		Topic:      topic,
		Payload:    string(payload),
		Status:     model.OutboxStatusPending,
	})
}
