package payme

import (
	"context"
	"log"
	"strconv"
	"time"

	"exampay/internal/config"
	"exampay/internal/model"
	"exampay/pkg/idgen"
)

// TransactionStore is durable transaction storage keyed by the gateway
// transaction id. GetByPaymeID returns (nil, nil) when absent. Transition is
// a compare-and-set on state: it returns false without error when the guard
// did not match, i.e. the caller lost a race or the transition is stale.
type TransactionStore interface {
	GetByPaymeID(ctx context.Context, paymeID string) (*model.PaymeTransaction, error)
	Create(ctx context.Context, txn *model.PaymeTransaction) error
	Transition(ctx context.Context, paymeID string, fromState, toState int, updates map[string]interface{}) (bool, error)
}

// OrderStore is the read-only view of orders the webhook validates against.
// Returns (nil, nil) when no order exists.
type OrderStore interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
}

// Entitlements grants and revokes the purchased plan access. Implementations
// must be durable on their own (the production one writes outbox rows whose
// delivery is retried); the state machine never rolls a committed transition
// back because of a grant/revoke failure.
type Entitlements interface {
	Grant(ctx context.Context, order *model.Order, txn *model.PaymeTransaction) error
	Revoke(ctx context.Context, order *model.Order, txn *model.PaymeTransaction) error
}

// Locker serializes work per key. The gateway retries aggressively on
// timeout, so two deliveries of the same transaction id can run concurrently;
// the lock makes the re-read inside fn see the winner's write.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func() error) error
}

// MerchantService implements the five gateway-invoked operations. Every
// mutating operation runs as lock -> re-read -> guarded transition, so that
// replays (the gateway's substitute for cancellation) land on the
// idempotent branch and return the previously computed result.
type MerchantService struct {
	cfg    config.PaymeConfig
	txns   TransactionStore
	orders OrderStore
	ents   Entitlements
	locker Locker
}

func NewMerchantService(cfg config.PaymeConfig, txns TransactionStore, orders OrderStore, ents Entitlements, locker Locker) *MerchantService {
	return &MerchantService{
		cfg:    cfg,
		txns:   txns,
		orders: orders,
		ents:   ents,
		locker: locker,
	}
}

func lockKey(paymeID string) string {
	return "payme:lock:tx:" + paymeID
}

// validateOrder resolves the order referenced by the account fields and
// checks it can accept the given amount.
func (s *MerchantService) validateOrder(ctx context.Context, account Account, amount int64) (*model.Order, *Error) {
	orderID, err := strconv.ParseInt(account.OrderID, 10, 64)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		log.Printf("[Payme] order lookup failed: order_id=%d, err=%v", orderID, err)
		return nil, ErrInternal
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if order.Status == model.OrderStatusPaid {
		return nil, ErrAlreadyPerformed
	}
	if !order.Payable() {
		return nil, ErrUnableToPerform
	}

	if order.Amount != amount {
		return nil, ErrInvalidAmount
	}

	return order, nil
}

// CheckPerformTransaction is the gateway's read-only eligibility probe. It
// enforces order existence, amount match and payability; no state changes.
func (s *MerchantService) CheckPerformTransaction(ctx context.Context, p CheckPerformParams) (*CheckPerformResult, *Error) {
	if _, perr := s.validateOrder(ctx, p.Account, p.Amount); perr != nil {
		return nil, perr
	}
	return &CheckPerformResult{Allow: true}, nil
}

// CreateTransaction registers a gateway payment attempt. A replay with the
// same id on a still-created transaction returns the original tuple;
// create_time is never updated after the first delivery.
func (s *MerchantService) CreateTransaction(ctx context.Context, p CreateParams) (*CreateResult, *Error) {
	var result *CreateResult
	var opErr *Error

	err := s.locker.WithLock(ctx, lockKey(p.ID), func() error {
		existing, err := s.txns.GetByPaymeID(ctx, p.ID)
		if err != nil {
			log.Printf("[Payme] CreateTransaction: lookup failed: payme_id=%s, err=%v", p.ID, err)
			opErr = ErrInternal
			return nil
		}

		if existing != nil {
			if existing.State != model.TxStateCreated {
				opErr = ErrUnableToPerform
				return nil
			}
			result = &CreateResult{
				CreateTime:  existing.CreateTime,
				Transaction: existing.TransactionNo,
				State:       existing.State,
			}
			return nil
		}

		order, perr := s.validateOrder(ctx, p.Account, p.Amount)
		if perr != nil {
			opErr = perr
			return nil
		}

		txn := &model.PaymeTransaction{
			PaymeID:       p.ID,
			TransactionNo: idgen.GenerateTransactionNo(),
			OrderID:       order.ID,
			Amount:        p.Amount,
			State:         model.TxStateCreated,
			CreateTime:    p.Time,
		}
		if err := s.txns.Create(ctx, txn); err != nil {
			log.Printf("[Payme] CreateTransaction: insert failed: payme_id=%s, err=%v", p.ID, err)
			opErr = ErrInternal
			return nil
		}

		result = &CreateResult{
			CreateTime:  txn.CreateTime,
			Transaction: txn.TransactionNo,
			State:       txn.State,
		}
		return nil
	})
	if err != nil {
		log.Printf("[Payme] CreateTransaction: lock failed: payme_id=%s, err=%v", p.ID, err)
		return nil, ErrInternal
	}

	if opErr != nil {
		return nil, opErr
	}
	return result, nil
}

// PerformTransaction moves 1 -> 2 and grants the entitlement exactly once.
// A replay on an already-performed transaction returns the stored
// perform_time without re-granting.
func (s *MerchantService) PerformTransaction(ctx context.Context, p PerformParams) (*PerformResult, *Error) {
	var result *PerformResult
	var opErr *Error

	err := s.locker.WithLock(ctx, lockKey(p.ID), func() error {
		txn, err := s.txns.GetByPaymeID(ctx, p.ID)
		if err != nil {
			log.Printf("[Payme] PerformTransaction: lookup failed: payme_id=%s, err=%v", p.ID, err)
			opErr = ErrInternal
			return nil
		}
		if txn == nil {
			opErr = ErrTransactionNotFound
			return nil
		}

		switch txn.State {
		case model.TxStatePerformed:
			result = &PerformResult{
				Transaction: txn.TransactionNo,
				PerformTime: *txn.PerformTime,
				State:       txn.State,
			}
			return nil

		case model.TxStateCreated:
			now := time.Now().UnixMilli()
			ok, err := s.txns.Transition(ctx, p.ID, model.TxStateCreated, model.TxStatePerformed, map[string]interface{}{
				"perform_time": now,
			})
			if err != nil {
				log.Printf("[Payme] PerformTransaction: transition failed: payme_id=%s, err=%v", p.ID, err)
				opErr = ErrInternal
				return nil
			}
			if !ok {
				// Lost a race despite the lock; whatever won decides the
				// outcome.
				opErr = ErrUnableToPerform
				return nil
			}

			s.grantEntitlement(ctx, txn, now)

			result = &PerformResult{
				Transaction: txn.TransactionNo,
				PerformTime: now,
				State:       model.TxStatePerformed,
			}
			return nil

		default:
			opErr = ErrUnableToPerform
			return nil
		}
	})
	if err != nil {
		log.Printf("[Payme] PerformTransaction: lock failed: payme_id=%s, err=%v", p.ID, err)
		return nil, ErrInternal
	}

	if opErr != nil {
		return nil, opErr
	}
	return result, nil
}

// CancelTransaction moves 1 -> -1 or 2 -> -2. Cancelling an already
// cancelled transaction replays the stored cancel_time/state.
func (s *MerchantService) CancelTransaction(ctx context.Context, p CancelParams) (*CancelResult, *Error) {
	var result *CancelResult
	var opErr *Error

	err := s.locker.WithLock(ctx, lockKey(p.ID), func() error {
		txn, err := s.txns.GetByPaymeID(ctx, p.ID)
		if err != nil {
			log.Printf("[Payme] CancelTransaction: lookup failed: payme_id=%s, err=%v", p.ID, err)
			opErr = ErrInternal
			return nil
		}
		if txn == nil {
			opErr = ErrTransactionNotFound
			return nil
		}

		if model.IsTxStateCancelled(txn.State) {
			result = &CancelResult{
				Transaction: txn.TransactionNo,
				CancelTime:  *txn.CancelTime,
				State:       txn.State,
			}
			return nil
		}

		target := model.TxStateCancelTarget(txn.State)
		if target == 0 {
			opErr = ErrUnableToPerform
			return nil
		}

		now := time.Now().UnixMilli()
		ok, err := s.txns.Transition(ctx, p.ID, txn.State, target, map[string]interface{}{
			"cancel_time": now,
			"reason":      p.Reason,
		})
		if err != nil {
			log.Printf("[Payme] CancelTransaction: transition failed: payme_id=%s, err=%v", p.ID, err)
			opErr = ErrInternal
			return nil
		}
		if !ok {
			opErr = ErrUnableToPerform
			return nil
		}

		if txn.State == model.TxStatePerformed {
			s.revokeEntitlement(ctx, txn, now, p.Reason)
		}

		result = &CancelResult{
			Transaction: txn.TransactionNo,
			CancelTime:  now,
			State:       target,
		}
		return nil
	})
	if err != nil {
		log.Printf("[Payme] CancelTransaction: lock failed: payme_id=%s, err=%v", p.ID, err)
		return nil, ErrInternal
	}

	if opErr != nil {
		return nil, opErr
	}
	return result, nil
}

// CheckTransaction returns the full current record; pure read, no lock.
func (s *MerchantService) CheckTransaction(ctx context.Context, p CheckParams) (*CheckResult, *Error) {
	txn, err := s.txns.GetByPaymeID(ctx, p.ID)
	if err != nil {
		log.Printf("[Payme] CheckTransaction: lookup failed: payme_id=%s, err=%v", p.ID, err)
		return nil, ErrInternal
	}
	if txn == nil {
		return nil, ErrTransactionNotFound
	}

	return &CheckResult{
		CreateTime:  txn.CreateTime,
		PerformTime: txn.PerformTime,
		CancelTime:  txn.CancelTime,
		Transaction: txn.TransactionNo,
		State:       txn.State,
		Reason:      txn.Reason,
	}, nil
}

// grantEntitlement runs after the perform transition committed. Only the
// transition winner gets here, so the collaborator is invoked exactly once
// per transaction; failures are logged for the retry/alerting pipeline and
// never undo the transition.
func (s *MerchantService) grantEntitlement(ctx context.Context, txn *model.PaymeTransaction, performTime int64) {
	order, err := s.orders.GetByID(ctx, txn.OrderID)
	if err != nil || order == nil {
		log.Printf("[Payme] entitlement grant skipped, order unavailable: payme_id=%s, order_id=%d, err=%v", txn.PaymeID, txn.OrderID, err)
		return
	}

	granted := *txn
	granted.State = model.TxStatePerformed
	granted.PerformTime = &performTime

	if err := s.ents.Grant(ctx, order, &granted); err != nil {
		log.Printf("[Payme] entitlement grant failed: payme_id=%s, order_id=%d, err=%v", txn.PaymeID, txn.OrderID, err)
	}
}

func (s *MerchantService) revokeEntitlement(ctx context.Context, txn *model.PaymeTransaction, cancelTime int64, reason int) {
	order, err := s.orders.GetByID(ctx, txn.OrderID)
	if err != nil || order == nil {
		log.Printf("[Payme] entitlement revoke skipped, order unavailable: payme_id=%s, order_id=%d, err=%v", txn.PaymeID, txn.OrderID, err)
		return
	}

	cancelled := *txn
	cancelled.State = model.TxStateCancelledAfterPerform
	cancelled.CancelTime = &cancelTime
	cancelled.Reason = &reason

	if err := s.ents.Revoke(ctx, order, &cancelled); err != nil {
		log.Printf("[Payme] entitlement revoke failed: payme_id=%s, order_id=%d, err=%v", txn.PaymeID, txn.OrderID, err)
	}
}
