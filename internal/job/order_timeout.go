package job

import (
	"context"
	"log"
	"time"

	"exampay/internal/model"
	"exampay/internal/repository"

	"gorm.io/gorm"
)

// OrderTimeoutJob expires orders the user abandoned before checkout.
// Orders that already have a live gateway transaction (created or
// performed) are left alone; the gateway owns that window.
type OrderTimeoutJob struct {
	orderRepo *repository.OrderRepository
	txnRepo   *repository.TransactionRepository
	interval  time.Duration
	batchSize int
}

func NewOrderTimeoutJob(db *gorm.DB) *OrderTimeoutJob {
	return &OrderTimeoutJob{
		orderRepo: repository.NewOrderRepository(db),
		txnRepo:   repository.NewTransactionRepository(db),
		interval:  30 * time.Second,
		batchSize: 100,
	}
}

func (j *OrderTimeoutJob) Start(ctx context.Context) {
	log.Println("[OrderTimeoutJob] started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OrderTimeoutJob] stopped")
			return
		case <-ticker.C:
			j.expireOrders(ctx)
		}
	}
}

func (j *OrderTimeoutJob) expireOrders(ctx context.Context) {
	orders, err := j.orderRepo.GetExpiredOrders(ctx, j.batchSize)
	if err != nil {
		log.Printf("[OrderTimeoutJob] failed to fetch expired orders: %v", err)
		return
	}

	for _, order := range orders {
		live, err := j.txnRepo.HasLiveTransaction(ctx, order.ID)
		if err != nil {
			log.Printf("[OrderTimeoutJob] failed to check transactions: order_id=%d, err=%v", order.ID, err)
			continue
		}
		if live {
			continue
		}

		err = j.orderRepo.UpdateStatus(ctx, nil, order.ID, model.OrderStatusCreated, model.OrderStatusExpired)
		if err != nil {
			// The order may have changed status concurrently; next tick
			// re-evaluates.
			if err != repository.ErrOrderStatusInvalid {
				log.Printf("[OrderTimeoutJob] failed to expire order: order_id=%d, err=%v", order.ID, err)
			}
			continue
		}

		log.Printf("[OrderTimeoutJob] order expired: order_id=%d, user_id=%d", order.ID, order.UserID)
	}
}
