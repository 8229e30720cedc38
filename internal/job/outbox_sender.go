package job

import (
	"context"
	"log"
	"time"

	"exampay/internal/config"
	"exampay/internal/infrastructure/mq"
	"exampay/internal/model"
	"exampay/internal/repository"

	"gorm.io/gorm"
)

// OutboxSender drains pending outbox rows into Kafka. It is the retry and
// alerting mechanism for entitlement/payment events: delivery failures bump
// a retry counter, and rows that exhaust the budget are marked FAILED for
// operational follow-up.
type OutboxSender struct {
	outboxRepo *repository.OutboxRepository
	producer   *mq.Producer
	cfg        *config.Config
	interval   time.Duration
	batchSize  int
}

func NewOutboxSender(db *gorm.DB, producer *mq.Producer, cfg *config.Config) *OutboxSender {
	return &OutboxSender{
		outboxRepo: repository.NewOutboxRepository(db),
		producer:   producer,
		cfg:        cfg,
		interval:   100 * time.Millisecond,
		batchSize:  100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	log.Println("[OutboxSender] started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OutboxSender] stopped")
			return
		case <-ticker.C:
			s.processPendingMessages(ctx)
		}
	}
}

func (s *OutboxSender) processPendingMessages(ctx context.Context) {
	messages, err := s.outboxRepo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		log.Printf("[OutboxSender] failed to fetch pending messages: %v", err)
		return
	}

	for _, msg := range messages {
		s.sendMessage(ctx, msg)
	}
}

func (s *OutboxSender) sendMessage(ctx context.Context, msg *model.OutboxMessage) {
	err := s.producer.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)

	if err == nil {
		if updateErr := s.outboxRepo.UpdateStatus(ctx, msg.ID, model.OutboxStatusSent); updateErr != nil {
			log.Printf("[OutboxSender] failed to mark message sent: id=%d, err=%v", msg.ID, updateErr)
		}
		return
	}

	log.Printf("[OutboxSender] delivery failed: id=%d, topic=%s, err=%v", msg.ID, msg.Topic, err)

	if err := s.outboxRepo.IncrementRetryCount(ctx, msg.ID); err != nil {
		log.Printf("[OutboxSender] failed to bump retry count: id=%d, err=%v", msg.ID, err)
	}

	if msg.RetryCount+1 >= s.cfg.Business.MaxRetryCount {
		if err := s.outboxRepo.MarkAsFailed(ctx, msg.ID); err != nil {
			log.Printf("[OutboxSender] failed to mark message failed: id=%d, err=%v", msg.ID, err)
		} else {
			log.Printf("[OutboxSender] retries exhausted, message marked failed: id=%d, topic=%s, key=%s", msg.ID, msg.Topic, msg.MessageKey)
		}
	}
}
