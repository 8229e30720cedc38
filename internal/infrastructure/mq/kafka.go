package mq

import (
	"log"

	"exampay/internal/config"

	"github.com/IBM/sarama"
)

// Producer wraps the sarama sync producer used by the outbox sender.
type Producer struct {
	producer sarama.SyncProducer
}

func InitKafka(cfg *config.KafkaConfig) *Producer {
	kafkaConfig := sarama.NewConfig()
	kafkaConfig.Producer.RequiredAcks = sarama.WaitForAll
	kafkaConfig.Producer.Retry.Max = 3
	kafkaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, kafkaConfig)
	if err != nil {
		log.Fatalf("failed to create Kafka producer: %v", err)
	}

	log.Println("Kafka producer ready")
	return &Producer{producer: producer}
}

// SendMessage publishes one message; the key keeps events for the same
// order/transaction on one partition, preserving their relative order.
func (p *Producer) SendMessage(topic, key, value string) error {
	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.StringEncoder(value),
	}

	_, _, err := p.producer.SendMessage(msg)
	return err
}

func (p *Producer) Close() {
	if p.producer != nil {
		p.producer.Close()
	}
}
