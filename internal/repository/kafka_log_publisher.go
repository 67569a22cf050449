package repository

import (
	"context"

	pkgkafka "LoadLedger/pkg/kafka"
)

// KafkaLogPublisher ships aggregated log batches to a Kafka topic,
// adapting the producer to the log collector's Publisher interface.
type KafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

// NewKafkaLogPublisher creates a Kafka-backed log publisher.
func NewKafkaLogPublisher(producer *pkgkafka.Producer) *KafkaLogPublisher {
	return &KafkaLogPublisher{producer: producer}
}

// PublishMessage sends one aggregated batch. Batches are unkeyed so they
// spread across partitions.
func (p *KafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}
