package repository

import (
	"context"

	"LoadLedger/internal/domain/models"
	domrepo "LoadLedger/internal/domain/repository"
	pkgkafka "LoadLedger/pkg/kafka"
)

// KafkaRunPublisher implements RunPublisher for Kafka.
type KafkaRunPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaRunPublisher creates a Kafka-backed run publisher.
func NewKafkaRunPublisher(producer *pkgkafka.Producer, topic string) domrepo.RunPublisher {
	return &KafkaRunPublisher{producer: producer, topic: topic}
}

// PublishCompleted announces a finished run keyed by run id.
func (p *KafkaRunPublisher) PublishCompleted(ctx context.Context, rec models.RunRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(rec.RunID), map[string]interface{}{
		"run_id":          rec.RunID,
		"range":           rec.ReportType,
		"format":          rec.Format,
		"status":          rec.Status,
		"audit_precision": rec.AuditPrecision,
		"total_hours":     rec.TotalHours,
		"total_load":      rec.TotalLoad,
		"distance_km":     rec.DistanceKm,
		"event_count":     rec.EventCount,
		"validated":       rec.Validated,
		"generated_at":    rec.GeneratedAt,
	})
}

func (p *KafkaRunPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
