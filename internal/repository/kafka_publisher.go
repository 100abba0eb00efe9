package repository

import (
	"context"

	"CoinSight/internal/domain/models"
	"CoinSight/internal/domain/repository"
	pkgkafka "CoinSight/pkg/kafka"
)

// KafkaPublisher pushes finished analysis results onto a Kafka topic,
// keyed by symbol so per-symbol ordering survives partitioning.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.ResultPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.AnalysisResult) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Symbol), r)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
