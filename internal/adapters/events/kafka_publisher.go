package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ticketrail/settlement/internal/contracts"
)

// KafkaPublisher ships audit envelopes to Kafka, one topic per event type
// unless remapped. Partitioning by sale id keeps a sale's transitions
// ordered for downstream indexers.
type KafkaPublisher struct {
	writer       *kafka.Writer
	topicByEvent map[string]string
}

func NewKafkaPublisher(brokers []string, topicByEvent map[string]string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topicByEvent: topicByEvent,
	}, nil
}

func (p *KafkaPublisher) PublishDomain(ctx context.Context, envelope contracts.EventEnvelope) error {
	return p.publish(ctx, envelope)
}

func (p *KafkaPublisher) PublishAnalytics(ctx context.Context, envelope contracts.EventEnvelope) error {
	return p.publish(ctx, envelope)
}

func (p *KafkaPublisher) publish(ctx context.Context, envelope contracts.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	topic := envelope.EventType
	if mapped, ok := p.topicByEvent[envelope.EventType]; ok && mapped != "" {
		topic = mapped
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(envelope.PartitionKey),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
