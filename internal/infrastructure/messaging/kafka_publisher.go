// Package messaging publishes domain events to Kafka and consumes the ones
// other replicas publish.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/service"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

const headerEventType = "event_type"

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher is a Kafka-backed implementation of the EventPublisher.
type KafkaPublisher struct {
	writer messageWriter
	logger logger.Logger
}

var _ service.EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher writing to cfg.Topic.
func NewKafkaPublisher(cfg config.KafkaConfig, log logger.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
	return newKafkaPublisher(writer, log)
}

func newKafkaPublisher(w messageWriter, log logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		logger: log.WithComponent("kafka_publisher"),
	}
}

// Publish sends an event to the topic, keyed so events about the same
// subject stay ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event models.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal event", err, logger.Fields{"event_type": string(event.Type)})
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: headerEventType, Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(ctx, "failed to write message to Kafka", err, logger.Fields{
			"event_type": string(event.Type),
			"event_id":   event.ID,
		})
		return fmt.Errorf("write event %s: %w", event.ID, err)
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher writes events to the log. It stands in for Kafka when the
// broker is disabled.
type LogPublisher struct {
	logger logger.Logger
}

var _ service.EventPublisher = (*LogPublisher)(nil)

// NewLogPublisher creates a publisher that only logs.
func NewLogPublisher(log logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log.WithComponent("events")}
}

func (p *LogPublisher) Publish(ctx context.Context, event models.Event) error {
	p.logger.Info(ctx, "domain event", logger.Fields{
		"event_type": string(event.Type),
		"event_id":   event.ID,
		"key":        event.Key,
	})
	return nil
}

func (p *LogPublisher) Close() error { return nil }
