package messaging

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Aditya-max148/student-risk-dashboard/internal/config"
	"github.com/Aditya-max148/student-risk-dashboard/internal/domain/models"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/constants"
	"github.com/Aditya-max148/student-risk-dashboard/pkg/logger"
)

// LocalInvalidator drops a process-local cache entry.
type LocalInvalidator interface {
	InvalidateLocal(ctx context.Context)
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// SettingsConsumer listens for settings.updated events published by any
// replica and drops the local settings tier so the next read sees the new
// thresholds instead of waiting for the TTL.
type SettingsConsumer struct {
	reader      messageReader
	invalidator LocalInvalidator
	logger      logger.Logger
	retryDelay  time.Duration
}

// NewSettingsConsumer creates a consumer. Each process joins its own group
// so every replica receives every event.
func NewSettingsConsumer(cfg config.KafkaConfig, invalidator LocalInvalidator, log logger.Logger) *SettingsConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        constants.ServiceName + "-settings-" + uuid.NewString(),
		StartOffset:    kafka.LastOffset,
		MinBytes:       1,
		MaxBytes:       1e6,
		CommitInterval: time.Second,
	})
	return newSettingsConsumer(reader, invalidator, log)
}

func newSettingsConsumer(r messageReader, invalidator LocalInvalidator, log logger.Logger) *SettingsConsumer {
	return &SettingsConsumer{
		reader:      r,
		invalidator: invalidator,
		logger:      log.WithComponent("settings_consumer"),
		retryDelay:  time.Second,
	}
}

// Run consumes until ctx is cancelled. It is a blocking call.
func (c *SettingsConsumer) Run(ctx context.Context) error {
	c.logger.Info(ctx, "starting settings consumer")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, context.Canceled) {
				c.logger.Info(ctx, "stopping settings consumer")
				return nil
			}
			c.logger.Error(ctx, "failed to fetch message from kafka", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.retryDelay):
			}
			continue
		}

		c.handle(ctx, msg)
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Warn(ctx, "failed to commit message", logger.Fields{"error": err.Error(), "offset": msg.Offset})
		}
	}
}

func (c *SettingsConsumer) handle(ctx context.Context, msg kafka.Message) {
	if eventType(msg) != constants.EventSettingsUpdated {
		return
	}
	var event models.Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		// Poison message: skip it, the TTL still bounds staleness.
		c.logger.Warn(ctx, "undecodable settings event", logger.Fields{"error": err.Error(), "offset": msg.Offset})
		return
	}
	c.invalidator.InvalidateLocal(ctx)
	c.logger.Debug(ctx, "local settings cache invalidated", logger.Fields{"event_id": event.ID})
}

func eventType(msg kafka.Message) constants.EventType {
	for _, h := range msg.Headers {
		if h.Key == headerEventType {
			return constants.EventType(h.Value)
		}
	}
	return ""
}

// Close closes the underlying reader.
func (c *SettingsConsumer) Close() error {
	return c.reader.Close()
}
