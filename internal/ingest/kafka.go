package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/rateworks/recsys/internal/config"
	"github.com/rateworks/recsys/pkg/models"
)

// RatingEvent is the wire format for a single rating on the message bus.
// Timestamp is unix seconds.
type RatingEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Rating    float64   `json:"rating"`
	Timestamp int64     `json:"timestamp"`
}

// RecordHandler receives each validated rating record.
type RecordHandler func(models.RatingRecord) error

// Consumer reads rating events from Kafka, validates them against the
// event schema and the configured rating range, and hands valid records
// to a handler. Events that fail validation go to the DLQ topic.
type Consumer struct {
	reader    *kafka.Reader
	dlqWriter *kafka.Writer
	validator *EventValidator
	ratings   config.RatingsConfig
	logger    *logrus.Logger
}

func NewConsumer(cfg *config.Config, logger *logrus.Logger) (*Consumer, error) {
	validator, err := NewEventValidator()
	if err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.Topics.RatingEvents,
		GroupID:        cfg.Kafka.ConsumerGroup,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        cfg.Kafka.Topics.RatingEventsDLQ,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	return &Consumer{
		reader:    reader,
		dlqWriter: dlqWriter,
		validator: validator,
		ratings:   cfg.Ratings,
		logger:    logger,
	}, nil
}

// Run consumes until the context is cancelled. Per-event failures never
// stop the loop.
func (c *Consumer) Run(ctx context.Context, handler RecordHandler) error {
	c.logger.Info("Rating event consumer started")
	for {
		message, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Rating event consumer stopped")
				return ctx.Err()
			}
			c.logger.WithError(err).Error("Failed to read rating event")
			continue
		}

		if err := c.processMessage(ctx, message, handler); err != nil {
			c.logger.WithError(err).Warn("Rating event rejected")
			c.sendToDLQ(message, err)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, message kafka.Message, handler RecordHandler) error {
	if err := c.validator.Validate(message.Value); err != nil {
		return err
	}

	var event RatingEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal rating event: %w", err)
	}

	if event.Rating < c.ratings.MinValue || event.Rating > c.ratings.MaxValue {
		return fmt.Errorf("rating %.2f outside valid range [%.2f, %.2f]",
			event.Rating, c.ratings.MinValue, c.ratings.MaxValue)
	}

	record := models.RatingRecord{
		UserID:    event.UserID,
		ProductID: event.ProductID,
		Rating:    event.Rating,
		Timestamp: time.Unix(event.Timestamp, 0).UTC(),
	}
	if err := handler(record); err != nil {
		return fmt.Errorf("handler rejected rating record: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"event_id":   event.EventID,
		"user_id":    event.UserID,
		"product_id": event.ProductID,
	}).Debug("Rating event ingested")
	return nil
}

func (c *Consumer) sendToDLQ(message kafka.Message, cause error) {
	dlqMessage := kafka.Message{
		Key:   message.Key,
		Value: message.Value,
		Headers: append(message.Headers, kafka.Header{
			Key:   "error",
			Value: []byte(cause.Error()),
		}),
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.dlqWriter.WriteMessages(writeCtx, dlqMessage); err != nil {
		c.logger.WithError(err).Error("Failed to write rating event to DLQ")
	}
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return err
	}
	return c.dlqWriter.Close()
}
