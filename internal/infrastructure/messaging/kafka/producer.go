// Package kafka publishes task-signoff lifecycle events to Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/Mattsantos541/ArcTecFox-Mono/internal/application/signoff"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/config"
	"github.com/Mattsantos541/ArcTecFox-Mono/internal/infrastructure/monitoring/logging"
	"github.com/Mattsantos541/ArcTecFox-Mono/pkg/errors"
)

// Producer implements signoff.EventPublisher on a kafka-go writer.  Events
// are keyed by task ID so consumers see each task's lifecycle in order.
type Producer struct {
	writer *kafkago.Writer
	logger logging.Logger
}

// NewProducer builds a producer from the Kafka configuration.
func NewProducer(cfg config.KafkaConfig, log logging.Logger) *Producer {
	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 10 * time.Second
	}
	maxAttempts := cfg.ProducerRetries
	if maxAttempts < 1 {
		maxAttempts = 3
	}

	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		WriteTimeout: writeTimeout,
		MaxAttempts:  maxAttempts,
		BatchSize:    cfg.BatchSize,
		RequiredAcks: kafkago.RequireAll,
	}
	return &Producer{writer: writer, logger: log}
}

// Publish serialises the event as JSON and writes it to the topic.
func (p *Producer) Publish(ctx context.Context, event signoff.Event) error {
	msg, err := buildMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodePublishFailed, "failed to write event").
			WithDetail("event_type=" + event.Type)
	}

	p.logger.Debug("published lifecycle event",
		logging.String("event_type", event.Type),
		logging.String("key", string(msg.Key)),
	)
	return nil
}

// buildMessage keys the message by task ID, falling back to plan ID for
// plan-scoped events, so per-task ordering is preserved across partitions.
func buildMessage(event signoff.Event) (kafkago.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, errors.Wrap(err, errors.ErrCodePublishFailed, "failed to marshal event")
	}

	key := event.TaskID.String()
	if key == "" {
		key = event.PlanID.String()
	}

	return kafkago.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}, nil
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error { return p.writer.Close() }
