package kafka

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

var ErrProducerClosed = errors.New(errors.ErrCodeInternal, "kafka producer is closed")

// writerInterface abstracts kafka.Writer for testing.
type writerInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes event envelopes.  Topic routing happens per message, so
// one Producer serves all topics.
type Producer struct {
	writer writerInterface
	source string
	logger logging.Logger
	closed atomic.Bool
	sent   atomic.Int64
}

// NewProducer builds a Producer for the configured brokers.  source names the
// service emitting events and lands in every envelope.
func NewProducer(cfg config.KafkaConfig, source string, log logging.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}

	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return &Producer{writer: writer, source: source, logger: log.Named("producer")}, nil
}

// newProducerWithWriter wires a fake writer, used by tests.
func newProducerWithWriter(w writerInterface, source string, log logging.Logger) *Producer {
	return &Producer{writer: w, source: source, logger: log}
}

// Publish wraps payload in an envelope and writes it to topic, keyed so that
// events for the same run stay ordered within a partition.
func (p *Producer) Publish(ctx context.Context, topic, eventType, key string, payload any) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	env, err := NewEventEnvelope(eventType, p.source, payload)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event envelope")
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  env.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
			{Key: "source_service", Value: []byte(p.source)},
			{Key: "schema_version", Value: []byte(env.SchemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			logging.String("topic", topic),
			logging.String("event_type", eventType),
			logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeExternalService, "kafka publish failed")
	}

	p.sent.Add(1)
	p.logger.Debug("published event",
		logging.String("topic", topic),
		logging.String("event_type", eventType),
		logging.String("event_id", env.EventID))
	return nil
}

// Sent reports the number of messages successfully published.
func (p *Producer) Sent() int64 {
	return p.sent.Load()
}

// Close flushes and shuts the writer down.
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}
