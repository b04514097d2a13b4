package kafka

import (
	"context"
	"sync/atomic"

	"github.com/segmentio/kafka-go"

	"github.com/patentminer/patentminer/internal/config"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
	"github.com/patentminer/patentminer/pkg/errors"
)

// Handler processes one decoded envelope.  A returned error sends the raw
// message to the dead-letter topic; the offset is committed either way so a
// poison message cannot wedge the partition.
type Handler func(ctx context.Context, env *EventEnvelope) error

// readerInterface abstracts kafka.Reader for testing.
type readerInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic within a consumer group and dispatches envelopes
// to a Handler.
type Consumer struct {
	reader     readerInterface
	deadLetter writerInterface
	topic      string
	logger     logging.Logger
	closed     atomic.Bool
	processed  atomic.Int64
	failed     atomic.Int64
}

// NewConsumer subscribes to topic in the configured consumer group.
func NewConsumer(cfg config.KafkaConfig, topic string, log logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "kafka brokers required")
	}
	if cfg.ConsumerGroup == "" {
		return nil, errors.New(errors.ErrCodeValidation, "kafka consumer group required")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.ConsumerGroup,
		Topic:   topic,
	})
	deadLetter := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        TopicDeadLetter,
		RequiredAcks: kafka.RequireAll,
	}
	return &Consumer{
		reader:     reader,
		deadLetter: deadLetter,
		topic:      topic,
		logger:     log.Named("consumer").With(logging.String("topic", topic)),
	}, nil
}

// newConsumerWithReader wires fakes, used by tests.
func newConsumerWithReader(r readerInterface, dl writerInterface, topic string, log logging.Logger) *Consumer {
	return &Consumer{reader: r, deadLetter: dl, topic: topic, logger: log}
}

// Run consumes until ctx is canceled or the consumer is closed.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || c.closed.Load() {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeExternalService, "kafka fetch failed")
		}

		c.dispatch(ctx, handle, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeExternalService, "kafka commit failed")
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, handle Handler, msg kafka.Message) {
	env, err := DecodeEnvelope(msg.Value)
	if err != nil {
		c.logger.Error("undecodable message", logging.Err(err))
		c.toDeadLetter(ctx, msg)
		return
	}

	if err := handle(ctx, env); err != nil {
		c.failed.Add(1)
		c.logger.Error("handler failed",
			logging.String("event_id", env.EventID),
			logging.String("event_type", env.EventType),
			logging.Err(err))
		c.toDeadLetter(ctx, msg)
		return
	}
	c.processed.Add(1)
}

func (c *Consumer) toDeadLetter(ctx context.Context, msg kafka.Message) {
	dead := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers, kafka.Header{
			Key: "origin_topic", Value: []byte(c.topic),
		}),
	}
	if err := c.deadLetter.WriteMessages(ctx, dead); err != nil {
		c.logger.Error("failed to dead-letter message", logging.Err(err))
	}
}

// Processed reports successfully handled messages.
func (c *Consumer) Processed() int64 { return c.processed.Load() }

// Failed reports messages routed to the dead-letter topic after handler errors.
func (c *Consumer) Failed() int64 { return c.failed.Load() }

// Close stops the consumer.
func (c *Consumer) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if err := c.deadLetter.Close(); err != nil {
		c.logger.Warn("failed to close dead-letter writer", logging.Err(err))
	}
	return c.reader.Close()
}
