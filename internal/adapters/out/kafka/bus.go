// Package kafka provides the Kafka-backed implementation of the message bus
// port using segmentio/kafka-go. Consumption is at-least-once: a message is
// committed only after its handler succeeded or the message was parked on
// the topic's dead-letter queue.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"custody/internal/core/ports"
	"custody/internal/pkg/errs"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	// deadLetterSuffix is appended to a topic's name to form its DLQ.
	deadLetterSuffix = ".dlq"

	// transient handler failures are retried in place this many times
	// before the message is parked on the DLQ.
	maxHandlerAttempts = 3

	retryBackoff = 2 * time.Second
)

// messageWriter is the slice of kafkago.Writer the bus publishes through.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Bus implements ports.MessageBus on top of Kafka.
type Bus struct {
	brokers []string
	groupID string
	writer  messageWriter
	log     *slog.Logger
	backoff time.Duration
}

// NewBus creates a bus publishing and consuming through the given brokers.
// groupID names the consumer group used by Subscribe.
func NewBus(brokers []string, groupID string, log *slog.Logger) *Bus {
	return &Bus{
		brokers: brokers,
		groupID: groupID,
		writer: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireAll,
			BatchTimeout: 10 * time.Millisecond,
		},
		log:     log,
		backoff: retryBackoff,
	}
}

// Close releases the underlying writer.
func (b *Bus) Close() error {
	return b.writer.Close()
}

// Publish delivers messages to their topics. The hash balancer keys
// partitioning on Message.Key, so events sharing a key stay ordered.
func (b *Bus) Publish(ctx context.Context, msgs ...ports.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	out := make([]kafkago.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = kafkago.Message{
			Topic: msg.Topic,
			Key:   msg.Key,
			Value: msg.Value,
		}
	}

	if err := b.writer.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("publish %d messages: %w", len(msgs), err)
	}

	return nil
}

// Subscribe consumes topic until ctx is cancelled. Handler outcomes:
//   - nil: the message is committed
//   - poison (validation taxonomy): the message is parked on the DLQ right
//     away and committed, since redelivery cannot help a request that can
//     never succeed
//   - anything else: the handler is retried in place with backoff; when the
//     failure persists past the attempt bound the message is parked on the
//     DLQ for manual inspection and committed, so one broken message cannot
//     stall the topic
func (b *Bus) Subscribe(ctx context.Context, topic string, handler ports.MessageHandler) error {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        b.brokers,
		GroupID:        b.groupID,
		Topic:          topic,
		CommitInterval: 0, // synchronous commits
	})
	defer reader.Close()

	for {
		raw, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("fetch from %s: %w", topic, err)
		}

		msg := ports.Message{Topic: topic, Key: raw.Key, Value: raw.Value}

		if err = b.handleMessage(ctx, msg, handler); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("handle message on %s: %w", topic, err)
		}

		if err = reader.CommitMessages(ctx, raw); err != nil {
			return fmt.Errorf("commit on %s: %w", topic, err)
		}
	}
}

// handleMessage drives the handler and settles the message: nil means it can
// be committed, either because the handler succeeded or because the message
// was parked on the DLQ. Only context cancellation and a failed DLQ publish
// propagate.
func (b *Bus) handleMessage(ctx context.Context, msg ports.Message, handler ports.MessageHandler) error {
	err := b.handleWithRetry(ctx, msg, handler)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	b.log.Error("parking message",
		"topic", msg.Topic, "key", string(msg.Key), "poison", isPoison(err), "error", err)
	return b.publishDeadLetter(ctx, msg)
}

func (b *Bus) handleWithRetry(ctx context.Context, msg ports.Message, handler ports.MessageHandler) error {
	var err error
	for attempt := 1; attempt <= maxHandlerAttempts; attempt++ {
		err = handler(ctx, msg)
		if err == nil || isPoison(err) {
			return err
		}

		b.log.Warn("message handling failed",
			"topic", msg.Topic, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.backoff):
		}
	}

	return err
}

func (b *Bus) publishDeadLetter(ctx context.Context, msg ports.Message) error {
	return b.Publish(ctx, ports.Message{
		Topic: msg.Topic + deadLetterSuffix,
		Key:   msg.Key,
		Value: msg.Value,
	})
}

// isPoison reports whether the error is a permanent rejection of the message
// itself: malformed payloads, missing values, unconstructable shipments,
// illegal lifecycle transitions. Poison messages skip the in-place retries.
// Not-found and version conflicts stay retryable since the missing state may
// appear and concurrent writers do back off.
func isPoison(err error) bool {
	return errors.Is(err, errs.ErrValueIsInvalid) ||
		errors.Is(err, errs.ErrValueIsRequired) ||
		errors.Is(err, errs.ErrInvalidTransition)
}
