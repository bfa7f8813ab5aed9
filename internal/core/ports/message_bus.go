package ports

import "context"

// Message is one raw message consumed from or published to the bus.
// Key carries the partitioning key (shipment or step ID), Value the JSON
// payload.
type Message struct {
	Topic string
	Key   []byte
	Value []byte
}

// MessageHandler processes one consumed message. The bus interprets the
// returned error to decide between acknowledging, retrying and dead-lettering
// the message; see Subscribe.
type MessageHandler func(ctx context.Context, msg Message) error

// MessageBus abstracts the broker used for orchestration events and
// commands.
type MessageBus interface {
	// Publish delivers messages to their topics. All-or-nothing per call.
	Publish(ctx context.Context, msgs ...Message) error

	// Subscribe consumes a topic until ctx is cancelled, invoking handler
	// for every message. A nil handler result acknowledges the message.
	// Errors matching the domain validation taxonomy mark the message as
	// poison: it is acknowledged and forwarded to the topic's dead-letter
	// queue. Any other error leaves the message unacknowledged for
	// redelivery.
	Subscribe(ctx context.Context, topic string, handler MessageHandler) error
}
