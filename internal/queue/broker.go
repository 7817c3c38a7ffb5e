package queue

import (
	"context"
)

// Broker is the inbound side of the host integration: game scripts publish
// action envelopes onto a single multiplexed queue and the engine consumes
// them in order.
type Broker interface {
	Publish(ctx context.Context, queueName string, message []byte) error
	Subscribe(ctx context.Context, queueName string, handler MessageHandler) error
	Close() error
}

type MessageHandler func(ctx context.Context, message []byte) error

const (
	QueueHostMessages    = "register-host-messages"
	QueueHostMessagesDLQ = "register-host-messages-dlq"
)
