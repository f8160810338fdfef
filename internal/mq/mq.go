package mq

import (
	"context"
	"errors"

	"github.com/cozy-creator/model-server/internal/config"
	"go.uber.org/zap"
)

var (
	ErrTopicNotExists = errors.New("topic does not exist")
	ErrQueueFull      = errors.New("queue is full")
	ErrQueueClosed    = errors.New("queue closed")
	ErrTopicClosed    = errors.New("topic closed")
)

const (
	MQTypeInMemory = "inmemory"
	MQTypePulsar   = "pulsar"
)

// MQ carries job envelopes to workers and reply envelopes back. Messages
// returned by Receive are opaque; use GetMessageData and Ack on them.
type MQ interface {
	Publish(ctx context.Context, topic string, message []byte) error
	Receive(ctx context.Context, topic string) (interface{}, error)
	GetMessageData(message interface{}) ([]byte, error)
	Ack(topic string, message interface{}) error
	CloseTopic(topic string) error
	Close() error
}

// NewMQ picks the Pulsar broker when a URL is configured and the in-process
// queue otherwise.
func NewMQ(cfg *config.Config, logger *zap.Logger) (MQ, error) {
	if cfg != nil && cfg.PulsarEnabled() {
		return NewPulsarMQ(cfg.Pulsar, logger)
	}

	size := config.DefaultMQQueueSize
	if cfg != nil && cfg.MQ != nil && cfg.MQ.QueueSize > 0 {
		size = cfg.MQ.QueueSize
	}
	return NewInMemoryMQ(size)
}

// Type reports which backend a queue is.
func Type(q MQ) string {
	if _, ok := q.(*PulsarMQ); ok {
		return MQTypePulsar
	}
	return MQTypeInMemory
}
