package mq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/cozy-creator/model-server/internal/config"
	"go.uber.org/zap"
)

type PulsarMQ struct {
	client    pulsar.Client
	producers sync.Map
	consumers sync.Map
	mu        sync.Mutex
	logger    *zap.Logger
}

func NewPulsarMQ(cfg *config.PulsarConfig, logger *zap.Logger) (*PulsarMQ, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := newPulsarClient(cfg)
	if err != nil {
		return nil, err
	}

	return &PulsarMQ{
		client: client,
		logger: logger.Named("pulsar"),
	}, nil
}

func (mq *PulsarMQ) Publish(ctx context.Context, topic string, message []byte) error {
	producer, err := mq.getProducer(topic)
	if err != nil {
		return err
	}

	if _, err := producer.Send(ctx, &pulsar.ProducerMessage{Payload: message}); err != nil {
		return publishError(err)
	}

	return nil
}

// publishError folds producer back-pressure and shutdown into the queue
// sentinels shared with the in-memory implementation.
func publishError(err error) error {
	var perr *pulsar.Error
	if errors.As(err, &perr) {
		switch perr.Result() {
		case pulsar.ProducerQueueIsFull, pulsar.ClientMemoryBufferIsFull:
			return fmt.Errorf("%w: %w", ErrQueueFull, err)
		case pulsar.ProducerClosed:
			return fmt.Errorf("%w: %w", ErrQueueClosed, err)
		}
	}

	return err
}

func (mq *PulsarMQ) Receive(ctx context.Context, topic string) (interface{}, error) {
	consumer, err := mq.getConsumer(topic)
	if err != nil {
		mq.logger.Error("failed to get consumer", zap.String("topic", topic), zap.Error(err))
		return nil, err
	}

	return consumer.Receive(ctx)
}

func (mq *PulsarMQ) GetMessageData(message interface{}) ([]byte, error) {
	msg, ok := message.(pulsar.Message)
	if !ok {
		return nil, errors.New("unexpected message type")
	}
	return msg.Payload(), nil
}

func (mq *PulsarMQ) Ack(topic string, message interface{}) error {
	consumer, err := mq.getConsumer(topic)
	if err != nil {
		return err
	}

	msg, ok := message.(pulsar.Message)
	if !ok {
		return errors.New("unexpected message type")
	}

	if err := consumer.Ack(msg); err != nil {
		mq.logger.Warn("failed to ack message", zap.String("topic", topic), zap.Error(err))
		return err
	}

	return nil
}

func (mq *PulsarMQ) CloseTopic(topic string) error {
	if producer, ok := mq.producers.LoadAndDelete(topic); ok {
		producer.(pulsar.Producer).Close()
	}

	if consumer, ok := mq.consumers.LoadAndDelete(topic); ok {
		consumer.(pulsar.Consumer).Close()
	}

	return nil
}

func (mq *PulsarMQ) Close() error {
	mq.producers.Range(func(key, value any) bool {
		value.(pulsar.Producer).Close()
		return true
	})
	mq.consumers.Range(func(key, value any) bool {
		value.(pulsar.Consumer).Close()
		return true
	})

	mq.client.Close()
	return nil
}

func (mq *PulsarMQ) getProducer(topic string) (pulsar.Producer, error) {
	if value, ok := mq.producers.Load(topic); ok {
		return value.(pulsar.Producer), nil
	}

	mq.mu.Lock()
	defer mq.mu.Unlock()

	if value, ok := mq.producers.Load(topic); ok {
		return value.(pulsar.Producer), nil
	}

	producer, err := mq.client.CreateProducer(pulsar.ProducerOptions{
		Topic:                   topic,
		DisableBlockIfQueueFull: true,
	})
	if err != nil {
		return nil, err
	}

	mq.producers.Store(topic, producer)
	return producer, nil
}

func (mq *PulsarMQ) getConsumer(topic string) (pulsar.Consumer, error) {
	if value, ok := mq.consumers.Load(topic); ok {
		return value.(pulsar.Consumer), nil
	}

	mq.mu.Lock()
	defer mq.mu.Unlock()

	if value, ok := mq.consumers.Load(topic); ok {
		return value.(pulsar.Consumer), nil
	}

	// Reply topics may receive messages before the first Receive, so the
	// subscription starts from the earliest retained message.
	consumer, err := mq.client.Subscribe(pulsar.ConsumerOptions{
		Topic:                       topic,
		Type:                        pulsar.Exclusive,
		SubscriptionName:            strings.ReplaceAll(topic, "/", "-"),
		SubscriptionInitialPosition: pulsar.SubscriptionPositionEarliest,
	})
	if err != nil {
		return nil, err
	}

	mq.consumers.Store(topic, consumer)
	return consumer, nil
}

func newPulsarClient(cfg *config.PulsarConfig) (pulsar.Client, error) {
	return pulsar.NewClient(pulsar.ClientOptions{
		URL:               cfg.URL,
		OperationTimeout:  30 * time.Second,
		ConnectionTimeout: 10 * time.Second,
	})
}
