package mq

import (
	"context"
	"errors"
	"sync"
)

type InMemoryMQ struct {
	maxSize   int
	topics    sync.Map
	closeCh   chan struct{}
	closeOnce sync.Once
}

func NewInMemoryMQ(maxSize int) (*InMemoryMQ, error) {
	if maxSize <= 0 {
		return nil, errors.New("queue size must be positive")
	}

	return &InMemoryMQ{
		maxSize: maxSize,
		closeCh: make(chan struct{}),
	}, nil
}

type memTopic struct {
	ch     chan []byte
	done   chan struct{}
	closed sync.Once
}

func (q *InMemoryMQ) topic(name string) *memTopic {
	value, _ := q.topics.LoadOrStore(name, &memTopic{
		ch:   make(chan []byte, q.maxSize),
		done: make(chan struct{}),
	})
	return value.(*memTopic)
}

// Publish never blocks: a full topic reports ErrQueueFull.
func (q *InMemoryMQ) Publish(ctx context.Context, topic string, message []byte) error {
	select {
	case <-q.closeCh:
		return ErrQueueClosed
	default:
	}

	t := q.topic(topic)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeCh:
		return ErrQueueClosed
	case <-t.done:
		return ErrTopicClosed
	case t.ch <- message:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *InMemoryMQ) Receive(ctx context.Context, topic string) (interface{}, error) {
	t := q.topic(topic)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-q.closeCh:
		return nil, ErrQueueClosed
	case data := <-t.ch:
		return data, nil
	case <-t.done:
		q.topics.CompareAndDelete(topic, t)
		return nil, ErrTopicClosed
	}
}

func (q *InMemoryMQ) GetMessageData(message interface{}) ([]byte, error) {
	data, ok := message.([]byte)
	if !ok {
		return nil, errors.New("unexpected message type")
	}
	return data, nil
}

// Ack is a no-op; messages leave the queue when received.
func (q *InMemoryMQ) Ack(topic string, message interface{}) error {
	return nil
}

func (q *InMemoryMQ) CloseTopic(topic string) error {
	value, ok := q.topics.Load(topic)
	if !ok {
		return ErrTopicNotExists
	}

	t := value.(*memTopic)
	t.closed.Do(func() { close(t.done) })
	q.topics.CompareAndDelete(topic, t)
	return nil
}

func (q *InMemoryMQ) Close() error {
	q.closeOnce.Do(func() { close(q.closeCh) })
	return nil
}
