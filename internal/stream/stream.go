// Package stream turns a bounded channel into a producer/consumer pair with
// per-item failures, explicit end of stream and consumer-side cancellation.
package stream

import (
	"context"
	"errors"
	"io"
	"sync"
)

var (
	// ErrConsumerGone is returned to producers once the consumer released its end.
	ErrConsumerGone = errors.New("stream consumer is gone")
	// ErrSinkClosed is returned when sending after Close.
	ErrSinkClosed = errors.New("stream sink is closed")
)

// Item is one element of a stream. A non-nil Err is a failed element and is
// still part of the sequence; the end of the sequence is io.EOF from Recv.
type Item[T any] struct {
	Value T
	Err   error
}

type pipe[T any] struct {
	ch   chan Item[T]
	done chan struct{}
}

// Sink is the producer end.
type Sink[T any] struct {
	p *pipe[T]

	mu        sync.RWMutex
	closed    bool
	closing   chan struct{}
	closeOnce sync.Once
}

// Stream is the consumer end.
type Stream[T any] struct {
	p        *pipe[T]
	doneOnce sync.Once
}

// New returns both ends of a stream buffering up to capacity items.
func New[T any](capacity int) (*Sink[T], *Stream[T]) {
	if capacity < 0 {
		capacity = 0
	}

	p := &pipe[T]{
		ch:   make(chan Item[T], capacity),
		done: make(chan struct{}),
	}

	return &Sink[T]{p: p, closing: make(chan struct{})}, &Stream[T]{p: p}
}

// Send blocks while the buffer is full.
func (s *Sink[T]) Send(ctx context.Context, v T) error {
	return s.push(ctx, Item[T]{Value: v})
}

// Fail sends a failed item. It does not end the stream.
func (s *Sink[T]) Fail(ctx context.Context, err error) error {
	return s.push(ctx, Item[T]{Err: err})
}

func (s *Sink[T]) push(ctx context.Context, item Item[T]) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSinkClosed
	}

	select {
	case <-s.p.done:
		return ErrConsumerGone
	case <-s.closing:
		return ErrSinkClosed
	default:
	}

	select {
	case s.p.ch <- item:
		return nil
	case <-s.p.done:
		return ErrConsumerGone
	case <-s.closing:
		return ErrSinkClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close ends the stream. Items already buffered are still delivered; a send
// blocked on a full buffer returns ErrSinkClosed.
func (s *Sink[T]) Close() {
	s.closeOnce.Do(func() {
		close(s.closing)
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.p.ch)
	}
}

// Done is closed when the consumer releases its end.
func (s *Sink[T]) Done() <-chan struct{} {
	return s.p.done
}

// Recv returns the next item in production order, io.EOF once the producer
// closed and the buffer is drained, or ctx.Err().
func (s *Stream[T]) Recv(ctx context.Context) (Item[T], error) {
	select {
	case <-s.p.done:
		return Item[T]{}, ErrConsumerGone
	default:
	}

	select {
	case item, ok := <-s.p.ch:
		if !ok {
			return Item[T]{}, io.EOF
		}
		return item, nil
	case <-ctx.Done():
		return Item[T]{}, ctx.Err()
	}
}

// Close releases the consumer end. Blocked and future sends fail with
// ErrConsumerGone.
func (s *Stream[T]) Close() {
	s.doneOnce.Do(func() {
		close(s.p.done)
	})
}
