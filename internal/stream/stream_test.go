package stream

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[T any](t *testing.T, s *Stream[T]) []Item[T] {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var items []Item[T]
	for {
		item, err := s.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return items
		}
		require.NoError(t, err)
		items = append(items, item)
	}
}

func TestStreamYieldsInOrderThenEnds(t *testing.T) {
	ctx := context.Background()
	sink, s := New[string](4)

	go func() {
		defer sink.Close()
		for _, v := range []string{"a", "b", "c"} {
			if err := sink.Send(ctx, v); err != nil {
				return
			}
		}
	}()

	items := collect(t, s)
	assert.Equal(t, []Item[string]{{Value: "a"}, {Value: "b"}, {Value: "c"}}, items)

	done := make(chan error, 1)
	go func() {
		_, err := s.Recv(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(time.Second):
		t.Fatal("Recv blocked after end of stream")
	}
}

func TestStreamForwardsErrorItems(t *testing.T) {
	ctx := context.Background()
	sink, s := New[string](4)
	boom := errors.New("engine failed")

	require.NoError(t, sink.Send(ctx, "a"))
	require.NoError(t, sink.Fail(ctx, boom))
	require.NoError(t, sink.Send(ctx, "b"))
	sink.Close()

	items := collect(t, s)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].Value)
	assert.ErrorIs(t, items[1].Err, boom)
	assert.Equal(t, "b", items[2].Value)
}

func TestSinkBackpressure(t *testing.T) {
	ctx := context.Background()
	sink, s := New[int](1)

	var sent atomic.Int32
	go func() {
		defer sink.Close()
		for i := 0; i < 3; i++ {
			if err := sink.Send(ctx, i); err != nil {
				return
			}
			sent.Add(1)
		}
	}()

	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, sent.Load(), "producer should block on a full buffer")

	items := collect(t, s)
	assert.Len(t, items, 3)
	assert.EqualValues(t, 3, sent.Load())
}

func TestConsumerDropStopsProducer(t *testing.T) {
	for _, capacity := range []int{0, 1} {
		sink, s := New[string](capacity)

		var sent atomic.Int32
		producerErr := make(chan error, 1)
		go func() {
			defer sink.Close()
			for _, v := range []string{"a", "b", "c"} {
				if err := sink.Send(context.Background(), v); err != nil {
					producerErr <- err
					return
				}
				sent.Add(1)
			}
			producerErr <- nil
		}()

		item, err := s.Recv(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "a", item.Value)
		s.Close()

		select {
		case err := <-producerErr:
			assert.ErrorIs(t, err, ErrConsumerGone, "capacity %d", capacity)
		case <-time.After(time.Second):
			t.Fatalf("producer did not observe the dropped consumer (capacity %d)", capacity)
		}

		assert.LessOrEqual(t, int(sent.Load()), capacity+1)
		assert.ErrorIs(t, sink.Send(context.Background(), "d"), ErrConsumerGone)

		select {
		case <-sink.Done():
		default:
			t.Fatal("Done not closed after consumer release")
		}
	}
}

func TestSendHonoursContext(t *testing.T) {
	sink, s := New[int](0)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, sink.Send(ctx, 1), context.DeadlineExceeded)
}

func TestRecvHonoursContext(t *testing.T) {
	sink, s := New[int](0)
	defer sink.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Recv(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCloseIsIdempotent(t *testing.T) {
	sink, s := New[int](1)

	sink.Close()
	sink.Close()
	s.Close()
	s.Close()

	assert.ErrorIs(t, sink.Send(context.Background(), 1), ErrSinkClosed)
}

func TestCloseUnblocksPendingSend(t *testing.T) {
	sink, s := New[int](1)
	defer s.Close()

	require.NoError(t, sink.Send(context.Background(), 1))

	sent := make(chan error, 1)
	go func() {
		sent <- sink.Send(context.Background(), 2)
	}()

	time.Sleep(20 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		sink.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close waited on a blocked send")
	}

	select {
	case err := <-sent:
		assert.ErrorIs(t, err, ErrSinkClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked send did not observe Close")
	}

	assert.Equal(t, []Item[int]{{Value: 1}}, collect(t, s))
}
