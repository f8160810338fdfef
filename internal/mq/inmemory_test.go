package mq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveData(t *testing.T, q MQ, topic string) []byte {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg, err := q.Receive(ctx, topic)
	require.NoError(t, err)
	data, err := q.GetMessageData(msg)
	require.NoError(t, err)
	require.NoError(t, q.Ack(topic, msg))
	return data
}

func TestInMemoryPublishReceive(t *testing.T) {
	q, err := NewInMemoryMQ(4)
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, "jobs", []byte("a")))
	require.NoError(t, q.Publish(ctx, "jobs", []byte("b")))

	assert.Equal(t, []byte("a"), receiveData(t, q, "jobs"))
	assert.Equal(t, []byte("b"), receiveData(t, q, "jobs"))
}

func TestInMemoryQueueFull(t *testing.T) {
	q, err := NewInMemoryMQ(1)
	require.NoError(t, err)
	defer q.Close()

	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, "jobs", []byte("a")))
	assert.ErrorIs(t, q.Publish(ctx, "jobs", []byte("b")), ErrQueueFull)
}

func TestInMemoryCloseTopic(t *testing.T) {
	q, err := NewInMemoryMQ(1)
	require.NoError(t, err)
	defer q.Close()

	assert.ErrorIs(t, q.CloseTopic("missing"), ErrTopicNotExists)

	done := make(chan error, 1)
	go func() {
		_, err := q.Receive(context.Background(), "replies")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return q.CloseTopic("replies") == nil
	}, time.Second, 5*time.Millisecond)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrTopicClosed)
	case <-time.After(time.Second):
		t.Fatal("receive did not observe topic close")
	}
}

func TestInMemoryClose(t *testing.T) {
	q, err := NewInMemoryMQ(1)
	require.NoError(t, err)

	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	assert.ErrorIs(t, q.Publish(context.Background(), "jobs", []byte("a")), ErrQueueClosed)
	_, err = q.Receive(context.Background(), "jobs")
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestInMemoryReceiveHonoursContext(t *testing.T) {
	q, err := NewInMemoryMQ(1)
	require.NoError(t, err)
	defer q.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = q.Receive(ctx, "jobs")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewMQDefaultsToInMemory(t *testing.T) {
	q, err := NewMQ(nil, nil)
	require.NoError(t, err)
	defer q.Close()

	assert.Equal(t, MQTypeInMemory, Type(q))
}
