package mq

import (
	"fmt"
	"testing"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/stretchr/testify/assert"
)

func TestPublishErrorMapsProducerBackpressure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"send queue full", pulsar.ErrSendQueueIsFull, ErrQueueFull},
		{"memory buffer full", pulsar.ErrMemoryBufferIsFull, ErrQueueFull},
		{"wrapped queue full", fmt.Errorf("send: %w", pulsar.ErrSendQueueIsFull), ErrQueueFull},
		{"producer closed", pulsar.ErrProducerClosed, ErrQueueClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := publishError(tt.err)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestPublishErrorPassesOtherFailures(t *testing.T) {
	err := publishError(pulsar.ErrSendTimeout)
	assert.Same(t, pulsar.ErrSendTimeout, err)
	assert.NotErrorIs(t, err, ErrQueueFull)
	assert.NotErrorIs(t, err, ErrQueueClosed)
}
