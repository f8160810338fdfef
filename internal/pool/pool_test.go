package pool

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cozy-creator/model-server/internal/stream"
	"github.com/cozy-creator/model-server/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunkEngine struct {
	chunks []string
	err    error
}

func (e chunkEngine) Generate(ctx context.Context, kind types.JobKind, prompt string, emit Emitter) error {
	for _, c := range e.chunks {
		if err := emit(c); err != nil {
			return err
		}
	}
	return e.err
}

// blockingEngine emits one chunk and then waits for cancellation.
type blockingEngine struct {
	started  chan struct{}
	stopped  chan struct{}
	canceled atomic.Bool
}

func newBlockingEngine() *blockingEngine {
	return &blockingEngine{started: make(chan struct{}, 16), stopped: make(chan struct{}, 16)}
}

func (e *blockingEngine) Generate(ctx context.Context, kind types.JobKind, prompt string, emit Emitter) error {
	defer func() { e.stopped <- struct{}{} }()
	e.started <- struct{}{}
	if err := emit("first"); err != nil {
		return err
	}
	<-ctx.Done()
	e.canceled.Store(true)
	return ctx.Err()
}

type result struct {
	values []string
	err    error
}

func collect(t *testing.T, s *stream.Stream[string]) result {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var r result
	for {
		item, err := s.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return r
		}
		require.NoError(t, err)
		if item.Err != nil {
			r.err = item.Err
			continue
		}
		r.values = append(r.values, item.Value)
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for engine")
	}
}

func TestLocalRunsJob(t *testing.T) {
	p := NewLocal(chunkEngine{chunks: []string{"he", "llo"}}, 2, 2)
	defer p.Close()

	sink, s := stream.New[string](8)
	require.NoError(t, p.Submit(Job{Kind: types.JobKindGenerate, Prompt: "hello", Sink: sink}))

	got := collect(t, s)
	assert.Equal(t, []string{"he", "llo"}, got.values)
	assert.NoError(t, got.err)
}

func TestLocalForwardsEngineError(t *testing.T) {
	boom := errors.New("boom")
	p := NewLocal(chunkEngine{chunks: []string{"a"}, err: boom}, 1, 0)
	defer p.Close()

	sink, s := stream.New[string](8)
	require.NoError(t, p.Submit(Job{Kind: types.JobKindGenerate, Sink: sink}))

	got := collect(t, s)
	assert.Equal(t, []string{"a"}, got.values)
	assert.ErrorIs(t, got.err, boom)
}

func TestLocalRejectsWhenFull(t *testing.T) {
	engine := newBlockingEngine()
	p := NewLocal(engine, 1, 1)
	defer p.Close()

	first, _ := stream.New[string](4)
	require.NoError(t, p.Submit(Job{Kind: types.JobKindGenerate, Sink: first}))
	waitFor(t, engine.started)

	second, _ := stream.New[string](4)
	require.NoError(t, p.Submit(Job{Kind: types.JobKindGenerate, Sink: second}))

	third, _ := stream.New[string](4)
	assert.ErrorIs(t, p.Submit(Job{Kind: types.JobKindGenerate, Sink: third}), ErrPoolOverloaded)
}

func TestLocalConsumerDropCancelsEngine(t *testing.T) {
	engine := newBlockingEngine()
	p := NewLocal(engine, 1, 0)
	defer p.Close()

	sink, s := stream.New[string](4)
	require.NoError(t, p.Submit(Job{Kind: types.JobKindGenerate, Sink: sink}))
	waitFor(t, engine.started)

	s.Close()
	waitFor(t, engine.stopped)
	assert.True(t, engine.canceled.Load())

	// The slot is released, so the next job is admitted.
	next, _ := stream.New[string](4)
	require.Eventually(t, func() bool {
		return p.Submit(Job{Kind: types.JobKindGenerate, Sink: next}) == nil
	}, time.Second, 5*time.Millisecond)
}

func TestLocalClose(t *testing.T) {
	engine := newBlockingEngine()
	p := NewLocal(engine, 1, 0)

	sink, s := stream.New[string](4)
	require.NoError(t, p.Submit(Job{Kind: types.JobKindGenerate, Sink: sink}))
	waitFor(t, engine.started)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	got := collect(t, s)
	assert.Equal(t, []string{"first"}, got.values)
	assert.ErrorIs(t, got.err, ErrPoolClosed)

	late, _ := stream.New[string](1)
	assert.ErrorIs(t, p.Submit(Job{Kind: types.JobKindGenerate, Sink: late}), ErrPoolClosed)
}

func TestEchoEngine(t *testing.T) {
	var got []string
	emit := func(c string) error {
		got = append(got, c)
		return nil
	}

	require.NoError(t, EchoEngine{}.Generate(context.Background(), types.JobKindGenerate, "hello", emit))
	assert.Equal(t, []string{"he", "ll", "o"}, got)

	got = nil
	require.NoError(t, EchoEngine{ChunkSize: 3}.Generate(context.Background(), types.JobKindGenerate, "héllo", emit))
	assert.Equal(t, []string{"hél", "lo"}, got)

	got = nil
	require.NoError(t, EchoEngine{}.Generate(context.Background(), types.JobKindList, "models", emit))
	assert.Equal(t, []string{"models"}, got)

	got = nil
	require.NoError(t, EchoEngine{}.Generate(context.Background(), types.JobKindGenerate, "", emit))
	assert.Empty(t, got)
}

func TestEchoEngineStopsOnEmitError(t *testing.T) {
	calls := 0
	emit := func(string) error {
		calls++
		return stream.ErrConsumerGone
	}

	err := EchoEngine{}.Generate(context.Background(), types.JobKindGenerate, "hello", emit)
	assert.ErrorIs(t, err, stream.ErrConsumerGone)
	assert.Equal(t, 1, calls)
}
