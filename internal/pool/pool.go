// Package pool runs inference jobs and streams their output into a sink.
package pool

import (
	"context"
	"errors"
	"time"

	"github.com/cozy-creator/model-server/internal/stream"
	"github.com/cozy-creator/model-server/internal/types"
	"go.uber.org/zap"
)

var (
	ErrPoolClosed     = errors.New("execution pool is closed")
	ErrPoolOverloaded = errors.New("execution pool is overloaded")
)

// Job is one unit of work. The pool owns Sink once Submit accepts the job and
// closes it when the job ends.
type Job struct {
	Kind   types.JobKind
	Prompt string
	Sink   *stream.Sink[string]
}

// Pool accepts jobs without blocking the caller.
type Pool interface {
	Submit(job Job) error
	Close() error
}

// Emitter hands one chunk of output to the consumer. It fails once the
// consumer is gone.
type Emitter func(chunk string) error

// Engine produces the output of a single job.
type Engine interface {
	Generate(ctx context.Context, kind types.JobKind, prompt string, emit Emitter) error
}

const (
	DefaultReplyTimeout = 5 * time.Second
	DefaultDrainTimeout = 30 * time.Second
)

type options struct {
	logger       *zap.Logger
	replyTimeout time.Duration
	drainTimeout time.Duration
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithReplyTimeout bounds how long a worker retries a reply into a full
// topic before abandoning the job.
func WithReplyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.replyTimeout = d
		}
	}
}

// WithDrainTimeout bounds how long a remote pool keeps draining replies for a
// job whose consumer already left.
func WithDrainTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.drainTimeout = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger:       zap.NewNop(),
		replyTimeout: DefaultReplyTimeout,
		drainTimeout: DefaultDrainTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// runJob drives engine for job, closes the sink when done, and stops the
// engine early if the consumer goes away.
func runJob(ctx context.Context, engine Engine, job Job, logger *zap.Logger) {
	defer job.Sink.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-job.Sink.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	emit := func(chunk string) error {
		return job.Sink.Send(ctx, chunk)
	}

	err := engine.Generate(ctx, job.Kind, job.Prompt, emit)
	switch {
	case err == nil:
	case errors.Is(err, stream.ErrConsumerGone):
		logger.Debug("consumer left before job finished", zap.String("kind", string(job.Kind)))
	case ctx.Err() != nil:
		// Pool shutdown. A consumer that is still attached hears about it.
		select {
		case <-job.Sink.Done():
		default:
			failCtx, cancelFail := context.WithTimeout(context.Background(), time.Second)
			job.Sink.Fail(failCtx, ErrPoolClosed)
			cancelFail()
		}
	default:
		logger.Warn("job failed", zap.String("kind", string(job.Kind)), zap.Error(err))
		job.Sink.Fail(ctx, err)
	}
}
