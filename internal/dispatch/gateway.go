// Package dispatch turns a request into a job on an execution pool and hands
// back the consumer end of the job's result stream.
package dispatch

import (
	"context"
	"time"

	"github.com/cozy-creator/model-server/internal/config"
	"github.com/cozy-creator/model-server/internal/pool"
	"github.com/cozy-creator/model-server/internal/stream"
	"github.com/cozy-creator/model-server/internal/types"
	"go.uber.org/zap"
)

// Spec describes one job to dispatch.
type Spec struct {
	Kind   types.JobKind
	Prompt string
}

type Gateway struct {
	pool        pool.Pool
	listCap     int
	generateCap int
	timeout     time.Duration
	logger      *zap.Logger
}

type Option func(*Gateway)

func WithLogger(logger *zap.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func NewGateway(p pool.Pool, cfg *config.DispatchConfig, opts ...Option) *Gateway {
	g := &Gateway{
		pool:        p,
		listCap:     config.DefaultListCapacity,
		generateCap: config.DefaultGenerateCapacity,
		timeout:     config.DefaultDispatchTimeout,
		logger:      zap.NewNop(),
	}

	if cfg != nil {
		if cfg.ListCapacity > 0 {
			g.listCap = cfg.ListCapacity
		}
		if cfg.GenerateCapacity > 0 {
			g.generateCap = cfg.GenerateCapacity
		}
		if cfg.Timeout > 0 {
			g.timeout = cfg.Timeout
		}
	}

	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.Named("dispatch")

	return g
}

// Capacity is the channel size used for jobs of kind.
func (g *Gateway) Capacity(kind types.JobKind) int {
	if kind == types.JobKindList {
		return g.listCap
	}
	return g.generateCap
}

// Submit hands a job to the pool and returns the consumer end of its stream.
// A rejection comes back as *DispatchError; the job's stream is released in
// that case and nothing is ever sent on it.
func (g *Gateway) Submit(ctx context.Context, spec Spec) (*stream.Stream[string], error) {
	sink, s := stream.New[string](g.Capacity(spec.Kind))
	job := pool.Job{Kind: spec.Kind, Prompt: spec.Prompt, Sink: sink}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		result <- g.pool.Submit(job)
	}()

	var err error
	select {
	case err = <-result:
	case <-ctx.Done():
		err = ctx.Err()
	}

	if err != nil {
		// If the pool accepts the job after we gave up, its producer sees
		// ErrConsumerGone on the first send.
		s.Close()
		derr := newDispatchError(spec.Kind, err)
		g.logger.Warn("job rejected",
			zap.String("kind", string(spec.Kind)),
			zap.String("reason", string(derr.Reason)),
			zap.Error(err),
		)
		return nil, derr
	}

	g.logger.Debug("job dispatched", zap.String("kind", string(spec.Kind)))
	return s, nil
}
