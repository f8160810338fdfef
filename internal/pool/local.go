package pool

import (
	"context"
	"sync"

	"github.com/gammazero/workerpool"
	"go.uber.org/zap"
)

// Local runs jobs in-process on a fixed set of workers. Admission is bounded
// by workers plus queueSize; beyond that Submit fails fast.
type Local struct {
	wp     *workerpool.WorkerPool
	engine Engine
	slots  chan struct{}
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

func NewLocal(engine Engine, workers, queueSize int, opts ...Option) *Local {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}

	o := newOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())

	return &Local{
		wp:     workerpool.New(workers),
		engine: engine,
		slots:  make(chan struct{}, workers+queueSize),
		logger: o.logger.Named("pool.local"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Local) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.slots <- struct{}{}:
	default:
		return ErrPoolOverloaded
	}

	p.wp.Submit(func() {
		defer func() { <-p.slots }()
		runJob(p.ctx, p.engine, job, p.logger)
	})

	return nil
}

// Close rejects new jobs, cancels running ones and waits for the workers.
func (p *Local) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wp.StopWait()
	return nil
}

// Waiting reports how many admitted jobs have not started yet.
func (p *Local) Waiting() int {
	return p.wp.WaitingQueueSize()
}
