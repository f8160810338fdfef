package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cozy-creator/model-server/internal/mq"
	"github.com/gammazero/workerpool"
	"go.uber.org/zap"
)

var errReplyAbandoned = errors.New("reply topic is not being consumed")

const replyBackoff = 5 * time.Millisecond

// Processor is the worker side of Remote. It consumes job envelopes, runs them
// on an engine and publishes the replies.
type Processor struct {
	mq     mq.MQ
	engine Engine
	topic  string
	wp     *workerpool.WorkerPool
	opts   options
	logger *zap.Logger
}

func NewProcessor(q mq.MQ, engine Engine, topic string, workers int, opts ...Option) *Processor {
	if workers <= 0 {
		workers = 1
	}

	o := newOptions(opts)
	return &Processor{
		mq:     q,
		engine: engine,
		topic:  topic,
		wp:     workerpool.New(workers),
		opts:   o,
		logger: o.logger.Named("processor"),
	}
}

// Run consumes jobs until ctx is done or the queue closes. It waits for
// in-flight jobs before returning.
func (p *Processor) Run(ctx context.Context) error {
	defer p.wp.StopWait()

	p.logger.Info("processor started", zap.String("topic", p.topic))
	for {
		message, err := p.mq.Receive(ctx, p.topic)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, mq.ErrQueueClosed) {
				p.logger.Info("processor stopped")
				return nil
			}
			return fmt.Errorf("failed to receive job: %w", err)
		}

		data, err := p.mq.GetMessageData(message)
		if err != nil {
			p.logger.Error("failed to read job message", zap.Error(err))
			continue
		}

		if err := p.mq.Ack(p.topic, message); err != nil {
			p.logger.Warn("failed to ack job", zap.Error(err))
		}

		env, err := DecodeJob(data)
		if err != nil {
			p.logger.Error("failed to parse job", zap.Error(err))
			continue
		}

		p.wp.Submit(func() {
			p.handle(ctx, env)
		})
	}
}

func (p *Processor) handle(ctx context.Context, env JobEnvelope) {
	logger := p.logger.With(zap.String("job_id", env.ID), zap.String("kind", string(env.Kind)))
	logger.Debug("job started")

	emit := func(chunk string) error {
		return p.reply(ctx, env.ReplyTopic, Reply{Kind: ReplyChunk, Data: chunk})
	}

	final := Reply{Kind: ReplyEnd}
	if err := p.engine.Generate(ctx, env.Kind, env.Prompt, emit); err != nil {
		if errors.Is(err, errReplyAbandoned) {
			logger.Warn("abandoning job", zap.Error(err))
			p.mq.CloseTopic(env.ReplyTopic)
			return
		}
		logger.Warn("job failed", zap.Error(err))
		final = Reply{Kind: ReplyError, Data: err.Error()}
	}

	rctx, cancel := context.WithTimeout(context.Background(), p.opts.replyTimeout)
	defer cancel()

	if err := p.reply(rctx, env.ReplyTopic, final); err != nil {
		logger.Error("failed to publish final reply", zap.Error(err))
		return
	}
	logger.Debug("job finished", zap.String("reply", string(final.Kind)))
}

// reply publishes r, retrying while the reply topic is full.
func (p *Processor) reply(ctx context.Context, topic string, r Reply) error {
	data, err := EncodeReply(r)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(p.opts.replyTimeout)
	for {
		err := p.mq.Publish(ctx, topic, data)
		if !errors.Is(err, mq.ErrQueueFull) {
			return err
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %w", errReplyAbandoned, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(replyBackoff):
		}
	}
}
