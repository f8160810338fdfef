package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cozy-creator/model-server/internal/config"
	"github.com/cozy-creator/model-server/internal/mq"
	"github.com/cozy-creator/model-server/internal/stream"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Remote hands jobs to workers over a message queue and pumps each job's
// replies into its sink.
type Remote struct {
	mq     mq.MQ
	topic  string
	opts   options
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewRemote(q mq.MQ, topic string, opts ...Option) *Remote {
	if topic == "" {
		topic = config.DefaultJobsTopic
	}

	o := newOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())

	return &Remote{
		mq:     q,
		topic:  topic,
		opts:   o,
		logger: o.logger.Named("pool.remote"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (p *Remote) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	id := uuid.NewString()
	env := JobEnvelope{
		ID:         id,
		Kind:       job.Kind,
		Prompt:     job.Prompt,
		ReplyTopic: config.DefaultReplyPrefix + id,
	}

	data, err := EncodeJob(env)
	if err != nil {
		return fmt.Errorf("failed to encode job: %w", err)
	}

	if err := p.mq.Publish(p.ctx, p.topic, data); err != nil {
		switch {
		case errors.Is(err, mq.ErrQueueFull):
			return ErrPoolOverloaded
		case errors.Is(err, mq.ErrQueueClosed):
			return ErrPoolClosed
		default:
			return fmt.Errorf("failed to publish job: %w", err)
		}
	}

	p.wg.Add(1)
	go p.pump(job, env)

	return nil
}

func (p *Remote) pump(job Job, env JobEnvelope) {
	defer p.wg.Done()
	defer job.Sink.Close()

	logger := p.logger.With(zap.String("job_id", env.ID))

	ctx, cancel := context.WithCancel(p.ctx)
	defer cancel()

	go func() {
		select {
		case <-job.Sink.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		msg, err := p.mq.Receive(ctx, env.ReplyTopic)
		if err != nil {
			switch {
			case p.ctx.Err() != nil || errors.Is(err, mq.ErrQueueClosed):
				p.failClosed(job.Sink)
			case ctx.Err() != nil:
				logger.Debug("consumer left before the job finished, draining replies")
				p.drain(env.ReplyTopic)
				return
			default:
				job.Sink.Fail(ctx, fmt.Errorf("failed to receive reply: %w", err))
			}
			p.mq.CloseTopic(env.ReplyTopic)
			return
		}

		reply, err := p.decode(env.ReplyTopic, msg)
		if err != nil {
			logger.Error("dropping job with undecodable reply", zap.Error(err))
			job.Sink.Fail(ctx, err)
			p.drain(env.ReplyTopic)
			return
		}

		switch reply.Kind {
		case ReplyChunk:
			if err := job.Sink.Send(ctx, reply.Data); err != nil {
				logger.Debug("consumer left, draining replies", zap.Error(err))
				p.drain(env.ReplyTopic)
				return
			}
		case ReplyError:
			job.Sink.Fail(ctx, &EngineError{Message: reply.Data})
			p.mq.CloseTopic(env.ReplyTopic)
			return
		case ReplyEnd:
			p.mq.CloseTopic(env.ReplyTopic)
			return
		}
	}
}

func (p *Remote) decode(topic string, msg interface{}) (Reply, error) {
	data, err := p.mq.GetMessageData(msg)
	if err != nil {
		return Reply{}, err
	}
	if err := p.mq.Ack(topic, msg); err != nil {
		p.logger.Warn("failed to ack reply", zap.String("topic", topic), zap.Error(err))
	}
	return DecodeReply(data)
}

// drain discards replies until the worker finishes the job so that the reply
// topic can be released.
func (p *Remote) drain(topic string) {
	defer p.mq.CloseTopic(topic)

	ctx, cancel := context.WithTimeout(p.ctx, p.opts.drainTimeout)
	defer cancel()

	for {
		msg, err := p.mq.Receive(ctx, topic)
		if err != nil {
			return
		}
		reply, err := p.decode(topic, msg)
		if err != nil || reply.Kind != ReplyChunk {
			return
		}
	}
}

func (p *Remote) failClosed(sink *stream.Sink[string]) {
	select {
	case <-sink.Done():
		return
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sink.Fail(ctx, ErrPoolClosed)
}

// Close rejects new jobs and stops every reply pump.
func (p *Remote) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	return nil
}
