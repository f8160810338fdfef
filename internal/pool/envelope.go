package pool

import (
	"fmt"

	"github.com/cozy-creator/model-server/internal/types"
	"github.com/vmihailenco/msgpack/v5"
)

// JobEnvelope is a job as published to the jobs topic.
type JobEnvelope struct {
	ID         string        `msgpack:"id"`
	Kind       types.JobKind `msgpack:"kind"`
	Prompt     string        `msgpack:"prompt"`
	ReplyTopic string        `msgpack:"reply_topic"`
}

type ReplyKind string

const (
	ReplyChunk ReplyKind = "chunk"
	ReplyError ReplyKind = "error"
	ReplyEnd   ReplyKind = "end"
)

// Reply is one message on a job's reply topic. Every job ends with exactly one
// error or end reply.
type Reply struct {
	Kind ReplyKind `msgpack:"kind"`
	Data string    `msgpack:"data,omitempty"`
}

func EncodeJob(env JobEnvelope) ([]byte, error) {
	return msgpack.Marshal(&env)
}

func DecodeJob(data []byte) (JobEnvelope, error) {
	var env JobEnvelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return env, fmt.Errorf("failed to decode job: %w", err)
	}
	if env.ID == "" || env.ReplyTopic == "" {
		return env, fmt.Errorf("failed to decode job: missing id or reply topic")
	}
	return env, nil
}

func EncodeReply(r Reply) ([]byte, error) {
	return msgpack.Marshal(&r)
}

func DecodeReply(data []byte) (Reply, error) {
	var r Reply
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to decode reply: %w", err)
	}
	switch r.Kind {
	case ReplyChunk, ReplyError, ReplyEnd:
		return r, nil
	default:
		return r, fmt.Errorf("failed to decode reply: unknown kind %q", r.Kind)
	}
}
