package pool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cozy-creator/model-server/internal/types"
	"github.com/cozy-creator/model-server/pkg/tcpclient"
)

// ErrorFramePrefix marks a frame carrying an engine error instead of output.
const ErrorFramePrefix = "ERR:"

// EngineError is an error reported by the remote engine itself.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return "engine error: " + e.Message
}

type tcpRequest struct {
	Kind   types.JobKind `json:"kind"`
	Prompt string        `json:"prompt"`
}

// TCPEngine talks to an inference engine over TCP. Each job sends one JSON
// request line and reads length-prefixed frames until an empty frame.
type TCPEngine struct {
	client *tcpclient.TCPClient
}

func NewTCPEngine(client *tcpclient.TCPClient) *TCPEngine {
	return &TCPEngine{client: client}
}

func (e *TCPEngine) Generate(ctx context.Context, kind types.JobKind, prompt string, emit Emitter) error {
	conn, err := e.client.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire engine connection: %w", err)
	}
	defer conn.Release()

	params, err := json.Marshal(tcpRequest{Kind: kind, Prompt: prompt})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if err := conn.SendLine(ctx, string(params)); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	for {
		frame, err := conn.ReceiveFrame(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return fmt.Errorf("failed to receive frame: %w", err)
		}

		if len(frame) == 0 {
			return nil
		}

		if msg, ok := strings.CutPrefix(string(frame), ErrorFramePrefix); ok {
			return &EngineError{Message: strings.TrimSpace(msg)}
		}

		if err := emit(string(frame)); err != nil {
			conn.MarkBroken()
			return err
		}
	}
}

func (e *TCPEngine) HealthCheck(ctx context.Context) error {
	return e.client.HealthCheck(ctx)
}

func (e *TCPEngine) Close() error {
	return e.client.Close()
}
