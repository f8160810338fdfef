package pool

import (
	"context"
	"time"

	"github.com/cozy-creator/model-server/internal/types"
)

const DefaultEchoChunkSize = 2

// EchoEngine is a stand-in engine for development. Generate jobs yield the
// prompt in fixed-size rune chunks; list jobs yield the prompt once.
type EchoEngine struct {
	ChunkSize int
	Delay     time.Duration
}

func (e EchoEngine) Generate(ctx context.Context, kind types.JobKind, prompt string, emit Emitter) error {
	if kind == types.JobKindList {
		return emit(prompt)
	}

	size := e.ChunkSize
	if size <= 0 {
		size = DefaultEchoChunkSize
	}

	runes := []rune(prompt)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		if err := emit(string(runes[start:end])); err != nil {
			return err
		}

		if e.Delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(e.Delay):
			}
		}
	}

	return nil
}
