package pool

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/cozy-creator/model-server/internal/stream"
	"github.com/cozy-creator/model-server/internal/types"
	"github.com/cozy-creator/model-server/pkg/tcpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngineServer splits each prompt on spaces into frames. A prompt of
// "fail" yields an error frame.
func fakeEngineServer(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				reader := bufio.NewReader(conn)
				for {
					line, err := reader.ReadString('\n')
					if err != nil {
						return
					}
					if strings.TrimSpace(line) == "PING" {
						conn.Write([]byte("PONG\n"))
						continue
					}

					var req tcpRequest
					if err := json.Unmarshal([]byte(line), &req); err != nil {
						return
					}
					if req.Prompt == "fail" {
						tcpclient.WriteFrame(conn, []byte(ErrorFramePrefix+" out of memory"))
						continue
					}
					for _, word := range strings.Fields(req.Prompt) {
						tcpclient.WriteFrame(conn, []byte(word))
					}
					tcpclient.WriteFrame(conn, nil)
				}
			}(conn)
		}
	}()

	return ln.Addr().String()
}

func newTCPEngine(t *testing.T) *TCPEngine {
	t.Helper()

	client, err := tcpclient.NewTCPClient(fakeEngineServer(t), time.Second, 2)
	require.NoError(t, err)
	engine := NewTCPEngine(client)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestTCPEngineStreamsFrames(t *testing.T) {
	engine := newTCPEngine(t)
	require.NoError(t, engine.HealthCheck(context.Background()))

	p := NewLocal(engine, 2, 4)
	defer p.Close()

	sink, s := stream.New[string](8)
	require.NoError(t, p.Submit(Job{Kind: types.JobKindGenerate, Prompt: "he llo", Sink: sink}))

	got := collect(t, s)
	assert.Equal(t, []string{"he", "llo"}, got.values)
	assert.NoError(t, got.err)
}

func TestTCPEngineErrorFrame(t *testing.T) {
	engine := newTCPEngine(t)

	var chunks []string
	err := engine.Generate(context.Background(), types.JobKindGenerate, "fail", func(c string) error {
		chunks = append(chunks, c)
		return nil
	})

	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, "out of memory", engineErr.Message)
	assert.Empty(t, chunks)

	// The connection is still usable after a reported error.
	chunks = nil
	require.NoError(t, engine.Generate(context.Background(), types.JobKindGenerate, "a b", func(c string) error {
		chunks = append(chunks, c)
		return nil
	}))
	assert.Equal(t, []string{"a", "b"}, chunks)
}

func TestTCPEngineStopsWhenConsumerLeaves(t *testing.T) {
	engine := newTCPEngine(t)

	err := engine.Generate(context.Background(), types.JobKindGenerate, "a b c", func(string) error {
		return stream.ErrConsumerGone
	})
	assert.ErrorIs(t, err, stream.ErrConsumerGone)

	// The abandoned connection was replaced, so a fresh exchange is clean.
	var chunks []string
	require.NoError(t, engine.Generate(context.Background(), types.JobKindGenerate, "x", func(c string) error {
		chunks = append(chunks, c)
		return nil
	}))
	assert.Equal(t, []string{"x"}, chunks)
}
