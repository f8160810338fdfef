package tcpclient

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrConnectionClosed = errors.New("connection is closed")
	ErrTimeout          = errors.New("operation timed out")
	ErrFrameTooLarge    = errors.New("frame exceeds maximum size")
)

// MaxFrameSize bounds a single length-prefixed frame.
const MaxFrameSize = 16 << 20

// TCPClient holds a small pool of connections to an inference engine. Each
// connection carries one request at a time: a newline terminated request
// followed by length-prefixed response frames.
type TCPClient struct {
	address     string
	timeout     time.Duration
	maxRetries  int
	connections chan net.Conn
	tlsConfig   *tls.Config
	logger      *zap.Logger
	mu          sync.Mutex
	closed      bool
}

type TCPClientOption func(*TCPClient)

func WithTLS(config *tls.Config) TCPClientOption {
	return func(c *TCPClient) {
		c.tlsConfig = config
	}
}

func WithLogger(logger *zap.Logger) TCPClientOption {
	return func(c *TCPClient) {
		c.logger = logger
	}
}

func WithMaxRetries(n int) TCPClientOption {
	return func(c *TCPClient) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

func NewTCPClient(address string, timeout time.Duration, poolSize int, opts ...TCPClientOption) (*TCPClient, error) {
	if poolSize <= 0 {
		poolSize = 1
	}

	client := &TCPClient{
		address:     address,
		timeout:     timeout,
		maxRetries:  3,
		connections: make(chan net.Conn, poolSize),
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	for i := 0; i < poolSize; i++ {
		conn, err := client.dialWithRetry()
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to initialize connection pool: %w", err)
		}
		client.connections <- conn
	}

	return client, nil
}

func (c *TCPClient) dial() (net.Conn, error) {
	dialer := &net.Dialer{Timeout: c.timeout}
	if c.tlsConfig != nil {
		return tls.DialWithDialer(dialer, "tcp", c.address, c.tlsConfig)
	}
	return dialer.Dial("tcp", c.address)
}

func (c *TCPClient) dialWithRetry() (net.Conn, error) {
	var err error
	for i := 0; i < c.maxRetries; i++ {
		var conn net.Conn
		if conn, err = c.dial(); err == nil {
			return conn, nil
		}
		c.logger.Warn("failed to dial engine, retrying", zap.Error(err), zap.Int("attempt", i+1))
	}
	return nil, fmt.Errorf("failed to dial after %d attempts: %w", c.maxRetries, err)
}

// Conn is a connection checked out of the pool for one exchange. It must be
// released exactly once.
type Conn struct {
	client *TCPClient
	conn   net.Conn
	reader *bufio.Reader
	broken bool
}

// Acquire waits for a free connection.
func (c *TCPClient) Acquire(ctx context.Context) (*Conn, error) {
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case conn, ok := <-c.connections:
		if !ok {
			return nil, ErrConnectionClosed
		}
		return &Conn{client: c, conn: conn, reader: bufio.NewReader(conn)}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// Release returns the connection to the pool. A connection that saw an error
// mid-exchange is replaced, since its framing can no longer be trusted.
func (cn *Conn) Release() {
	c := cn.client
	conn := cn.conn
	if cn.broken {
		conn.Close()
		fresh, err := c.dialWithRetry()
		if err != nil {
			c.logger.Error("failed to replace broken connection", zap.Error(err))
			return
		}
		conn = fresh
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		conn.Close()
		return
	}
	c.connections <- conn
}

// MarkBroken drops the connection on Release instead of reusing it. Callers
// use it when they abandon an exchange midway.
func (cn *Conn) MarkBroken() {
	cn.broken = true
}

// watch bounds blocking I/O by ctx: the deadline is the earlier of ctx and the
// client timeout, and cancellation unblocks reads immediately.
func (cn *Conn) watch(ctx context.Context) func() {
	deadline := time.Now().Add(cn.client.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	cn.conn.SetDeadline(deadline)

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			cn.conn.SetDeadline(time.Now())
		case <-stop:
		}
	}()
	return func() { close(stop) }
}

func (cn *Conn) fail(ctx context.Context, err error) error {
	cn.broken = true
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}

// SendLine writes data followed by a newline.
func (cn *Conn) SendLine(ctx context.Context, data string) error {
	defer cn.watch(ctx)()

	writer := bufio.NewWriter(cn.conn)
	if _, err := writer.WriteString(data + "\n"); err != nil {
		return cn.fail(ctx, fmt.Errorf("failed to send data: %w", err))
	}
	if err := writer.Flush(); err != nil {
		return cn.fail(ctx, fmt.Errorf("failed to flush data: %w", err))
	}
	return nil
}

// ReceiveLine reads one newline terminated reply, without the newline.
func (cn *Conn) ReceiveLine(ctx context.Context) (string, error) {
	defer cn.watch(ctx)()

	line, err := cn.reader.ReadString('\n')
	if err != nil {
		return "", cn.fail(ctx, fmt.Errorf("failed to receive data: %w", err))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReceiveFullBytes reads exactly n bytes.
func (cn *Conn) ReceiveFullBytes(ctx context.Context, n int) ([]byte, error) {
	defer cn.watch(ctx)()

	buf := make([]byte, n)
	if _, err := io.ReadFull(cn.reader, buf); err != nil {
		return nil, cn.fail(ctx, fmt.Errorf("failed to receive data: %w", err))
	}
	return buf, nil
}

// ReceiveFrame reads a 4-byte big-endian size followed by that many bytes.
// A zero size yields an empty, non-nil frame.
func (cn *Conn) ReceiveFrame(ctx context.Context) ([]byte, error) {
	header, err := cn.ReceiveFullBytes(ctx, 4)
	if err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(header)
	if size == 0 {
		return []byte{}, nil
	}
	if size > MaxFrameSize {
		cn.broken = true
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	return cn.ReceiveFullBytes(ctx, int(size))
}

// WriteFrame writes payload with its 4-byte big-endian size.
func WriteFrame(w io.Writer, payload []byte) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint32(header, uint32(len(payload)))
	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

func (c *TCPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	close(c.connections)
	for conn := range c.connections {
		if err := conn.Close(); err != nil {
			c.logger.Error("failed to close connection", zap.Error(err))
		}
	}

	return nil
}

// HealthCheck sends PING and expects PONG on the same connection.
func (c *TCPClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer conn.Release()

	if err := conn.SendLine(ctx, "PING"); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	response, err := conn.ReceiveLine(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if response != "PONG" {
		return fmt.Errorf("unexpected health check response: %s", response)
	}

	return nil
}
