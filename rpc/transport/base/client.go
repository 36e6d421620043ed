package base

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"sync"
	"time"

	"github.com/hoxchess/hoxnet/rpc/common"
	"github.com/hoxchess/hoxnet/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport")

// MaxReadAttempts is the number of read attempts before ReadMessage gives up
const MaxReadAttempts = 5

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint
	Connect(ctx context.Context, endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Client Transport
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	retryHook func(attempt int)

	mu       sync.Mutex // Protects the fields below
	conn     net.Conn
	endpoint string
	used     bool // Connect was called
	closed   bool

	readMu sync.Mutex // Serializes readers
	buf    []byte     // Read buffer, guarded by readMu
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector, config common.ClientConfig) transport.IClientTransport {
	return &clientTransport{
		connector: connector,
		config:    config,
	}
}

// NewFactory returns a transport.Factory creating base transports for the connector
func NewFactory(connector IClientConnector, config common.ClientConfig) transport.Factory {
	return func() transport.IClientTransport {
		return NewBaseClientTransport(connector, config)
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(ctx context.Context, endpoint string) error {
	t.mu.Lock()
	if t.used || t.closed {
		t.mu.Unlock()
		return &common.ConnectError{Endpoint: endpoint, Err: common.ErrTransportClosed}
	}
	t.used = true
	t.endpoint = endpoint
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.config.ConnectTimeout())
	defer cancel()

	conn, err := t.connector.Connect(ctx, endpoint)
	if err != nil {
		return &common.ConnectError{Endpoint: endpoint, Err: err}
	}

	// Upgrade the connection with protocol-specific settings
	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		conn.Close()
		return &common.ConnectError{Endpoint: endpoint, Err: fmt.Errorf("failed to upgrade connection: %w", err)}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Close was called while dialing
	if t.closed {
		conn.Close()
		return &common.ConnectError{Endpoint: endpoint, Err: common.ErrTransportClosed}
	}
	t.conn = conn

	Logger.Infof("Connected to %s using %s transport", endpoint, t.connector.GetName())
	return nil
}

func (t *clientTransport) WriteAll(data []byte) error {
	conn, err := t.getConn()
	if err != nil {
		return &common.WriteError{Expected: len(data), Err: err}
	}

	if err := conn.SetWriteDeadline(time.Now().Add(t.config.Timeout())); err != nil {
		return &common.WriteError{Expected: len(data), Err: err}
	}

	written := 0
	for written < len(data) {
		n, err := conn.Write(data[written:])
		written += n
		if err != nil {
			return &common.WriteError{Written: written, Expected: len(data), Err: err}
		}
		if n == 0 {
			return &common.WriteError{Written: written, Expected: len(data)}
		}
	}
	return nil
}

func (t *clientTransport) ReadMessage(maxSize int) ([]byte, bool, error) {
	conn, err := t.getConn()
	if err != nil {
		return nil, false, &common.ReadError{Attempt: 1, Err: err}
	}
	if maxSize <= 0 {
		maxSize = t.config.MessageSize()
	}

	t.readMu.Lock()
	defer t.readMu.Unlock()
	buf := t.buffer(maxSize)

	for attempt := 1; attempt <= MaxReadAttempts; attempt++ {
		if err := conn.SetReadDeadline(time.Now().Add(t.config.Timeout())); err != nil {
			return nil, false, &common.ReadError{Attempt: attempt, Err: err}
		}

		n, err := conn.Read(buf)
		if n > 0 {
			// a trailing error surfaces on the next read
			data := make([]byte, n)
			copy(data, buf[:n])
			return data, n == maxSize, nil
		}
		if err != nil && !isTimeout(err) {
			return nil, false, &common.ReadError{Attempt: attempt, Err: err}
		}

		// nothing yet
		Logger.Debugf("No data from %s (attempt %d/%d)", t.endpoint, attempt, MaxReadAttempts)
		if attempt < MaxReadAttempts {
			if t.retryHook != nil {
				t.retryHook(attempt)
			}
			runtime.Gosched()
		}
	}

	return nil, false, &common.ReadTimeoutError{Attempts: MaxReadAttempts}
}

func (t *clientTransport) Poll(maxSize int, wait time.Duration) ([]byte, error) {
	conn, err := t.getConn()
	if err != nil {
		return nil, &common.ReadError{Attempt: 1, Err: err}
	}
	if maxSize <= 0 {
		maxSize = t.config.MessageSize()
	}

	t.readMu.Lock()
	defer t.readMu.Unlock()
	buf := t.buffer(maxSize)

	if err := conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		return nil, &common.ReadError{Attempt: 1, Err: err}
	}

	n, err := conn.Read(buf)
	if n > 0 {
		data := make([]byte, n)
		copy(data, buf[:n])
		return data, nil
	}
	if err != nil && !isTimeout(err) {
		return nil, &common.ReadError{Attempt: 1, Err: err}
	}
	return nil, nil
}

func (t *clientTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	Logger.Debugf("Closing connection to %s", t.endpoint)
	return conn.Close()
}

// SetRetryHook implements transport.IRetryObserver
func (t *clientTransport) SetRetryHook(fn func(attempt int)) {
	t.retryHook = fn
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// getConn returns the active connection
func (t *clientTransport) getConn() (net.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil, common.ErrTransportClosed
	}
	if t.conn == nil {
		return nil, common.ErrNotConnected
	}
	return t.conn, nil
}

// buffer returns a read buffer of exactly size bytes, reusing the last one
// if possible. Must be called with readMu held.
func (t *clientTransport) buffer(size int) []byte {
	if cap(t.buf) < size {
		t.buf = make([]byte, size)
	}
	return t.buf[:size]
}
