package transport

import (
	"context"
	"time"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IClientTransport is the interface for the connection to the match server.
// A transport is single-use: once closed (or once Connect failed) a new one
// must be created.
type IClientTransport interface {
	// Connect establishes the connection to the endpoint.
	// On failure a *common.ConnectError is returned.
	Connect(ctx context.Context, endpoint string) error

	// WriteAll writes all bytes or returns a *common.WriteError
	WriteAll(data []byte) error

	// ReadMessage reads one message of at most maxSize bytes. Empty reads are
	// retried a bounded number of times before a *common.ReadTimeoutError is
	// returned. truncated is set if the read filled maxSize.
	ReadMessage(maxSize int) (data []byte, truncated bool, err error)

	// Poll performs a single read that waits at most wait for data.
	// (nil, nil) means nothing arrived.
	Poll(maxSize int, wait time.Duration) ([]byte, error)

	// Close closes the connection. It is safe to call Close multiple times
	// and from multiple goroutines.
	Close() error
}

// IRetryObserver is implemented by transports that report retried reads
type IRetryObserver interface {
	// SetRetryHook registers fn, called for every empty read attempt that is retried
	SetRetryHook(fn func(attempt int))
}

// Factory creates a fresh transport
type Factory func() IClientTransport
