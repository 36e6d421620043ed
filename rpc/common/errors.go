package common

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when an operation needs an established transport
	ErrNotConnected = errors.New("connection is not established")

	// ErrInvalidField is returned when an outbound field contains a delimiter
	ErrInvalidField = errors.New("field contains a protocol delimiter")

	// ErrTransportClosed is returned by operations on a closed transport
	ErrTransportClosed = errors.New("transport is closed")
)

// --------------------------------------------------------------------------
// Transport errors (fatal to the current transport)
// --------------------------------------------------------------------------

// ConnectError is returned when the connection could not be established
// before the connect timeout
type ConnectError struct {
	Endpoint string
	Err      error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// WriteError is returned when fewer bytes than requested were written
type WriteError struct {
	Written  int
	Expected int
	Err      error
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("partial write (%d < %d): %v", e.Written, e.Expected, e.Err)
	}
	return fmt.Sprintf("partial write (%d < %d)", e.Written, e.Expected)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError is returned on a hard I/O error while reading
type ReadError struct {
	Attempt int
	Err     error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read failed (attempt %d): %v", e.Attempt, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ReadTimeoutError is returned when no data arrived after all read attempts
type ReadTimeoutError struct {
	Attempts int
}

func (e *ReadTimeoutError) Error() string {
	return fmt.Sprintf("no data received after %d attempts", e.Attempts)
}

// IsTransportError reports whether err is fatal to the current transport
func IsTransportError(err error) bool {
	var (
		connectErr *ConnectError
		writeErr   *WriteError
		readErr    *ReadError
		timeoutErr *ReadTimeoutError
	)
	return errors.As(err, &connectErr) ||
		errors.As(err, &writeErr) ||
		errors.As(err, &readErr) ||
		errors.As(err, &timeoutErr) ||
		errors.Is(err, ErrTransportClosed)
}

// --------------------------------------------------------------------------
// Protocol errors (never fatal to the transport)
// --------------------------------------------------------------------------

// UnknownCommandError is returned when a line carries no known type tag
type UnknownCommandError struct {
	Tag  string
	Line string
}

func (e *UnknownCommandError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("missing command tag in %q", e.Line)
	}
	return fmt.Sprintf("unknown command %q", e.Tag)
}

// RouteNotFoundError is returned when the table or player named by a
// command is not known
type RouteNotFoundError struct {
	Target string // "table" or "player"
	ID     string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Target, e.ID)
}

// ApplicationError is a non-zero reply code from the server
type ApplicationError struct {
	Code    string
	Message string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("server replied with code %s: %s", e.Code, e.Message)
}
