package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Request Structure
// --------------------------------------------------------------------------

// Request is a single unit of outbound work for the connection worker.
// Which fields are used depends on the kind of request.
type Request struct {
	// Kind of request
	Kind RequestKind `json:"kind"`

	// Content is the opaque payload (a wire line for outbound requests, the
	// received line for IncomingData)
	Content string `json:"content,omitempty"`

	// Originator receives the Response. A nil Originator means nobody is
	// interested in the result and the Response is discarded.
	Originator chan<- *Response `json:"-"`

	// Listener is used by Listen requests only: every inbound event produces
	// an IncomingData request whose Originator is this channel
	Listener chan<- *Response `json:"-"`

	// Flags modifying how the request is processed
	Flags RequestFlags `json:"flags,omitempty"`
}

// RequestFlags is a bitset of request options
type RequestFlags uint8

const (
	// FlagKeepAlive keeps the transport open after the request completes
	// (session mode). Without it the transport is closed after the request.
	FlagKeepAlive RequestFlags = 1 << iota
)

// Has reports whether all bits of f are set
func (fl RequestFlags) Has(f RequestFlags) bool {
	return fl&f == f
}

// KeepAlive reports whether the request carries FlagKeepAlive
func (r *Request) KeepAlive() bool {
	return r.Flags.Has(FlagKeepAlive)
}

// String returns a short description of the request for logging
func (r *Request) String() string {
	return fmt.Sprintf("%s(%q, flags=%d)", r.Kind, r.Content, r.Flags)
}

// --------------------------------------------------------------------------
// Request Factory Functions
// --------------------------------------------------------------------------

// NewRequest creates a new request
func NewRequest(kind RequestKind, content string, originator chan<- *Response, flags RequestFlags) *Request {
	return &Request{
		Kind:       kind,
		Content:    content,
		Originator: originator,
		Flags:      flags,
	}
}

// NewConnectRequest creates a new Connect request. The content is the
// initial login line sent right after the connection is established.
func NewConnectRequest(loginLine string, originator chan<- *Response) *Request {
	return &Request{
		Kind:       ReqTConnect,
		Content:    loginLine,
		Originator: originator,
		Flags:      FlagKeepAlive,
	}
}

// NewListenRequest creates a new Listen request. Every inbound event is
// reported to the listener.
func NewListenRequest(listener chan<- *Response) *Request {
	return &Request{
		Kind:     ReqTListen,
		Listener: listener,
		Flags:    FlagKeepAlive,
	}
}

// NewIncomingDataRequest creates a new IncomingData request for a line that
// was already received from the server
func NewIncomingDataRequest(line string, originator chan<- *Response) *Request {
	return &Request{
		Kind:       ReqTIncomingData,
		Content:    line,
		Originator: originator,
		Flags:      FlagKeepAlive,
	}
}

// NewConnectionLostRequest creates the request the inbound pump submits when
// the connection fails. The Response is delivered to listener.
func NewConnectionLostRequest(cause error, listener chan<- *Response) *Request {
	content := ""
	if cause != nil {
		content = cause.Error()
	}
	return &Request{
		Kind:       ReqTConnectionLost,
		Content:    content,
		Originator: listener,
		Flags:      FlagKeepAlive,
	}
}

// NewShutdownRequest creates a new Shutdown request
func NewShutdownRequest() *Request {
	return &Request{
		Kind: ReqTShutdown,
	}
}

// --------------------------------------------------------------------------
// Response Structure
// --------------------------------------------------------------------------

// Response is the result of a processed Request.
type Response struct {
	// Kind echoes the kind of the originating request
	Kind RequestKind `json:"kind"`

	// Result is the outcome of the request
	Result ResultCode `json:"result"`

	// Code is the numeric code reported by the server ("0" = success).
	// Empty if the server did not answer.
	Code string `json:"code,omitempty"`

	// Data is the payload (the server message, or the raw line for IncomingData)
	Data string `json:"data,omitempty"`

	// Err is set when the request failed
	Err error `json:"-"`

	// Truncated is set when the read filled the maximum message size and
	// part of the message may have been lost
	Truncated bool `json:"truncated,omitempty"`
}

// NewResponse creates a new response for a request kind
func NewResponse(kind RequestKind) *Response {
	return &Response{
		Kind:   kind,
		Result: ResultError,
	}
}

// Ok reports whether the request succeeded
func (r *Response) Ok() bool {
	return r.Result == ResultOK
}

// --------------------------------------------------------------------------
// Request Kind Definition
// --------------------------------------------------------------------------

// RequestKind defines the type of request handled by the connection worker.
type RequestKind uint8

// String returns the string representation of a RequestKind.
func (k RequestKind) String() string {
	switch k {
	case ReqTConnect:
		return "connect"
	case ReqTListen:
		return "listen"
	case ReqTIncomingData:
		return "incoming-data"
	case ReqTShutdown:
		return "shutdown"
	case ReqTConnectionLost:
		return "connection-lost"
	case ReqTList:
		return "list"
	case ReqTNew:
		return "new"
	case ReqTJoin:
		return "join"
	case ReqTLeave:
		return "leave"
	case ReqTLogout:
		return "logout"
	case ReqTMove:
		return "move"
	case ReqTMessage:
		return "message"
	case ReqTDraw:
		return "draw"
	case ReqTResign:
		return "resign"
	case ReqTUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// IsSendAndAwait reports whether requests of this kind are written to the
// server and answered with a direct reply
func (k RequestKind) IsSendAndAwait() bool {
	return k >= ReqTList && k <= ReqTUpdate
}

// MarshalJSON implements the json.Marshaller interface for RequestKind.
func (k RequestKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for RequestKind.
func (k *RequestKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for c := ReqTConnect; c <= ReqTUpdate; c++ {
		if c.String() == s {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown request kind: %s", s)
}

// --------------------------------------------------------------------------
// Request Kind Constants
// --------------------------------------------------------------------------

const (
	ReqTUnknown RequestKind = iota

	// Connection control

	ReqTConnect      // Open the transport and log in
	ReqTListen       // Start delivering inbound events
	ReqTIncomingData // A line received from the server
	ReqTShutdown     // Stop the worker

	// ReqTConnectionLost is submitted by the inbound pump when a read fails.
	// Its Response goes to the listener.
	ReqTConnectionLost

	// Send and await a direct reply

	ReqTList   // List tables
	ReqTNew    // Open a new table
	ReqTJoin   // Join a table
	ReqTLeave  // Leave a table
	ReqTLogout // Log out
	ReqTMove   // Send a move
	ReqTMessage
	ReqTDraw
	ReqTResign
	ReqTUpdate
)

// --------------------------------------------------------------------------
// Result Codes
// --------------------------------------------------------------------------

// ResultCode is the outcome of a processed request
type ResultCode uint8

const (
	ResultOK           ResultCode = iota // Request succeeded
	ResultError                          // Transport level failure
	ResultNotConnected                   // No transport available
	ResultNotSupported                   // Unsupported request kind
	ResultAppError                       // The server answered with a non-zero code
)

// String returns the string representation of a ResultCode.
func (c ResultCode) String() string {
	switch c {
	case ResultOK:
		return "ok"
	case ResultError:
		return "error"
	case ResultNotConnected:
		return "not connected"
	case ResultNotSupported:
		return "not supported"
	case ResultAppError:
		return "application error"
	default:
		return "unknown"
	}
}
