package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxMessageSize is the largest single message read from the server
	DefaultMaxMessageSize = 10 * 1024

	// defaults used when the configuration leaves a value unset
	defaultConnectTimeoutSecond = 10
	defaultTimeoutSecond        = 5
	defaultPollMillisecond      = 200
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket settings
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig holds the settings of the transport layer
type ClientTransportConfig struct {
	// Type is the name of the connector (tcp, unix, ws)
	Type string
	// Endpoint is the address of the match server (host:port, socket path or ws:// url)
	Endpoint string
	SocketConf
	TCPConf
}

// ClientConfig holds all configuration parameters of the connection layer.
type ClientConfig struct {
	// Player credentials used by the initial login line
	PlayerID string
	Password string

	// ConnectTimeoutSecond bounds the connection handshake
	ConnectTimeoutSecond int
	// TimeoutSecond bounds every single write and every single read attempt
	TimeoutSecond int
	// PollMillisecond is how long the inbound pump waits for data before
	// releasing the socket to queued requests
	PollMillisecond int
	// MaxMessageSize is the largest message read in one go
	MaxMessageSize int

	Transport ClientTransportConfig

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// ConnectTimeout returns the connect timeout as a duration
func (c *ClientConfig) ConnectTimeout() time.Duration {
	if c.ConnectTimeoutSecond <= 0 {
		return defaultConnectTimeoutSecond * time.Second
	}
	return time.Duration(c.ConnectTimeoutSecond) * time.Second
}

// Timeout returns the per operation timeout as a duration
func (c *ClientConfig) Timeout() time.Duration {
	if c.TimeoutSecond <= 0 {
		return defaultTimeoutSecond * time.Second
	}
	return time.Duration(c.TimeoutSecond) * time.Second
}

// PollInterval returns the inbound pump wait as a duration
func (c *ClientConfig) PollInterval() time.Duration {
	if c.PollMillisecond <= 0 {
		return defaultPollMillisecond * time.Millisecond
	}
	return time.Duration(c.PollMillisecond) * time.Millisecond
}

// MessageSize returns the configured maximum message size
func (c *ClientConfig) MessageSize() int {
	if c.MaxMessageSize <= 0 {
		return DefaultMaxMessageSize
	}
	return c.MaxMessageSize
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Player", c.PlayerID)
	addField("Connect Timeout", c.ConnectTimeout().String())
	addField("Timeout", c.Timeout().String())
	addField("Poll Interval", c.PollInterval().String())
	addField("Max Message Size", strconv.Itoa(c.MessageSize()))

	// Transport
	addSection("Transport")
	addField("Type", c.Transport.Type)
	addField("Endpoint", c.Transport.Endpoint)
	if c.Transport.Type == "tcp" {
		addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
		addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
		addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))
	}
	addField("Write Buffer", strconv.Itoa(c.Transport.WriteBufferSize))
	addField("Read Buffer", strconv.Itoa(c.Transport.ReadBufferSize))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Log Format", c.LogFormat)

	return sb.String()
}
