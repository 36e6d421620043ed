package util

import (
	"fmt"
	"strings"

	"github.com/hoxchess/hoxnet/rpc/common"
	"github.com/hoxchess/hoxnet/rpc/trace"
	"github.com/hoxchess/hoxnet/rpc/transport"
	"github.com/hoxchess/hoxnet/rpc/transport/tcp"
	"github.com/hoxchess/hoxnet/rpc/transport/unix"
	"github.com/hoxchess/hoxnet/rpc/transport/ws"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "player"
	cmd.PersistentFlags().String(key, "", WrapString("The id of the local player used to log in"))

	key = "password"
	cmd.PersistentFlags().String(key, "", WrapString("The password of the local player"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 5, WrapString("Timeout in seconds of a single write or read attempt"))

	key = "connect-timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("Timeout in seconds for establishing the connection"))

	key = "poll-millisecond"
	cmd.PersistentFlags().Int(key, 200, WrapString("How long the inbound listener waits for data before it lets queued requests use the connection"))

	key = "max-message-size"
	cmd.PersistentFlags().Int(key, common.DefaultMaxMessageSize, WrapString("The largest message read from the server in one go (in bytes)"))

	key = "transport-endpoint"
	cmd.PersistentFlags().String(key, "localhost:8000", WrapString("The address of the match server (host:port for tcp, a socket path for unix, a ws:// url for ws)"))

	key = "transport-write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer (in KB, 0 keeps the system default)"))

	key = "transport-read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer (in KB, 0 keeps the system default)"))

	key = "transport-tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "transport-tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval (in seconds, only for tcp)"))

	key = "transport-tcp-linger"
	cmd.PersistentFlags().Int(key, 0, WrapString("The linger time (in seconds, only for tcp)"))

	key = "trace-file"
	cmd.PersistentFlags().String(key, "", WrapString("Record every inbound command to this file"))

	key = "trace-format"
	cmd.PersistentFlags().String(key, "json", WrapString("Format of the trace file (json, proto)"))

	key = "metrics-endpoint"
	cmd.PersistentFlags().String(key, "", WrapString("Serve Prometheus metrics of the connection on this address (e.g. :9100)"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("hoxc")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() *common.ClientConfig {
	conf := &common.ClientConfig{
		PlayerID:             viper.GetString("player"),
		Password:             viper.GetString("password"),
		TimeoutSecond:        viper.GetInt("timeout"),
		ConnectTimeoutSecond: viper.GetInt("connect-timeout"),
		PollMillisecond:      viper.GetInt("poll-millisecond"),
		MaxMessageSize:       viper.GetInt("max-message-size"),
		Transport: common.ClientTransportConfig{
			Type:     viper.GetString("transport"),
			Endpoint: viper.GetString("transport-endpoint"),
			SocketConf: common.SocketConf{
				WriteBufferSize: viper.GetInt("transport-write-buffer") * 1024,
				ReadBufferSize:  viper.GetInt("transport-read-buffer") * 1024,
			},
			TCPConf: common.TCPConf{
				TCPKeepAliveSec: viper.GetInt("transport-tcp-keepalive"),
				TCPLingerSec:    viper.GetInt("transport-tcp-linger"),
				TCPNoDelay:      viper.GetBool("transport-tcp-nodelay"),
			},
		},
		LogLevel:  viper.GetString("log-level"),
		LogFormat: viper.GetString("log-format"),
	}

	return conf
}

// GetTransportFactory creates the transport factory named in the configuration
func GetTransportFactory(config common.ClientConfig) (transport.Factory, error) {
	switch config.Transport.Type {
	case "tcp":
		return tcp.NewTCPClientFactory(config), nil
	case "unix":
		return unix.NewUnixClientFactory(config), nil
	case "ws":
		return ws.NewWSClientFactory(config), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", config.Transport.Type)
	}
}

// GetTraceRecorder opens the configured trace file. It returns nil if no
// trace file is configured.
func GetTraceRecorder() (*trace.Recorder, error) {
	path := viper.GetString("trace-file")
	if path == "" {
		return nil, nil
	}
	format, err := trace.ParseFormat(viper.GetString("trace-format"))
	if err != nil {
		return nil, err
	}
	return trace.Open(path, format)
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
