package ws

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/hoxchess/hoxnet/rpc/common"
	"github.com/hoxchess/hoxnet/rpc/transport"
	"github.com/hoxchess/hoxnet/rpc/transport/base"
)

// clientConnector implements the IClientConnector interface for WebSocket
// connections. Every text frame carries protocol bytes.
type clientConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IClientConnector)
// --------------------------------------------------------------------------

func (c *clientConnector) GetName() string {
	return "ws"
}

func (c *clientConnector) Connect(ctx context.Context, endpoint string) (net.Conn, error) {
	conn, br, _, err := ws.Dial(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return newFrameConn(conn, br), nil
}

func (c *clientConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	return nil // nothing to tune, the handshake already happened
}

// --------------------------------------------------------------------------
// Frame connection
// --------------------------------------------------------------------------

// frameConn adapts a WebSocket connection to a byte stream. Reads return the
// payload of text frames, writes send one text frame per call.
type frameConn struct {
	net.Conn
	rw io.ReadWriter

	mu         sync.Mutex
	pending    []byte
	pendingPos int
}

func newFrameConn(conn net.Conn, br *bufio.Reader) *frameConn {
	var r io.Reader = conn
	if br != nil {
		// the server may have sent frames together with the handshake
		r = io.MultiReader(br, conn)
	}
	return &frameConn{
		Conn: conn,
		rw: struct {
			io.Reader
			io.Writer
		}{r, conn},
	}
}

func (c *frameConn) Read(buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pendingPos < len(c.pending) {
		n := copy(buf, c.pending[c.pendingPos:])
		c.pendingPos += n
		if c.pendingPos >= len(c.pending) {
			c.pending = nil
			c.pendingPos = 0
		}
		return n, nil
	}

	data, err := wsutil.ReadServerText(c.rw)
	if err != nil {
		return 0, err
	}

	n := copy(buf, data)
	if n < len(data) {
		c.pending = data[n:]
		c.pendingPos = 0
	}
	return n, nil
}

func (c *frameConn) Write(data []byte) (int, error) {
	if err := wsutil.WriteClientText(c.Conn, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (c *frameConn) Close() error {
	_ = wsutil.WriteClientMessage(c.Conn, ws.OpClose, nil)
	return c.Conn.Close()
}

// --------------------------------------------------------------------------
// Client Transport Factory Methods
// --------------------------------------------------------------------------

// NewWSClientTransport creates a new WebSocket client transport
func NewWSClientTransport(config common.ClientConfig) transport.IClientTransport {
	return base.NewBaseClientTransport(&clientConnector{}, config)
}

// NewWSClientFactory returns a factory creating WebSocket client transports
func NewWSClientFactory(config common.ClientConfig) transport.Factory {
	return base.NewFactory(&clientConnector{}, config)
}
