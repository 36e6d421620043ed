package base

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/hoxchess/hoxnet/rpc/common"
)

// --------------------------------------------------------------------------
// Test helpers
// --------------------------------------------------------------------------

// timeoutError mimics an expired deadline
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// scriptedRead is the outcome of a single Read call
type scriptedRead struct {
	data string
	err  error
}

// fakeConn is a net.Conn that plays back scripted reads
type fakeConn struct {
	mu         sync.Mutex
	reads      []scriptedRead
	written    []byte
	writeLimit int // -1 = unlimited
	closeCount int
}

func newFakeConn(reads ...scriptedRead) *fakeConn {
	return &fakeConn{reads: reads, writeLimit: -1}
}

func (c *fakeConn) Read(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.reads) == 0 {
		return 0, timeoutError{}
	}
	r := c.reads[0]
	c.reads = c.reads[1:]
	n := copy(b, r.data)
	return n, r.err
}

func (c *fakeConn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeLimit >= 0 && len(b) > c.writeLimit {
		c.written = append(c.written, b[:c.writeLimit]...)
		n := c.writeLimit
		c.writeLimit = 0
		return n, io.ErrShortWrite
	}
	c.written = append(c.written, b...)
	return len(b), nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeCount++
	return nil
}

func (c *fakeConn) LocalAddr() net.Addr                { return &net.TCPAddr{} }
func (c *fakeConn) RemoteAddr() net.Addr               { return &net.TCPAddr{} }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

// fakeConnector hands out a prepared connection
type fakeConnector struct {
	conn       net.Conn
	err        error
	upgradeErr error
}

func (c *fakeConnector) Connect(ctx context.Context, endpoint string) (net.Conn, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.conn, nil
}

func (c *fakeConnector) GetName() string { return "fake" }

func (c *fakeConnector) UpgradeConnection(conn net.Conn, config common.ClientConfig) error {
	return c.upgradeErr
}

func connectedTransport(t *testing.T, conn *fakeConn) *clientTransport {
	t.Helper()
	tr := NewBaseClientTransport(&fakeConnector{conn: conn}, common.ClientConfig{}).(*clientTransport)
	if err := tr.Connect(context.Background(), "fake:1"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return tr
}

func empties(n int) []scriptedRead {
	reads := make([]scriptedRead, n)
	for i := range reads {
		if i%2 == 0 {
			reads[i] = scriptedRead{}
		} else {
			reads[i] = scriptedRead{err: timeoutError{}}
		}
	}
	return reads
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestReadMessage(t *testing.T) {
	hardErr := errors.New("connection reset")

	tests := []struct {
		name        string
		reads       []scriptedRead
		maxSize     int
		want        string
		wantTrunc   bool
		wantRetries int
		wantErr     any
	}{
		{
			name:    "immediate data",
			reads:   []scriptedRead{{data: "0\r\nOK\r\n"}},
			maxSize: 64,
			want:    "0\r\nOK\r\n",
		},
		{
			name:        "four empty reads then data",
			reads:       append(empties(4), scriptedRead{data: "0\r\nOK\r\n"}),
			maxSize:     64,
			want:        "0\r\nOK\r\n",
			wantRetries: 4,
		},
		{
			name:        "five empty reads",
			reads:       append(empties(5), scriptedRead{data: "too late"}),
			maxSize:     64,
			wantRetries: 4,
			wantErr:     &common.ReadTimeoutError{},
		},
		{
			name:        "hard error aborts",
			reads:       []scriptedRead{{}, {err: hardErr}, {data: "never"}},
			maxSize:     64,
			wantRetries: 1,
			wantErr:     &common.ReadError{},
		},
		{
			name:      "full buffer is truncated",
			reads:     []scriptedRead{{data: "LIST;a|b|c|d"}},
			maxSize:   4,
			want:      "LIST",
			wantTrunc: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := connectedTransport(t, newFakeConn(tt.reads...))
			retries := 0
			tr.SetRetryHook(func(int) { retries++ })

			data, truncated, err := tr.ReadMessage(tt.maxSize)

			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("ReadMessage() error = %v", err)
				}
			case *common.ReadTimeoutError:
				if !errors.As(err, &want) {
					t.Fatalf("ReadMessage() error = %v, want ReadTimeoutError", err)
				}
				if want.Attempts != MaxReadAttempts {
					t.Errorf("Attempts = %d, want %d", want.Attempts, MaxReadAttempts)
				}
			case *common.ReadError:
				if !errors.As(err, &want) {
					t.Fatalf("ReadMessage() error = %v, want ReadError", err)
				}
				if !errors.Is(err, hardErr) {
					t.Errorf("ReadMessage() error = %v, want wrapped %v", err, hardErr)
				}
			}

			if string(data) != tt.want {
				t.Errorf("ReadMessage() = %q, want %q", data, tt.want)
			}
			if truncated != tt.wantTrunc {
				t.Errorf("truncated = %v, want %v", truncated, tt.wantTrunc)
			}
			if retries != tt.wantRetries {
				t.Errorf("retries = %d, want %d", retries, tt.wantRetries)
			}
		})
	}
}

func TestWriteAll(t *testing.T) {
	conn := newFakeConn()
	tr := connectedTransport(t, conn)

	if err := tr.WriteAll([]byte("LIST\n")); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if string(conn.written) != "LIST\n" {
		t.Errorf("written = %q, want %q", conn.written, "LIST\n")
	}
}

func TestWriteAllPartial(t *testing.T) {
	conn := newFakeConn()
	conn.writeLimit = 3
	tr := connectedTransport(t, conn)

	err := tr.WriteAll([]byte("MOVE;T1;P1;C2-C4\n"))

	var writeErr *common.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("WriteAll() error = %v, want WriteError", err)
	}
	if writeErr.Written != 3 || writeErr.Expected != 17 {
		t.Errorf("WriteError = %d/%d, want 3/17", writeErr.Written, writeErr.Expected)
	}
	if !common.IsTransportError(err) {
		t.Errorf("IsTransportError(%v) = false, want true", err)
	}
}

func TestPoll(t *testing.T) {
	conn := newFakeConn(scriptedRead{err: timeoutError{}}, scriptedRead{data: "MSG;T1;P2;hi\n"})
	tr := connectedTransport(t, conn)

	data, err := tr.Poll(64, time.Millisecond)
	if err != nil || data != nil {
		t.Fatalf("Poll() = %q, %v, want nil, nil", data, err)
	}

	data, err = tr.Poll(64, time.Millisecond)
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if string(data) != "MSG;T1;P2;hi\n" {
		t.Errorf("Poll() = %q, want %q", data, "MSG;T1;P2;hi\n")
	}

	conn.reads = []scriptedRead{{err: io.EOF}}
	if _, err := tr.Poll(64, time.Millisecond); !errors.Is(err, io.EOF) {
		t.Errorf("Poll() error = %v, want EOF", err)
	}
}

func TestConnectFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	tr := NewBaseClientTransport(&fakeConnector{err: dialErr}, common.ClientConfig{})

	err := tr.Connect(context.Background(), "127.0.0.1:1")
	var connectErr *common.ConnectError
	if !errors.As(err, &connectErr) {
		t.Fatalf("Connect() error = %v, want ConnectError", err)
	}
	if connectErr.Endpoint != "127.0.0.1:1" {
		t.Errorf("Endpoint = %q, want %q", connectErr.Endpoint, "127.0.0.1:1")
	}

	// the transport is single-use
	if err := tr.Connect(context.Background(), "127.0.0.1:1"); !errors.Is(err, common.ErrTransportClosed) {
		t.Errorf("second Connect() error = %v, want ErrTransportClosed", err)
	}
}

func TestUpgradeFailureClosesConn(t *testing.T) {
	conn := newFakeConn()
	tr := NewBaseClientTransport(&fakeConnector{conn: conn, upgradeErr: errors.New("bad option")}, common.ClientConfig{})

	if err := tr.Connect(context.Background(), "fake:1"); err == nil {
		t.Fatal("Connect() error = nil, want error")
	}
	if conn.closeCount != 1 {
		t.Errorf("closeCount = %d, want 1", conn.closeCount)
	}
}

func TestNotConnected(t *testing.T) {
	tr := NewBaseClientTransport(&fakeConnector{}, common.ClientConfig{})

	if err := tr.WriteAll([]byte("LIST\n")); !errors.Is(err, common.ErrNotConnected) {
		t.Errorf("WriteAll() error = %v, want ErrNotConnected", err)
	}
	if _, _, err := tr.ReadMessage(10); !errors.Is(err, common.ErrNotConnected) {
		t.Errorf("ReadMessage() error = %v, want ErrNotConnected", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	conn := newFakeConn()
	tr := connectedTransport(t, conn)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tr.Close(); err != nil {
				t.Errorf("Close() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if conn.closeCount != 1 {
		t.Errorf("closeCount = %d, want 1", conn.closeCount)
	}
	if err := tr.WriteAll([]byte("x")); !errors.Is(err, common.ErrTransportClosed) {
		t.Errorf("WriteAll() after Close error = %v, want ErrTransportClosed", err)
	}
}
