package ws

import (
	"context"
	"net"
	"testing"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/hoxchess/hoxnet/rpc/common"
)

// startWSServer upgrades one connection, reads one text frame and answers
// with the given frames
func startWSServer(t *testing.T, frames ...string) (string, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		if _, err := ws.Upgrade(conn); err != nil {
			return
		}
		msg, err := wsutil.ReadClientText(conn)
		if err != nil {
			return
		}
		received <- string(msg)

		for _, f := range frames {
			if err := wsutil.WriteServerText(conn, []byte(f)); err != nil {
				return
			}
		}
		// wait for the close frame of the client
		wsutil.ReadClientData(conn)
	}()

	return "ws://" + ln.Addr().String() + "/", received
}

func TestWSRoundTrip(t *testing.T) {
	endpoint, received := startWSServer(t, "0\r\nWelcome\r\n")

	tr := NewWSClientTransport(common.ClientConfig{})
	defer tr.Close()

	if err := tr.Connect(context.Background(), endpoint); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := tr.WriteAll([]byte("LOGIN;alice;secret\n")); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	data, _, err := tr.ReadMessage(common.DefaultMaxMessageSize)
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(data) != "0\r\nWelcome\r\n" {
		t.Errorf("ReadMessage() = %q, want %q", data, "0\r\nWelcome\r\n")
	}
	if got := <-received; got != "LOGIN;alice;secret\n" {
		t.Errorf("server received %q, want %q", got, "LOGIN;alice;secret\n")
	}
}

func TestWSLargeFrameIsSplit(t *testing.T) {
	endpoint, _ := startWSServer(t, "LIST;T1,0,1,1200/300/20,alice,1500,bob,1490\n")

	tr := NewWSClientFactory(common.ClientConfig{})()
	defer tr.Close()

	if err := tr.Connect(context.Background(), endpoint); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := tr.WriteAll([]byte("LIST\n")); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	first, truncated, err := tr.ReadMessage(8)
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(first) != "LIST;T1," || !truncated {
		t.Errorf("ReadMessage() = %q, %v, want %q, true", first, truncated, "LIST;T1,")
	}

	rest, _, err := tr.ReadMessage(common.DefaultMaxMessageSize)
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if got := string(first) + string(rest); got != "LIST;T1,0,1,1200/300/20,alice,1500,bob,1490\n" {
		t.Errorf("joined = %q", got)
	}
}
