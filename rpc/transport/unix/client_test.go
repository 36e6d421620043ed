package unix

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/hoxchess/hoxnet/rpc/common"
)

func TestUnixRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hox.sock")
	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		conn.Write([]byte("0\r\nTables\r\n"))
	}()

	config := common.ClientConfig{}
	config.Transport.WriteBufferSize = 8192
	tr := NewUnixClientFactory(config)()
	defer tr.Close()

	if err := tr.Connect(context.Background(), path); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := tr.WriteAll([]byte("LIST\n")); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	data, _, err := tr.ReadMessage(0)
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if string(data) != "0\r\nTables\r\n" {
		t.Errorf("ReadMessage() = %q, want %q", data, "0\r\nTables\r\n")
	}
}
