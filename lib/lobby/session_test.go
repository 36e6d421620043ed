package lobby

import (
	"bufio"
	"errors"
	"io"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/hoxchess/hoxnet/rpc/client"
	"github.com/hoxchess/hoxnet/rpc/codec"
	"github.com/hoxchess/hoxnet/rpc/common"
	"github.com/hoxchess/hoxnet/rpc/dispatcher"
	"github.com/hoxchess/hoxnet/rpc/transport/tcp"
)

// serve accepts a single connection and runs handler on it
func serve(t *testing.T, handler func(conn net.Conn, r *bufio.Reader)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn, bufio.NewReader(conn))
	}()
	return ln.Addr().String()
}

// startSession wires a lobby, a dispatcher and a worker against endpoint
func startSession(t *testing.T, endpoint string) (*Lobby, *client.Worker) {
	t.Helper()

	config := common.ClientConfig{
		PlayerID:        "me",
		Password:        "secret",
		TimeoutSecond:   1,
		PollMillisecond: 20,
		Transport:       common.ClientTransportConfig{Type: "tcp", Endpoint: endpoint},
	}
	l := New("me", io.Discard)
	w := client.NewWorker(config, tcp.NewTCPClientFactory(config))
	w.SetRouter(dispatcher.New("me", l, l, w))
	w.Start()
	t.Cleanup(func() {
		w.Shutdown()
		<-w.Done()
	})
	return l, w
}

func await(t *testing.T, ch <-chan *common.Response) *common.Response {
	t.Helper()
	select {
	case resp := <-ch:
		return resp
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a response")
		return nil
	}
}

// seedTable routes a table info event through the worker
func seedTable(t *testing.T, w *client.Worker) {
	t.Helper()
	ch := make(chan *common.Response, 1)
	w.Submit(common.NewIncomingDataRequest("I_TABLE;T1,0,1,1200/300/20,me,1500,,0;0\n", ch))
	if resp := await(t, ch); !resp.Ok() {
		t.Fatalf("I_TABLE Result = %s, want ok (err: %v)", resp.Result, resp.Err)
	}
}

func TestFailedReplyPolicy(t *testing.T) {
	tests := []struct {
		name          string
		login         string
		wantTables    []string
		wantConnState client.ConnectionState
		wantEOF       bool
	}{
		{"after login", "LOGIN;me;secret", []string{}, client.Disconnected, true},
		{"before login", "", []string{"T1"}, client.Connected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readErr := make(chan error, 1)
			endpoint := serve(t, func(conn net.Conn, r *bufio.Reader) {
				if tt.login != "" {
					r.ReadString('\n')
					conn.Write([]byte("0\r\nOK\r\n"))
				}
				r.ReadString('\n')
				conn.Write([]byte("3\r\nTable is full\r\n"))

				conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
				_, err := r.ReadString('\n')
				readErr <- err
			})

			l, w := startSession(t, endpoint)

			ch := make(chan *common.Response, 1)
			w.Submit(common.NewConnectRequest(tt.login, ch))
			if resp := await(t, ch); !resp.Ok() {
				t.Fatalf("connect Result = %s, want ok (err: %v)", resp.Result, resp.Err)
			}
			seedTable(t, w)

			req, err := client.NewCommandRequest(common.ReqTJoin, map[string]string{
				codec.FieldTableID:  "T2",
				codec.FieldPlayerID: "me",
			}, ch, common.FlagKeepAlive)
			if err != nil {
				t.Fatalf("NewCommandRequest() error = %v", err)
			}
			w.Submit(req)

			resp := await(t, ch)
			if resp.Result != common.ResultAppError || resp.Code != "3" {
				t.Errorf("join Result = %s code %q, want %s code 3", resp.Result, resp.Code, common.ResultAppError)
			}
			if got := l.Tables(); !reflect.DeepEqual(got, tt.wantTables) {
				t.Errorf("Tables() = %v, want %v", got, tt.wantTables)
			}
			if got := w.ConnState(); got != tt.wantConnState {
				t.Errorf("ConnState() = %s, want %s", got, tt.wantConnState)
			}
			if w.IsAuthenticated() {
				t.Error("IsAuthenticated() = true, want false")
			}

			select {
			case err := <-readErr:
				if got := errors.Is(err, io.EOF); got != tt.wantEOF {
					t.Errorf("server read error = %v, want EOF %v", err, tt.wantEOF)
				}
			case <-time.After(5 * time.Second):
				t.Fatal("server did not finish")
			}
		})
	}
}

func TestRejectedLoginEndsSession(t *testing.T) {
	readErr := make(chan error, 1)
	endpoint := serve(t, func(conn net.Conn, r *bufio.Reader) {
		r.ReadString('\n')
		conn.Write([]byte("6\r\nWrong password\r\n"))
		_, err := r.ReadString('\n')
		readErr <- err
	})

	l, w := startSession(t, endpoint)

	ch := make(chan *common.Response, 1)
	w.Submit(common.NewConnectRequest("LOGIN;me;wrong", ch))
	if resp := await(t, ch); resp.Result != common.ResultAppError {
		t.Errorf("connect Result = %s, want %s", resp.Result, common.ResultAppError)
	}

	if ok, reason := l.LoggedIn(); ok || reason != "code 6: Wrong password" {
		t.Errorf("LoggedIn() = %v %q, want false %q", ok, reason, "code 6: Wrong password")
	}
	if got := w.ConnState(); got != client.Disconnected {
		t.Errorf("ConnState() = %s, want %s", got, client.Disconnected)
	}

	select {
	case err := <-readErr:
		if !errors.Is(err, io.EOF) {
			t.Errorf("server read error = %v, want EOF", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not see the connection close")
	}
}

func TestConnectionLossLeavesTables(t *testing.T) {
	closeConn := make(chan struct{})
	endpoint := serve(t, func(conn net.Conn, r *bufio.Reader) {
		r.ReadString('\n')
		conn.Write([]byte("0\r\nOK\r\n"))
		<-closeConn
	})

	l, w := startSession(t, endpoint)

	ch := make(chan *common.Response, 1)
	w.Submit(common.NewConnectRequest("LOGIN;me;secret", ch))
	if resp := await(t, ch); !resp.Ok() {
		t.Fatalf("connect Result = %s, want ok (err: %v)", resp.Result, resp.Err)
	}
	seedTable(t, w)

	events := make(chan *common.Response, 4)
	w.Submit(common.NewListenRequest(events))
	close(closeConn)

	resp := await(t, events)
	if resp.Kind != common.ReqTConnectionLost {
		t.Fatalf("event Kind = %s, want %s", resp.Kind, common.ReqTConnectionLost)
	}
	if got := l.Tables(); len(got) != 0 {
		t.Errorf("Tables() = %v, want none", got)
	}
	if got := w.ConnState(); got != client.Disconnected {
		t.Errorf("ConnState() = %s, want %s", got, client.Disconnected)
	}
	if w.IsAuthenticated() {
		t.Error("IsAuthenticated() = true, want false")
	}
}
