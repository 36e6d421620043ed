package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hoxchess/hoxnet/rpc/codec"
	"github.com/hoxchess/hoxnet/rpc/common"
	"github.com/hoxchess/hoxnet/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("client")
)

// --------------------------------------------------------------------------
// Collaborators
// --------------------------------------------------------------------------

// Router receives decoded inbound commands and failed replies
type Router interface {
	// Route delivers a decoded inbound command to its target
	Route(cmd codec.Command) error
	// HandleReply is called for every direct reply with a failure code
	HandleReply(kind common.RequestKind, code string, message string)
	// HandleConnectionLost is called when the inbound pump lost the
	// connection, before the worker closes it
	HandleConnectionLost(err error)
}

// Recorder receives every decoded inbound command (see the trace package)
type Recorder interface {
	Record(cmd codec.Command) error
}

// --------------------------------------------------------------------------
// Connection State
// --------------------------------------------------------------------------

// ConnectionState is the state of the transport owned by a worker
type ConnectionState int32

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	ShuttingDown
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case ShuttingDown:
		return "shutting-down"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Worker
// --------------------------------------------------------------------------

// Worker owns the connection to the match server. Requests submitted by any
// goroutine are processed one at a time, in submission order, by the worker
// goroutine.
type Worker struct {
	config       common.ClientConfig
	newTransport transport.Factory
	router       Router
	recorder     Recorder

	queue   *requestQueue
	outbox  *outbox
	metrics *workerMetrics

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	start  sync.Once

	connMu sync.Mutex // Protects tr and pump
	tr     transport.IClientTransport
	pump   *inboundPump

	// inputMu gates inbound notifications. The pump only reads while holding
	// it, request processing holds it to suspend notifications.
	inputMu sync.Mutex

	connState     atomic.Int32
	authenticated atomic.Bool
}

// NewWorker creates a new worker. newTransport is called for every Connect
// request, since transports are single-use.
func NewWorker(config common.ClientConfig, newTransport transport.Factory) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		config:       config,
		newTransport: newTransport,
		queue:        newRequestQueue(),
		outbox:       newOutbox(),
		metrics:      newWorkerMetrics(),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// SetRouter sets the router for inbound commands. Must be called before Start.
func (w *Worker) SetRouter(r Router) {
	w.router = r
}

// SetRecorder sets a recorder for inbound commands. Must be called before Start.
func (w *Worker) SetRecorder(r Recorder) {
	w.recorder = r
}

// Start launches the worker goroutine. Calling Start more than once has no effect.
func (w *Worker) Start() {
	w.start.Do(func() {
		w.queue.setState(StateRunning)
		go w.run()
	})
}

// Submit queues a request. It returns false if the request was dropped
// because the worker is shutting down or stopped; no Response is sent then.
func (w *Worker) Submit(req *common.Request) bool {
	if req == nil {
		return false
	}
	if !w.queue.push(req) {
		w.metrics.rejected.Inc()
		Logger.Debugf("Rejected %s request, worker is %s", req.Kind, w.State())
		return false
	}
	return true
}

// Shutdown submits a shutdown request. Requests queued before it are still processed.
func (w *Worker) Shutdown() bool {
	return w.Submit(common.NewShutdownRequest())
}

// Done is closed when the worker goroutine has finished
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// State returns the lifecycle state of the worker
func (w *Worker) State() WorkerState {
	return w.queue.getState()
}

// ConnState returns the state of the connection
func (w *Worker) ConnState() ConnectionState {
	return ConnectionState(w.connState.Load())
}

// Pending returns the number of queued requests
func (w *Worker) Pending() int {
	return w.queue.len()
}

// --------------------------------------------------------------------------
// Session Methods (docu see dispatcher.Session)
// --------------------------------------------------------------------------

func (w *Worker) IsAuthenticated() bool {
	return w.authenticated.Load()
}

func (w *Worker) SetAuthenticated(ok bool) {
	w.authenticated.Store(ok)
}

func (w *Worker) Disconnect() {
	Logger.Infof("Disconnecting from %s", w.config.Transport.Endpoint)
	w.teardown()
}

// --------------------------------------------------------------------------
// Main Loop
// --------------------------------------------------------------------------

func (w *Worker) run() {
	defer close(w.done)

	for {
		req := w.queue.pop()
		if req.Kind == common.ReqTShutdown {
			w.handleShutdown(req)
			return
		}
		w.process(req)
	}
}

// process handles a single request and hands the response to the outbox
func (w *Worker) process(req *common.Request) {
	start := time.Now()

	var resp *common.Response
	switch {
	case req.Kind == common.ReqTConnect:
		resp = w.handleConnect(req)
	case req.Kind == common.ReqTListen:
		resp = w.handleListen(req)
	case req.Kind == common.ReqTIncomingData:
		resp = w.handleIncomingData(req)
	case req.Kind == common.ReqTConnectionLost:
		resp = w.handleConnectionLost(req)
	case req.Kind.IsSendAndAwait():
		resp = w.handleSendAndAwait(req)
	default:
		resp = common.NewResponse(req.Kind)
		resp.Result = common.ResultNotSupported
		resp.Err = fmt.Errorf("unsupported request kind %s", req.Kind)
		Logger.Warningf("Unsupported request: %s", req)
	}

	w.metrics.request(req.Kind, start)
	if resp != nil && !resp.Ok() {
		w.metrics.failures.Inc()
	}

	if !req.KeepAlive() {
		w.teardown()
	}

	w.outbox.put(req.Originator, resp)
}

// --------------------------------------------------------------------------
// Request Handlers
// --------------------------------------------------------------------------

func (w *Worker) handleConnect(req *common.Request) *common.Response {
	resp := common.NewResponse(req.Kind)
	endpoint := w.config.Transport.Endpoint

	// at most one transport: tear the old one down first
	w.teardown()
	w.connState.Store(int32(Connecting))

	tr := w.newTransport()
	if obs, ok := tr.(transport.IRetryObserver); ok {
		obs.SetRetryHook(func(int) { w.metrics.readRetries.Inc() })
	}

	if err := tr.Connect(w.ctx, endpoint); err != nil {
		tr.Close()
		w.connState.Store(int32(Disconnected))
		Logger.Errorf("Failed to connect to %s: %v", endpoint, err)
		resp.Err = err
		return resp
	}

	w.connMu.Lock()
	w.tr = tr
	w.connMu.Unlock()
	w.connState.Store(int32(Connected))

	// no login line, the connection alone is the result
	if req.Content == "" {
		resp.Result = common.ResultOK
		return resp
	}

	w.exchange(tr, req, resp)
	if !resp.Ok() {
		// a rejected login ends the session
		w.teardown()
		return resp
	}
	w.authenticated.Store(true)
	Logger.Infof("Logged in to %s", endpoint)
	return resp
}

func (w *Worker) handleListen(req *common.Request) *common.Response {
	// the listener takes over, the request itself is not answered
	listener := req.Listener
	if listener == nil {
		listener = req.Originator
	}
	req.Originator = nil

	tr := w.currentTransport()
	if tr == nil {
		Logger.Warningf("Listen request without a connection, ignored")
		return nil
	}

	w.connMu.Lock()
	if w.pump != nil {
		w.pump.stop()
	}
	w.pump = newInboundPump(w, tr, listener)
	w.connMu.Unlock()

	Logger.Debugf("Inbound notifications enabled")
	return nil
}

func (w *Worker) handleSendAndAwait(req *common.Request) *common.Response {
	resp := common.NewResponse(req.Kind)

	tr := w.currentTransport()
	if tr == nil {
		resp.Result = common.ResultNotConnected
		resp.Err = common.ErrNotConnected
		return resp
	}

	w.exchange(tr, req, resp)
	return resp
}

func (w *Worker) handleIncomingData(req *common.Request) *common.Response {
	resp := common.NewResponse(req.Kind)
	resp.Data = strings.TrimRight(req.Content, "\r\n")

	// no other inbound notification while this one is handled
	w.inputMu.Lock()
	defer w.inputMu.Unlock()

	cmd, err := codec.Decode(req.Content)
	if err != nil {
		Logger.Warningf("Ignoring inbound line %q: %v", resp.Data, err)
		resp.Result = common.ResultNotSupported
		resp.Err = err
		return resp
	}

	if w.recorder != nil {
		if err := w.recorder.Record(cmd); err != nil {
			Logger.Warningf("Failed to record %s: %v", cmd.Kind, err)
		}
	}

	var routeErr error
	if w.router != nil {
		routeErr = w.router.Route(cmd)
	}
	if routeErr != nil {
		w.metrics.routeErrors.Inc()
	}

	if cmd.Kind == codec.CmdTMove {
		if err := w.acknowledgeMove(cmd, routeErr); err != nil {
			resp.Err = err
			return resp
		}
	}

	resp.Code = cmd.Code()
	if routeErr != nil {
		resp.Result = common.ResultAppError
		resp.Err = routeErr
		return resp
	}
	resp.Result = common.ResultOK
	return resp
}

func (w *Worker) handleConnectionLost(req *common.Request) *common.Response {
	w.connMu.Lock()
	pump := w.pump
	w.connMu.Unlock()

	// the failed connection was already replaced or closed
	if pump == nil || pump.failure() == nil {
		Logger.Debugf("Ignoring stale connection loss: %s", req.Content)
		req.Originator = nil
		return nil
	}

	resp := common.NewResponse(req.Kind)
	resp.Err = pump.failure()

	Logger.Warningf("Connection to %s lost: %v", w.config.Transport.Endpoint, resp.Err)
	if w.router != nil {
		w.router.HandleConnectionLost(resp.Err)
	}
	w.teardown()
	return resp
}

func (w *Worker) handleShutdown(req *common.Request) {
	Logger.Infof("Shutting down connection worker")
	w.connState.Store(int32(ShuttingDown))

	done := w.teardown()
	if done != nil {
		<-done
	}
	w.cancel()

	w.queue.setState(StateStopped)
	w.connState.Store(int32(Disconnected))

	resp := common.NewResponse(req.Kind)
	resp.Result = common.ResultOK
	w.outbox.put(req.Originator, resp)
	w.outbox.close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// exchange writes the request body and reads the direct reply. Inbound
// notifications are suspended meanwhile. The outcome is stored in resp.
func (w *Worker) exchange(tr transport.IClientTransport, req *common.Request, resp *common.Response) {
	body := req.Content
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}

	w.inputMu.Lock()
	data, truncated, err := func() ([]byte, bool, error) {
		if err := tr.WriteAll([]byte(body)); err != nil {
			return nil, false, err
		}
		return tr.ReadMessage(w.config.MessageSize())
	}()
	w.inputMu.Unlock()

	if err != nil {
		Logger.Errorf("Request %s failed: %v", req.Kind, err)
		if common.IsTransportError(err) {
			w.teardown()
		}
		resp.Err = err
		return
	}

	if truncated {
		Logger.Warningf("Reply to %s filled %d bytes and may be truncated", req.Kind, w.config.MessageSize())
	}

	code, message := codec.ParseReply(string(data))
	resp.Code = code
	resp.Data = message
	resp.Truncated = truncated

	if !codec.ReplyOK(code) {
		resp.Result = common.ResultAppError
		resp.Err = &common.ApplicationError{Code: code, Message: message}
		Logger.Warningf("Request %s failed with code %q: %s", req.Kind, code, message)
		if w.router != nil {
			w.router.HandleReply(req.Kind, code, message)
		}
		return
	}
	resp.Result = common.ResultOK
}

// acknowledgeMove answers an inbound move. Must be called with inputMu held.
func (w *Worker) acknowledgeMove(cmd codec.Command, routeErr error) error {
	tid := cmd.Get(codec.FieldTableID)

	var reply string
	var notFound *common.RouteNotFoundError
	switch {
	case routeErr == nil:
		reply = codec.FormatReply("0", fmt.Sprintf("INFO: (MOVE) Move at Table [%s] OK", tid))
	case errors.As(routeErr, &notFound) && notFound.Target == "table":
		reply = codec.FormatReply("1", fmt.Sprintf("Table %s not found.", notFound.ID))
	case errors.As(routeErr, &notFound) && notFound.Target == "player":
		reply = codec.FormatReply("2", fmt.Sprintf("Player %s not found.", notFound.ID))
	default:
		return nil
	}

	tr := w.currentTransport()
	if tr == nil {
		return nil
	}
	if err := tr.WriteAll([]byte(reply)); err != nil {
		Logger.Errorf("Failed to acknowledge move at table %s: %v", tid, err)
		w.teardown()
		return err
	}
	return nil
}

// currentTransport returns the active transport or nil
func (w *Worker) currentTransport() transport.IClientTransport {
	w.connMu.Lock()
	defer w.connMu.Unlock()
	return w.tr
}

// teardown stops the inbound pump and closes the active transport. It
// returns a channel that is closed once the pump has exited (nil if there
// was no pump). teardown never blocks.
func (w *Worker) teardown() <-chan struct{} {
	w.connMu.Lock()
	tr, pump := w.tr, w.pump
	w.tr, w.pump = nil, nil
	w.connMu.Unlock()

	var done <-chan struct{}
	if pump != nil {
		pump.stop()
		done = pump.done
	}
	if tr != nil {
		if err := tr.Close(); err != nil {
			Logger.Debugf("Error while closing transport: %v", err)
		}
		w.authenticated.Store(false)
		if ConnectionState(w.connState.Load()) != ShuttingDown {
			w.connState.Store(int32(Disconnected))
		}
	}
	return done
}
