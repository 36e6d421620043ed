package client

import (
	"sync"

	"github.com/eapache/queue"
	"github.com/hoxchess/hoxnet/rpc/common"
)

// --------------------------------------------------------------------------
// Worker State
// --------------------------------------------------------------------------

// WorkerState is the lifecycle state of a Worker
type WorkerState int32

const (
	StateIdle         WorkerState = iota // Created, not started
	StateRunning                         // Processing requests
	StateShuttingDown                    // Shutdown submitted, draining the queue
	StateStopped                         // Worker goroutine finished
)

func (s WorkerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateShuttingDown:
		return "shutting-down"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Request Queue
// --------------------------------------------------------------------------

// requestQueue is the FIFO between producers and the worker goroutine.
// The worker state lives under the same lock, so a request can never be
// accepted after the shutdown request.
type requestQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items *queue.Queue
	state WorkerState
}

func newRequestQueue() *requestQueue {
	q := &requestQueue{items: queue.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// push appends a request. It returns false if a shutdown was already
// submitted. Pushing a shutdown request moves the state to StateShuttingDown.
func (q *requestQueue) push(req *common.Request) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state >= StateShuttingDown {
		return false
	}
	if req.Kind == common.ReqTShutdown {
		q.state = StateShuttingDown
	}

	q.items.Add(req)
	q.cond.Signal()
	return true
}

// pop blocks until a request is available and removes it
func (q *requestQueue) pop() *common.Request {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Length() == 0 {
		q.cond.Wait()
	}
	return q.items.Remove().(*common.Request)
}

// len returns the number of queued requests
func (q *requestQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

func (q *requestQueue) getState() WorkerState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// setState changes the state unless the queue is already further along
func (q *requestQueue) setState(state WorkerState) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if state > q.state {
		q.state = state
	}
}

// --------------------------------------------------------------------------
// Outbox
// --------------------------------------------------------------------------

// delivery is a response on its way to an originator
type delivery struct {
	ch   chan<- *common.Response
	resp *common.Response
}

// outbox hands responses to their originators on its own goroutine, so a
// slow consumer never blocks the worker. Responses keep their order.
type outbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  *queue.Queue
	closed bool
	done   chan struct{}
}

func newOutbox() *outbox {
	o := &outbox{items: queue.New(), done: make(chan struct{})}
	o.cond = sync.NewCond(&o.mu)
	go o.run()
	return o
}

// put queues a response. Responses without an originator are discarded.
func (o *outbox) put(ch chan<- *common.Response, resp *common.Response) {
	if ch == nil || resp == nil {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.items.Add(delivery{ch: ch, resp: resp})
	o.cond.Signal()
}

// close stops accepting responses, queued ones are still delivered
func (o *outbox) close() {
	o.mu.Lock()
	o.closed = true
	o.cond.Signal()
	o.mu.Unlock()
}

func (o *outbox) run() {
	defer close(o.done)
	for {
		o.mu.Lock()
		for o.items.Length() == 0 && !o.closed {
			o.cond.Wait()
		}
		if o.items.Length() == 0 {
			o.mu.Unlock()
			return
		}
		d := o.items.Remove().(delivery)
		o.mu.Unlock()

		d.ch <- d.resp
	}
}
