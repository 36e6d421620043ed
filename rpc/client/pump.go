package client

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hoxchess/hoxnet/rpc/common"
	"github.com/hoxchess/hoxnet/rpc/transport"
)

// inboundPump reads server initiated lines and turns each of them into an
// IncomingData request for the worker. It only reads while holding the
// worker's input gate.
type inboundPump struct {
	w        *Worker
	tr       transport.IClientTransport
	listener chan<- *common.Response

	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	pending []byte // bytes of an incomplete line

	// err is the read failure, valid once failed is set
	err    error
	failed atomic.Bool
}

func newInboundPump(w *Worker, tr transport.IClientTransport, listener chan<- *common.Response) *inboundPump {
	p := &inboundPump{
		w:        w,
		tr:       tr,
		listener: listener,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// stop signals the pump to exit, it does not wait
func (p *inboundPump) stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

func (p *inboundPump) stopped() bool {
	select {
	case <-p.stopCh:
		return true
	default:
		return false
	}
}

// failure returns the read error that ended the pump, or nil
func (p *inboundPump) failure() error {
	if !p.failed.Load() {
		return nil
	}
	return p.err
}

func (p *inboundPump) run() {
	defer close(p.done)

	maxSize := p.w.config.MessageSize()
	wait := p.w.config.PollInterval()

	for !p.stopped() {
		p.w.inputMu.Lock()
		data, err := p.tr.Poll(maxSize, wait)
		p.w.inputMu.Unlock()

		if err != nil {
			if p.stopped() {
				return
			}
			Logger.Warningf("Inbound connection lost: %v", err)
			p.err = err
			p.failed.Store(true)
			// the worker goroutine owns the connection and tears it down
			if !p.w.Submit(common.NewConnectionLostRequest(err, p.listener)) {
				Logger.Debugf("Connection loss not reported, worker is %s", p.w.State())
			}
			return
		}
		if len(data) == 0 {
			continue
		}

		p.pending = append(p.pending, data...)
		if !p.flush() {
			return
		}
	}
}

// flush submits every complete line. It returns false once the worker does
// not accept requests anymore.
func (p *inboundPump) flush() bool {
	for {
		i := bytes.IndexByte(p.pending, '\n')
		if i < 0 {
			break
		}
		line := string(p.pending[:i+1])
		p.pending = p.pending[i+1:]

		if strings.TrimSpace(line) == "" {
			continue
		}
		if p.stopped() {
			return false
		}
		if !p.w.Submit(common.NewIncomingDataRequest(line, p.listener)) {
			return false
		}
	}

	// an oversized line without terminator is handed over as is
	if len(p.pending) >= p.w.config.MessageSize() {
		Logger.Warningf("Inbound line exceeds %d bytes, passing it on unterminated", p.w.config.MessageSize())
		line := string(p.pending)
		p.pending = nil
		return p.w.Submit(common.NewIncomingDataRequest(line, p.listener))
	}
	return true
}
