package outbound

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ggoodman/mcp-wire/jsonrpc"
	"github.com/ggoodman/mcp-wire/mcp"
)

// Transport abstracts how outbound messages reach the peer.
type Transport interface {
	// Send writes one message to the peer.
	Send(ctx context.Context, msg jsonrpc.Message) error
}

var (
	// ErrDispatcherClosed indicates the dispatcher is closed.
	ErrDispatcherClosed = errors.New("dispatcher closed")
	// ErrRemoteCancelled indicates the peer cancelled the request.
	ErrRemoteCancelled = errors.New("remote cancelled")
)

type pendingCall struct {
	respCh chan *jsonrpc.Response
	errCh  chan error
}

// Dispatcher issues locally-initiated requests and correlates the peer's
// responses with them by id. It is transport-agnostic.
type Dispatcher struct {
	t Transport

	mu      sync.Mutex
	pending map[string]*pendingCall // id.Key() -> call

	nextID atomic.Int64

	closed   atomic.Bool
	closeErr error
}

// New constructs a Dispatcher using the provided transport.
func New(t Transport) *Dispatcher {
	return &Dispatcher{t: t, pending: make(map[string]*pendingCall)}
}

// Call sends a request and waits for its response or context cancellation.
// An error response from the peer is returned as a *jsonrpc.Error.
func (d *Dispatcher) Call(ctx context.Context, method string, params any) (*jsonrpc.Response, error) {
	if err := d.closedErr(); err != nil {
		return nil, err
	}

	id := jsonrpc.NumberID(d.nextID.Add(1))
	key := id.Key()

	req, err := jsonrpc.NewRequest(id, method, params)
	if err != nil {
		return nil, err
	}

	pc := &pendingCall{respCh: make(chan *jsonrpc.Response, 1), errCh: make(chan error, 1)}
	d.mu.Lock()
	if d.closed.Load() {
		d.mu.Unlock()
		return nil, d.closedErr()
	}
	d.pending[key] = pc
	d.mu.Unlock()

	if err := d.t.Send(ctx, req); err != nil {
		d.forget(key)
		return nil, err
	}

	select {
	case resp := <-pc.respCh:
		return resp, nil
	case err := <-pc.errCh:
		if err != nil {
			return nil, err
		}
		return nil, ErrDispatcherClosed
	case <-ctx.Done():
		// Best-effort cancel message to the peer.
		if n, err := jsonrpc.NewNotification(string(mcp.CancelledNotificationMethod), mcp.CancelledNotification{RequestID: id}); err == nil {
			_ = d.t.Send(context.Background(), n)
		}
		d.forget(key)
		return nil, ctx.Err()
	}
}

// OnResponse delivers an incoming *jsonrpc.Response or *jsonrpc.ErrorResponse
// to the waiting call. It reports whether a call was waiting.
func (d *Dispatcher) OnResponse(msg jsonrpc.Message) bool {
	var (
		id     jsonrpc.RequestID
		resp   *jsonrpc.Response
		remote error
	)
	switch m := msg.(type) {
	case *jsonrpc.Response:
		id, resp = m.ID, m
	case *jsonrpc.ErrorResponse:
		e := m.Error
		id, remote = m.ID, &e
	default:
		return false
	}
	if id.IsNull() {
		return false
	}

	pc, ok := d.take(id.Key())
	if !ok {
		return false
	}
	if remote != nil {
		pc.errCh <- remote
	} else {
		pc.respCh <- resp
	}
	return true
}

// OnNotification processes peer notifications relevant to outbound calls.
func (d *Dispatcher) OnNotification(n *jsonrpc.Notification) {
	if n == nil || n.Method != string(mcp.CancelledNotificationMethod) {
		return
	}
	var p mcp.CancelledNotification
	if err := json.Unmarshal(n.Params, &p); err != nil {
		return
	}
	if pc, ok := d.take(p.RequestID.Key()); ok {
		pc.errCh <- ErrRemoteCancelled
	}
}

// Close cancels all pending calls with the provided error and prevents new calls.
func (d *Dispatcher) Close(err error) {
	if err == nil {
		err = ErrDispatcherClosed
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed.Load() {
		return
	}
	d.closeErr = err
	d.closed.Store(true)
	for key, pc := range d.pending {
		delete(d.pending, key)
		pc.errCh <- err
	}
}

func (d *Dispatcher) closedErr() error {
	if !d.closed.Load() {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closeErr != nil {
		return d.closeErr
	}
	return ErrDispatcherClosed
}

func (d *Dispatcher) take(key string) (*pendingCall, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pc, ok := d.pending[key]
	if ok {
		delete(d.pending, key)
	}
	return pc, ok
}

func (d *Dispatcher) forget(key string) {
	d.mu.Lock()
	delete(d.pending, key)
	d.mu.Unlock()
}
