package stdio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/ggoodman/mcp-wire/internal/logctx"
	"github.com/ggoodman/mcp-wire/internal/outbound"
	"github.com/ggoodman/mcp-wire/jsonrpc"
)

const defaultMaxMessageBytes = 4 << 20

// ErrAlreadyServing is returned by a second call to Serve.
var ErrAlreadyServing = errors.New("stdio: handler already serving")

// Handler is a single-connection stdio transport that reads JSON-RPC messages
// from an io.Reader and writes replies to an io.Writer. By default, it uses
// os.Stdin and os.Stdout.
type Handler struct {
	r        io.Reader
	w        io.Writer
	l        *slog.Logger
	codec    *jsonrpc.Codec
	maxBytes int

	d     jsonrpc.Dispatcher
	out   *Writer
	calls *outbound.Dispatcher

	serving atomic.Bool
}

// NewHandler constructs a stdio Handler with defaults and applies options.
func NewHandler(d jsonrpc.Dispatcher, opts ...Option) *Handler {
	h := &Handler{
		r:        os.Stdin,
		w:        os.Stdout,
		l:        slog.New(slog.DiscardHandler),
		maxBytes: defaultMaxMessageBytes,
		d:        d,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.l = logctx.New(h.l)
	if h.codec == nil {
		h.codec = jsonrpc.NewCodec(jsonrpc.WithLogger(h.l))
	}
	h.out = NewWriter(h.w, h.codec)
	h.calls = outbound.New(h.out)
	return h
}

// Call sends a request to the peer and waits for the correlated response.
// A peer error response is returned as a *jsonrpc.Error.
func (h *Handler) Call(ctx context.Context, method string, params any) (*jsonrpc.Response, error) {
	return h.calls.Call(ctx, method, params)
}

// Notify sends a notification to the peer.
func (h *Handler) Notify(ctx context.Context, method string, params any) error {
	n, err := jsonrpc.NewNotification(method, params)
	if err != nil {
		return err
	}
	return h.out.Send(ctx, n)
}

// Serve runs the read loop until EOF on the reader or the context is
// canceled. It returns nil on EOF and ctx.Err() on cancellation. In-flight
// requests are awaited before Serve returns. It may be called at most once.
func (h *Handler) Serve(ctx context.Context) error {
	if !h.serving.CompareAndSwap(false, true) {
		return ErrAlreadyServing
	}

	ctx = logctx.WithRequestData(ctx, &logctx.RequestData{Transport: "stdio"})
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go h.readLines(ctx, lines, readErr)

	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			h.calls.Close(ctx.Err())
			return ctx.Err()
		case err := <-readErr:
			if err == nil {
				h.l.DebugContext(ctx, "stdio.read.eof")
				h.calls.Close(io.EOF)
				return nil
			}
			h.l.ErrorContext(ctx, "stdio.read.fail", slog.String("err", err.Error()))
			h.calls.Close(err)
			return fmt.Errorf("read: %w", err)
		case line := <-lines:
			h.handleLine(ctx, line, &inflight)
		}
	}
}

func (h *Handler) readLines(ctx context.Context, lines chan<- []byte, done chan<- error) {
	sc := bufio.NewScanner(h.r)
	sc.Buffer(make([]byte, 0, 64*1024), h.maxBytes)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		// The scanner reuses its buffer.
		line = append([]byte(nil), line...)
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
	}
	done <- sc.Err()
}

func (h *Handler) handleLine(ctx context.Context, line []byte, inflight *sync.WaitGroup) {
	doc, err := jsonrpc.ParseDocument(line)
	if err != nil {
		h.l.WarnContext(ctx, "json.decode.fail", slog.String("err", err.Error()))
		h.reply(ctx, jsonrpc.ErrorResponseFor(err, jsonrpc.NullID()))
		return
	}
	if doc.IsArray() {
		h.l.WarnContext(ctx, "jsonrpc.batch.forbidden")
		h.reply(ctx, &jsonrpc.ErrorResponse{Error: jsonrpc.Error{
			Code:    jsonrpc.ErrorCodeInvalidRequest,
			Message: "JSON-RPC batch arrays are not supported",
		}})
		return
	}

	msg, err := h.codec.Decode(ctx, doc)
	if err != nil {
		if doc.ResponseShaped() {
			h.l.WarnContext(ctx, "response.inbound.invalid", slog.String("err", err.Error()))
			return
		}
		h.reply(ctx, jsonrpc.ErrorResponseFor(err, jsonrpc.ProbeID(doc)))
		return
	}

	rpc := &logctx.RPCMessage{Variant: msg.Variant().String()}
	if id, ok := jsonrpc.IDOf(msg); ok {
		rpc.ID = id.String()
	}
	if method, ok := jsonrpc.MethodOf(msg); ok {
		rpc.Method = method
	}
	ctx = logctx.WithRPCMessage(ctx, rpc)
	ctx = jsonrpc.WithRawDocument(ctx, doc)

	switch m := msg.(type) {
	case *jsonrpc.Request:
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			h.reply(ctx, jsonrpc.ReplyTo(ctx, h.d, m))
			h.l.InfoContext(ctx, "rpc.inbound.ok")
		}()
	case *jsonrpc.Notification:
		h.calls.OnNotification(m)
		if _, err := h.d.Dispatch(ctx, m); err != nil {
			h.l.ErrorContext(ctx, "notification.inbound.fail", slog.String("err", err.Error()))
			return
		}
		h.l.InfoContext(ctx, "notification.inbound.ok")
	case *jsonrpc.Response, *jsonrpc.ErrorResponse:
		if h.calls.OnResponse(m) {
			h.l.InfoContext(ctx, "response.inbound.ok")
			return
		}
		if _, err := h.d.Dispatch(ctx, m); err != nil {
			h.l.ErrorContext(ctx, "response.inbound.fail", slog.String("err", err.Error()))
			return
		}
		h.l.DebugContext(ctx, "response.inbound.unmatched")
	}
}

func (h *Handler) reply(ctx context.Context, msg jsonrpc.Message) {
	if err := h.out.Send(ctx, msg); err != nil {
		h.l.ErrorContext(ctx, "stdio.write.fail", slog.String("err", err.Error()))
	}
}
