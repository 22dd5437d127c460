package streaminghttp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/mcp-wire/internal/logctx"
	"github.com/ggoodman/mcp-wire/jsonrpc"
	"github.com/google/uuid"
)

var (
	_ http.Handler = (*Handler)(nil)
)

var (
	jsonMediaType  = contenttype.NewMediaType("application/json")
	jsonMediaTypes = []contenttype.MediaType{jsonMediaType}
)

const defaultMaxMessageBytes = 4 << 20

// writeJSONError emits a minimal JSON body for HTTP-layer rejections before a
// JSON-RPC message exchange is possible. This is not JSON-RPC framing.
// Shape: {"error":{"code":<httpStatus>,"message":"<reason>"}}
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": status, "message": msg}})
}

// Option configures the Handler.
type Option func(*Handler)

// WithLogger sets the logger used by the handler. If not provided, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// WithCodec overrides the codec used to classify bodies and encode replies.
func WithCodec(c *jsonrpc.Codec) Option {
	return func(h *Handler) {
		if c != nil {
			h.codec = c
		}
	}
}

// WithMaxMessageBytes bounds the request body. Defaults to 4 MiB.
func WithMaxMessageBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// Handler carries exactly one JSON-RPC message per POST body. Requests are
// answered in the response body; notifications and responses are accepted
// without one.
type Handler struct {
	log      *slog.Logger
	codec    *jsonrpc.Codec
	maxBytes int64
	d        jsonrpc.Dispatcher
}

// NewHandler constructs a Handler that hands classified messages to d.
func NewHandler(d jsonrpc.Dispatcher, opts ...Option) *Handler {
	h := &Handler{
		log:      slog.New(slog.DiscardHandler),
		maxBytes: defaultMaxMessageBytes,
		d:        d,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = logctx.New(h.log)
	if h.codec == nil {
		h.codec = jsonrpc.NewCodec(jsonrpc.WithLogger(h.log))
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := logctx.WithRequestData(r.Context(), &logctx.RequestData{
		RequestID:  uuid.NewString(),
		Transport:  "http",
		RemoteAddr: r.RemoteAddr,
		Path:       r.URL.Path,
	})
	h.handlePost(w, r.WithContext(ctx))
}

func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		h.log.WarnContext(ctx, "http.method.unsupported", slog.String("method", r.Method))
		return
	}
	h.log.InfoContext(ctx, "http.post.start")

	ctype, err := contenttype.GetMediaType(r)
	if err != nil || !ctype.Matches(jsonMediaType) {
		writeJSONError(w, http.StatusUnsupportedMediaType, "content-type must be application/json")
		h.log.WarnContext(ctx, "content_type.unsupported")
		return
	}
	if _, _, err := contenttype.GetAcceptableMediaType(r, jsonMediaTypes); err != nil {
		writeJSONError(w, http.StatusNotAcceptable, "client must accept application/json")
		h.log.WarnContext(ctx, "accept.unsupported")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "message too large")
			h.log.WarnContext(ctx, "http.body.too_large", slog.Int64("limit", tooLarge.Limit))
			return
		}
		writeJSONError(w, http.StatusBadRequest, "failed to read body")
		h.log.WarnContext(ctx, "http.body.read.fail", slog.String("err", err.Error()))
		return
	}

	doc, err := jsonrpc.ParseDocument(body)
	if err != nil {
		h.log.WarnContext(ctx, "json.decode.fail", slog.String("err", err.Error()))
		h.writeMessage(w, r, http.StatusBadRequest, jsonrpc.ErrorResponseFor(err, jsonrpc.NullID()))
		return
	}
	if doc.IsArray() {
		h.log.WarnContext(ctx, "jsonrpc.batch.forbidden")
		h.writeMessage(w, r, http.StatusBadRequest, &jsonrpc.ErrorResponse{Error: jsonrpc.Error{
			Code:    jsonrpc.ErrorCodeInvalidRequest,
			Message: "JSON-RPC batch arrays are forbidden on streaming HTTP transport",
		}})
		return
	}

	msg, err := h.codec.Decode(ctx, doc)
	if err != nil {
		if doc.ResponseShaped() {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON-RPC response: "+err.Error())
			h.log.WarnContext(ctx, "response.inbound.invalid", slog.String("err", err.Error()))
			return
		}
		h.writeMessage(w, r, http.StatusBadRequest, jsonrpc.ErrorResponseFor(err, jsonrpc.ProbeID(doc)))
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
	r = r.WithContext(ctx)

	switch m := msg.(type) {
	case *jsonrpc.Request:
		h.writeMessage(w, r, http.StatusOK, jsonrpc.ReplyTo(ctx, h.d, m))
		h.log.InfoContext(ctx, "rpc.inbound.ok", slog.Duration("dur", time.Since(start)))
	default:
		if _, err := h.d.Dispatch(ctx, m); err != nil {
			h.log.ErrorContext(ctx, "message.inbound.fail", slog.String("err", err.Error()))
		}
		w.WriteHeader(http.StatusAccepted)
		h.log.InfoContext(ctx, "message.inbound.accepted", slog.Duration("dur", time.Since(start)))
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, r *http.Request, status int, msg jsonrpc.Message) {
	ctx := r.Context()
	b, err := h.codec.Encode(ctx, msg)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		h.log.ErrorContext(ctx, "jsonrpc.encode.fail", slog.String("err", err.Error()))
		return
	}
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		h.log.ErrorContext(ctx, "http.write.fail", slog.String("err", err.Error()))
	}
}
