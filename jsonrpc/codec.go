package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/tidwall/gjson"
)

// Codec classifies inbound documents and serializes outbound messages. It is
// immutable after construction and safe for concurrent use.
type Codec struct {
	obs Observer
}

// Option customizes a Codec.
type Option func(*Codec)

// WithObserver sets the sink notified of every classification and failure.
func WithObserver(o Observer) Option {
	return func(c *Codec) {
		if o != nil {
			c.obs = o
		}
	}
}

// WithLogger reports classifications and failures to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.obs = NewLogObserver(l)
		}
	}
}

// NewCodec constructs a Codec. Without options, observations are discarded.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{obs: nopObserver{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCodec = NewCodec()

// Decode classifies a document with a Codec that discards observations.
func Decode(doc Document) (Message, error) {
	return defaultCodec.Decode(context.Background(), doc)
}

// Encode serializes a message with a Codec that discards observations.
func Encode(msg Message) (json.RawMessage, error) {
	return defaultCodec.Encode(context.Background(), msg)
}

// DecodeBytes parses data and classifies it.
func (c *Codec) DecodeBytes(ctx context.Context, data []byte) (Message, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, c.reject(ctx, string(data), err)
	}
	return c.Decode(ctx, doc)
}

// Decode classifies doc into exactly one Message variant or fails with a
// *CodecError. The jsonrpc version is checked before the shape.
func (c *Codec) Decode(ctx context.Context, doc Document) (Message, error) {
	raw := doc.Raw()

	if !doc.IsObject() {
		return nil, c.reject(ctx, raw, &CodecError{Kind: KindMalformedEnvelope, Raw: raw})
	}

	m := doc.m
	if m.jsonrpc.Type != gjson.String || m.jsonrpc.Str != ProtocolVersion {
		err := &CodecError{Kind: KindUnsupportedVersion, Raw: raw}
		if m.jsonrpc.Exists() {
			err.Err = fmt.Errorf("expected %q, got %s", ProtocolVersion, m.jsonrpc.Raw)
		} else {
			err.Err = errors.New("missing jsonrpc member")
		}
		return nil, c.reject(ctx, raw, err)
	}

	hasID := m.id.Exists()
	hasMethod := m.method.Exists()
	hasError := m.err.Exists()

	var (
		msg Message
		err error
	)
	switch {
	case hasID && !hasMethod:
		switch {
		case hasError:
			msg, err = decodeErrorResponse(m)
		case m.result.Exists():
			msg, err = decodeResponse(m)
		default:
			err = &CodecError{Kind: KindAmbiguousResponse, Err: errors.New("response must have either result or error")}
		}
	case hasMethod && !hasID:
		msg, err = decodeNotification(m)
	case hasMethod && hasID:
		msg, err = decodeRequest(m)
	default:
		err = &CodecError{Kind: KindUnclassifiableMessage, Err: errors.New("neither id nor method present")}
	}

	if err != nil {
		var ce *CodecError
		if errors.As(err, &ce) && ce.Raw == "" {
			ce.Raw = raw
		}
		return nil, c.reject(ctx, raw, err)
	}

	c.obs.Classified(ctx, msg.Variant(), raw)
	return msg, nil
}

func decodeRequest(m members) (*Request, error) {
	method, err := readMethod(VariantRequest, m.method)
	if err != nil {
		return nil, err
	}
	id, err := readID(m.id, false)
	if err != nil {
		return nil, fieldError(VariantRequest, "id", err)
	}
	return &Request{ID: id, Method: method, Params: rawCopy(m.params)}, nil
}

func decodeNotification(m members) (*Notification, error) {
	method, err := readMethod(VariantNotification, m.method)
	if err != nil {
		return nil, err
	}
	return &Notification{Method: method, Params: rawCopy(m.params)}, nil
}

func decodeResponse(m members) (*Response, error) {
	id, err := readID(m.id, true)
	if err != nil {
		return nil, fieldError(VariantResponse, "id", err)
	}
	return &Response{ID: id, Result: rawCopy(m.result)}, nil
}

func decodeErrorResponse(m members) (*ErrorResponse, error) {
	id, err := readID(m.id, true)
	if err != nil {
		return nil, fieldError(VariantErrorResponse, "id", err)
	}
	if !m.err.IsObject() {
		return nil, fieldError(VariantErrorResponse, "error", errWrongType("object", m.err))
	}

	code := m.err.Get("code")
	if !code.Exists() {
		return nil, fieldError(VariantErrorResponse, "error.code", errors.New("missing"))
	}
	if code.Type != gjson.Number {
		return nil, fieldError(VariantErrorResponse, "error.code", errWrongType("integer", code))
	}
	n, perr := strconv.ParseInt(code.Raw, 10, 32)
	if perr != nil {
		return nil, fieldError(VariantErrorResponse, "error.code", fmt.Errorf("not an integer: %s", code.Raw))
	}

	message := m.err.Get("message")
	if !message.Exists() {
		return nil, fieldError(VariantErrorResponse, "error.message", errors.New("missing"))
	}
	if message.Type != gjson.String {
		return nil, fieldError(VariantErrorResponse, "error.message", errWrongType("string", message))
	}

	return &ErrorResponse{
		ID: id,
		Error: Error{
			Code:    ErrorCode(n),
			Message: message.Str,
			Data:    rawCopy(m.err.Get("data")),
		},
	}, nil
}

func readMethod(v Variant, r gjson.Result) (string, error) {
	if r.Type != gjson.String {
		return "", fieldError(v, "method", errWrongType("string", r))
	}
	return r.Str, nil
}

func fieldError(v Variant, field string, err error) error {
	return &CodecError{Kind: KindDeserialization, Variant: v, Field: field, Err: err}
}

func errWrongType(want string, r gjson.Result) error {
	return fmt.Errorf("expected %s, got %s", want, jsonType(r))
}

func jsonType(r gjson.Result) string {
	switch {
	case !r.Exists():
		return "nothing"
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	}
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	default:
		return r.Type.String()
	}
}

func numberLiteral(raw string) json.Number { return json.Number(raw) }

// Wire shapes. Field order matches the order peers conventionally emit.
type (
	wireRequest struct {
		JSONRPCVersion string          `json:"jsonrpc"`
		ID             RequestID       `json:"id"`
		Method         string          `json:"method"`
		Params         json.RawMessage `json:"params,omitempty"`
	}
	wireNotification struct {
		JSONRPCVersion string          `json:"jsonrpc"`
		Method         string          `json:"method"`
		Params         json.RawMessage `json:"params,omitempty"`
	}
	wireResponse struct {
		JSONRPCVersion string          `json:"jsonrpc"`
		ID             RequestID       `json:"id"`
		Result         json.RawMessage `json:"result"`
	}
	wireErrorResponse struct {
		JSONRPCVersion string    `json:"jsonrpc"`
		ID             RequestID `json:"id"`
		Error          Error     `json:"error"`
	}
)

var nullResult = json.RawMessage("null")

// Encode serializes msg to its canonical wire form. Values outside the closed
// variant set, including nil variant pointers, fail with KindUnknownVariant.
func (c *Codec) Encode(ctx context.Context, msg Message) (json.RawMessage, error) {
	var (
		v    any
		kind Variant
	)
	switch m := msg.(type) {
	case *Request:
		if m == nil {
			return nil, c.unknown(ctx, msg)
		}
		kind = VariantRequest
		if m.ID.IsNull() {
			return nil, c.reject(ctx, "", &CodecError{Kind: KindEncoding, Variant: kind, Field: "id", Err: errors.New("request id must be a string or number")})
		}
		v = wireRequest{JSONRPCVersion: ProtocolVersion, ID: m.ID, Method: m.Method, Params: m.Params}
	case *Notification:
		if m == nil {
			return nil, c.unknown(ctx, msg)
		}
		kind = VariantNotification
		v = wireNotification{JSONRPCVersion: ProtocolVersion, Method: m.Method, Params: m.Params}
	case *Response:
		if m == nil {
			return nil, c.unknown(ctx, msg)
		}
		kind = VariantResponse
		result := m.Result
		if len(result) == 0 {
			result = nullResult
		}
		v = wireResponse{JSONRPCVersion: ProtocolVersion, ID: m.ID, Result: result}
	case *ErrorResponse:
		if m == nil {
			return nil, c.unknown(ctx, msg)
		}
		kind = VariantErrorResponse
		v = wireErrorResponse{JSONRPCVersion: ProtocolVersion, ID: m.ID, Error: m.Error}
	default:
		return nil, c.unknown(ctx, msg)
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, c.reject(ctx, "", &CodecError{Kind: KindEncoding, Variant: kind, Err: err})
	}
	return b, nil
}

func (c *Codec) unknown(ctx context.Context, msg Message) error {
	return c.reject(ctx, "", &CodecError{Kind: KindUnknownVariant, Type: fmt.Sprintf("%T", msg)})
}

func (c *Codec) reject(ctx context.Context, raw string, err error) error {
	kind, _ := KindOf(err)
	c.obs.Rejected(ctx, kind, raw, err)
	return err
}
