package jsonrpc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

const (
	// ErrorCodeParseError indicates invalid JSON was received by the server.
	ErrorCodeParseError ErrorCode = -32700
	// ErrorCodeInvalidRequest indicates the JSON sent is not a valid Request object.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeMethodNotFound indicates the method does not exist / is not available.
	ErrorCodeMethodNotFound ErrorCode = -32601
	// ErrorCodeInvalidParams indicates invalid method parameters.
	ErrorCodeInvalidParams ErrorCode = -32602
	// ErrorCodeInternalError indicates an internal JSON-RPC error.
	ErrorCodeInternalError ErrorCode = -32603
)

// ErrorKind identifies why a decode or encode call failed.
type ErrorKind int

const (
	// KindMalformedEnvelope: the top-level value is not an object.
	KindMalformedEnvelope ErrorKind = iota + 1
	// KindUnsupportedVersion: jsonrpc is missing or not "2.0".
	KindUnsupportedVersion
	// KindAmbiguousResponse: a response with neither result nor error.
	KindAmbiguousResponse
	// KindUnclassifiableMessage: neither id nor method is present.
	KindUnclassifiableMessage
	// KindDeserialization: the shape matched but a field has the wrong type.
	KindDeserialization
	// KindUnknownVariant: Encode was handed a value outside the closed set.
	KindUnknownVariant
	// KindInvalidJSON: the input text is not a single JSON value.
	KindInvalidJSON
	// KindEncoding: a variant holds a value that cannot be put on the wire.
	KindEncoding
)

// Sentinels matched by errors.Is against any *CodecError of the same kind.
var (
	ErrMalformedEnvelope     = errors.New("jsonrpc: malformed envelope")
	ErrUnsupportedVersion    = errors.New("jsonrpc: unsupported version")
	ErrAmbiguousResponse     = errors.New("jsonrpc: ambiguous response")
	ErrUnclassifiableMessage = errors.New("jsonrpc: unclassifiable message")
	ErrDeserialization       = errors.New("jsonrpc: deserialization error")
	ErrUnknownVariant        = errors.New("jsonrpc: unknown variant")
	ErrInvalidJSON           = errors.New("jsonrpc: invalid JSON")
	ErrEncoding              = errors.New("jsonrpc: encoding error")
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedEnvelope:
		return "MalformedEnvelope"
	case KindUnsupportedVersion:
		return "UnsupportedVersion"
	case KindAmbiguousResponse:
		return "AmbiguousResponse"
	case KindUnclassifiableMessage:
		return "UnclassifiableMessage"
	case KindDeserialization:
		return "DeserializationError"
	case KindUnknownVariant:
		return "UnknownVariant"
	case KindInvalidJSON:
		return "InvalidJSON"
	case KindEncoding:
		return "EncodingError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindMalformedEnvelope:
		return ErrMalformedEnvelope
	case KindUnsupportedVersion:
		return ErrUnsupportedVersion
	case KindAmbiguousResponse:
		return ErrAmbiguousResponse
	case KindUnclassifiableMessage:
		return ErrUnclassifiableMessage
	case KindDeserialization:
		return ErrDeserialization
	case KindUnknownVariant:
		return ErrUnknownVariant
	case KindInvalidJSON:
		return ErrInvalidJSON
	case KindEncoding:
		return ErrEncoding
	default:
		return nil
	}
}

// Code maps the failure kind to the JSON-RPC error code a peer should see.
func (k ErrorKind) Code() ErrorCode {
	switch k {
	case KindInvalidJSON:
		return ErrorCodeParseError
	case KindUnknownVariant, KindEncoding:
		return ErrorCodeInternalError
	default:
		return ErrorCodeInvalidRequest
	}
}

// CodecError is returned by every failing Decode and Encode call.
type CodecError struct {
	Kind ErrorKind
	// Variant is the variant being decoded or encoded, if one was chosen.
	Variant Variant
	// Field names the offending member for KindDeserialization and
	// KindEncoding, e.g. "method" or "error.code".
	Field string
	// Type is the concrete Go type handed to Encode for KindUnknownVariant.
	Type string
	// Raw is the document text, when there was one.
	Raw string
	Err error
}

func (e *CodecError) Error() string {
	var b strings.Builder
	b.WriteString("jsonrpc: ")
	b.WriteString(e.Kind.String())
	if e.Variant != VariantUnknown {
		b.WriteString(" (")
		b.WriteString(e.Variant.String())
		b.WriteString(")")
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Type != "" {
		fmt.Fprintf(&b, ": type %s", e.Type)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *CodecError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *CodecError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Response builds the error response a transport sends back for this
// failure.
func (e *CodecError) Response(id RequestID) *ErrorResponse {
	return &ErrorResponse{
		ID: id,
		Error: Error{
			Code:    e.Kind.Code(),
			Message: e.Error(),
		},
	}
}

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (ErrorKind, bool) {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	return 0, false
}

// ErrorResponseFor converts any error into an error response for id. A
// *Error in the chain is sent as is, codec failures keep their mapped code,
// and anything else is an internal error.
func ErrorResponseFor(err error, id RequestID) *ErrorResponse {
	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return &ErrorResponse{ID: id, Error: *rpcErr}
	}
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.Response(id)
	}
	return &ErrorResponse{
		ID:    id,
		Error: Error{Code: ErrorCodeInternalError, Message: err.Error()},
	}
}
