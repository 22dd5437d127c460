package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the supported JSON-RPC protocol version.
const ProtocolVersion = "2.0"

// Variant names one member of the closed Message set.
type Variant int

const (
	VariantUnknown Variant = iota
	VariantRequest
	VariantNotification
	VariantResponse
	VariantErrorResponse
)

func (v Variant) String() string {
	switch v {
	case VariantRequest:
		return "request"
	case VariantNotification:
		return "notification"
	case VariantResponse:
		return "response"
	case VariantErrorResponse:
		return "error_response"
	default:
		return "unknown"
	}
}

// ParseVariant is the inverse of Variant.String.
func ParseVariant(s string) (Variant, bool) {
	for _, v := range Variants() {
		if v.String() == s {
			return v, true
		}
	}
	return VariantUnknown, false
}

func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, ok := ParseVariant(string(b))
	if !ok {
		return fmt.Errorf("jsonrpc: unknown variant %q", b)
	}
	*v = parsed
	return nil
}

// Variants lists the members of the closed set in decision order.
func Variants() []Variant {
	return []Variant{VariantRequest, VariantNotification, VariantResponse, VariantErrorResponse}
}

// Message is a classified JSON-RPC message. The only implementations are
// *Request, *Notification, *Response and *ErrorResponse.
type Message interface {
	Variant() Variant
	isMessage()
}

// Request is a call that expects a response correlated by ID.
type Request struct {
	ID     RequestID
	Method string
	// Params is nil when absent.
	Params json.RawMessage
}

// Notification is a call that expects no response. It never carries an id.
type Notification struct {
	Method string
	// Params is nil when absent.
	Params json.RawMessage
}

// Response is a successful reply.
type Response struct {
	ID RequestID
	// Result is always present on the wire; nil encodes as null.
	Result json.RawMessage
}

// ErrorResponse is a failed reply.
type ErrorResponse struct {
	ID    RequestID
	Error Error
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    ErrorCode       `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

func (*Request) Variant() Variant       { return VariantRequest }
func (*Notification) Variant() Variant  { return VariantNotification }
func (*Response) Variant() Variant      { return VariantResponse }
func (*ErrorResponse) Variant() Variant { return VariantErrorResponse }

func (*Request) isMessage()       {}
func (*Notification) isMessage()  {}
func (*Response) isMessage()      {}
func (*ErrorResponse) isMessage() {}

// NewRequest builds a request, marshaling params unless nil.
func NewRequest(id RequestID, method string, params any) (*Request, error) {
	raw, err := marshalOptional(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	return &Request{ID: id, Method: method, Params: raw}, nil
}

// NewNotification builds a notification, marshaling params unless nil.
func NewNotification(method string, params any) (*Notification, error) {
	raw, err := marshalOptional(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}
	return &Notification{Method: method, Params: raw}, nil
}

// NewResultResponse builds a successful JSON-RPC response object.
func NewResultResponse(id RequestID, result any) (*Response, error) {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &Response{
		ID:     id,
		Result: resultBytes,
	}, nil
}

// NewErrorResponse builds an error JSON-RPC response with the given code.
// data is omitted from the wire when nil.
func NewErrorResponse(id RequestID, code ErrorCode, message string, data any) (*ErrorResponse, error) {
	raw, err := marshalOptional(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal error data: %w", err)
	}
	return &ErrorResponse{
		ID: id,
		Error: Error{
			Code:    code,
			Message: message,
			Data:    raw,
		},
	}, nil
}

// IDOf returns the correlator carried by msg. Notifications have none.
func IDOf(msg Message) (RequestID, bool) {
	switch m := msg.(type) {
	case *Request:
		return m.ID, true
	case *Response:
		return m.ID, true
	case *ErrorResponse:
		return m.ID, true
	default:
		return RequestID{}, false
	}
}

// MethodOf returns the method of a request or notification.
func MethodOf(msg Message) (string, bool) {
	switch m := msg.(type) {
	case *Request:
		return m.Method, true
	case *Notification:
		return m.Method, true
	default:
		return "", false
	}
}

func marshalOptional(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}
