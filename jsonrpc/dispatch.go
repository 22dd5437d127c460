package jsonrpc

import "context"

// Dispatcher consumes classified inbound messages on behalf of a transport.
// For a *Request the returned message is the reply; a nil reply with a nil
// error is answered with an empty object result. An error is converted with
// ErrorResponseFor. Returns for other variants are ignored.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg Message) (Message, error)
}

// DispatcherFunc adapts a function to a Dispatcher.
type DispatcherFunc func(ctx context.Context, msg Message) (Message, error)

func (f DispatcherFunc) Dispatch(ctx context.Context, msg Message) (Message, error) {
	return f(ctx, msg)
}

// ReplyTo runs d for req and returns the message to send back.
func ReplyTo(ctx context.Context, d Dispatcher, req *Request) Message {
	reply, err := d.Dispatch(ctx, req)
	if err != nil {
		return ErrorResponseFor(err, req.ID)
	}
	switch r := reply.(type) {
	case *Response, *ErrorResponse:
		return r
	case nil:
		return &Response{ID: req.ID, Result: []byte("{}")}
	default:
		return &ErrorResponse{ID: req.ID, Error: Error{Code: ErrorCodeInternalError, Message: "dispatcher replied with a " + r.Variant().String()}}
	}
}

type rawDocumentKey struct{}

// WithRawDocument stores the text a message was decoded from on ctx, so that
// dispatchers can see the bytes as received.
func WithRawDocument(ctx context.Context, doc Document) context.Context {
	return context.WithValue(ctx, rawDocumentKey{}, doc.raw)
}

// RawDocumentFrom returns the text stored by WithRawDocument, if any.
func RawDocumentFrom(ctx context.Context) ([]byte, bool) {
	raw, ok := ctx.Value(rawDocumentKey{}).([]byte)
	return raw, ok && len(raw) > 0
}
