// Package jsonrpc classifies, validates and serializes JSON-RPC 2.0 messages
// as exchanged by Model Context Protocol peers.
//
// A Document read off any transport is classified into exactly one of four
// variants of the closed Message sum type:
//
//	*Request        jsonrpc, id, method[, params]
//	*Notification   jsonrpc, method[, params]          (no id, not even null)
//	*Response       jsonrpc, id, result
//	*ErrorResponse  jsonrpc, id, error{code, message[, data]}
//
// Classification looks only at the presence of the id, method and error
// members, using a presence probe that treats a JSON null as present. A
// response carrying "id": null is therefore a response, never a
// notification.
//
// Decision order
//
//	id && !method   -> error ? ErrorResponse : result ? Response : AmbiguousResponse
//	method && !id   -> Notification
//	method && id    -> Request
//	otherwise       -> UnclassifiableMessage
//
// Callers dispatch with an ordinary type switch:
//
//	msg, err := codec.DecodeBytes(ctx, line)
//	if err != nil {
//	    resp := jsonrpc.ErrorResponseFor(err, jsonrpc.NullID())
//	    ...
//	}
//	switch m := msg.(type) {
//	case *jsonrpc.Request:
//	case *jsonrpc.Notification:
//	case *jsonrpc.Response:
//	case *jsonrpc.ErrorResponse:
//	}
//
// Failures are *CodecError values matching one sentinel per failure kind via
// errors.Is (ErrUnsupportedVersion, ErrAmbiguousResponse, ...). A Codec holds
// no mutable state and is safe for concurrent use.
package jsonrpc
