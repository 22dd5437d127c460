// Package streaminghttp carries JSON-RPC messages over HTTP POST, one message
// per request body. It mounts as a standard net/http handler.
//
// Status codes
//
//	405 : any method other than POST
//	415 : Content-Type is not application/json
//	406 : Accept excludes application/json
//	413 : body exceeds the configured limit
//	400 : body is not JSON, is a batch, or fails classification
//	202 : notification or response accepted, empty body
//	200 : request answered, body is the reply
//
// Rejections that happen before a body is read carry a small transport-level
// JSON body. Bodies that were read but cannot be classified are answered with
// a JSON-RPC error response whose id is recovered with jsonrpc.ProbeID when
// possible. A malformed response (an id and no method) is never answered with
// a JSON-RPC message; it gets the transport-level body instead.
//
// Example (mount in net/http):
//
//	mux := http.NewServeMux()
//	mux.Handle("/mcp", streaminghttp.NewHandler(dispatcher))
//	http.ListenAndServe(":8080", mux)
package streaminghttp
