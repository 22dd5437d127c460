// Package stdio implements a single-connection JSON-RPC transport over
// newline-delimited streams, typically stdin/stdout of a subprocess.
//
// Characteristics
//
//	Connection model : 1 process <-> 1 peer
//	Framing          : one JSON document per line, blank lines skipped
//	Batches          : rejected with an invalid-request error
//	Replies          : requests only; notifications and responses get none
//
// Every line is classified by a jsonrpc.Codec. Requests and notifications
// are handed to a Dispatcher; responses are routed to calls issued with
// Handler.Call. Lines that fail classification are answered with a JSON-RPC
// error response whose id is recovered with jsonrpc.ProbeID when possible.
//
// Example:
//
//	h := stdio.NewHandler(jsonrpc.DispatcherFunc(func(ctx context.Context, msg jsonrpc.Message) (jsonrpc.Message, error) {
//	    req, ok := msg.(*jsonrpc.Request)
//	    if !ok {
//	        return nil, nil
//	    }
//	    resp, err := jsonrpc.NewResultResponse(req.ID, struct{}{})
//	    if err != nil {
//	        return nil, err
//	    }
//	    return resp, nil
//	}))
//	if err := h.Serve(context.Background()); err != nil { log.Fatal(err) }
package stdio
