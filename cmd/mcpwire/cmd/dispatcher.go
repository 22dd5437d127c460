package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/ggoodman/mcp-wire/jsonrpc"
	"github.com/ggoodman/mcp-wire/mcp"
	"github.com/ggoodman/mcp-wire/resources"
)

// server answers ping and, when a root is configured, resources/list and
// resources/read. Everything else is method-not-found.
type server struct {
	fs  *resources.FS
	log *slog.Logger
}

func (s *server) Dispatch(ctx context.Context, msg jsonrpc.Message) (jsonrpc.Message, error) {
	req, ok := msg.(*jsonrpc.Request)
	if !ok {
		s.log.DebugContext(ctx, "message.ignored", slog.String("variant", msg.Variant().String()))
		return nil, nil
	}

	switch mcp.Method(req.Method) {
	case mcp.PingMethod:
		return respond(req.ID, mcp.EmptyResult{})
	case mcp.ResourcesListMethod:
		if s.fs == nil {
			break
		}
		list, err := s.fs.List(ctx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []mcp.Resource{}
		}
		return respond(req.ID, mcp.ListResourcesResult{Resources: list})
	case mcp.ResourcesReadMethod:
		if s.fs == nil {
			break
		}
		var p mcp.ReadResourceRequest
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &p); err != nil {
				return nil, &jsonrpc.Error{Code: jsonrpc.ErrorCodeInvalidParams, Message: "invalid params: " + err.Error()}
			}
		}
		if p.URI == "" {
			return nil, &jsonrpc.Error{Code: jsonrpc.ErrorCodeInvalidParams, Message: "uri is required"}
		}
		contents, err := s.fs.Read(ctx, p.URI)
		if errors.Is(err, resources.ErrNotFound) {
			return nil, &jsonrpc.Error{Code: mcp.ErrorCodeResourceNotFound, Message: "resource not found: " + p.URI}
		}
		if err != nil {
			return nil, err
		}
		return respond(req.ID, mcp.ReadResourceResult{Contents: []mcp.ResourceContents{contents}})
	}
	return nil, &jsonrpc.Error{Code: jsonrpc.ErrorCodeMethodNotFound, Message: "method not found: " + req.Method}
}

func respond(id jsonrpc.RequestID, result any) (jsonrpc.Message, error) {
	resp, err := jsonrpc.NewResultResponse(id, result)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
