package jsonrpc

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema types mirror the wire shapes with annotations for reflection.
type (
	requestSchema struct {
		JSONRPCVersion string          `json:"jsonrpc" jsonschema:"enum=2.0"`
		ID             RequestID       `json:"id"`
		Method         string          `json:"method"`
		Params         json.RawMessage `json:"params,omitempty"`
	}
	notificationSchema struct {
		JSONRPCVersion string          `json:"jsonrpc" jsonschema:"enum=2.0"`
		Method         string          `json:"method"`
		Params         json.RawMessage `json:"params,omitempty"`
	}
	responseSchema struct {
		JSONRPCVersion string          `json:"jsonrpc" jsonschema:"enum=2.0"`
		ID             RequestID       `json:"id"`
		Result         json.RawMessage `json:"result"`
	}
	errorSchema struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data,omitempty"`
	}
	errorResponseSchema struct {
		JSONRPCVersion string      `json:"jsonrpc" jsonschema:"enum=2.0"`
		ID             RequestID   `json:"id"`
		Error          errorSchema `json:"error"`
	}
)

// Schema returns the JSON Schema of v's canonical wire shape, or nil for
// VariantUnknown. Unknown members are rejected.
func Schema(v Variant) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}

	var s *jsonschema.Schema
	switch v {
	case VariantRequest:
		s = r.Reflect(new(requestSchema))
		// Requests may not use the null id.
		if p, ok := s.Properties.Get("id"); ok && p != nil {
			p.OneOf = []*jsonschema.Schema{{Type: "string"}, {Type: "number"}}
		}
	case VariantNotification:
		s = r.Reflect(new(notificationSchema))
	case VariantResponse:
		s = r.Reflect(new(responseSchema))
	case VariantErrorResponse:
		s = r.Reflect(new(errorResponseSchema))
	default:
		return nil
	}
	s.Title = "JSON-RPC " + v.String()
	return s
}

// Schemas returns the schema of every variant keyed by Variant.String().
func Schemas() map[string]*jsonschema.Schema {
	out := make(map[string]*jsonschema.Schema, 4)
	for _, v := range Variants() {
		out[v.String()] = Schema(v)
	}
	return out
}
