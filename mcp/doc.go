// Package mcp contains the Model Context Protocol data types carried inside
// JSON-RPC payloads by this module: resource contents, the resource read and
// update payloads, and the method names the transports and tools dispatch on.
//
// The package is free of transport and framing logic. The jsonrpc package
// classifies envelopes; the types here describe what travels in params and
// result.
//
// # Resource contents
//
// ResourceContents carries either a text or a base64 blob representation.
// ContentsFor picks one based on whether the payload is valid UTF-8:
//
//	c := mcp.ContentsFor("fs://notes.txt", "text/plain", data)
//	res := mcp.ReadResourceResult{Contents: []mcp.ResourceContents{c}}
//
// Both fields are serialized as given; mutual exclusivity is a convention
// enforced by producers, not by this package.
package mcp
