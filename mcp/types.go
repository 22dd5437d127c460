package mcp

import (
	"encoding/base64"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Resources
// Resource represents an addressable resource.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitzero"`
	MimeType    string `json:"mimeType,omitzero"`
}

// ResourceContents is the value of a resource read. Text and Blob are
// serialized as given; callers populate exactly one by convention. A nil
// pointer is absent on the wire, an empty string is not.
type ResourceContents struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitzero"`
	// For TextResourceContents
	Text *string `json:"text,omitempty"`
	// For BlobResourceContents, base64 (standard encoding).
	Blob *string `json:"blob,omitempty"`
}

// DefaultMimeType is used when the content type of a payload is unknown.
const DefaultMimeType = "application/octet-stream"

// ErrMissingURI is returned by Validate for contents without a URI.
var ErrMissingURI = errors.New("mcp: resource contents require a uri")

// NewTextContents returns textual contents.
func NewTextContents(uri, mimeType, text string) ResourceContents {
	return ResourceContents{URI: uri, MimeType: mimeType, Text: &text}
}

// NewBlobContents returns binary contents, base64 encoding data.
func NewBlobContents(uri, mimeType string, data []byte) ResourceContents {
	blob := base64.StdEncoding.EncodeToString(data)
	return ResourceContents{URI: uri, MimeType: mimeType, Blob: &blob}
}

// ContentsFor picks the text representation for valid UTF-8 payloads and the
// blob representation otherwise. An empty mimeType becomes DefaultMimeType.
func ContentsFor(uri, mimeType string, data []byte) ResourceContents {
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	if utf8.Valid(data) {
		return NewTextContents(uri, mimeType, string(data))
	}
	return NewBlobContents(uri, mimeType, data)
}

// IsBlob reports whether the contents use the blob representation.
func (c ResourceContents) IsBlob() bool { return c.Blob != nil }

// TextValue returns Text, or "" when it is absent.
func (c ResourceContents) TextValue() string {
	if c.Text == nil {
		return ""
	}
	return *c.Text
}

// Bytes returns the payload, decoding Blob when set.
func (c ResourceContents) Bytes() ([]byte, error) {
	if c.Blob != nil {
		b, err := base64.StdEncoding.DecodeString(*c.Blob)
		if err != nil {
			return nil, fmt.Errorf("decode blob for %s: %w", c.URI, err)
		}
		return b, nil
	}
	return []byte(c.TextValue()), nil
}

// Validate checks the only structural requirement: a non-empty URI.
func (c ResourceContents) Validate() error {
	if c.URI == "" {
		return ErrMissingURI
	}
	return nil
}

// ImplementationInfo describes the implementation name and version.
type ImplementationInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Title   string `json:"title,omitzero"`
}

// LatestProtocolVersion is the latest version of the protocol.
const LatestProtocolVersion = "2025-06-18"
