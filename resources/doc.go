// Package resources serves files under a directory as MCP resource contents
// and reports changes to them as resources/updated notifications.
//
// Reads are confined to the root: symlinks are resolved and anything that
// lands outside the root is reported as ErrNotFound. Valid UTF-8 files are
// returned as text contents, everything else as base64 blobs, and the mime
// type is derived from the file extension.
package resources
