// Package journal records classified JSON-RPC messages in an ordered,
// append-only log that can be read back from any position.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/ggoodman/mcp-wire/jsonrpc"
)

// ErrClosed is returned by operations on a closed journal.
var ErrClosed = errors.New("journal closed")

// Journal is an append-only log of messages. Implementations must be safe
// for concurrent use.
type Journal interface {
	// Append stores e and returns the id assigned to it. Ids increase
	// monotonically in append order. e.ID is ignored.
	Append(ctx context.Context, e Entry) (string, error)

	// Range returns up to limit entries appended after the entry with id
	// after, oldest first. An empty after starts from the beginning and a
	// limit <= 0 means no limit.
	Range(ctx context.Context, after string, limit int) ([]Entry, error)

	// Close releases resources held by the journal.
	Close() error
}

// Entry is one journaled message.
type Entry struct {
	ID      string          `json:"id"`
	Variant jsonrpc.Variant `json:"variant"`
	// Method is empty for responses.
	Method string `json:"method,omitzero"`
	// RequestID is the null id for notifications.
	RequestID jsonrpc.RequestID `json:"requestId"`
	Raw       json.RawMessage   `json:"raw"`
	At        time.Time         `json:"at"`
}

// NewEntry describes msg. When raw is empty the canonical encoding of msg is
// stored instead.
func NewEntry(msg jsonrpc.Message, raw []byte) (Entry, error) {
	if len(raw) == 0 {
		enc, err := jsonrpc.Encode(msg)
		if err != nil {
			return Entry{}, err
		}
		raw = enc
	}
	e := Entry{
		Variant: msg.Variant(),
		Raw:     append(json.RawMessage(nil), raw...),
		At:      time.Now().UTC(),
	}
	if id, ok := jsonrpc.IDOf(msg); ok {
		e.RequestID = id
	}
	if method, ok := jsonrpc.MethodOf(msg); ok {
		e.Method = method
	}
	return e, nil
}

// Record returns a dispatcher that appends every message to j before handing
// it to next. The text stored by jsonrpc.WithRawDocument is journaled when
// present, the canonical encoding otherwise. Append failures are logged and
// do not affect dispatch.
func Record(j Journal, next jsonrpc.Dispatcher, l *slog.Logger) jsonrpc.Dispatcher {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	return jsonrpc.DispatcherFunc(func(ctx context.Context, msg jsonrpc.Message) (jsonrpc.Message, error) {
		raw, _ := jsonrpc.RawDocumentFrom(ctx)
		if e, err := NewEntry(msg, raw); err != nil {
			l.WarnContext(ctx, "journal.entry.fail", slog.String("err", err.Error()))
		} else if id, err := j.Append(ctx, e); err != nil {
			l.ErrorContext(ctx, "journal.append.fail", slog.String("err", err.Error()))
		} else {
			l.DebugContext(ctx, "journal.append.ok", slog.String("entry_id", id))
		}
		return next.Dispatch(ctx, msg)
	})
}
