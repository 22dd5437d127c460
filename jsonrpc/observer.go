package jsonrpc

import (
	"context"
	"log/slog"
)

// Observer receives every classification decision and every failure of a
// Codec. Implementations must be safe for concurrent use.
type Observer interface {
	Classified(ctx context.Context, v Variant, raw string)
	Rejected(ctx context.Context, kind ErrorKind, raw string, err error)
}

type nopObserver struct{}

func (nopObserver) Classified(context.Context, Variant, string)      {}
func (nopObserver) Rejected(context.Context, ErrorKind, string, error) {}

// LogObserver reports to a slog.Logger: classifications at debug level,
// failures at warn level.
type LogObserver struct {
	log *slog.Logger
}

// NewLogObserver returns an Observer logging to l.
func NewLogObserver(l *slog.Logger) *LogObserver {
	return &LogObserver{log: l}
}

func (o *LogObserver) Classified(ctx context.Context, v Variant, raw string) {
	o.log.DebugContext(ctx, "jsonrpc.message.classified",
		slog.String("variant", v.String()),
		slog.String("raw", raw),
	)
}

func (o *LogObserver) Rejected(ctx context.Context, kind ErrorKind, raw string, err error) {
	o.log.WarnContext(ctx, "jsonrpc.message.rejected",
		slog.String("kind", kind.String()),
		slog.String("raw", raw),
		slog.String("err", err.Error()),
	)
}

// ObserverFuncs adapts plain functions to an Observer. Nil fields are
// skipped.
type ObserverFuncs struct {
	OnClassified func(ctx context.Context, v Variant, raw string)
	OnRejected   func(ctx context.Context, kind ErrorKind, raw string, err error)
}

func (f ObserverFuncs) Classified(ctx context.Context, v Variant, raw string) {
	if f.OnClassified != nil {
		f.OnClassified(ctx, v, raw)
	}
}

func (f ObserverFuncs) Rejected(ctx context.Context, kind ErrorKind, raw string, err error) {
	if f.OnRejected != nil {
		f.OnRejected(ctx, kind, raw, err)
	}
}
