package stdio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ggoodman/mcp-wire/jsonrpc"
)

// Writer encodes messages one per line. It is safe for concurrent use.
type Writer struct {
	mu    sync.Mutex
	w     *bufio.Writer
	codec *jsonrpc.Codec
}

// NewWriter returns a Writer encoding with codec, or with a default codec
// when nil.
func NewWriter(w io.Writer, codec *jsonrpc.Codec) *Writer {
	if codec == nil {
		codec = jsonrpc.NewCodec()
	}
	return &Writer{w: bufio.NewWriter(w), codec: codec}
}

// Send encodes msg and writes it followed by a newline.
func (w *Writer) Send(ctx context.Context, msg jsonrpc.Message) error {
	b, err := w.codec.Encode(ctx, msg)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(b); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush message: %w", err)
	}
	return nil
}
