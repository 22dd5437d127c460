package cmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ggoodman/mcp-wire/journal"
	"github.com/ggoodman/mcp-wire/jsonrpc"
)

func newClassifyCommand(cfg *Config) *cobra.Command {
	var canonical bool
	c := &cobra.Command{
		Use:   "classify [file]",
		Short: "classify newline-delimited JSON-RPC documents from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			l, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			j, err := cfg.OpenPersistentJournal(ctx)
			if err != nil {
				return err
			}
			if j != nil {
				defer j.Close()
			}

			return classify(ctx, in, cmd.OutOrStdout(), classifyOptions{
				canonical: canonical,
				maxBytes:  int(cfg.MaxMessageBytes),
				journal:   j,
				log:       l,
			})
		},
	}
	c.Flags().BoolVar(&canonical, "canonical", false, "print the canonical re-encoding instead of a summary")
	return c
}

type classifyOptions struct {
	canonical bool
	maxBytes  int
	journal   journal.Journal
	log       *slog.Logger
}

// classify writes one line per non-blank input line. It fails when any
// document fails to classify.
func classify(ctx context.Context, in io.Reader, out io.Writer, opts classifyOptions) error {
	codec := jsonrpc.NewCodec(jsonrpc.WithLogger(opts.log))
	sc := bufio.NewScanner(in)
	if opts.maxBytes > 0 {
		sc.Buffer(make([]byte, 0, 64*1024), opts.maxBytes)
	}

	var total, failed int
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		total++

		msg, err := codec.DecodeBytes(ctx, line)
		if err != nil {
			failed++
			kind, _ := jsonrpc.KindOf(err)
			fmt.Fprintf(out, "error %s: %v\n", kind, err)
			continue
		}

		if opts.canonical {
			b, err := codec.Encode(ctx, msg)
			if err != nil {
				failed++
				fmt.Fprintf(out, "error %s: %v\n", jsonrpc.KindEncoding, err)
				continue
			}
			fmt.Fprintf(out, "%s\n", b)
		} else {
			fmt.Fprintln(out, summarize(msg))
		}

		if opts.journal != nil {
			e, err := journal.NewEntry(msg, line)
			if err == nil {
				_, err = opts.journal.Append(ctx, e)
			}
			if err != nil {
				return fmt.Errorf("journal append: %w", err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to classify", failed, total)
	}
	return nil
}

// summarize renders "variant id method" with "-" for absent members.
func summarize(msg jsonrpc.Message) string {
	id, method := "-", "-"
	if v, ok := jsonrpc.IDOf(msg); ok {
		b, _ := v.MarshalJSON()
		id = string(b)
	}
	if m, ok := jsonrpc.MethodOf(msg); ok {
		method = m
	}
	return fmt.Sprintf("%s %s %s", msg.Variant(), id, method)
}
