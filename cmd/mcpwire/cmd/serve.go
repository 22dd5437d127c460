package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ggoodman/mcp-wire/journal"
	"github.com/ggoodman/mcp-wire/jsonrpc"
	"github.com/ggoodman/mcp-wire/resources"
	"github.com/ggoodman/mcp-wire/stdio"
	"github.com/ggoodman/mcp-wire/streaminghttp"
)

func newServeCommand(cfg *Config) *cobra.Command {
	var (
		root     string
		useStdio bool
	)
	c := &cobra.Command{
		Use:   "serve",
		Short: "serve JSON-RPC over HTTP or stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			l, err := cfg.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			srv := &server{log: l}
			if root != "" {
				srv.fs, err = resources.NewFS(root, resources.WithLogger(l))
				if err != nil {
					return err
				}
			}

			var d jsonrpc.Dispatcher = srv
			j, err := cfg.OpenJournal(ctx)
			if err != nil {
				return err
			}
			if j != nil {
				defer j.Close()
				d = journal.Record(j, srv, l)
			}

			if useStdio {
				return serveStdio(ctx, cmd, cfg, d, srv.fs, l)
			}
			return serveHTTP(ctx, cfg, d, srv.fs, l)
		},
	}
	c.Flags().StringVar(&root, "root", "", "directory served through resources/list and resources/read")
	c.Flags().StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "HTTP listen address")
	c.Flags().BoolVar(&useStdio, "stdio", false, "serve over stdin/stdout instead of HTTP")
	return c
}

func serveStdio(ctx context.Context, cmd *cobra.Command, cfg *Config, d jsonrpc.Dispatcher, fs *resources.FS, l *slog.Logger) error {
	h := stdio.NewHandler(d,
		stdio.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()),
		stdio.WithLogger(l),
		stdio.WithMaxMessageBytes(int(cfg.MaxMessageBytes)),
	)
	if fs != nil {
		go watch(ctx, fs, l, func(ctx context.Context, n *jsonrpc.Notification) error {
			return h.Notify(ctx, n.Method, n.Params)
		})
	}
	err := h.Serve(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func serveHTTP(ctx context.Context, cfg *Config, d jsonrpc.Dispatcher, fs *resources.FS, l *slog.Logger) error {
	if fs != nil {
		// Plain POST has no channel back to the client, so updates are
		// dispatched locally where the journal picks them up.
		go watch(ctx, fs, l, func(ctx context.Context, n *jsonrpc.Notification) error {
			_, err := d.Dispatch(ctx, n)
			return err
		})
	}

	hs := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           streaminghttp.NewHandler(d, streaminghttp.WithLogger(l), streaminghttp.WithMaxMessageBytes(cfg.MaxMessageBytes)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		l.InfoContext(ctx, "http.listen", slog.String("addr", cfg.HTTPAddr))
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func watch(ctx context.Context, fs *resources.FS, l *slog.Logger, emit resources.EmitFunc) {
	if err := fs.Watch(ctx, emit); err != nil && !errors.Is(err, context.Canceled) {
		l.ErrorContext(ctx, "resources.watch.fail", slog.String("err", err.Error()))
	}
}
