package resources

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ggoodman/mcp-wire/jsonrpc"
	"github.com/ggoodman/mcp-wire/mcp"
)

// EmitFunc delivers a notification produced by Watch.
type EmitFunc func(ctx context.Context, n *jsonrpc.Notification) error

// Watch observes the tree under the root and emits a resources/updated
// notification for every file that is written or created. Directories
// created while watching are added to the watch. Watch blocks until ctx is
// done and then returns ctx.Err().
func (f *FS) Watch(ctx context.Context, emit EmitFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer func() {
		// Best-effort watcher close; no actionable error handling path.
		_ = w.Close()
	}()

	if err := f.addDirs(w, f.root); err != nil {
		return fmt.Errorf("watch %s: %w", f.root, err)
	}
	f.log.DebugContext(ctx, "resources.watch.start", slog.String("root", f.root))

	var (
		mu   sync.Mutex
		debs = make(map[string]*debouncer)
	)
	defer func() {
		mu.Lock()
		for _, d := range debs {
			d.stop()
		}
		mu.Unlock()
	}()

	send := func(uri string) {
		if ctx.Err() != nil {
			return
		}
		n, err := jsonrpc.NewNotification(string(mcp.ResourcesUpdatedNotificationMethod), mcp.ResourceUpdatedNotification{URI: uri})
		if err != nil {
			f.log.ErrorContext(ctx, "resources.notification.encode.fail", slog.String("err", err.Error()))
			return
		}
		if err := emit(ctx, n); err != nil {
			f.log.WarnContext(ctx, "resources.notification.emit.fail", slog.String("uri", uri), slog.String("err", err.Error()))
			return
		}
		f.log.DebugContext(ctx, "resources.notification.emit.ok", slog.String("uri", uri))
	}

	markUpdated := func(uri string) {
		mu.Lock()
		defer mu.Unlock()
		d, ok := debs[uri]
		if !ok {
			d = &debouncer{interval: f.updateDebounce, fire: func() { send(uri) }}
			debs[uri] = d
		}
		d.trigger()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			st, err := os.Stat(ev.Name)
			if err != nil {
				continue
			}
			if st.IsDir() {
				if ev.Has(fsnotify.Create) {
					if err := f.addDirs(w, ev.Name); err != nil {
						f.log.WarnContext(ctx, "resources.watch.add.fail", slog.String("path", ev.Name), slog.String("err", err.Error()))
					}
				}
				continue
			}
			if !st.Mode().IsRegular() {
				continue
			}
			uri, ok := f.URIFor(ev.Name)
			if !ok {
				continue
			}
			markUpdated(uri)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.log.WarnContext(ctx, "resources.watch.fail", slog.String("err", err.Error()))
		}
	}
}

// addDirs recursively adds dir and every directory below it.
func (f *FS) addDirs(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return w.Add(p)
	})
}

type debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	pending  bool
	stopped  bool
	interval time.Duration
	fire     func()
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.interval <= 0 {
		go d.fire()
		return
	}
	if d.pending {
		return
	}
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.interval, d.flush)
	} else {
		d.timer.Reset(d.interval)
	}
}

func (d *debouncer) flush() {
	d.mu.Lock()
	d.pending = false
	stopped := d.stopped
	d.mu.Unlock()
	if !stopped {
		d.fire()
	}
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
}
