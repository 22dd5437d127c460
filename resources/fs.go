package resources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ggoodman/mcp-wire/mcp"
)

// ErrNotFound is returned for URIs that do not name a regular file under the
// root.
var ErrNotFound = errors.New("resource not found")

// FS provides read access to a directory tree addressed by URI.
type FS struct {
	root    string // absolute, symlink-evaluated
	baseURI string
	log     *slog.Logger

	updateDebounce time.Duration
}

// Option configures an FS.
type Option func(*FS)

// WithBaseURI sets the URI prefix, e.g. "fs://workspace". Defaults to "file://"
// followed by the root path.
func WithBaseURI(base string) Option {
	return func(f *FS) { f.baseURI = strings.TrimRight(base, "/") }
}

// WithLogger sets the logger used by Watch.
func WithLogger(l *slog.Logger) Option {
	return func(f *FS) {
		if l != nil {
			f.log = l
		}
	}
}

// WithUpdateDebounce configures the per-URI update debounce interval used by
// Watch. Set to 0 to disable debouncing.
func WithUpdateDebounce(d time.Duration) Option {
	return func(f *FS) { f.updateDebounce = d }
}

// NewFS returns an FS rooted at root, which must be an existing directory.
func NewFS(root string, opts ...Option) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	st, err := os.Stat(real)
	if err != nil {
		return nil, fmt.Errorf("stat root %q: %w", root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("root %q is not a directory", root)
	}

	f := &FS{
		root:           real,
		log:            slog.New(slog.DiscardHandler),
		updateDebounce: 250 * time.Millisecond,
	}
	f.baseURI = "file://" + strings.TrimRight(filepath.ToSlash(real), "/")
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Root returns the resolved root directory.
func (f *FS) Root() string { return f.root }

// Read returns the contents of the file uri names.
func (f *FS) Read(ctx context.Context, uri string) (mcp.ResourceContents, error) {
	if err := ctx.Err(); err != nil {
		return mcp.ResourceContents{}, err
	}
	real, ok := f.resolve(uri)
	if !ok {
		return mcp.ResourceContents{}, fmt.Errorf("%w: %s", ErrNotFound, uri)
	}
	data, err := os.ReadFile(real)
	if err != nil {
		return mcp.ResourceContents{}, fmt.Errorf("read %s: %w", uri, err)
	}
	return mcp.ContentsFor(uri, mimeTypeOf(real), data), nil
}

// List returns every regular file under the root, sorted by URI. Symlinks
// are skipped.
func (f *FS) List(ctx context.Context) ([]mcp.Resource, error) {
	var out []mcp.Resource
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // best-effort listing
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		uri, ok := f.URIFor(p)
		if !ok {
			return nil
		}
		out = append(out, mcp.Resource{URI: uri, Name: d.Name(), MimeType: mimeTypeOf(p)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URI < out[j].URI })
	return out, nil
}

// URIFor maps a path to its URI. Relative paths are taken relative to the
// root. It reports false for paths outside the root.
func (f *FS) URIFor(p string) (string, bool) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(f.root, p)
	}
	if !within(p, f.root) {
		return "", false
	}
	rel, err := filepath.Rel(f.root, p)
	if err != nil || rel == "." {
		return "", false
	}
	segs := strings.Split(filepath.ToSlash(rel), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return f.baseURI + "/" + strings.Join(segs, "/"), true
}

// resolve maps uri to a symlink-resolved regular file under the root.
func (f *FS) resolve(uri string) (string, bool) {
	rel, ok := f.uriToRel(uri)
	if !ok {
		return "", false
	}
	real, err := filepath.EvalSymlinks(filepath.Join(f.root, filepath.FromSlash(rel)))
	if err != nil || !within(real, f.root) {
		return "", false
	}
	st, err := os.Stat(real)
	if err != nil || !st.Mode().IsRegular() {
		return "", false
	}
	return real, true
}

func (f *FS) uriToRel(uri string) (string, bool) {
	base := f.baseURI + "/"
	if !strings.HasPrefix(uri, base) {
		return "", false
	}
	segs := strings.Split(strings.TrimPrefix(uri, base), "/")
	for i, s := range segs {
		dec, err := url.PathUnescape(s)
		if err != nil {
			return "", false
		}
		segs[i] = dec
	}
	rel := path.Clean(strings.Join(segs, "/"))
	if !validFSPath(rel) {
		return "", false
	}
	return rel, true
}

func mimeTypeOf(p string) string {
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
}

func validFSPath(p string) bool {
	// fs.ValidPath requires clean, no leading slash, and no ".." segments.
	if p == "." || !fs.ValidPath(p) {
		return false
	}
	// Reject Windows volume roots or schemes smuggled into a segment.
	return !strings.Contains(p, ":")
}

// within returns true if target is the same as root or a descendant of root.
func within(target, root string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
