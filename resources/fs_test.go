package resources

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ggoodman/mcp-wire/jsonrpc"
	"github.com/ggoodman/mcp-wire/mcp"
)

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func mustFS(t *testing.T, dir string, opts ...Option) *FS {
	t.Helper()
	f, err := NewFS(dir, opts...)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return f
}

func TestFS_ListAndRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	writeFile(t, dir, "docs/b.json", `{"b":true}`)
	writeFile(t, dir, "blob.bin", string([]byte{0xff, 0xfe, 0x00}))

	f := mustFS(t, dir, WithBaseURI("fs://test"))

	list, err := f.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 resources, got %+v", list)
	}
	if list[0].URI != "fs://test/a.txt" || list[1].URI != "fs://test/blob.bin" || list[2].URI != "fs://test/docs/b.json" {
		t.Fatalf("unexpected order: %+v", list)
	}

	c, err := f.Read(ctx, "fs://test/a.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c.URI != "fs://test/a.txt" || c.TextValue() != "hello" || c.IsBlob() {
		t.Fatalf("unexpected text contents: %+v", c)
	}
	if c.MimeType == "" {
		t.Fatal("expected a mime type")
	}

	c, err = f.Read(ctx, "fs://test/docs/b.json")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c.MimeType != "application/json" {
		t.Fatalf("mime = %q", c.MimeType)
	}

	c, err = f.Read(ctx, "fs://test/blob.bin")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !c.IsBlob() || c.MimeType != mcp.DefaultMimeType {
		t.Fatalf("expected octet-stream blob, got %+v", c)
	}
	b, err := c.Bytes()
	if err != nil || len(b) != 3 || b[0] != 0xff {
		t.Fatalf("blob round trip: %v %v", b, err)
	}
}

func TestFS_ReadEmptyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "empty.txt", "")
	f := mustFS(t, dir, WithBaseURI("fs://test"))

	c, err := f.Read(context.Background(), "fs://test/empty.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if c.Text == nil || *c.Text != "" || c.IsBlob() {
		t.Fatalf("expected empty text contents, got %+v", c)
	}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	var wire map[string]any
	if err := json.Unmarshal(b, &wire); err != nil {
		t.Fatal(err)
	}
	if text, ok := wire["text"]; !ok || text != "" {
		t.Fatalf("wire form must carry an empty text member: %s", b)
	}
	if _, ok := wire["blob"]; ok {
		t.Fatalf("unexpected blob member: %s", b)
	}
}

func TestFS_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	writeFile(t, dir, "sub/c.txt", "c")
	f := mustFS(t, dir, WithBaseURI("fs://test"))

	for _, uri := range []string{
		"fs://test/missing.txt",
		"fs://test/sub",
		"fs://test/../a.txt",
		"fs://test/%2e%2e/a.txt",
		"fs://other/a.txt",
		"fs://test/",
		"fs://test/%zz",
	} {
		if _, err := f.Read(ctx, uri); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", uri, err)
		}
	}
}

func TestFS_SymlinkEscapeDenied(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	outside := t.TempDir()
	secret := writeFile(t, outside, "secret.txt", "nope")
	dir := t.TempDir()
	writeFile(t, dir, "inside.txt", "ok")
	if err := os.Symlink(secret, filepath.Join(dir, "escape.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "inside.txt"), filepath.Join(dir, "alias.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	f := mustFS(t, dir, WithBaseURI("fs://root"))
	if _, err := f.Read(ctx, "fs://root/escape.txt"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for escaping link, got %v", err)
	}
	c, err := f.Read(ctx, "fs://root/alias.txt")
	if err != nil || c.TextValue() != "ok" {
		t.Fatalf("link inside root should resolve: %+v %v", c, err)
	}
}

func TestFS_URIFor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	f := mustFS(t, dir, WithBaseURI("fs://w/"))

	if uri, ok := f.URIFor("a b/c.txt"); !ok || uri != "fs://w/a%20b/c.txt" {
		t.Fatalf("relative: %q %v", uri, ok)
	}
	if uri, ok := f.URIFor(filepath.Join(f.Root(), "x.md")); !ok || uri != "fs://w/x.md" {
		t.Fatalf("absolute: %q %v", uri, ok)
	}
	if _, ok := f.URIFor("../x.md"); ok {
		t.Fatal("parent path must not map")
	}
	if _, ok := f.URIFor(f.Root()); ok {
		t.Fatal("the root itself is not a resource")
	}
}

func TestFS_DefaultBaseURI(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello")
	f := mustFS(t, dir)

	uri, ok := f.URIFor("a.txt")
	if !ok {
		t.Fatal("URIFor failed")
	}
	want := "file://" + filepath.ToSlash(f.Root()) + "/a.txt"
	if uri != want {
		t.Fatalf("uri = %q, want %q", uri, want)
	}
	if c, err := f.Read(context.Background(), uri); err != nil || c.TextValue() != "hello" {
		t.Fatalf("Read: %+v %v", c, err)
	}
}

func TestNewFS_RejectsFiles(t *testing.T) {
	t.Parallel()
	p := writeFile(t, t.TempDir(), "a.txt", "x")
	if _, err := NewFS(p); err == nil {
		t.Fatal("expected error for a file root")
	}
	if _, err := NewFS(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for a missing root")
	}
}

func TestFS_Watch(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "v1")
	f := mustFS(t, dir, WithBaseURI("fs://w"), WithUpdateDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- f.Watch(ctx, func(ctx context.Context, n *jsonrpc.Notification) error {
			if n.Method != string(mcp.ResourcesUpdatedNotificationMethod) {
				t.Errorf("unexpected method %s", n.Method)
			}
			var p mcp.ResourceUpdatedNotification
			if err := json.Unmarshal(n.Params, &p); err != nil {
				t.Errorf("params: %v", err)
			}
			select {
			case got <- p.URI:
			default:
			}
			return nil
		})
	}()

	// The watcher registers asynchronously; keep writing until it reports.
	expect := func(uri string, write func()) {
		t.Helper()
		deadline := time.After(5 * time.Second)
		tick := time.NewTicker(100 * time.Millisecond)
		defer tick.Stop()
		write()
		for {
			select {
			case u := <-got:
				if u == uri {
					return
				}
			case <-tick.C:
				write()
			case <-deadline:
				t.Fatalf("no update for %s", uri)
			}
		}
	}

	expect("fs://w/a.txt", func() { writeFile(t, dir, "a.txt", "v2") })
	expect("fs://w/new/b.txt", func() { writeFile(t, dir, "new/b.txt", "b") })

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop")
	}
}
