// Package journaltest holds the behavior every journal.Journal must share.
package journaltest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ggoodman/mcp-wire/journal"
	"github.com/ggoodman/mcp-wire/jsonrpc"
)

// Factory creates an empty journal for one test. The suite closes it.
type Factory func(t *testing.T) journal.Journal

// Run runs the complete journal test suite against the provided factory.
func Run(t *testing.T, factory Factory) {
	t.Run("AppendAndRangeFromBeginning", func(t *testing.T) {
		testAppendAndRangeFromBeginning(t, factory)
	})
	t.Run("RangeAfterIsExclusive", func(t *testing.T) {
		testRangeAfterIsExclusive(t, factory)
	})
	t.Run("RangeLimit", func(t *testing.T) {
		testRangeLimit(t, factory)
	})
	t.Run("EntryFieldsSurvive", func(t *testing.T) {
		testEntryFieldsSurvive(t, factory)
	})
	t.Run("ConcurrentAppendsGetDistinctIDs", func(t *testing.T) {
		testConcurrentAppends(t, factory)
	})
	t.Run("EmptyRange", func(t *testing.T) {
		testEmptyRange(t, factory)
	})
}

func open(t *testing.T, factory Factory) journal.Journal {
	t.Helper()
	j := factory(t)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func notification(t *testing.T, i int) journal.Entry {
	t.Helper()
	n, err := jsonrpc.NewNotification("test/n", map[string]int{"i": i})
	if err != nil {
		t.Fatal(err)
	}
	e, err := journal.NewEntry(n, nil)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func appendN(t *testing.T, ctx context.Context, j journal.Journal, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		id, err := j.Append(ctx, notification(t, i))
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		ids = append(ids, id)
	}
	return ids
}

func testAppendAndRangeFromBeginning(t *testing.T, factory Factory) {
	j := open(t, factory)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ids := appendN(t, ctx, j, 3)
	got, err := j.Range(ctx, "", 0)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, e := range got {
		if e.ID != ids[i] {
			t.Fatalf("entry %d has id %s, want %s", i, e.ID, ids[i])
		}
		var p struct{ I int }
		msg, err := jsonrpc.NewCodec().DecodeBytes(ctx, e.Raw)
		if err != nil {
			t.Fatalf("entry %d raw does not classify: %v", i, err)
		}
		if err := json.Unmarshal(msg.(*jsonrpc.Notification).Params, &p); err != nil || p.I != i {
			t.Fatalf("entry %d out of order: %s", i, e.Raw)
		}
	}
}

func testRangeAfterIsExclusive(t *testing.T, factory Factory) {
	j := open(t, factory)
	ctx := context.Background()

	ids := appendN(t, ctx, j, 4)
	got, err := j.Range(ctx, ids[1], 0)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 || got[0].ID != ids[2] || got[1].ID != ids[3] {
		t.Fatalf("unexpected entries after %s: %+v", ids[1], got)
	}

	got, err = j.Range(ctx, ids[3], 0)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected nothing after the last entry, got %d", len(got))
	}
}

func testRangeLimit(t *testing.T, factory Factory) {
	j := open(t, factory)
	ctx := context.Background()

	ids := appendN(t, ctx, j, 5)
	got, err := j.Range(ctx, "", 2)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 || got[0].ID != ids[0] || got[1].ID != ids[1] {
		t.Fatalf("unexpected first page: %+v", got)
	}
	got, err = j.Range(ctx, got[1].ID, 2)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 || got[0].ID != ids[2] || got[1].ID != ids[3] {
		t.Fatalf("unexpected second page: %+v", got)
	}
}

func testEntryFieldsSurvive(t *testing.T, factory Factory) {
	j := open(t, factory)
	ctx := context.Background()

	req, err := jsonrpc.NewRequest(jsonrpc.StringID("abc"), "resources/read", map[string]string{"uri": "fs://x"})
	if err != nil {
		t.Fatal(err)
	}
	resp := &jsonrpc.ErrorResponse{ID: jsonrpc.NumberID(9), Error: jsonrpc.Error{Code: -32601, Message: "nope"}}

	for _, msg := range []jsonrpc.Message{req, resp} {
		e, err := journal.NewEntry(msg, nil)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := j.Append(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := j.Range(ctx, "", 0)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].Variant != jsonrpc.VariantRequest || got[0].Method != "resources/read" || !got[0].RequestID.Equal(jsonrpc.StringID("abc")) {
		t.Fatalf("request entry: %+v", got[0])
	}
	if got[1].Variant != jsonrpc.VariantErrorResponse || got[1].Method != "" || !got[1].RequestID.Equal(jsonrpc.NumberID(9)) {
		t.Fatalf("error response entry: %+v", got[1])
	}
	if got[0].At.IsZero() {
		t.Fatal("timestamp lost")
	}
}

func testConcurrentAppends(t *testing.T, factory Factory) {
	j := open(t, factory)
	ctx := context.Background()

	const n = 20
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[string]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := j.Append(ctx, notification(t, i))
			if err != nil {
				t.Errorf("append: %v", err)
				return
			}
			mu.Lock()
			ids[id] = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	if len(ids) != n {
		t.Fatalf("expected %d distinct ids, got %d", n, len(ids))
	}

	got, err := j.Range(ctx, "", 0)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != n {
		t.Fatalf("expected %d entries, got %d", n, len(got))
	}
	for _, e := range got {
		if !ids[e.ID] {
			t.Fatalf("unexpected id %s", e.ID)
		}
	}
}

func testEmptyRange(t *testing.T, factory Factory) {
	j := open(t, factory)
	got, err := j.Range(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected an empty journal, got %d entries", len(got))
	}
}
