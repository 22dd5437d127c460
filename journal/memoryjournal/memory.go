// Package memoryjournal provides an in-memory journal.Journal. It is
// suitable for single-process use and tests; entries are lost on exit.
package memoryjournal

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/ggoodman/mcp-wire/journal"
)

// Journal implements journal.Journal over a slice.
type Journal struct {
	mu      sync.RWMutex
	entries []journal.Entry
	next    uint64
	closed  bool
}

var _ journal.Journal = (*Journal)(nil)

// New creates an empty journal.
func New() *Journal {
	return &Journal{}
}

// Append implements journal.Journal.
func (j *Journal) Append(ctx context.Context, e journal.Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return "", journal.ErrClosed
	}
	j.next++
	e.ID = strconv.FormatUint(j.next, 10)
	e.Raw = append([]byte(nil), e.Raw...)
	j.entries = append(j.entries, e)
	return e.ID, nil
}

// Range implements journal.Journal.
func (j *Journal) Range(ctx context.Context, after string, limit int) ([]journal.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var from uint64
	if after != "" {
		n, err := strconv.ParseUint(after, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid entry id %q: %w", after, err)
		}
		from = n
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return nil, journal.ErrClosed
	}
	// Entry i has id i+1.
	start := sort.Search(len(j.entries), func(i int) bool { return uint64(i)+1 > from })
	end := len(j.entries)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]journal.Entry, end-start)
	copy(out, j.entries[start:end])
	return out, nil
}

// Close implements journal.Journal.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closed = true
	j.entries = nil
	return nil
}
