// Package redisjournal provides a journal.Journal backed by a Redis stream.
// Entry ids are the stream ids Redis assigns, so several processes may append
// to and read from the same journal.
package redisjournal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ggoodman/mcp-wire/journal"
	"github.com/ggoodman/mcp-wire/jsonrpc"
	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"
)

// Config for a Redis-backed journal. Defaults can be loaded via envdecode.
type Config struct {
	// Addr like "localhost:6379". ENV: REDIS_ADDR
	Addr string `env:"REDIS_ADDR,default=localhost:6379"`
	// Key of the stream. ENV: MCPWIRE_JOURNAL_KEY
	Key string `env:"MCPWIRE_JOURNAL_KEY,default=mcpwire:journal"`
}

const (
	fieldVariant   = "variant"
	fieldMethod    = "method"
	fieldRequestID = "request_id"
	fieldRaw       = "raw"
	fieldAt        = "at"
)

// Journal implements journal.Journal using XADD and XRANGE.
type Journal struct {
	client redis.UniversalClient
	key    string
}

var _ journal.Journal = (*Journal)(nil)

// New wraps an existing client. The journal owns the client and closes it
// on Close.
func New(client redis.UniversalClient, key string) *Journal {
	if key == "" {
		key = "mcpwire:journal"
	}
	return &Journal{client: client, key: key}
}

// NewFromConfig dials cfg.Addr and verifies the connection.
func NewFromConfig(ctx context.Context, cfg Config) (*Journal, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	cl := redis.NewClient(&redis.Options{Addr: addr})
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(cl, cfg.Key), nil
}

// NewFromEnv builds a Journal using envdecode to populate Config.
func NewFromEnv(ctx context.Context) (*Journal, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode redis journal config: %w", err)
	}
	return NewFromConfig(ctx, cfg)
}

// Append implements journal.Journal.
func (j *Journal) Append(ctx context.Context, e journal.Entry) (string, error) {
	rid, err := json.Marshal(e.RequestID)
	if err != nil {
		return "", fmt.Errorf("encode request id: %w", err)
	}
	at := e.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	id, err := j.client.XAdd(ctx, &redis.XAddArgs{
		Stream: j.key,
		Values: map[string]any{
			fieldVariant:   e.Variant.String(),
			fieldMethod:    e.Method,
			fieldRequestID: string(rid),
			fieldRaw:       string(e.Raw),
			fieldAt:        at.Format(time.RFC3339Nano),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("append to stream %s: %w", j.key, err)
	}
	return id, nil
}

// Range implements journal.Journal. The start bound is exclusive.
func (j *Journal) Range(ctx context.Context, after string, limit int) ([]journal.Entry, error) {
	start := "-"
	if after != "" {
		start = "(" + after
	}
	var (
		msgs []redis.XMessage
		err  error
	)
	if limit > 0 {
		msgs, err = j.client.XRangeN(ctx, j.key, start, "+", int64(limit)).Result()
	} else {
		msgs, err = j.client.XRange(ctx, j.key, start, "+").Result()
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("range stream %s: %w", j.key, err)
	}

	out := make([]journal.Entry, 0, len(msgs))
	for _, m := range msgs {
		e, err := entryFrom(m)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", m.ID, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Close closes the Redis client.
func (j *Journal) Close() error { return j.client.Close() }

// Delete removes the stream. It is mainly useful in tests.
func (j *Journal) Delete(ctx context.Context) error {
	if err := j.client.Del(ctx, j.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete stream %s: %w", j.key, err)
	}
	return nil
}

func entryFrom(m redis.XMessage) (journal.Entry, error) {
	str := func(name string) string {
		// Robust payload decoding: accept string or []byte.
		switch v := m.Values[name].(type) {
		case string:
			return v
		case []byte:
			return string(v)
		default:
			return ""
		}
	}

	e := journal.Entry{ID: m.ID, Method: str(fieldMethod), Raw: json.RawMessage(str(fieldRaw))}
	v, ok := jsonrpc.ParseVariant(str(fieldVariant))
	if !ok {
		return journal.Entry{}, fmt.Errorf("unknown variant %q", str(fieldVariant))
	}
	e.Variant = v
	if rid := str(fieldRequestID); rid != "" {
		if err := json.Unmarshal([]byte(rid), &e.RequestID); err != nil {
			return journal.Entry{}, fmt.Errorf("decode request id: %w", err)
		}
	}
	if at := str(fieldAt); at != "" {
		t, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			return journal.Entry{}, fmt.Errorf("decode timestamp: %w", err)
		}
		e.At = t
	}
	return e, nil
}
