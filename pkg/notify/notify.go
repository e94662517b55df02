// Package notify publishes translation events to side channels
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Event describes one translation request
type Event struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	SQL        string    `json:"sql"`
	Operation  string    `json:"operation,omitempty"`
	Collection string    `json:"collection,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
}

// NewEvent stamps an event with a fresh id and the current time
func NewEvent(sql string) Event {
	return Event{ID: uuid.NewString(), Time: time.Now().UTC(), SQL: sql}
}

// Notifier receives translation events
type Notifier interface {
	Notify(ctx context.Context, e Event) error
	Close() error
}

// ============================================================================
// REDIS STREAM
// ============================================================================

// streamAdder is the part of *redis.Client the notifier uses
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
	Close() error
}

// RedisNotifier appends events to a Redis stream with XADD
type RedisNotifier struct {
	client streamAdder
	stream string
	maxLen int64
}

// NewRedisNotifier connects lazily to addr; the first XADD opens the connection
func NewRedisNotifier(addr, stream string) *RedisNotifier {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return newRedisNotifier(client, stream)
}

func newRedisNotifier(client streamAdder, stream string) *RedisNotifier {
	return &RedisNotifier{client: client, stream: stream, maxLen: 10000}
}

func (n *RedisNotifier) Notify(ctx context.Context, e Event) error {
	warnings, err := json.Marshal(e.Warnings)
	if err != nil {
		return err
	}
	err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: n.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"id":          e.ID,
			"time":        e.Time.Format(time.RFC3339Nano),
			"sql":         e.SQL,
			"operation":   e.Operation,
			"collection":  e.Collection,
			"warnings":    string(warnings),
			"error":       e.Error,
			"duration_ms": e.DurationMS,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", n.stream, err)
	}
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

// ============================================================================
// FILE
// ============================================================================

// FileNotifier writes each event as a JSON file in a directory
type FileNotifier struct {
	dir string
}

// NewFileNotifier creates dir if needed
func NewFileNotifier(dir string) (*FileNotifier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create notify dir: %w", err)
	}
	return &FileNotifier{dir: dir}, nil
}

func (n *FileNotifier) Notify(_ context.Context, e Event) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s-%s.json", e.Time.Format("20060102T150405"), e.ID)
	return os.WriteFile(filepath.Join(n.dir, name), data, 0o644)
}

func (n *FileNotifier) Close() error { return nil }

// ============================================================================
// FAN-OUT
// ============================================================================

// Multi sends every event to all notifiers concurrently and joins errors
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, e Event) error {
	errs := make([]error, len(m))
	var wg sync.WaitGroup
	for i, n := range m {
		wg.Add(1)
		go func(i int, n Notifier) {
			defer wg.Done()
			errs[i] = n.Notify(ctx, e)
		}(i, n)
	}
	wg.Wait()
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, n := range m {
		errs = append(errs, n.Close())
	}
	return errors.Join(errs...)
}

// Nop discards events
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
func (Nop) Close() error { return nil }
