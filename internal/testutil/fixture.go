// Package testutil provides filesystem fixtures and event capture for
// reconciliation tests.
package testutil

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"fixity/internal/checksum"
	"fixity/internal/model"
)

// WriteFile creates a file with the given content and pins its mtime.
// Parent directories are created as needed.
func WriteFile(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	SetModTime(t, path, mtime)
}

// SetModTime pins a file's access and modification times.
func SetModTime(t *testing.T, path string, mtime time.Time) {
	t.Helper()
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

// HexDigest returns the hex digest of content under the algorithm, for
// building test expectations without touching the filesystem.
func HexDigest(algorithm checksum.Algorithm, content string) string {
	h := algorithm.New()
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// CollectSink records every reported event. Safe for concurrent Report
// calls so tests can run the engine with a parallel worker pool.
type CollectSink struct {
	mu     sync.Mutex
	events []model.Event
}

// Report implements the engine's sink interface.
func (s *CollectSink) Report(ev model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// Events returns a copy of everything reported so far.
func (s *CollectSink) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByKey returns the events reported for one record key, in order.
func (s *CollectSink) ByKey(key string) []model.Event {
	var out []model.Event
	for _, ev := range s.Events() {
		if ev.Key == key {
			out = append(out, ev)
		}
	}
	return out
}

// Kinds returns per-kind event counts.
func (s *CollectSink) Kinds() map[model.EventKind]int {
	out := make(map[model.EventKind]int)
	for _, ev := range s.Events() {
		out[ev.Kind]++
	}
	return out
}
