package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fixity/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "baseline.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestGet_MissingKey(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.Get(context.Background(), "/no/such/file")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if rec != nil {
		t.Errorf("Get() = %+v, want nil for missing key", rec)
	}
}

func TestPut_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Nanosecond precision must survive the round trip.
	mtime := time.Date(2024, 3, 9, 14, 30, 0, 123456789, time.UTC)
	in := model.IntegrityRecord{
		Key:          "/data/a.bin",
		Checksum:     "deadbeef",
		Algorithm:    "sha256",
		LastModified: mtime,
	}
	if err := s.Put(ctx, in); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	out, err := s.Get(ctx, "/data/a.bin")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if out == nil {
		t.Fatal("Get() = nil, want record")
	}
	if out.Key != in.Key {
		t.Errorf("Key = %q, want %q", out.Key, in.Key)
	}
	if out.Checksum != in.Checksum {
		t.Errorf("Checksum = %q, want %q", out.Checksum, in.Checksum)
	}
	if out.Algorithm != in.Algorithm {
		t.Errorf("Algorithm = %q, want %q", out.Algorithm, in.Algorithm)
	}
	if !out.LastModified.Equal(mtime) {
		t.Errorf("LastModified = %v, want %v", out.LastModified, mtime)
	}
}

func TestPut_OverwritesWholeRow(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := model.IntegrityRecord{
		Key:          "/data/a.bin",
		Checksum:     "aaaa",
		Algorithm:    "md5",
		LastModified: time.Unix(100, 0),
	}
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("first Put() failed: %v", err)
	}

	second := model.IntegrityRecord{
		Key:          "/data/a.bin",
		Checksum:     "bbbb",
		Algorithm:    "sha256",
		LastModified: time.Unix(200, 0),
	}
	if err := s.Put(ctx, second); err != nil {
		t.Fatalf("second Put() failed: %v", err)
	}

	out, err := s.Get(ctx, "/data/a.bin")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if out.Checksum != "bbbb" || out.Algorithm != "sha256" {
		t.Errorf("got (%q, %q), want row fully replaced", out.Checksum, out.Algorithm)
	}
	if !out.LastModified.Equal(time.Unix(200, 0)) {
		t.Errorf("LastModified = %v, want %v", out.LastModified, time.Unix(200, 0))
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := model.IntegrityRecord{
		Key:          "/data/a.bin",
		Checksum:     "aaaa",
		Algorithm:    "sha256",
		LastModified: time.Unix(100, 0),
	}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}

	if err := s.Delete(ctx, "/data/a.bin"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	out, err := s.Get(ctx, "/data/a.bin")
	if err != nil {
		t.Fatalf("Get() after delete failed: %v", err)
	}
	if out != nil {
		t.Errorf("Get() = %+v after delete, want nil", out)
	}

	// Deleting an absent key is not an error.
	if err := s.Delete(ctx, "/data/a.bin"); err != nil {
		t.Errorf("Delete() of absent key failed: %v", err)
	}
}

func TestAllKeys_Ordered(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"/c", "/a", "/b"} {
		rec := model.IntegrityRecord{
			Key:          key,
			Checksum:     "x",
			Algorithm:    "sha256",
			LastModified: time.Unix(1, 0),
		}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put(%q) failed: %v", key, err)
		}
	}

	keys, err := s.AllKeys(ctx)
	if err != nil {
		t.Fatalf("AllKeys() failed: %v", err)
	}
	want := []string{"/a", "/b", "/c"}
	if len(keys) != len(want) {
		t.Fatalf("AllKeys() returned %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d on empty store, want 0", n)
	}

	for i, key := range []string{"/a", "/b"} {
		rec := model.IntegrityRecord{
			Key:          key,
			Checksum:     "x",
			Algorithm:    "sha256",
			LastModified: time.Unix(int64(i), 0),
		}
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put(%q) failed: %v", key, err)
		}
	}

	n, err = s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}
