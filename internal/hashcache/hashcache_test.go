package hashcache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jodyjdupes/jdupes-go/internal/hashing"
)

func TestStoreAndLookupRoundTrip(t *testing.T) {
	c := New(hashing.Jody)
	c.Store(Entry{Path: "/a/b", MTime: 100, PartialHash: 0xdead, FullHash: 0xbeef, HashCount: 2})

	got, ok := c.Lookup("/a/b", 100)
	if !ok {
		t.Fatalf("expected entry to be found")
	}
	if got.PartialHash != 0xdead || got.FullHash != 0xbeef {
		t.Fatalf("got %+v", got)
	}
}

func TestLookupMissesOnMTimeChange(t *testing.T) {
	c := New(hashing.Jody)
	c.Store(Entry{Path: "/a/b", MTime: 100, PartialHash: 1, HashCount: 1})
	if _, ok := c.Lookup("/a/b", 200); ok {
		t.Fatalf("stale mtime should invalidate the cached entry")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	c := New(hashing.Jody)
	c.Store(Entry{Path: "/x/one.txt", MTime: 111, PartialHash: 10, FullHash: 20, HashCount: 2})
	c.Store(Entry{Path: "/x/two.txt", MTime: 222, PartialHash: 30, HashCount: 1})

	path := filepath.Join(t.TempDir(), "hashdb.txt")
	if err := c.Save(path, 999); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	e1, ok := loaded.Lookup("/x/one.txt", 111)
	if !ok || e1.FullHash != 20 {
		t.Fatalf("one.txt round-trip failed: %+v, ok=%v", e1, ok)
	}
	e2, ok := loaded.Lookup("/x/two.txt", 222)
	if !ok || e2.HashCount != 1 {
		t.Fatalf("two.txt round-trip failed: %+v, ok=%v", e2, ok)
	}
}

func TestLoadRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("not a hashdb\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error loading malformed header")
	}
}
