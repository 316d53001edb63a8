package matchtree

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jodyjdupes/jdupes-go/internal/hashing"
	"github.com/jodyjdupes/jdupes-go/internal/record"
)

func mustWrite(t *testing.T, dir, name, content string) *record.Record {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return &record.Record{Path: path, Size: int64(len(content))}
}

func TestInsertFindsExactDuplicate(t *testing.T) {
	dir := t.TempDir()
	a := mustWrite(t, dir, "a.txt", "identical content")
	b := mustWrite(t, dir, "b.txt", "identical content")

	tree := New(Config{ChunkSize: 4096}, hashing.NewEngine(hashing.XXHash64), nil)

	if m, err := tree.Insert(context.Background(), a); err != nil || m != nil {
		t.Fatalf("first insert should be unique: match=%v err=%v", m, err)
	}
	m, err := tree.Insert(context.Background(), b)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if m != a {
		t.Fatalf("expected b to match a, got %v", m)
	}
}

func TestInsertRejectsDifferentContent(t *testing.T) {
	dir := t.TempDir()
	a := mustWrite(t, dir, "a.txt", "content-one-xxxx")
	b := mustWrite(t, dir, "b.txt", "content-two-yyyy")

	tree := New(Config{ChunkSize: 4096}, hashing.NewEngine(hashing.XXHash64), nil)

	if _, err := tree.Insert(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	m, err := tree.Insert(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatalf("expected no match for differing content, got %v", m)
	}
}

func TestInsertSeparatesDifferentSizes(t *testing.T) {
	dir := t.TempDir()
	a := mustWrite(t, dir, "a.txt", "short")
	b := mustWrite(t, dir, "b.txt", "a much longer body of text")

	tree := New(Config{ChunkSize: 4096}, hashing.NewEngine(hashing.XXHash64), nil)

	if _, err := tree.Insert(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	m, err := tree.Insert(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatalf("different-sized files must never match: %v", m)
	}
}

func TestInsertIsolateSuppressedPairStillOrdersByContent(t *testing.T) {
	dir := t.TempDir()
	a := mustWrite(t, dir, "a.txt", "same-size-content-A")
	b := mustWrite(t, dir, "b.txt", "same-size-content-B")
	a.UserOrder, b.UserOrder = 1, 1

	tree := New(Config{ChunkSize: 4096, Isolate: true}, hashing.NewEngine(hashing.XXHash64), nil)

	if _, err := tree.Insert(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	// a and b share a root argument, so --isolate must refuse to report
	// them as a match, but it still has to place b in the tree by its
	// real content signature rather than short-circuiting straight to
	// one side -- otherwise a later file with b's exact content can be
	// routed past b and reported as unique when it is not.
	m, err := tree.Insert(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatalf("isolate should suppress the match, got %v", m)
	}

	c := mustWrite(t, dir, "c.txt", "same-size-content-B")
	c.UserOrder = 2
	m, err = tree.Insert(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if m != b {
		t.Fatalf("expected c to find b (identical content, different root), got %v", m)
	}
}

func TestInsertHardNoMatchSkipsSameInodePair(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "same.txt")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	linkPath := filepath.Join(dir, "same-link.txt")
	if err := os.Link(path, linkPath); err != nil {
		t.Skipf("hard links unsupported on this filesystem: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	a := &record.Record{Path: path, Size: info.Size(), Device: 1, Inode: 7}
	b := &record.Record{Path: linkPath, Size: info.Size(), Device: 1, Inode: 7}

	tree := New(Config{ChunkSize: 4096, ConsiderHardlinks: false}, hashing.NewEngine(hashing.XXHash64), nil)
	if _, err := tree.Insert(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	m, err := tree.Insert(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatalf("hard-linked pair should be excluded without -H: %v", m)
	}
}

func TestInsertPermissionsExcludesDifferingMode(t *testing.T) {
	dir := t.TempDir()
	a := mustWrite(t, dir, "a.txt", "matching content")
	b := mustWrite(t, dir, "b.txt", "matching content")
	a.Mode, b.Mode = 0o644, 0o600

	tree := New(Config{ChunkSize: 4096, Permissions: true}, hashing.NewEngine(hashing.XXHash64), nil)
	if _, err := tree.Insert(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	m, err := tree.Insert(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if m != nil {
		t.Fatalf("differing mode under --permissions must not match, got %v", m)
	}

	// Identical mode on a third copy still matches the record whose mode
	// it shares.
	c := mustWrite(t, dir, "c.txt", "matching content")
	c.Mode = 0o600
	m, err = tree.Insert(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if m != b {
		t.Fatalf("expected c to match b (same mode), got %v", m)
	}
}
