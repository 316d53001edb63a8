package walk

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/jodyjdupes/jdupes-go/internal/filter"
)

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWalkNoRecurseOnlyTopLevel(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "a")
	mustWriteFile(t, filepath.Join(root, "sub", "b.txt"), "b")

	w := New(Options{Recursion: NoRecurse})
	var got []string
	err := w.Walk([]string{root}, func(path string, info os.FileInfo, userOrder int, viaSymlink bool) {
		got = append(got, filepath.Base(path))
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(got) != 1 || got[0] != "a.txt" {
		t.Fatalf("got %v, want [a.txt]", got)
	}
}

func TestWalkRecurseFindsNested(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "a.txt"), "a")
	mustWriteFile(t, filepath.Join(root, "sub", "b.txt"), "b")

	w := New(Options{Recursion: Recurse})
	var got []string
	err := w.Walk([]string{root}, func(path string, info os.FileInfo, userOrder int, viaSymlink bool) {
		got = append(got, filepath.Base(path))
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	sort.Strings(got)
	if len(got) != 2 || got[0] != "a.txt" || got[1] != "b.txt" {
		t.Fatalf("got %v, want [a.txt b.txt]", got)
	}
}

func TestWalkSkipsHiddenWithNoHidden(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, ".hidden"), "x")
	mustWriteFile(t, filepath.Join(root, "visible.txt"), "x")

	w := New(Options{Recursion: Recurse, Gate: &filter.Gate{NoHidden: true}})
	var got []string
	err := w.Walk([]string{root}, func(path string, info os.FileInfo, userOrder int, viaSymlink bool) {
		got = append(got, filepath.Base(path))
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(got) != 1 || got[0] != "visible.txt" {
		t.Fatalf("got %v, want [visible.txt]", got)
	}
}

func TestWalkSkipsEmptyFiles(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "empty.txt"), "")
	mustWriteFile(t, filepath.Join(root, "full.txt"), "content")

	w := New(Options{Recursion: Recurse})
	var got []string
	err := w.Walk([]string{root}, func(path string, info os.FileInfo, userOrder int, viaSymlink bool) {
		got = append(got, filepath.Base(path))
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(got) != 1 || got[0] != "full.txt" {
		t.Fatalf("got %v, want [full.txt]", got)
	}
}

func TestWalkUserOrderTracksRootIndex(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	mustWriteFile(t, filepath.Join(rootA, "a.txt"), "a")
	mustWriteFile(t, filepath.Join(rootB, "b.txt"), "b")

	w := New(Options{Recursion: Recurse})
	orders := map[string]int{}
	err := w.Walk([]string{rootA, rootB}, func(path string, info os.FileInfo, userOrder int, viaSymlink bool) {
		orders[filepath.Base(path)] = userOrder
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if orders["a.txt"] != 1 || orders["b.txt"] != 2 {
		t.Fatalf("got %v, want a.txt=1 b.txt=2", orders)
	}
}

func TestWalkSymlinksFollowedOnlyWhenEnabled(t *testing.T) {
	root := t.TempDir()
	mustWriteFile(t, filepath.Join(root, "real.txt"), "content")
	linkPath := filepath.Join(root, "alias.txt")
	if err := os.Symlink(filepath.Join(root, "real.txt"), linkPath); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	w := New(Options{Recursion: Recurse})
	var got []string
	err := w.Walk([]string{root}, func(path string, info os.FileInfo, userOrder int, viaSymlink bool) {
		got = append(got, filepath.Base(path))
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(got) != 1 || got[0] != "real.txt" {
		t.Fatalf("without follow-symlinks got %v, want [real.txt]", got)
	}

	w = New(Options{Recursion: Recurse, FollowSymlinks: true})
	seen := map[string]bool{}
	err = w.Walk([]string{root}, func(path string, info os.FileInfo, userOrder int, viaSymlink bool) {
		seen[filepath.Base(path)] = viaSymlink
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("with follow-symlinks got %v, want both real.txt and alias.txt", seen)
	}
	if seen["real.txt"] || !seen["alias.txt"] {
		t.Fatalf("viaSymlink flags wrong: %v", seen)
	}
}
