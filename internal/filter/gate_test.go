package filter

import (
	"os"
	"path/filepath"
	"testing"
)

func lstat(t *testing.T, path string) os.FileInfo {
	t.Helper()
	info, err := os.Lstat(path)
	if err != nil {
		t.Fatal(err)
	}
	return info
}

func TestGateRejectsZeroLengthByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	g := &Gate{}
	if g.Accept(path, lstat(t, path)) {
		t.Fatal("zero-length file should be rejected without --zero-match")
	}
}

func TestGateAcceptsZeroLengthWithZeroMatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	g := &Gate{ZeroMatch: true}
	if !g.Accept(path, lstat(t, path)) {
		t.Fatal("zero-length file should be accepted with --zero-match")
	}
}

func TestGateRejectsHidden(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".hidden")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	g := &Gate{NoHidden: true}
	if g.Accept(path, lstat(t, path)) {
		t.Fatal("hidden file should be rejected with --no-hidden")
	}
}
