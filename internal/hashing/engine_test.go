package hashing

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.bin")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestEnginePartialThenFullResumes(t *testing.T) {
	content := make([]byte, PartialHashSize*3)
	for i := range content {
		content[i] = byte(i % 251)
	}
	path := writeTempFile(t, content)

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	e := &Engine{Kind: Jody, ChunkSize: 4096}
	partial, state, err := e.Partial(f, int64(len(content)))
	if err != nil {
		t.Fatalf("partial: %v", err)
	}
	full, err := e.Full(f, int64(len(content)), state)
	if err != nil {
		t.Fatalf("full: %v", err)
	}

	// Compute the full hash independently from scratch; it must match.
	f2, _ := os.Open(path)
	defer f2.Close()
	e2 := &Engine{Kind: Jody, ChunkSize: 4096}
	fromScratch, err := e2.Full(f2, int64(len(content)), nil)
	if err != nil {
		t.Fatalf("full from scratch: %v", err)
	}
	if full != fromScratch {
		t.Fatalf("resumed full hash %d != from-scratch full hash %d", full, fromScratch)
	}
	if partial == 0 {
		t.Fatalf("partial hash unexpectedly zero")
	}
}

func TestEngineFullEqualsPartialForSmallFile(t *testing.T) {
	content := []byte("short file content")
	path := writeTempFile(t, content)
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	e := &Engine{Kind: Jody, ChunkSize: 4096}
	partial, state, err := e.Partial(f, int64(len(content)))
	if err != nil {
		t.Fatalf("partial: %v", err)
	}
	full, err := e.Full(f, int64(len(content)), state)
	if err != nil {
		t.Fatalf("full: %v", err)
	}
	if partial != full {
		t.Fatalf("for size <= PartialHashSize, full hash %d must equal partial hash %d", full, partial)
	}
}

func TestXXHashDoesNotResume(t *testing.T) {
	content := make([]byte, PartialHashSize*2)
	path := writeTempFile(t, content)
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	e := &Engine{Kind: XXHash64, ChunkSize: 4096}
	_, state, err := e.Partial(f, int64(len(content)))
	if err != nil {
		t.Fatalf("partial: %v", err)
	}
	if state != nil {
		t.Fatalf("xxhash64 must not report a resumable state")
	}
}
