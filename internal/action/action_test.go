package action

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jodyjdupes/jdupes-go/internal/coreerr"
	"github.com/jodyjdupes/jdupes-go/internal/record"
	"github.com/jodyjdupes/jdupes-go/internal/walk"
)

func statRecord(t *testing.T, store *record.Store, path string, userOrder int) *record.Record {
	t.Helper()
	info, err := os.Lstat(path)
	if err != nil {
		t.Fatalf("lstat %q: %v", path, err)
	}
	r := store.Allocate(path, userOrder)
	dev, ino := walk.IdentityOf(info)
	r.Device = dev
	r.Inode = ino
	r.Size = info.Size()
	r.Mode = uint32(info.Mode())
	r.MTime = info.ModTime().Unix()
	r.UID, r.GID = walk.OwnerOf(info)
	r.IsSymlink = info.Mode()&os.ModeSymlink != 0
	r.StatValid = true
	return r
}

func TestSafeLinkRollsBackOnLinkFailure(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	if err := os.WriteFile(target, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := safeLink(target, func(path string) error {
		return os.ErrPermission
	})
	if err == nil {
		t.Fatal("expected safeLink to report the link failure")
	}

	data, readErr := os.ReadFile(target)
	if readErr != nil {
		t.Fatalf("target should have been restored: %v", readErr)
	}
	if string(data) != "hello" {
		t.Fatalf("restored content mismatch: %q", data)
	}
}

func TestSafeLinkSucceeds(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.txt")
	if err := os.WriteFile(target, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	called := false
	err := safeLink(target, func(path string) error {
		called = true
		return os.WriteFile(path, []byte("replaced"), 0o644)
	})
	if err != nil {
		t.Fatalf("safeLink: %v", err)
	}
	if !called {
		t.Fatal("createLink was never invoked")
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "replaced" {
		t.Fatalf("got %q, want replaced", data)
	}
	if _, err := os.Stat(target + ".__jdupesgo__.tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file should have been removed")
	}
}

func TestLinkChainHardLinksTargets(t *testing.T) {
	NoChangeCheck = true
	defer func() { NoChangeCheck = false }()

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "a.txt")
	dstPath := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(srcPath, []byte("dup"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dstPath, []byte("dup"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := record.NewStore()
	src := statRecord(t, store, srcPath, 1)
	dst := statRecord(t, store, dstPath, 2)
	src.HasDupes = true
	src.Duplicates = dst

	results := LinkChain(src, LinkOptions{Mode: HardLink})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Err != nil {
		t.Fatalf("link failed: %v", results[0].Err)
	}

	srcInfo, _ := os.Stat(srcPath)
	dstInfo, _ := os.Stat(dstPath)
	srcDev, srcIno := walk.IdentityOf(srcInfo)
	dstDev, dstIno := walk.IdentityOf(dstInfo)
	if srcDev != dstDev || srcIno != dstIno {
		t.Fatal("expected target to become a hard link of the source")
	}
}

func TestLinkChainSkipsChangedTarget(t *testing.T) {
	NoChangeCheck = false

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "a.txt")
	dstPath := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(srcPath, []byte("dup"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dstPath, []byte("dup"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := record.NewStore()
	src := statRecord(t, store, srcPath, 1)
	dst := statRecord(t, store, dstPath, 2)
	src.HasDupes = true
	src.Duplicates = dst

	// Mutate the on-disk target after it was "scanned" so the recorded
	// size no longer matches.
	if err := os.WriteFile(dstPath, []byte("dup-changed"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := LinkChain(src, LinkOptions{Mode: HardLink})
	if len(results) != 1 || results[0].Err == nil {
		t.Fatalf("expected the changed target to be rejected, got %+v", results)
	}
	var ce *coreerr.Error
	if !errors.As(results[0].Err, &ce) || ce.Kind != coreerr.StatDrifted {
		t.Fatalf("expected a StatDrifted error, got %v", results[0].Err)
	}
}

func TestLinkChainPromotesSourceOnDrift(t *testing.T) {
	NoChangeCheck = false

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "a.txt")
	midPath := filepath.Join(dir, "b.txt")
	lastPath := filepath.Join(dir, "c.txt")
	for _, p := range []string{srcPath, midPath, lastPath} {
		if err := os.WriteFile(p, []byte("dup"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	store := record.NewStore()
	src := statRecord(t, store, srcPath, 1)
	mid := statRecord(t, store, midPath, 2)
	last := statRecord(t, store, lastPath, 3)
	src.HasDupes = true
	src.Duplicates = mid
	mid.Duplicates = last

	// The source drifts after the scan: the first target must be
	// promoted to new source and the rest of the chain linked against
	// it, not abandoned.
	if err := os.WriteFile(srcPath, []byte("drifted content"), 0o644); err != nil {
		t.Fatal(err)
	}

	results := LinkChain(src, LinkOptions{Mode: HardLink})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	if !results[0].Skipped || results[0].Err != nil {
		t.Fatalf("expected the first target to be skipped as the promoted source, got %+v", results[0])
	}
	if results[1].Err != nil {
		t.Fatalf("expected the last target to link against the promoted source: %v", results[1].Err)
	}
	if results[1].Source != midPath {
		t.Fatalf("expected %q as the promoted source, got %q", midPath, results[1].Source)
	}

	midInfo, _ := os.Stat(midPath)
	lastInfo, _ := os.Stat(lastPath)
	midDev, midIno := walk.IdentityOf(midInfo)
	lastDev, lastIno := walk.IdentityOf(lastInfo)
	if midDev != lastDev || midIno != lastIno {
		t.Fatal("expected the last target to become a hard link of the promoted source")
	}
	data, err := os.ReadFile(srcPath)
	if err != nil || string(data) != "drifted content" {
		t.Fatalf("drifted source must be left untouched: %q, %v", data, err)
	}
}

func TestDeleteChainPreservesHeadByDefault(t *testing.T) {
	NoChangeCheck = true
	defer func() { NoChangeCheck = false }()

	dir := t.TempDir()
	headPath := filepath.Join(dir, "keep.txt")
	dupPath := filepath.Join(dir, "dup.txt")
	if err := os.WriteFile(headPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dupPath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := record.NewStore()
	head := statRecord(t, store, headPath, 1)
	dup := statRecord(t, store, dupPath, 2)
	head.HasDupes = true
	head.Duplicates = dup

	results := DeleteChain(head, NonInteractivePreserver)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].Preserved {
		t.Fatal("expected the chain head to be preserved")
	}
	if !results[1].Deleted {
		t.Fatalf("expected the duplicate to be deleted: %+v", results[1])
	}
	if _, err := os.Stat(headPath); err != nil {
		t.Fatalf("head should still exist: %v", err)
	}
	if _, err := os.Stat(dupPath); !os.IsNotExist(err) {
		t.Fatal("duplicate should have been removed")
	}
}
