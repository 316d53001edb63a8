package scanflags

import (
	"os"
	"testing"
)

func withArgs(t *testing.T, args []string, fn func()) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"jdupes-go"}, args...)
	defer func() { os.Args = old }()
	fn()
}

func TestRecurseSplitIndexRootsBeforeFlag(t *testing.T) {
	roots := []string{"/a", "/b", "/c"}
	withArgs(t, []string{"link", "/a", "/b", "-R", "/c"}, func() {
		if got := recurseSplitIndex(roots); got != 3 {
			t.Fatalf("recurseSplitIndex() = %d, want 3", got)
		}
	})
}

func TestRecurseSplitIndexFlagBeforeAllRoots(t *testing.T) {
	roots := []string{"/a", "/b"}
	withArgs(t, []string{"scan", "--recurse-split", "/a", "/b"}, func() {
		if got := recurseSplitIndex(roots); got != 1 {
			t.Fatalf("recurseSplitIndex() = %d, want 1", got)
		}
	})
}

func TestRecurseSplitIndexFlagAfterAllRoots(t *testing.T) {
	roots := []string{"/a", "/b"}
	withArgs(t, []string{"scan", "/a", "/b", "-R"}, func() {
		if got := recurseSplitIndex(roots); got != 3 {
			t.Fatalf("recurseSplitIndex() = %d, want 3 (past every root, so none are split-recursive)", got)
		}
	})
}

func TestRecurseSplitIndexFlagAbsent(t *testing.T) {
	roots := []string{"/a", "/b"}
	withArgs(t, []string{"scan", "/a", "/b"}, func() {
		if got := recurseSplitIndex(roots); got != 0 {
			t.Fatalf("recurseSplitIndex() = %d, want 0 when -R was never given", got)
		}
	})
}

func TestBuildRecurseSplitSetsRecurseFrom(t *testing.T) {
	roots := []string{"/a", "/b", "/c"}
	withArgs(t, []string{"link", "/a", "/b", "-R", "/c"}, func() {
		v := &Values{RecurseAfter: true, Order: "name", Algorithm: "xxhash"}
		cfg, err := v.Build(roots)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if cfg.RecurseFrom != 3 {
			t.Fatalf("cfg.RecurseFrom = %d, want 3", cfg.RecurseFrom)
		}
	})
}

func TestBuildPlainRecurseDoesNotSetRecurseFrom(t *testing.T) {
	roots := []string{"/a", "/b"}
	withArgs(t, []string{"scan", "-r", "/a", "/b"}, func() {
		v := &Values{Recurse: true, Order: "name", Algorithm: "xxhash"}
		cfg, err := v.Build(roots)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if cfg.RecurseFrom != 0 {
			t.Fatalf("cfg.RecurseFrom = %d, want 0 when only -r was given", cfg.RecurseFrom)
		}
	})
}

func TestBuildPartialOnlyRequiresTwo(t *testing.T) {
	withArgs(t, []string{"scan", "/a"}, func() {
		v := &Values{PartialOnly: 1, Order: "name", Algorithm: "xxhash"}
		if _, err := v.Build([]string{"/a"}); err == nil {
			t.Fatal("a single --partial-only must be rejected")
		}

		v = &Values{PartialOnly: 2, Order: "name", Algorithm: "xxhash"}
		cfg, err := v.Build([]string{"/a"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !cfg.PartialOnly {
			t.Fatal("two --partial-only flags should enable partial-only mode")
		}
	})
}

func TestBuildHashDBDotDefaultsFilename(t *testing.T) {
	withArgs(t, []string{"scan", "/a"}, func() {
		v := &Values{HashDBPath: ".", Order: "name", Algorithm: "xxhash"}
		cfg, err := v.Build([]string{"/a"})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if cfg.HashDBPath != "jdupes_hashdb.txt" {
			t.Fatalf("HashDBPath = %q, want jdupes_hashdb.txt", cfg.HashDBPath)
		}
	})
}
