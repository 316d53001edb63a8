// Package walk enumerates the files under one or more root directories,
// applying the traversal guard and filter gate along the way and
// feeding accepted files to the caller in discovery order.
package walk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jodyjdupes/jdupes-go/internal/filter"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/record"
	"github.com/jodyjdupes/jdupes-go/internal/travguard"
)

// Recursion selects how deeply the walker descends into each root.
type Recursion int

const (
	// NoRecurse processes only the files directly inside each root.
	NoRecurse Recursion = iota
	// Recurse descends into every subdirectory of each root.
	Recurse
)

// Options configures a Walker.
type Options struct {
	Recursion      Recursion
	OneFileSystem  bool
	FollowSymlinks bool
	Gate           *filter.Gate
	Guard          travguard.Guard // nil selects travguard.New()

	// RecurseFrom implements -R/--recurse-split's root-list split: when
	// positive, every root at or after this 1-based position is walked
	// recursively regardless of Recursion, while roots before it still
	// follow Recursion as given. Zero disables the split: every root
	// uses Recursion uniformly.
	RecurseFrom int
}

// Walker enumerates files under one or more roots.
type Walker struct {
	opts Options
}

// New returns a Walker configured with opts. A nil Gate accepts every
// regular, non-empty file, hidden ones included; a nil Guard uses a fresh
// travguard.Guard.
func New(opts Options) *Walker {
	if opts.Gate == nil {
		opts.Gate = &filter.Gate{}
	}
	if opts.Guard == nil {
		opts.Guard = travguard.New()
	}
	return &Walker{opts: opts}
}

// Emit is called once per accepted file, in discovery order within each
// root (subdirectories are visited in sorted name order). viaSymlink is
// true when path is itself a symlink whose target was followed; info
// then describes the target, while path stays the symlink's own name so
// later I/O goes through it the way the scan saw it.
type Emit func(path string, info os.FileInfo, userOrder int, viaSymlink bool)

// Walk enumerates roots in argument order, calling emit for every file
// that passes the filter gate. userOrder passed to emit is the 1-based
// index of the root the file was reached through. Callers must pass
// every root in one Walk call for userOrder and RecurseFrom to line up
// with their actual command-line positions, and for the symlink-cycle
// guard to span the whole set of roots rather than resetting per root.
func (w *Walker) Walk(roots []string, emit Emit) error {
	visited := &sync.Map{} // guards against symlink cycles within a single process walk
	for i, root := range roots {
		userOrder := i + 1
		recurse := w.opts.Recursion == Recurse
		if w.opts.RecurseFrom > 0 && userOrder >= w.opts.RecurseFrom {
			recurse = true
		}
		if err := w.walkRoot(root, userOrder, recurse, visited, emit); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkRoot(root string, userOrder int, recurse bool, visited *sync.Map, emit Emit) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root %q: %w", root, err)
	}
	info, err := os.Lstat(absRoot)
	if err != nil {
		return fmt.Errorf("stat root %q: %w", root, err)
	}
	// Roots must be directories (or symlinks to one). A file named as a
	// root is skipped with a warning: it could also be reached through a
	// directory root and would then be matched against itself.
	if !info.IsDir() {
		if ti, err := os.Stat(absRoot); err != nil || !ti.IsDir() {
			logger.Warn("skipping root that is not a directory", "root", root)
			return nil
		}
	}

	var rootDev uint64
	if info.IsDir() {
		rootDev = deviceOf(info)
	}

	return w.visit(absRoot, info, userOrder, recurse, rootDev, visited, emit)
}

func (w *Walker) visit(path string, info os.FileInfo, userOrder int, recurse bool, rootDev uint64, visited *sync.Map, emit Emit) error {
	log := logger.Operation("walk", "path", path)

	if info.Mode()&os.ModeSymlink != 0 {
		if !w.opts.FollowSymlinks {
			return nil
		}
		targetInfo, err := os.Stat(path)
		if err != nil {
			log.Warn("unresolvable symlink", "error", err)
			return nil
		}
		if targetInfo.IsDir() {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				log.Warn("unresolvable symlink", "error", err)
				return nil
			}
			if _, loop := visited.LoadOrStore(resolved, true); loop {
				log.Debug("skipping symlink cycle")
				return nil
			}
			return w.visit(resolved, targetInfo, userOrder, recurse, rootDev, visited, emit)
		}
		// A symlink to a regular file keeps the symlink's own path; two
		// symlinks resolving to the same file are left for the match
		// tree's hard-link handling, not deduplicated here.
		if !targetInfo.Mode().IsRegular() {
			return nil
		}
		if !w.opts.Gate.Accept(path, targetInfo) {
			return nil
		}
		emit(path, targetInfo, userOrder, true)
		return nil
	}

	if info.IsDir() {
		if !w.opts.Gate.AcceptDir(path) {
			return nil
		}
		dev, ino := identityOf(info)
		if dev != 0 || ino != 0 {
			if !w.opts.Guard.CheckAndMark(dev, ino) {
				log.Debug("directory already visited, skipping")
				return nil
			}
		}
		if w.opts.OneFileSystem && rootDev != 0 && dev != rootDev {
			log.Debug("crossing filesystem boundary, skipping")
			return nil
		}
		return w.visitDir(path, userOrder, recurse, rootDev, visited, emit)
	}

	if !info.Mode().IsRegular() {
		return nil
	}
	if !w.opts.Gate.Accept(path, info) {
		return nil
	}
	emit(path, info, userOrder, false)
	return nil
}

func (w *Walker) visitDir(path string, userOrder int, recurse bool, rootDev uint64, visited *sync.Map, emit Emit) error {
	log := logger.Operation("walk_dir", "path", path)

	entries, err := os.ReadDir(path)
	if err != nil {
		log.Warn("failed to read directory", "error", err)
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		// Special files (pipes, sockets, devices) are never candidates.
		if entry.Type()&(os.ModeNamedPipe|os.ModeSocket|os.ModeDevice|os.ModeCharDevice) != 0 {
			continue
		}
		childPath := filepath.Join(path, entry.Name())
		childInfo, err := os.Lstat(childPath)
		if err != nil {
			log.Warn("failed to stat entry", "entry", entry.Name(), "error", err)
			continue
		}
		if childInfo.IsDir() && !recurse {
			continue
		}
		// A symlink to a directory counts as a directory for the
		// recursion policy, not as a followable file.
		if !recurse && w.opts.FollowSymlinks && childInfo.Mode()&os.ModeSymlink != 0 {
			if ti, err := os.Stat(childPath); err == nil && ti.IsDir() {
				continue
			}
		}
		if err := w.visit(childPath, childInfo, userOrder, recurse, rootDev, visited, emit); err != nil {
			return err
		}
	}
	return nil
}

// NewRecordEmit adapts a record.Store into an Emit callback, populating
// the stat snapshot fields the match tree and actions rely on.
func NewRecordEmit(store *record.Store) (Emit, *[]*record.Record) {
	var collected []*record.Record
	emit := func(path string, info os.FileInfo, userOrder int, viaSymlink bool) {
		r := store.Allocate(path, userOrder)
		r.Size = info.Size()
		r.Mode = uint32(info.Mode())
		r.MTime = info.ModTime().Unix()
		r.ATime = atimeOf(info)
		r.StatValid = true
		r.IsSymlink = viaSymlink
		dev, ino := identityOf(info)
		r.Device = dev
		r.Inode = ino
		r.Nlink = nlinkOf(info)
		r.UID, r.GID = ownerOf(info)
		collected = append(collected, r)
	}
	return emit, &collected
}
