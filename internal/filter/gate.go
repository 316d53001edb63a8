package filter

import (
	"os"
	"path/filepath"
	"strings"
)

// Gate decides whether a discovered path is eligible for the matching
// pipeline at all, ported from check_singlefile: hidden files, non-
// regular files, zero-length files, and the extended filter stack.
type Gate struct {
	// NoHidden excludes files (and, during the walk, directories) whose
	// basename starts with '.'.
	NoHidden bool
	// ExtFilters is the cumulative extended-filter stack from
	// --ext-filter; a file is excluded if any entry matches.
	ExtFilters []ExtFilter
	// ZeroMatch allows zero-length files into the matching pipeline
	// instead of excluding them, mirroring -z/--zero-match.
	ZeroMatch bool
	// Exclude rejects paths matching a user-supplied --exclude glob,
	// checked against both files and the directories the walker would
	// otherwise descend into.
	Exclude ExcludeMatcher
}

// Accept reports whether a path should be included in the scan, given
// its file info. It does not consider directories (the walker checks
// those with AcceptDir before descending).
func (g *Gate) Accept(path string, info os.FileInfo) bool {
	if g.NoHidden && isHidden(path) {
		return false
	}
	if !info.Mode().IsRegular() {
		return false
	}
	if info.Size() == 0 && !g.ZeroMatch {
		return false
	}
	if len(g.ExtFilters) > 0 && Exclude(g.ExtFilters, path, info.Size(), info.ModTime()) {
		return false
	}
	if g.Exclude != nil && g.Exclude.Match(path, false) {
		return false
	}
	return true
}

// AcceptDir reports whether the walker should descend into a directory,
// applying the hidden-file rule and any --exclude glob (extended
// filters act on files only).
func (g *Gate) AcceptDir(path string) bool {
	if g.NoHidden && isHidden(path) {
		return false
	}
	if g.Exclude != nil && g.Exclude.Match(path, true) {
		return false
	}
	return true
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
