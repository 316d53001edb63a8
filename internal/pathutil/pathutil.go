// Package pathutil centralizes the path operations the action executor
// needs, in particular the relative-symlink-target computation ported
// from the original's jody_paths.c make_relative_link_name.
package pathutil

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrSamePath is returned by RelativeSymlinkTarget when src and dest
// resolve to the exact same canonical path, which would mean linking a
// file to itself.
var ErrSamePath = errors.New("source and destination are the same path")

// RelativeSymlinkTarget computes the path that a symlink created at
// dest should point to in order to reach src, expressed relative to
// dest's directory. Both paths are canonicalized (made absolute and
// cleaned) before comparison, matching make_relative_link_name's
// dotdot-collapsing behavior without needing a hand-rolled string walk:
// filepath.Rel(filepath.Dir(dest), src) produces the identical "how many
// directories up, then back down" result once both inputs are absolute
// and clean.
func RelativeSymlinkTarget(src, dest string) (string, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", src, err)
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", dest, err)
	}
	if absSrc == absDest {
		return "", ErrSamePath
	}

	rel, err := filepath.Rel(filepath.Dir(absDest), absSrc)
	if err != nil {
		return "", fmt.Errorf("computing relative path from %q to %q: %w", dest, src, err)
	}
	if rel == "." || strings.HasSuffix(rel, "/..") || rel == ".." {
		return "", fmt.Errorf("relative symlink target %q for %q -> %q is invalid", rel, dest, src)
	}
	return rel, nil
}
