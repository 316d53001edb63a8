package filter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// globDoubleStar is the "**" segment that matches any number of path
// components, the same semantics a .gitignore pattern gives it.
const globDoubleStar = "**"

// ExcludeMatcher decides whether a discovered path should be skipped
// entirely, independent of the size/hidden/ext-filter rules Gate
// already applies. Used for --exclude glob patterns.
type ExcludeMatcher interface {
	Match(path string, isDir bool) bool
}

// GlobExcluder matches paths against a set of gitignore-style
// exclusion globs: exact segment matches, directory-only patterns
// ("build/"), "*"/"?" wildcards, and "**" for arbitrary depth.
type GlobExcluder struct {
	globs []excludeGlob
}

type excludeGlob struct {
	dirOnly  bool
	negate   bool
	segments []string
	hasGlob  bool
}

// NewGlobExcluder compiles patterns into a GlobExcluder. Blank lines
// and lines starting with "#" are ignored, so pattern lists read
// straight from a file need no separate filtering pass.
func NewGlobExcluder(patterns []string) *GlobExcluder {
	e := &GlobExcluder{globs: make([]excludeGlob, 0, len(patterns))}
	for _, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}

		g := excludeGlob{}
		if strings.HasPrefix(p, "!") {
			g.negate = true
			p = strings.TrimPrefix(p, "!")
		}
		if strings.HasSuffix(p, "/") {
			g.dirOnly = true
			p = strings.TrimSuffix(p, "/")
		}

		p = filepath.ToSlash(p)
		g.segments = strings.Split(p, "/")
		g.hasGlob = strings.ContainsAny(p, "*?")
		e.globs = append(e.globs, g)
	}
	return e
}

// LoadExcludeFile reads one exclusion pattern per line from path and
// returns every line as read; NewGlobExcluder is what skips blank lines
// and "#" comments.
func LoadExcludeFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening exclude file %q: %w", path, err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading exclude file %q: %w", path, err)
	}
	return patterns, nil
}

// Match reports whether path should be excluded, with later negated
// patterns overriding earlier exclusions (a "!keep-me" entry after a
// broader exclusion un-excludes the matching path).
func (e *GlobExcluder) Match(path string, isDir bool) bool {
	segments := strings.Split(filepath.ToSlash(path), "/")

	excluded := false
	for _, g := range e.globs {
		if g.matches(segments, isDir) {
			excluded = !g.negate
		}
	}
	return excluded
}

func (g *excludeGlob) matches(pathSegs []string, isDir bool) bool {
	if g.dirOnly && !isDir {
		return false
	}
	if !g.hasGlob && len(g.segments) == 1 {
		for _, seg := range pathSegs {
			if seg == g.segments[0] {
				return true
			}
		}
		return false
	}
	return matchAtAnyOffset(pathSegs, g.segments)
}

func matchAtAnyOffset(pathSegs, patSegs []string) bool {
	if len(patSegs) > 0 && patSegs[0] == globDoubleStar {
		if len(patSegs) == 1 {
			return true
		}
		rest := patSegs[1:]
		for i := 0; i <= len(pathSegs); i++ {
			if matchRun(pathSegs[i:], rest) {
				return true
			}
		}
		return false
	}
	if len(patSegs) > 0 && patSegs[len(patSegs)-1] == globDoubleStar {
		return matchRun(pathSegs, patSegs[:len(patSegs)-1])
	}
	return matchRun(pathSegs, patSegs)
}

func matchRun(pathSegs, patSegs []string) bool {
	if len(patSegs) == 0 {
		return true
	}
	for i := 0; i <= len(pathSegs)-len(patSegs); i++ {
		ok := true
		for j, pat := range patSegs {
			if !segmentMatches(pathSegs[i+j], pat) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func segmentMatches(seg, pat string) bool {
	if seg == pat {
		return true
	}
	if strings.ContainsAny(pat, "*?") {
		return globMatch(seg, pat)
	}
	return false
}

// globMatch implements shell-style "*"/"?" matching for one path
// segment (no path separators can appear within a segment, so this
// never needs to treat "*" as a directory boundary).
func globMatch(s, pattern string) bool {
	var si, pi int
	for pi < len(pattern) && si < len(s) {
		switch pattern[pi] {
		case '*':
			if pi == len(pattern)-1 {
				return true
			}
			for i := si; i <= len(s); i++ {
				if globMatch(s[i:], pattern[pi+1:]) {
					return true
				}
			}
			return false
		case '?':
			pi++
			si++
		default:
			if pattern[pi] != s[si] {
				return false
			}
			pi++
			si++
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern) && si == len(s)
}
