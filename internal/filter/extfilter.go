// Package filter implements the inclusion/exclusion rules applied to
// each discovered file before it is handed to the match tree: hidden
// file rejection, zero-length rejection, and the extended filter
// language (-X/--ext-filter) ported from the original's extfilter.c.
package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ExtKind identifies which extended filter tag a parsed ExtFilter uses.
type ExtKind int

const (
	ExtNoExt ExtKind = iota
	ExtOnlyExt
	ExtSizeEq
	ExtSizeGt
	ExtSizeLt
	ExtSizeGtEq
	ExtSizeLtEq
	ExtNoStr
	ExtOnlyStr
	ExtNewer
	ExtOlder
)

// ExtFilter is one parsed -X/--ext-filter entry. Filters accumulate
// cumulatively: a file is excluded if ANY configured filter's condition
// matches, exactly as the original's extfilter_exclude ORs every rule
// in the stack.
type ExtFilter struct {
	Kind  ExtKind
	Size  int64  // for the size and date kinds (date stored as Unix seconds)
	Param string // for the extension/string kinds
}

var extTags = map[string]ExtKind{
	"noext":   ExtNoExt,
	"onlyext": ExtOnlyExt,
	"size=":   ExtSizeEq,
	"size+":   ExtSizeGt,
	"size-":   ExtSizeLt,
	"size+=":  ExtSizeGtEq,
	"size-=":  ExtSizeLtEq,
	"nostr":   ExtNoStr,
	"onlystr": ExtOnlyStr,
	"newer":   ExtNewer,
	"older":   ExtOlder,
}

func isSizeKind(k ExtKind) bool {
	switch k {
	case ExtSizeEq, ExtSizeGt, ExtSizeLt, ExtSizeGtEq, ExtSizeLtEq:
		return true
	}
	return false
}

func isDateKind(k ExtKind) bool {
	return k == ExtNewer || k == ExtOlder
}

// ParseExtFilter parses one "tag:value" (or bare "tag") extended filter
// option, exactly the grammar add_extfilter accepts.
func ParseExtFilter(option string) (ExtFilter, error) {
	tag, value, _ := strings.Cut(option, ":")
	kind, ok := extTags[tag]
	if !ok {
		return ExtFilter{}, fmt.Errorf("unknown ext-filter tag %q", tag)
	}

	if isSizeKind(kind) {
		if value == "" {
			return ExtFilter{}, fmt.Errorf("ext-filter %q requires a size value", tag)
		}
		size, err := ParseSizeSuffix(value)
		if err != nil {
			return ExtFilter{}, fmt.Errorf("ext-filter %q: %w", tag, err)
		}
		return ExtFilter{Kind: kind, Size: size}, nil
	}

	if isDateKind(kind) {
		if value == "" {
			return ExtFilter{}, fmt.Errorf("ext-filter %q requires a date value", tag)
		}
		t, err := parseDateTime(value)
		if err != nil {
			return ExtFilter{}, fmt.Errorf("ext-filter %q: %w", tag, err)
		}
		return ExtFilter{Kind: kind, Size: t.Unix()}, nil
	}

	// noext/onlyext/nostr/onlystr all take a bare string parameter.
	if value == "" {
		return ExtFilter{}, fmt.Errorf("ext-filter %q requires a value", tag)
	}
	return ExtFilter{Kind: kind, Param: value}, nil
}

func parseDateTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf(`invalid date/time %q, want "YYYY-MM-DD [HH:MM:SS]"`, s)
}

// sizeSuffixes maps a case-folded suffix to its multiplier. Bare
// K/M/G/T/P/E and the explicit "I"/"IB" forms are binary (1024-based);
// the explicit "B" forms are decimal (1000-based), matching the
// original's jc_size_suffix table.
var sizeSuffixes = buildSizeSuffixes()

func buildSizeSuffixes() map[string]int64 {
	m := map[string]int64{}
	letters := []byte{'k', 'm', 'g', 't', 'p', 'e'}
	pow := func(base int64, n int) int64 {
		v := int64(1)
		for i := 0; i < n; i++ {
			v *= base
		}
		return v
	}
	for i, l := range letters {
		n := i + 1
		s := string(l)
		m[s] = pow(1024, n)
		m[s+"i"] = pow(1024, n)
		m[s+"ib"] = pow(1024, n)
		m[s+"b"] = pow(1000, n)
	}
	return m
}

// ParseSizeSuffix parses a size value with an optional binary/decimal
// multiplier suffix: bare K/M/G/T/P/E[i] default to binary (1024-based),
// while an explicit trailing "B" (e.g. "KB") selects decimal (1000-based).
// "16k" and "16kib" both equal 16384; "16kb" equals 16000.
func ParseSizeSuffix(s string) (int64, error) {
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9') {
		i++
	}
	if i == 0 {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	base, err := strconv.ParseInt(s[:i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	suffix := strings.ToLower(strings.TrimSpace(s[i:]))
	if suffix == "" {
		return base, nil
	}
	mult, ok := sizeSuffixes[suffix]
	if !ok {
		return 0, fmt.Errorf("invalid size suffix %q; use K, M, G, T, P or E, optionally followed by i, iB or B", s[i:])
	}
	return base * mult, nil
}

// matchExtensions reports whether path's extension (the text after the
// last '.' in its final path segment) case-insensitively matches any of
// extList's comma-separated entries.
func matchExtensions(path, extList string) bool {
	base := path
	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}
	dot := strings.LastIndexByte(base, '.')
	if dot < 0 || dot == len(base)-1 {
		return false
	}
	ext := base[dot+1:]
	for _, candidate := range strings.Split(extList, ",") {
		if candidate == "" {
			continue
		}
		if strings.EqualFold(candidate, ext) {
			return true
		}
	}
	return false
}

// Exclude reports whether any configured extended filter excludes a file
// with the given name, size, and modification time. It ORs every
// configured rule, matching extfilter_exclude's cumulative semantics.
func Exclude(filters []ExtFilter, name string, size int64, mtime time.Time) bool {
	mt := mtime.Unix()
	for _, f := range filters {
		switch f.Kind {
		case ExtSizeEq:
			if size != f.Size {
				return true
			}
		case ExtSizeGt:
			if size <= f.Size {
				return true
			}
		case ExtSizeLt:
			if size >= f.Size {
				return true
			}
		case ExtSizeGtEq:
			if size < f.Size {
				return true
			}
		case ExtSizeLtEq:
			if size > f.Size {
				return true
			}
		case ExtNoExt:
			if matchExtensions(name, f.Param) {
				return true
			}
		case ExtOnlyExt:
			if !matchExtensions(name, f.Param) {
				return true
			}
		case ExtNoStr:
			if strings.Contains(name, f.Param) {
				return true
			}
		case ExtOnlyStr:
			if !strings.Contains(name, f.Param) {
				return true
			}
		case ExtNewer:
			if mt < f.Size {
				return true
			}
		case ExtOlder:
			if mt >= f.Size {
				return true
			}
		}
	}
	return false
}
