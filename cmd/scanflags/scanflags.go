// Package scanflags registers the flag set shared by every duplicate-
// finding action subcommand (scan, summarize, delete, link, dedupe,
// print-unique, error-on-dupe, json), the way the teacher's cmd/hash,
// cmd/diff, and cmd/calc share --exclude/--ignore-file registration.
package scanflags

import (
	"fmt"
	"os"

	"github.com/jodyjdupes/jdupes-go/internal/config"
	"github.com/jodyjdupes/jdupes-go/internal/filter"
	"github.com/jodyjdupes/jdupes-go/internal/hashing"
	"github.com/jodyjdupes/jdupes-go/internal/registrar"
	"github.com/jodyjdupes/jdupes-go/internal/walk"
	"github.com/spf13/cobra"
)

// Values holds the raw flag destinations Register binds to. Call
// Build after cobra has parsed args to turn them into a *config.Config.
type Values struct {
	Recurse           bool
	RecurseAfter      bool
	OneFileSystem     bool
	NoHidden          bool
	ConsiderHardlinks bool
	FollowSymlinks    bool
	Isolate           bool
	Permissions       bool
	ZeroMatch         bool
	Quick             bool
	PartialOnly       int
	NoChangeCheck     bool
	NoTravCheck       bool
	Reverse           bool
	ParamOrder        bool
	Order             string
	Algorithm         string
	ExtFilters        []string
	HashDBPath        string
	Exclude           []string
	ExcludeFile       string
}

// Register adds the shared scan flags to cmd and returns the Values
// struct they are bound to.
func Register(cmd *cobra.Command) *Values {
	v := &Values{}
	f := cmd.Flags()
	f.BoolVarP(&v.Recurse, "recurse", "r", false, "Recurse into subdirectories of every root")
	f.BoolVarP(&v.RecurseAfter, "recurse-split", "R", false, "Recurse into root arguments given after this flag on the command line; roots given before it are scanned non-recursively")
	f.BoolVarP(&v.OneFileSystem, "one-file-system", "1", false, "Do not match files on different filesystems/devices")
	f.BoolVar(&v.NoHidden, "no-hidden", false, "Exclude hidden files and directories")
	f.BoolVarP(&v.ConsiderHardlinks, "hard-links", "H", false, "Consider hard-linked files as duplicates instead of excluding them")
	f.BoolVarP(&v.FollowSymlinks, "follow-symlinks", "s", false, "Follow symlinks when walking directory trees")
	f.BoolVarP(&v.Isolate, "isolate", "I", false, "Do not match files reached from the same root argument")
	f.BoolVarP(&v.Permissions, "permissions", "p", false, "Only consider files with identical owner/group/permissions as duplicates")
	f.BoolVar(&v.ZeroMatch, "zero-match", false, "Treat zero-length files as duplicates of each other")
	f.BoolVarP(&v.Quick, "quick", "Q", false, "Trust the full hash match without a byte-for-byte confirmation (faster, less safe)")
	f.CountVar(&v.PartialOnly, "partial-only", "Only compare the first 4096 bytes of each file, never the full contents; must be given twice to take effect (unsafe)")
	f.BoolVarP(&v.NoChangeCheck, "no-change-check", "t", false, "Skip the re-stat safety check before a destructive action")
	f.BoolVar(&v.NoTravCheck, "no-trav-check", false, "Disable the directory traversal guard (allows revisiting the same directory)")
	f.BoolVarP(&v.Reverse, "reverse", "i", false, "Reverse the order duplicate chains are sorted in")
	f.StringVarP(&v.Order, "order", "o", "name", "Primary sort order for duplicate chains: name or time")
	f.BoolVarP(&v.ParamOrder, "param-order", "O", false, "Order duplicates by the order their root arguments were given before the primary sort key")
	f.StringVar(&v.Algorithm, "hash-algorithm", "xxhash", "Content hash algorithm to use: xxhash or jodyhash")
	f.StringArrayVarP(&v.ExtFilters, "ext-filter", "X", nil, "Extended filter expression (e.g. size+:1M, noext:tmp); may be given multiple times")
	f.StringVar(&v.HashDBPath, "hash-db", "", "Path to a persistent hash cache file to read from and update")
	f.StringArrayVar(&v.Exclude, "exclude", nil, "Exclude paths matching this gitignore-style glob; may be given multiple times")
	f.StringVar(&v.ExcludeFile, "exclude-file", "", "Read additional --exclude-style patterns, one per line, from this file")
	return v
}

// Build turns parsed flag values plus the positional root arguments
// into a *config.Config ready for internal/scan.Scan.
func (v *Values) Build(roots []string) (*config.Config, error) {
	cfg := config.Default()
	cfg.Roots = roots

	if v.Recurse {
		cfg.Recursion = walk.Recurse
	}
	if v.RecurseAfter {
		cfg.RecurseFrom = recurseSplitIndex(roots)
		if cfg.RecurseFrom == 0 {
			// The flag parsed but never appeared as its own argument on
			// the command line, so it was grouped with other short flags
			// (e.g. -rR) and its position among the roots is lost.
			return nil, fmt.Errorf("-R/--recurse-split must be given as a separate argument so the roots it applies to are unambiguous")
		}
	}
	cfg.OneFileSystem = v.OneFileSystem
	cfg.NoHidden = v.NoHidden
	cfg.ConsiderHardlinks = v.ConsiderHardlinks
	cfg.FollowSymlinks = v.FollowSymlinks
	cfg.Isolate = v.Isolate
	cfg.Permissions = v.Permissions
	cfg.ZeroMatch = v.ZeroMatch
	cfg.Quick = v.Quick
	// Partial-only drops the byte-identity guarantee entirely, so it
	// has to be asked for twice before it takes effect.
	switch {
	case v.PartialOnly == 1:
		return nil, fmt.Errorf("--partial-only is dangerous (files matching only in their first 4096 bytes are treated as identical); give it twice to confirm")
	case v.PartialOnly >= 2:
		cfg.PartialOnly = true
	}
	cfg.NoChangeCheck = v.NoChangeCheck
	cfg.NoTravCheck = v.NoTravCheck
	cfg.Reverse = v.Reverse
	cfg.ParamOrder = v.ParamOrder
	cfg.HashDBPath = v.HashDBPath
	if cfg.HashDBPath == "." {
		cfg.HashDBPath = "jdupes_hashdb.txt"
	}

	switch v.Order {
	case "name", "":
		cfg.Order = registrar.ByName
	case "time":
		cfg.Order = registrar.ByMTime
	default:
		return nil, fmt.Errorf("unknown --order %q (expected name or time)", v.Order)
	}

	switch v.Algorithm {
	case "xxhash", "":
		cfg.Algorithm = hashing.XXHash64
	case "jodyhash":
		cfg.Algorithm = hashing.Jody
	default:
		return nil, fmt.Errorf("unknown --hash-algorithm %q (expected xxhash or jodyhash)", v.Algorithm)
	}

	for _, raw := range v.ExtFilters {
		ef, err := filter.ParseExtFilter(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing --ext-filter %q: %w", raw, err)
		}
		cfg.ExtFilters = append(cfg.ExtFilters, ef)
	}

	patterns := append([]string(nil), v.Exclude...)
	if v.ExcludeFile != "" {
		fromFile, err := filter.LoadExcludeFile(v.ExcludeFile)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, fromFile...)
	}
	if len(patterns) > 0 {
		cfg.Exclude = filter.NewGlobExcluder(patterns)
	}

	return cfg, nil
}

// recurseSplitIndex locates where -R/--recurse-split fell among the raw
// command-line arguments relative to the positional root arguments, and
// returns the 1-based index of the first root that should be walked
// recursively (0 if the flag was never found on the command line).
//
// cobra normalizes flags away from positional args before Build ever sees
// roots, losing the split point's position, so this walks os.Args itself
// the same way the original's nonoptafter() scans raw argv: advance a
// cursor through roots in the order they appear on the command line, and
// record where the split flag fell relative to that cursor. A root whose
// own value happens to equal "-R"/"--recurse-split" defeats this, same
// caveat the original's argv scan has.
func recurseSplitIndex(roots []string) int {
	matched := 0
	splitAt := 0
	for _, arg := range os.Args[1:] {
		switch {
		case arg == "-R" || arg == "--recurse-split":
			if splitAt == 0 {
				splitAt = matched + 1
			}
		case matched < len(roots) && arg == roots[matched]:
			matched++
		}
	}
	return splitAt
}
