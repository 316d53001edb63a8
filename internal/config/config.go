// Package config holds the scan/action parameters parsed once from CLI
// flags and passed by pointer to internal/scan, which derives the walker,
// match tree and registrar settings from it, replacing the original's
// global flags bitmask.
package config

import (
	"github.com/jodyjdupes/jdupes-go/internal/filter"
	"github.com/jodyjdupes/jdupes-go/internal/hashing"
	"github.com/jodyjdupes/jdupes-go/internal/registrar"
	"github.com/jodyjdupes/jdupes-go/internal/walk"
)

// Config is the full set of knobs a scan or action run needs. It is
// built once by cmd/scanflags from parsed pflag values and never
// mutated afterward.
type Config struct {
	Roots []string

	Recursion      walk.Recursion
	RecurseFrom    int // 1-based root index from which --recurse-split forces recursion; 0 disables the split
	OneFileSystem  bool
	FollowSymlinks bool
	NoHidden       bool

	ConsiderHardlinks bool
	Isolate           bool
	Permissions       bool
	ZeroMatch         bool
	Quick             bool
	PartialOnly       bool

	NoChangeCheck bool
	NoTravCheck   bool

	Order      registrar.Order
	Reverse    bool
	ParamOrder bool

	Algorithm hashing.AlgorithmKind
	ChunkSize int

	ExtFilters []filter.ExtFilter
	HashDBPath string

	Exclude filter.ExcludeMatcher
}

// Default returns a Config with the same defaults the original ships
// with: recurse off, xxHash64, no ext filters.
func Default() *Config {
	return &Config{
		Recursion: walk.NoRecurse,
		Algorithm: hashing.XXHash64,
		Order:     registrar.ByName,
	}
}
