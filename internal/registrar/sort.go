package registrar

import (
	"github.com/jodyjdupes/jdupes-go/internal/record"
	"github.com/maruel/natural"
)

// Comparator orders two candidate chain members for insertion, mirroring
// sort_pairs_by_mtime/sort_pairs_by_filename's tie-break chain: param
// order first (if enabled), then the requested primary key, then a
// natural-sort fallback so "file2" sorts before "file10".
type Comparator func(a, b *record.Record) int

// Options configures which comparator NewComparator builds.
type Options struct {
	Order      Order
	Reverse    bool
	ParamOrder bool
}

// Order selects the primary sort key.
type Order int

const (
	ByMTime Order = iota
	ByName
)

// NewComparator returns a Comparator for the given options. Every
// comparator checks --param-order first when enabled, exactly as
// sort_pairs_by_param_order runs before the mtime/name tiebreak in the
// original, then falls through to the primary key, then to a
// natural-sort comparison of the path as a final tiebreaker.
func NewComparator(opts Options) Comparator {
	dir := 1
	if opts.Reverse {
		dir = -1
	}
	return func(a, b *record.Record) int {
		if opts.ParamOrder && a.UserOrder != b.UserOrder {
			if a.UserOrder < b.UserOrder {
				return -dir
			}
			return dir
		}
		switch opts.Order {
		case ByMTime:
			if a.MTime != b.MTime {
				if a.MTime < b.MTime {
					return -dir
				}
				return dir
			}
		case ByName:
			if a.Path != b.Path {
				if natural.Less(a.Path, b.Path) {
					return -dir
				}
				return dir
			}
		}
		if a.Path == b.Path {
			return 0
		}
		if natural.Less(a.Path, b.Path) {
			return -dir
		}
		return dir
	}
}
