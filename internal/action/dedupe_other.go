//go:build !linux

package action

import "github.com/jodyjdupes/jdupes-go/internal/record"

// DedupeResult reports what happened to one chain member considered
// for dedup against the chain's source file.
type DedupeResult struct {
	Source  string
	Target  string
	Skipped bool
	Reason  string
	Err     error
}

// DedupeChain falls back to hard-linking on platforms without
// FIDEDUPERANGE, following the original's macOS branch ("clonefile() is
// basically a hard link function, so linkfiles will do the work").
// There is no equivalent copy-on-write reflink primitive exposed
// through golang.org/x/sys/unix outside Linux in this codebase's
// dependency set, so every non-Linux platform gets the hard-link
// fallback rather than a platform-specific clone syscall.
func DedupeChain(head *record.Record) []DedupeResult {
	linkResults := LinkChain(head, LinkOptions{Mode: HardLink, ConsiderHardlinks: true})
	out := make([]DedupeResult, len(linkResults))
	for i, r := range linkResults {
		out[i] = DedupeResult{
			Source:  r.Source,
			Target:  r.Target,
			Skipped: r.Skipped,
			Reason:  r.Reason,
			Err:     r.Err,
		}
	}
	return out
}
