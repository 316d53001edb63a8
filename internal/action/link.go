// Package action executes the file-level operations a confirmed
// duplicate chain can be subjected to: hard-linking, symlinking,
// deletion, and (on Linux) block-level dedup. Every destructive step
// re-validates its target immediately beforehand, mirroring the
// original's act_linkfiles.c/act_deletefiles.c/act_dedupefiles.c TOCTOU
// guards.
package action

import (
	"errors"
	"fmt"
	"os"

	"github.com/jodyjdupes/jdupes-go/internal/coreerr"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/pathutil"
	"github.com/jodyjdupes/jdupes-go/internal/record"
)

// LinkMode selects hard-link or symlink behavior for LinkChain.
type LinkMode int

const (
	HardLink LinkMode = iota
	SoftLink
)

// LinkOptions configures LinkChain.
type LinkOptions struct {
	Mode LinkMode
	// ConsiderHardlinks mirrors -H: when set, chain members that are
	// already hard links of each other are still reported instead of
	// silently skipped.
	ConsiderHardlinks bool
	DryRun            bool
}

// LinkResult reports what happened to one chain member.
type LinkResult struct {
	Source  string
	Target  string
	Skipped bool
	Reason  string
	Err     error
}

// LinkChain replaces every file in chain (after the chosen source) with
// a link to the source, hard or soft depending on opts.Mode.
//
// Hard-link mode starts with the chain head as the source, matching
// linkfiles(files, true): the head is the first member in the
// registrar's ordering. When the source reaches the hard-link cap or is
// found changed since the scan, the current target becomes the source
// for the rest of the chain. Soft-link mode instead picks the first
// chain member that is not itself a symlink, since symlinking a symlink
// would chain indirection the original avoids; if every member is a
// symlink, the whole chain is skipped.
func LinkChain(head *record.Record, opts LinkOptions) []LinkResult {
	chain := record.Chain(head)
	if len(chain) < 2 {
		return nil
	}

	var results []LinkResult

	switch opts.Mode {
	case HardLink:
		results = linkHard(chain, opts)
	case SoftLink:
		results = linkSoft(chain, opts)
	}
	return results
}

// maxLinksPerInode is a conservative stand-in for the platform's
// hard-link-count ceiling (LINK_MAX). golang.org/x/sys/unix does not
// expose pathconf(_PC_LINK_MAX) on Linux, so this is a fixed constant
// well under ext4's 65000 rather than a queried value; see
// act_linkfiles.c's Windows 1024-link-cap handling, which this mirrors
// in spirit (promote the source and keep going, never abort the chain).
const maxLinksPerInode = 64000

func linkHard(chain []*record.Record, opts LinkOptions) []LinkResult {
	src := chain[0]
	linkCount := src.Nlink
	var results []LinkResult

	for _, target := range chain[1:] {
		if linkCount >= maxLinksPerInode {
			logger.Warn("hard-link count cap reached, promoting source", "old_source", src.Path, "new_source", target.Path)
			src = target
			linkCount = target.Nlink
			continue
		}

		res := LinkResult{Source: src.Path, Target: target.Path}

		if target.Device != src.Device {
			res.Skipped = true
			res.Reason = "target is on a different device than the source"
			results = append(results, res)
			continue
		}
		if target.Inode == src.Inode {
			// Already hard-linked to the source: report it (only when
			// asked to) but there is nothing to do on disk.
			res.Skipped = true
			res.Reason = "already a hard link of the source"
			if opts.ConsiderHardlinks {
				results = append(results, res)
			}
			continue
		}

		// A drifted source does not abandon the rest of the chain: the
		// current target becomes the new source and linking continues
		// against it.
		if changed, err := fileHasChanged(src); err != nil || changed {
			logger.Warn("source changed since it was scanned, promoting target to new source",
				"old_source", src.Path, "new_source", target.Path, "error", err)
			res.Skipped = true
			res.Reason = "source changed since it was scanned; target promoted to new source"
			results = append(results, res)
			src = target
			linkCount = target.Nlink
			continue
		}

		if res.Err = linkOneHard(src, target, opts.DryRun); res.Err != nil {
			res.Skipped = true
		} else {
			linkCount++
		}
		results = append(results, res)
	}
	return results
}

func linkOneHard(src, target *record.Record, dryRun bool) error {
	if err := checkWritable(target.Path); err != nil {
		return err
	}
	if changed, err := fileHasChanged(target); err != nil {
		return fmt.Errorf("checking target %q: %w", target.Path, err)
	} else if changed {
		return coreerr.New(coreerr.StatDrifted, target.Path, errors.New("changed since it was scanned"))
	}

	if dryRun {
		logger.Info("would hard-link", "source", src.Path, "target", target.Path)
		return nil
	}

	return safeLink(target.Path, func(targetPath string) error {
		return os.Link(src.Path, targetPath)
	})
}

func linkSoft(chain []*record.Record, opts LinkOptions) []LinkResult {
	srcIdx := firstNonSymlink(chain)
	if srcIdx < 0 {
		return []LinkResult{{
			Err:    coreerr.New(coreerr.NotRegular, "", errors.New("every member of this chain is a symlink, nothing to link against")),
			Reason: "no eligible source",
		}}
	}
	src := chain[srcIdx]
	var results []LinkResult

	for i, target := range chain {
		if i == srcIdx {
			continue
		}
		res := LinkResult{Source: src.Path, Target: target.Path}
		if target.IsSymlink {
			res.Skipped = true
			res.Reason = "target is itself a symlink"
			results = append(results, res)
			continue
		}
		if res.Err = linkOneSoft(src, target, opts.DryRun); res.Err != nil {
			res.Skipped = true
		}
		results = append(results, res)
	}
	return results
}

func firstNonSymlink(chain []*record.Record) int {
	for i, r := range chain {
		if !r.IsSymlink {
			return i
		}
	}
	return -1
}

func linkOneSoft(src, target *record.Record, dryRun bool) error {
	if err := checkWritable(target.Path); err != nil {
		return err
	}
	if changed, err := fileHasChanged(src); err != nil {
		return fmt.Errorf("checking source %q: %w", src.Path, err)
	} else if changed {
		return coreerr.New(coreerr.StatDrifted, src.Path, errors.New("source changed since it was scanned"))
	}
	if changed, err := fileHasChanged(target); err != nil {
		return fmt.Errorf("checking target %q: %w", target.Path, err)
	} else if changed {
		return coreerr.New(coreerr.StatDrifted, target.Path, errors.New("changed since it was scanned"))
	}

	rel, err := pathutil.RelativeSymlinkTarget(src.Path, target.Path)
	if err != nil {
		if errors.Is(err, pathutil.ErrSamePath) {
			return coreerr.New(coreerr.NotApplicable, target.Path, err)
		}
		return fmt.Errorf("computing relative symlink target: %w", err)
	}

	if dryRun {
		logger.Info("would symlink", "source", src.Path, "target", target.Path, "relative", rel)
		return nil
	}

	return safeLink(target.Path, func(targetPath string) error {
		return os.Symlink(rel, targetPath)
	})
}

// checkWritable mirrors the access(path, W_OK) probe before attempting
// any link: refuse read-only targets up front instead of discovering
// the failure mid-transaction.
func checkWritable(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return coreerr.FromIO(path, err)
	}
	if info.Mode().Perm()&0o200 == 0 {
		return coreerr.New(coreerr.NotApplicable, path, errors.New("not writable"))
	}
	return nil
}
