//go:build linux

package action

import (
	"errors"
	"fmt"
	"os"

	"github.com/jodyjdupes/jdupes-go/internal/coreerr"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/record"
	"golang.org/x/sys/unix"
)

// kernelDedupeMaxSize is the largest single FIDEDUPERANGE request the
// kernel accepts per call, matching KERNEL_DEDUP_MAX_SIZE.
const kernelDedupeMaxSize = 16 * 1024 * 1024

// DedupeResult reports what happened to one chain member considered
// for block-level dedup against the chain's source file.
type DedupeResult struct {
	Source  string
	Target  string
	Skipped bool
	Reason  string
	Err     error
}

// DedupeChain issues FIDEDUPERANGE requests to make every duplicate in
// chain share storage blocks with the source, skipping members that are
// already true hard links of the source (the kernel call neither needs
// nor wants those), ported from dedupefiles()'s Linux branch. Each
// remaining target is re-stated with fileHasChanged just before its
// dedupe request and skipped if it changed since the scan.
//
// If the chain head can't be opened, later members are tried as the
// source in turn, mirroring dedupefiles' "keep going down the dupe
// list until it is exhausted" fallback.
func DedupeChain(head *record.Record) []DedupeResult {
	chain := record.Chain(head)
	if len(chain) < 2 {
		return nil
	}

	srcIdx := 0
	var srcFile *os.File
	var err error
	for srcIdx < len(chain) {
		srcFile, err = os.Open(chain[srcIdx].Path)
		if err == nil {
			break
		}
		logger.Warn("dedupe: open failed, skipping as source", "path", chain[srcIdx].Path, "error", err)
		srcIdx++
	}
	if srcFile == nil {
		return []DedupeResult{{Err: fmt.Errorf("no chain member could be opened as a dedupe source")}}
	}
	defer srcFile.Close()
	src := chain[srcIdx]

	var results []DedupeResult
	for i, target := range chain {
		if i == srcIdx {
			continue
		}
		res := DedupeResult{Source: src.Path, Target: target.Path}

		if target.Device == src.Device && target.Inode == src.Inode {
			res.Skipped = true
			res.Reason = "already a hard link of the source"
			results = append(results, res)
			continue
		}

		if changed, err := fileHasChanged(target); err != nil || changed {
			if err == nil {
				err = coreerr.New(coreerr.StatDrifted, target.Path, errors.New("changed since it was scanned"))
			}
			res.Err = err
			res.Skipped = true
			res.Reason = "file changed since it was scanned"
			results = append(results, res)
			continue
		}

		if err := dedupeOnePair(srcFile, target); err != nil {
			res.Err = err
			res.Skipped = true
		}
		results = append(results, res)
	}
	return results
}

func dedupeOnePair(srcFile *os.File, target *record.Record) error {
	destFile, err := os.Open(target.Path)
	if err != nil {
		return coreerr.FromIO(target.Path, err)
	}
	defer destFile.Close()

	remain := target.Size
	for remain > 0 {
		length := remain
		if length > kernelDedupeMaxSize {
			length = kernelDedupeMaxSize
		}
		offset := target.Size - remain

		rng := unix.FileDedupeRange{
			Src_offset: uint64(offset),
			Src_length: uint64(length),
			Info: []unix.FileDedupeRangeInfo{
				{
					Dest_fd:     int64(destFile.Fd()),
					Dest_offset: uint64(offset),
				},
			},
		}
		if err := unix.IoctlFileDedupeRange(int(srcFile.Fd()), &rng); err != nil {
			return fmt.Errorf("FIDEDUPERANGE: %w", err)
		}
		status := rng.Info[0].Status
		if status < 0 {
			return fmt.Errorf("dedupe range rejected, status %d", status)
		}
		if status == unix.FILE_DEDUPE_RANGE_DIFFERS {
			return coreerr.New(coreerr.StatDrifted, target.Path, errors.New("not identical, files modified between scan and dedupe"))
		}
		consumed := rng.Info[0].Bytes_deduped
		if consumed == 0 {
			return fmt.Errorf("kernel deduped zero bytes, aborting to avoid an infinite loop")
		}
		remain -= int64(consumed)
	}
	return nil
}
