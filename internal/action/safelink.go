package action

import (
	"fmt"
	"os"

	"github.com/jodyjdupes/jdupes-go/internal/logger"
)

// safeLink replaces target with a link (hard or relative symlink) to
// src without ever leaving target missing on disk: the original file is
// first renamed aside, the link is created at target's original name,
// and only once that succeeds is the renamed-aside copy removed. Every
// failure path rolls back to the prior state, ported from
// act_linkfiles.c's rename/link/unlink/rollback sequence.
//
// createLink is called with target's original path and should create
// whichever kind of link the caller wants (hard link to src, or
// symlink to a precomputed relative path).
func safeLink(target string, createLink func(target string) error) error {
	log := logger.Operation("safe_link", "path", target)
	tempPath := target + ".__jdupesgo__.tmp"

	if err := os.Rename(target, tempPath); err != nil {
		return fmt.Errorf("staging %q for linking: %w", target, err)
	}

	if err := createLink(target); err != nil {
		// Linking failed; put the original file back.
		if rbErr := os.Rename(tempPath, target); rbErr != nil {
			log.Error("cannot restore original after failed link",
				"original", target, "staged_as", tempPath, "error", rbErr)
			return fmt.Errorf("link failed (%w) and rollback failed (%v); original file left at %q", err, rbErr, tempPath)
		}
		return fmt.Errorf("creating link at %q: %w", target, err)
	}

	if err := os.Remove(tempPath); err != nil {
		// Couldn't clean up the staged original; undo the link and
		// restore it instead of leaving an orphaned temp file.
		log.Warn("cannot delete staged original, reverting", "staged_as", tempPath, "error", err)
		if rmErr := os.Remove(target); rmErr != nil {
			log.Error("cannot remove new link to restore original file", "path", target, "error", rmErr)
			return fmt.Errorf("link created but staged original could not be removed (%w), and the new link could not be removed either (%v); manual cleanup required at %q and %q", err, rmErr, target, tempPath)
		}
		if rbErr := os.Rename(tempPath, target); rbErr != nil {
			log.Error("cannot revert staged original to its original name", "original", target, "staged_as", tempPath, "error", rbErr)
			return fmt.Errorf("link removed but could not restore staged original: %w", rbErr)
		}
		return nil
	}

	return nil
}
