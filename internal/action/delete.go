package action

import (
	"errors"
	"os"

	"github.com/jodyjdupes/jdupes-go/internal/coreerr"
	"github.com/jodyjdupes/jdupes-go/internal/logger"
	"github.com/jodyjdupes/jdupes-go/internal/record"
)

// Preserver decides, for one duplicate chain, which members (by index
// into the chain slice, head first) to keep. Index 0 is always a valid
// choice. NonInteractivePreserver and an interactive prompt-driven one
// (internal/prompt) are the two callers DeleteChain expects.
type Preserver func(chain []*record.Record) (preserve []bool)

// NonInteractivePreserver preserves only the chain head, mirroring
// deletefiles' non-prompt branch ("preserve only the first file").
func NonInteractivePreserver(chain []*record.Record) []bool {
	preserve := make([]bool, len(chain))
	preserve[0] = true
	return preserve
}

// DeleteResult reports what happened to one chain member considered
// for deletion.
type DeleteResult struct {
	Path      string
	Preserved bool
	Deleted   bool
	Reason    string
	Err       error
}

// DeleteChain walks one duplicate chain's members and removes every one
// not marked for preservation by pick, checking file_has_changed-style
// staleness immediately before each removal, mirroring deletefiles'
// inner loop over dupelist.
func DeleteChain(head *record.Record, pick Preserver) []DeleteResult {
	chain := record.Chain(head)
	if len(chain) == 0 {
		return nil
	}

	preserve := pick(chain)
	results := make([]DeleteResult, len(chain))

	for i, rec := range chain {
		res := DeleteResult{Path: rec.Path}
		if i < len(preserve) && preserve[i] {
			res.Preserved = true
			results[i] = res
			continue
		}

		changed, err := fileHasChanged(rec)
		if err != nil {
			res.Err = err
			res.Reason = "could not verify file before deletion"
			results[i] = res
			continue
		}
		if changed {
			res.Err = coreerr.New(coreerr.StatDrifted, rec.Path, errors.New("changed since it was scanned"))
			res.Reason = "file changed since being scanned"
			results[i] = res
			continue
		}

		if err := os.Remove(rec.Path); err != nil {
			res.Err = coreerr.FromIO(rec.Path, err)
			res.Reason = "unable to delete file"
			logger.Warn("delete failed", "path", rec.Path, "error", err)
		} else {
			res.Deleted = true
		}
		results[i] = res
	}
	return results
}
