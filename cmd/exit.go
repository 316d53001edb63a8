package cmd

import (
	"errors"

	"github.com/jodyjdupes/jdupes-go/internal/coreerr"
)

// exitCode extracts a specific process exit code from err, if it carries
// one (e.g. the error-on-dupe action's 255), so Execute can honor it
// instead of always exiting 1.
func exitCode(err error) (int, bool) {
	var exitErr *coreerr.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
