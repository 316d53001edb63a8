//go:build !unix

package scan

import (
	"context"
	"sync/atomic"
)

// watchSoftAbortToggle is a no-op on platforms without SIGUSR1; the
// soft-abort flag stays at its default (off) for the whole run.
func watchSoftAbortToggle(ctx context.Context, flag *atomic.Bool) {}
