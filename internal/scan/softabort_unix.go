//go:build unix

package scan

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/jodyjdupes/jdupes-go/internal/logger"
)

// watchSoftAbortToggle flips the soft-abort flag each time SIGUSR1 is
// delivered, printing the new state. With soft-abort on, an interrupt
// stops further scanning but still runs the selected action on the
// chains confirmed so far instead of failing the whole run.
func watchSoftAbortToggle(ctx context.Context, flag *atomic.Bool) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)
	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				now := !flag.Load()
				flag.Store(now)
				if now {
					logger.Warn("soft-abort enabled: an interrupt will still run the selected action on confirmed duplicates")
				} else {
					logger.Warn("soft-abort disabled: an interrupt will abort the run")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
