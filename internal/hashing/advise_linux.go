//go:build linux

package hashing

import (
	"os"

	"golang.org/x/sys/unix"
)

// AdviseSequential hints to the kernel that f will be read start to
// finish and should be prefetched, the posix_fadvise
// SEQUENTIAL+WILLNEED pairing issued before every content read.
// Best-effort: a failed advisory is never treated as an error.
func AdviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_WILLNEED)
}
