//go:build !linux

package hashing

import "os"

// AdviseSequential is a no-op on platforms without posix_fadvise.
func AdviseSequential(f *os.File) {}
