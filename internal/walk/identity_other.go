//go:build !linux

package walk

import (
	"os"
	"syscall"
)

func identityOf(info os.FileInfo) (dev, ino uint64) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return uint64(st.Dev), uint64(st.Ino)
}

// IdentityOf exposes identityOf for callers outside this package that
// need to re-derive a file's device/inode pair, such as the action
// package's pre-link TOCTOU check.
func IdentityOf(info os.FileInfo) (dev, ino uint64) {
	return identityOf(info)
}

func deviceOf(info os.FileInfo) uint64 {
	dev, _ := identityOf(info)
	return dev
}

func nlinkOf(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 1
	}
	return uint64(st.Nlink)
}

func ownerOf(info os.FileInfo) (uid, gid uint32) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0
	}
	return st.Uid, st.Gid
}

// OwnerOf exposes ownerOf for the action package's TOCTOU re-stat,
// which compares ownership against the values captured at scan time.
func OwnerOf(info os.FileInfo) (uid, gid uint32) {
	return ownerOf(info)
}

// atimeOf returns 0 here: the access-time field's name differs across
// the non-Linux Stat_t variants, and nothing in the pipeline depends on
// access time beyond recording it when the platform offers it cheaply.
func atimeOf(info os.FileInfo) int64 { return 0 }
