package action

import (
	"os"

	"github.com/jodyjdupes/jdupes-go/internal/coreerr"
	"github.com/jodyjdupes/jdupes-go/internal/record"
	"github.com/jodyjdupes/jdupes-go/internal/walk"
)

// NoChangeCheck disables fileHasChanged's re-stat entirely, mirroring
// -t/--no-change-check. Actions set this once at startup from the
// parsed CLI flags.
var NoChangeCheck bool

// fileHasChanged re-stats rec.Path and reports whether anything the
// scan recorded about it has since changed, grounded on filestat.c's
// file_has_changed: inode, size, device, mode, mtime, uid/gid, and
// symlink-ness are all re-checked immediately before a destructive
// action touches the file.
func fileHasChanged(rec *record.Record) (bool, error) {
	if NoChangeCheck {
		return false, nil
	}
	if !rec.StatValid {
		return true, nil
	}

	info, err := os.Lstat(rec.Path)
	if err != nil {
		return false, coreerr.FromIO(rec.Path, err)
	}

	isSymlink := info.Mode()&os.ModeSymlink != 0
	if isSymlink != rec.IsSymlink {
		return true, nil
	}

	target := info
	if isSymlink {
		target, err = os.Stat(rec.Path)
		if err != nil {
			return false, coreerr.FromIO(rec.Path, err)
		}
	}

	dev, ino := walk.IdentityOf(target)
	if ino != rec.Inode || dev != rec.Device {
		return true, nil
	}
	if target.Size() != rec.Size {
		return true, nil
	}
	if uint32(target.Mode()) != rec.Mode {
		return true, nil
	}
	if target.ModTime().Unix() != rec.MTime {
		return true, nil
	}
	uid, gid := walk.OwnerOf(target)
	if uid != rec.UID || gid != rec.GID {
		return true, nil
	}

	return false, nil
}
