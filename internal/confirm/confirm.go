// Package confirm performs the definitive byte-for-byte comparison
// between two candidate files after their hashes have matched, ported
// from the original's match.c confirmmatch.
package confirm

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/jodyjdupes/jdupes-go/internal/coreerr"
	"github.com/jodyjdupes/jdupes-go/internal/hashing"
)

const defaultChunkSize = 64 * 1024

// Confirm reports whether the contents of pathA and pathB are
// byte-for-byte identical. size is the expected size of both files
// (the caller has already matched them by size and content hash);
// chunkSize of 0 selects a reasonable default.
func Confirm(ctx context.Context, pathA, pathB string, size int64, chunkSize int) (bool, error) {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	fa, err := os.Open(pathA)
	if err != nil {
		return false, coreerr.FromIO(pathA, err)
	}
	defer fa.Close()
	fb, err := os.Open(pathB)
	if err != nil {
		return false, coreerr.FromIO(pathB, err)
	}
	defer fb.Close()

	hashing.AdviseSequential(fa)
	hashing.AdviseSequential(fb)

	bufA := make([]byte, chunkSize)
	bufB := make([]byte, chunkSize)
	remaining := size

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		want := int64(chunkSize)
		if remaining < want {
			want = remaining
		}
		na, errA := io.ReadFull(fa, bufA[:want])
		nb, errB := io.ReadFull(fb, bufB[:want])
		if errA != nil && errA != io.EOF && errA != io.ErrUnexpectedEOF {
			return false, coreerr.FromIO(pathA, errA)
		}
		if errB != nil && errB != io.EOF && errB != io.ErrUnexpectedEOF {
			return false, coreerr.FromIO(pathB, errB)
		}
		if na != nb {
			return false, nil
		}
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		remaining -= int64(na)
		if na == 0 {
			break
		}
	}
	return true, nil
}
