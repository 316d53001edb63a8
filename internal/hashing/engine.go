// Package hashing computes the partial and full content hashes the match
// tree uses as a fast-fail filter before byte comparison. Two algorithms
// are available: a resumable custom block hash (jodyhash) and a faster
// non-resumable one (xxHash64, via github.com/cespare/xxhash/v2).
package hashing

import (
	"io"
	"os"

	"github.com/klauspost/cpuid/v2"
)

// AlgorithmKind selects which content-hash algorithm a run uses. It is
// recorded verbatim in the hash cache's header so a cache built with one
// algorithm is never mistaken for a cache built with the other.
type AlgorithmKind int

const (
	// Jody selects the resumable custom block hash.
	Jody AlgorithmKind = iota
	// XXHash64 selects the faster, non-resumable xxHash64.
	XXHash64
)

func (k AlgorithmKind) String() string {
	if k == XXHash64 {
		return "xxhash64"
	}
	return "jodyhash"
}

// ParseAlgorithmKind parses an algorithm name as produced by String
// ("jodyhash" or "xxhash64"). The hash cache header stores the
// algorithm as a number instead, which hashcache parses itself.
func ParseAlgorithmKind(s string) (AlgorithmKind, bool) {
	switch s {
	case "jodyhash":
		return Jody, true
	case "xxhash64":
		return XXHash64, true
	default:
		return 0, false
	}
}

// incrementalHash is the minimal state machine every content-hash
// algorithm exposes to Engine.
type incrementalHash interface {
	io.Writer
	Sum64() uint64
	Resumable() bool
}

func newHash(kind AlgorithmKind) incrementalHash {
	if kind == XXHash64 {
		return NewXXHash()
	}
	return NewJodyHash()
}

// PartialHashSize is the number of leading bytes hashed for the partial
// (fast-fail) signature, matching the original's PARTIAL_HASH_SIZE.
const PartialHashSize = 4096

// defaultChunkSize is used when auto-sizing from the CPU's L1 data cache
// is unavailable or yields something implausible.
const defaultChunkSize = 64 * 1024

const (
	minChunkSize = 4 * 1024
	maxChunkSize = 256 * 1024 * 1024
)

// AutoChunkSize returns half the detected L1 data cache size, clamped to
// a sane range, mirroring the original's cache-aware read sizing so a
// single read mostly stays resident in L1 during the hash loop.
func AutoChunkSize() int {
	l1 := cpuid.CPU.Cache.L1D
	if l1 <= 0 {
		return defaultChunkSize
	}
	size := l1 / 2
	if size < minChunkSize {
		return minChunkSize
	}
	if size > maxChunkSize {
		return maxChunkSize
	}
	return size
}

// Engine computes partial and full content hashes for files using a
// configured algorithm and chunk size.
type Engine struct {
	Kind      AlgorithmKind
	ChunkSize int
}

// NewEngine returns an Engine using the given algorithm and an
// automatically sized read chunk.
func NewEngine(kind AlgorithmKind) *Engine {
	return &Engine{Kind: kind, ChunkSize: AutoChunkSize()}
}

// State captures the end state of a partial hash computation, letting
// the full-hash pass resume from it instead of rereading the leading
// bytes, when the algorithm supports resuming.
type State struct {
	kind   AlgorithmKind
	value  uint64
	offset int64
}

// Partial computes the hash of the first min(size, PartialHashSize)
// bytes of f, starting at the current file offset (the caller is
// expected to have just opened or rewound f). It returns the digest and
// a State usable to resume the full hash, when the algorithm permits it.
func (e *Engine) Partial(f *os.File, size int64) (uint64, *State, error) {
	n := size
	if n > PartialHashSize {
		n = PartialHashSize
	}
	AdviseSequential(f)
	h := newHash(e.Kind)
	if err := copyN(f, h, n, e.ChunkSize); err != nil {
		return 0, nil, err
	}
	sum := h.Sum64()
	if !h.Resumable() {
		return sum, nil, nil
	}
	return sum, &State{kind: e.Kind, value: sum, offset: n}, nil
}

// ResumeState reconstructs the end state of a partial-hash pass from
// the digest alone, valid for algorithms whose running state is the
// last returned value (jodyhash). Full ignores the result for
// non-resumable algorithms, so callers may build it unconditionally.
func (e *Engine) ResumeState(partial uint64, offset int64) *State {
	return &State{kind: e.Kind, value: partial, offset: offset}
}

// Full computes the hash of the entire size bytes of f. If resume is
// non-nil and matches this engine's algorithm, hashing continues from
// resume's offset instead of starting over; otherwise f is rewound to
// offset 0 first.
func (e *Engine) Full(f *os.File, size int64, resume *State) (uint64, error) {
	var h incrementalHash
	var start int64

	if resume != nil && resume.kind == e.Kind && newHash(e.Kind).Resumable() {
		h = resumeHash(e.Kind, resume.value)
		start = resume.offset
	} else {
		h = newHash(e.Kind)
		start = 0
	}

	AdviseSequential(f)
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return 0, err
	}
	if err := copyN(f, h, size-start, e.ChunkSize); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

func resumeHash(kind AlgorithmKind, value uint64) incrementalHash {
	if kind == XXHash64 {
		// Unreachable: XXHash.Resumable() is always false, so Full never
		// calls resumeHash for this kind.
		return NewXXHash()
	}
	return Resume(value)
}

// copyN streams exactly n bytes (or until EOF, if n exceeds the
// remaining content) from r into w, chunkSize bytes at a time.
func copyN(r io.Reader, w io.Writer, n int64, chunkSize int) error {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, chunkSize)
	remaining := n
	for remaining > 0 {
		want := int64(chunkSize)
		if remaining < want {
			want = remaining
		}
		read, err := io.ReadFull(r, buf[:want])
		if read > 0 {
			if _, werr := w.Write(buf[:read]); werr != nil {
				return werr
			}
			remaining -= int64(read)
		}
		if err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil
			}
			return err
		}
	}
	return nil
}
