// Package hashcache persists per-path content hashes across runs, keyed
// by (path, mtime), so a repeated scan of an unchanged tree can skip
// rehashing files it has already hashed. The on-disk format and the
// in-memory BST it loads into are a direct port of the original's
// hashdb.c.
package hashcache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jodyjdupes/jdupes-go/internal/hashing"
	"github.com/zeebo/blake3"
)

const (
	minVersion = 1
	maxVersion = 1
	version    = 1
)

// Entry is one cached file's hash state.
type Entry struct {
	Path        string
	MTime       int64
	PartialHash uint64
	FullHash    uint64
	// HashCount is 1 if only the partial hash is cached, 2 if both the
	// partial and full hash are cached, matching the original's
	// hashcount field used to distinguish the two on-disk line shapes.
	HashCount int
}

type node struct {
	pathHash uint64
	entry    *Entry
	left     *node
	right    *node
}

// Cache is the in-memory hash cache: a BST keyed by a path hash (BLAKE3
// truncated to 64 bits, used purely as a bookkeeping key here and never
// as the file content hash), with collisions resolved by exact path
// comparison.
type Cache struct {
	root      *node
	Algorithm hashing.AlgorithmKind
	dirty     bool
}

// New returns an empty cache for the given content-hash algorithm. The
// algorithm is recorded in the cache file's header so a cache built
// under one algorithm is never silently reused under another.
func New(algo hashing.AlgorithmKind) *Cache {
	return &Cache{Algorithm: algo}
}

// pathHash64 hashes path's bytes into a 64-bit key used only to order
// and look up cache entries; it has no relationship to file content
// hashing and must never be confused with hashing.Engine's algorithms.
func pathHash64(path string) uint64 {
	sum := blake3.Sum256([]byte(path))
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(sum[i])
	}
	return v
}

// Lookup returns the cached entry for path if present and valid for
// mtime, or (nil, false) if there is no usable cached entry (absent,
// mtime mismatch, or invalidated by an earlier insert).
func (c *Cache) Lookup(path string, mtime int64) (*Entry, bool) {
	h := pathHash64(path)
	cur := c.root
	for cur != nil {
		if cur.pathHash == h && cur.entry.Path == path {
			if cur.entry.HashCount == 0 || cur.entry.MTime != mtime {
				return nil, false
			}
			return cur.entry, true
		}
		if h < cur.pathHash {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	return nil, false
}

// Store inserts or updates the cached entry for e.Path. If an entry for
// the same path already exists with a different mtime, it is
// invalidated in place (hashcount zeroed) rather than replaced, mirroring
// alloc_hashdb_entry's in-place invalidation behavior.
func (c *Cache) Store(e Entry) {
	c.dirty = true
	h := pathHash64(e.Path)
	if c.root == nil {
		c.root = &node{pathHash: h, entry: &e}
		return
	}
	cur := c.root
	for {
		if cur.pathHash == h && cur.entry.Path == e.Path {
			if cur.entry.MTime != e.MTime {
				cur.entry.HashCount = 0
			} else {
				*cur.entry = e
			}
			return
		}
		if h < cur.pathHash {
			if cur.left == nil {
				cur.left = &node{pathHash: h, entry: &e}
				return
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = &node{pathHash: h, entry: &e}
				return
			}
			cur = cur.right
		}
	}
}

// Dirty reports whether any entry has been stored since Load, meaning
// Save would write something new.
func (c *Cache) Dirty() bool { return c.dirty }

// Load reads a hash cache file, replacing the in-memory tree.
func Load(path string) (*Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening hash cache %q: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("reading hash cache header: %w", err)
		}
		return nil, fmt.Errorf("empty hash cache file %q", path)
	}
	header := sc.Text()
	algo, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("parsing hash cache header: %w", err)
	}

	c := New(algo)
	lineNum := 1
	for sc.Scan() {
		lineNum++
		line := sc.Text()
		if line == "" {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("hash cache %q line %d: %w", path, lineNum, err)
		}
		c.Store(entry)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading hash cache %q: %w", path, err)
	}
	c.dirty = false
	return c, nil
}

// parseHeader parses "jdupes hashdb:<ver>,<algo>,<hex_mtime>".
func parseHeader(line string) (hashing.AlgorithmKind, error) {
	prefix, rest, ok := strings.Cut(line, ":")
	if !ok || prefix != "jdupes hashdb" {
		return 0, fmt.Errorf("missing or malformed header")
	}
	fields := strings.Split(rest, ",")
	if len(fields) != 3 {
		return 0, fmt.Errorf("expected 3 header fields, got %d", len(fields))
	}
	ver, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad version: %w", err)
	}
	if ver < minVersion || ver > maxVersion {
		return 0, fmt.Errorf("unsupported hash cache version %d", ver)
	}
	algoNum, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad algorithm field: %w", err)
	}
	algo := hashing.Jody
	if algoNum == 1 {
		algo = hashing.XXHash64
	}
	return algo, nil
}

// parseEntry parses "<hashcount_hex>,<partial_hex>,<full_hex>,<mtime_hex>,<path>".
func parseEntry(line string) (Entry, error) {
	parts := strings.SplitN(line, ",", 5)
	if len(parts) != 5 {
		return Entry{}, fmt.Errorf("expected 5 comma-separated fields")
	}
	hashCount, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil || hashCount < 1 || hashCount > 2 {
		return Entry{}, fmt.Errorf("bad hashcount field %q", parts[0])
	}
	partial, err := strconv.ParseUint(parts[1], 16, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("bad partial hash field %q", parts[1])
	}
	var full uint64
	if hashCount == 2 {
		full, err = strconv.ParseUint(parts[2], 16, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("bad full hash field %q", parts[2])
		}
	}
	mtime, err := strconv.ParseUint(parts[3], 16, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("bad mtime field %q", parts[3])
	}
	return Entry{
		Path:        parts[4],
		MTime:       int64(mtime),
		PartialHash: partial,
		FullHash:    full,
		HashCount:   int(hashCount),
	}, nil
}

// Save writes the cache to path, overwriting any existing file.
func (c *Cache) Save(path string, updateMTime int64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating hash cache %q: %w", path, err)
	}
	defer f.Close()

	algoNum := 0
	if c.Algorithm == hashing.XXHash64 {
		algoNum = 1
	}
	if _, err := fmt.Fprintf(f, "jdupes hashdb:%d,%d,%016x\n", version, algoNum, uint64(updateMTime)); err != nil {
		return err
	}
	return c.walk(c.root, f)
}

func (c *Cache) walk(n *node, w io.Writer) error {
	if n == nil {
		return nil
	}
	if n.entry.HashCount != 0 {
		if n.entry.HashCount == 2 {
			if _, err := fmt.Fprintf(w, "%x,%016x,%016x,%016x,%s\n",
				n.entry.HashCount, n.entry.PartialHash, n.entry.FullHash, uint64(n.entry.MTime), n.entry.Path); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(w, "%x,%016x,%016x,%016x,%s\n",
				n.entry.HashCount, n.entry.PartialHash, uint64(0), uint64(n.entry.MTime), n.entry.Path); err != nil {
				return err
			}
		}
	}
	if err := c.walk(n.left, w); err != nil {
		return err
	}
	return c.walk(n.right, w)
}
