// Package record defines the per-file metadata the matching pipeline
// discovers, hashes, and links into duplicate chains, plus the arena
// that owns every record for the lifetime of a scan.
package record

import "sync"

// Record is one discovered regular file (or followed symlink target).
// The zero value is not useful; construct via Store.Allocate.
type Record struct {
	// Path is the exact path used for all I/O against this file.
	Path string

	// Size is the file size in bytes, or -1 if unknown (stat failed).
	Size int64
	// Device and Inode identify the underlying file for hard-link and
	// traversal-guard comparisons.
	Device uint64
	Inode  uint64
	// Mode is the raw os.FileMode captured at discovery.
	Mode uint32
	// Nlink is the hard-link count captured at discovery.
	Nlink uint64
	MTime int64
	ATime int64
	UID   uint32
	GID   uint32

	StatValid   bool
	IsSymlink   bool
	HasDupes    bool // this record is the head of a non-empty duplicate chain
	NotUnique   bool // this record is a member of some duplicate chain

	PartialHashValid bool
	PartialHash      uint64
	FullHashValid    bool
	FullHash         uint64

	// UserOrder is the 1-based index of the root argument this record was
	// reached from, stable across recursion. Used by the param-order
	// comparator and by the match tree's --isolate rule.
	UserOrder int

	// Duplicates is the next member of this record's duplicate chain.
	// Only meaningful when HasDupes is set on the chain head.
	Duplicates *Record

	// next is the global discovery-order singly linked list pointer,
	// mirroring the original's intrusive list; Store also keeps a slice
	// arena so callers rarely need to walk this by hand.
	next *Record
}

// Store owns every record allocated during a scan. It is the Go
// replacement for the original's malloc'd chain of file_t structs: an
// append-only arena whose pointers stay valid for the life of the scan.
type Store struct {
	mu    sync.Mutex
	head  *Record
	tail  *Record
	all   []*Record
}

// NewStore returns an empty record store.
func NewStore() *Store {
	return &Store{}
}

// Allocate creates a new record attributed to the given user order and
// appends it to the store's discovery list.
func (s *Store) Allocate(path string, userOrder int) *Record {
	r := &Record{Path: path, Size: -1, UserOrder: userOrder}
	s.Append(r)
	return r
}

// Append adds an already-constructed record to the discovery list. Used
// when a record is built incrementally (stat populated after allocation).
func (s *Store) Append(r *Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.head == nil {
		s.head = r
	} else {
		s.tail.next = r
	}
	s.tail = r
	s.all = append(s.all, r)
}

// All returns every record in discovery order. The returned slice is
// owned by the caller and safe to range over after the scan completes.
func (s *Store) All() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Record, len(s.all))
	copy(out, s.all)
	return out
}

// Len reports how many records have been allocated so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.all)
}

// Chain returns the record and every member of its duplicate chain,
// head first, in chain order.
func Chain(head *Record) []*Record {
	if head == nil || !head.HasDupes {
		return nil
	}
	out := []*Record{head}
	for d := head.Duplicates; d != nil; d = d.Duplicates {
		out = append(out, d)
	}
	return out
}
