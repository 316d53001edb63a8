// Package registrar joins confirmed-duplicate pairs into sorted
// duplicate chains, ported from the original's match.c registerpair.
package registrar

import "github.com/jodyjdupes/jdupes-go/internal/record"

// Registrar builds duplicate chains as the scan confirms pairs. The
// match tree always reports the same anchor record for every member of
// a given content signature (see internal/matchtree), so the anchor is
// a stable key for tracking which record currently heads that anchor's
// chain -- mirroring the original's registerpair, which receives a
// `file_t **matchlist` handle into the tree node itself and can
// repoint it to a new head.
type Registrar struct {
	cmp   Comparator
	heads map[*record.Record]*record.Record // anchor -> current chain head
}

// New returns a Registrar that inserts new chain members according to
// cmp.
func New(cmp Comparator) *Registrar {
	return &Registrar{cmp: cmp, heads: make(map[*record.Record]*record.Record)}
}

// Register links newMatch into anchor's duplicate chain (anchor is the
// record the match tree found for newMatch), inserting newMatch at the
// position cmp dictates relative to the current chain members -- even
// on the very first pairing, so --order/--reverse/--param-order can
// promote newMatch ahead of anchor and make it the chain's source, the
// way registerpair reassigns *matchlist when the comparator calls for
// it. The chain head's HasDupes flag is set; every member (including
// the head) has NotUnique set.
func (r *Registrar) Register(anchor, newMatch *record.Record) {
	anchor.NotUnique = true
	newMatch.NotUnique = true

	head, seeded := r.heads[anchor]
	if !seeded {
		head = anchor
	}

	if r.cmp(newMatch, head) < 0 {
		// newMatch sorts ahead of the current head: promote it, carrying
		// the rest of the chain (if any) along behind the old head.
		newMatch.HasDupes = true
		newMatch.Duplicates = head
		head.HasDupes = false
		r.heads[anchor] = newMatch
		return
	}

	if !head.HasDupes {
		head.HasDupes = true
		head.Duplicates = newMatch
		newMatch.Duplicates = nil
		r.heads[anchor] = head
		return
	}

	// Walk the chain, inserting newMatch at the first position where it
	// sorts before the next member, mirroring registerpair's insertion
	// loop.
	prev := head
	cur := head.Duplicates
	for cur != nil {
		if r.cmp(newMatch, cur) < 0 {
			break
		}
		prev = cur
		cur = cur.Duplicates
	}
	prev.Duplicates = newMatch
	newMatch.Duplicates = cur
	r.heads[anchor] = head
}
