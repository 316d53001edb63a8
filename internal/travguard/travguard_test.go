package travguard

import "testing"

func TestCheckAndMarkFreshThenSeen(t *testing.T) {
	g := New()
	if !g.CheckAndMark(1, 100) {
		t.Fatal("first sighting of (1, 100) should be fresh")
	}
	if g.CheckAndMark(1, 100) {
		t.Fatal("second sighting of (1, 100) should not be fresh")
	}
}

func TestCheckAndMarkDistinguishesDeviceAndInode(t *testing.T) {
	g := New()
	pairs := [][2]uint64{{1, 100}, {1, 101}, {2, 100}, {2, 101}}
	for _, p := range pairs {
		if !g.CheckAndMark(p[0], p[1]) {
			t.Fatalf("pair %v should be fresh on first sighting", p)
		}
	}
	for _, p := range pairs {
		if g.CheckAndMark(p[0], p[1]) {
			t.Fatalf("pair %v should be seen on second sighting", p)
		}
	}
}

func TestCheckAndMarkSameHashDifferentPair(t *testing.T) {
	// Two distinct pairs sharing a travHash value must still be tracked
	// independently: the tree tie-breaks on the raw (dev, ino) pair.
	g := New()
	a := [2]uint64{0, 1 << 22} // inode rotates to 1<<13, no device term
	b := [2]uint64{1, 0}       // zero inode, device 1 folded in at bit 13
	if !g.CheckAndMark(a[0], a[1]) || !g.CheckAndMark(b[0], b[1]) {
		t.Fatal("both pairs should be fresh on first sighting")
	}
	if g.CheckAndMark(a[0], a[1]) || g.CheckAndMark(b[0], b[1]) {
		t.Fatal("both pairs should be seen on second sighting")
	}
}

func TestNopGuardAlwaysFresh(t *testing.T) {
	g := NewNop()
	for i := 0; i < 3; i++ {
		if !g.CheckAndMark(7, 7) {
			t.Fatal("nop guard must always report fresh")
		}
	}
}

func TestManyInsertionsStayConsistent(t *testing.T) {
	g := New()
	const n = 1000
	for i := uint64(0); i < n; i++ {
		if !g.CheckAndMark(i%7, i) {
			t.Fatalf("pair (%d, %d) fresh insert failed", i%7, i)
		}
	}
	for i := uint64(0); i < n; i++ {
		if g.CheckAndMark(i%7, i) {
			t.Fatalf("pair (%d, %d) not remembered", i%7, i)
		}
	}
}
