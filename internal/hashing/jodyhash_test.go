package hashing

import "testing"

func TestJodyBlockHashEmpty(t *testing.T) {
	if got := jodyBlockHash(nil, 0); got != 0 {
		t.Fatalf("empty block hash = %d, want 0", got)
	}
}

func TestJodyBlockHashDeterministic(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog!!!!")
	h1 := jodyBlockHash(data, 0)
	h2 := jodyBlockHash(data, 0)
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %d != %d", h1, h2)
	}
}

func TestJodyBlockHashSensitiveToLength(t *testing.T) {
	full := []byte("0123456789abcdef")
	partial := full[:15]
	if jodyBlockHash(full, 0) == jodyBlockHash(partial, 0) {
		t.Fatalf("hash did not change when trailing byte dropped")
	}
}

func TestJodyBlockHashTailMasking(t *testing.T) {
	// Two inputs that differ only beyond the declared length must hash
	// identically, proving only the bytes actually present feed the tail.
	a := []byte{1, 2, 3, 4, 5, 0, 0, 0, 9, 0xAA, 0xBB}
	b := []byte{1, 2, 3, 4, 5, 0, 0, 0, 9, 0x11, 0x22}
	if jodyBlockHash(a[:9], 0) != jodyBlockHash(b[:9], 0) {
		t.Fatalf("identical declared content hashed differently")
	}
}

func TestResumeContinuesState(t *testing.T) {
	data := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	whole := NewJodyHash()
	whole.Write(data)
	want := whole.Sum64()

	first := NewJodyHash()
	first.Write(data[:16])
	mid := first.Sum64()

	second := Resume(mid)
	second.Write(data[16:])
	got := second.Sum64()

	if got != want {
		t.Fatalf("resumed hash = %d, want %d", got, want)
	}
}
