package filter

import (
	"testing"
	"time"
)

var zeroTime = time.Unix(0, 0)

func TestParseSizeSuffixBinaryDefault(t *testing.T) {
	cases := map[string]int64{
		"16k":   16384,
		"16ki":  16384,
		"16kib": 16384,
		"16kb":  16000,
		"1m":    1048576,
		"1mb":   1000000,
		"100":   100,
	}
	for in, want := range cases {
		got, err := ParseSizeSuffix(in)
		if err != nil {
			t.Fatalf("ParseSizeSuffix(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseSizeSuffix(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseSizeSuffixInvalid(t *testing.T) {
	for _, in := range []string{"", "abc", "10xyz"} {
		if _, err := ParseSizeSuffix(in); err == nil {
			t.Errorf("ParseSizeSuffix(%q) expected error", in)
		}
	}
}

func TestParseExtFilterSizeTags(t *testing.T) {
	f, err := ParseExtFilter("size+=:100k")
	if err != nil {
		t.Fatalf("ParseExtFilter: %v", err)
	}
	if f.Kind != ExtSizeGtEq || f.Size != 102400 {
		t.Fatalf("got %+v", f)
	}
}

func TestExcludeCumulativeSizeRange(t *testing.T) {
	filters := []ExtFilter{
		{Kind: ExtSizeGt, Size: 99},
		{Kind: ExtSizeLt, Size: 101},
	}
	if Exclude(filters, "f", 100, zeroTime) {
		t.Fatalf("size of exactly 100 should pass a (>99 AND <101) filter pair")
	}
	if !Exclude(filters, "f", 50, zeroTime) {
		t.Fatalf("size below the range should be excluded")
	}
	if !Exclude(filters, "f", 200, zeroTime) {
		t.Fatalf("size above the range should be excluded")
	}
}

func TestMatchExtensionsCaseInsensitive(t *testing.T) {
	if !matchExtensions("/a/b/report.TXT", "txt,md") {
		t.Fatalf("expected extension match")
	}
	if matchExtensions("/a/b/report", "txt,md") {
		t.Fatalf("file with no extension must not match")
	}
}

func TestOnlyExtExcludesNonMatching(t *testing.T) {
	filters := []ExtFilter{{Kind: ExtOnlyExt, Param: "jpg,png"}}
	if Exclude(filters, "photo.jpg", 10, zeroTime) {
		t.Fatalf("matching extension should not be excluded")
	}
	if !Exclude(filters, "notes.txt", 10, zeroTime) {
		t.Fatalf("non-matching extension should be excluded by onlyext")
	}
}
