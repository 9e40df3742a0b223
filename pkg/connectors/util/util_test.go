package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileModifiedSince_NilSinceIsFullScan(t *testing.T) {
	if !FileModifiedSince("/does/not/exist", nil) {
		t.Fatalf("nil sinceTS should always scan")
	}
}

func TestFileModifiedSince_MissingFileIsConservativelyTrue(t *testing.T) {
	since := int64(1000)
	if !FileModifiedSince("/does/not/exist/at/all", &since) {
		t.Fatalf("unreadable metadata should conservatively return true")
	}
}

func TestFileModifiedSince_ComparesMtime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	mtime := info.ModTime().UnixMilli()

	before := mtime - 1
	if !FileModifiedSince(path, &before) {
		t.Fatalf("file modified after sinceTS should scan")
	}

	after := mtime + 1
	if FileModifiedSince(path, &after) {
		t.Fatalf("file modified before sinceTS should be skipped")
	}
}

func TestParseTimestamp_Numeric(t *testing.T) {
	cases := []any{int64(1700000000000), int(1700000000000), float64(1700000000000)}
	for _, c := range cases {
		ms, ok := ParseTimestamp(c)
		if !ok || ms != 1700000000000 {
			t.Fatalf("ParseTimestamp(%v) = (%d, %v), want (1700000000000, true)", c, ms, ok)
		}
	}
}

func TestParseTimestamp_ISO8601(t *testing.T) {
	ms, ok := ParseTimestamp("2023-11-21T10:00:00Z")
	if !ok {
		t.Fatalf("expected ISO-8601 string to parse")
	}
	want := time.Date(2023, 11, 21, 10, 0, 0, 0, time.UTC).UnixMilli()
	if ms != want {
		t.Fatalf("got %d, want %d", ms, want)
	}
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, v := range []any{"not a timestamp", nil, true, []int{1}} {
		if _, ok := ParseTimestamp(v); ok {
			t.Fatalf("expected %v to fail parsing", v)
		}
	}
}

func TestParseTimestampPtr(t *testing.T) {
	if ParseTimestampPtr("garbage") != nil {
		t.Fatalf("expected nil for unparseable value")
	}
	ptr := ParseTimestampPtr(int64(42))
	if ptr == nil || *ptr != 42 {
		t.Fatalf("expected pointer to 42, got %v", ptr)
	}
}
