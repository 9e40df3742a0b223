// Package util holds the small set of helpers every connector shares:
// a modified-since predicate for incremental file-level scanning, and a
// flexible timestamp parser tolerant of the epoch-millis/ISO-8601 split
// across agent formats.
package util

import (
	"os"
	"time"
)

// FileModifiedSince reports whether path should be (re-)scanned.
//
// Returns true when sinceTS is nil (full scan), when the file's mtime
// (in epoch milliseconds) is strictly greater than *sinceTS, or when the
// file's metadata can't be read at all (conservative: scan it rather
// than silently skip it).
func FileModifiedSince(path string, sinceTS *int64) bool {
	if sinceTS == nil {
		return true
	}
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	mtimeMS := info.ModTime().UnixMilli()
	return mtimeMS > *sinceTS
}

// ParseTimestamp accepts an epoch-millisecond integer (any of the Go
// numeric kinds JSON unmarshaling can produce), an ISO-8601 string, or
// returns (0, false) for anything else.
func ParseTimestamp(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		return parseTimestampString(v)
	default:
		return 0, false
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
}

func parseTimestampString(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

// ParseTimestampPtr is ParseTimestamp wrapped for the common case of
// populating a canonical.Message's *int64 CreatedAt field.
func ParseTimestampPtr(value any) *int64 {
	ms, ok := ParseTimestamp(value)
	if !ok {
		return nil
	}
	return &ms
}
