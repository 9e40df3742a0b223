package util

// First returns the first non-nil value found under any of keys,
// mirroring the `.get(a).or_else(|| .get(b))` chains agent formats
// require since none of them agree on field names.
func First(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// StringAt returns the first string value found under any of keys, or
// "" if none match or the value isn't a string.
func StringAt(m map[string]any, keys ...string) string {
	v, ok := First(m, keys...)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// TimestampAt parses the first value found under any of keys as a
// timestamp (epoch millis or ISO-8601), returning nil if none parse.
func TimestampAt(m map[string]any, keys ...string) *int64 {
	v, ok := First(m, keys...)
	if !ok {
		return nil
	}
	return ParseTimestampPtr(v)
}
