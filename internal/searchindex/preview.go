package searchindex

import "unicode"

const previewMaxChars = 200

// buildPreview truncates content to maxChars runes (not bytes -- content
// is frequently non-ASCII) and appends a single ellipsis codepoint when
// truncated, grounded on original_source/src/search/tantivy.rs's
// build_preview.
func buildPreview(content string, maxChars int) string {
	runes := []rune(content)
	if len(runes) <= maxChars {
		return content
	}
	return string(runes[:maxChars]) + "…"
}

// generateEdgeNgrams splits text on non-alphanumeric runes and, for each
// resulting word of at least 2 runes, emits every prefix from length 2
// up to min(20, len(word)), space-joined. This lets a prefix query like
// "doc" match a stored "documentation" token without needing wildcard
// search against the main content field, grounded on
// original_source/src/search/tantivy.rs's generate_edge_ngrams.
func generateEdgeNgrams(text string) string {
	var ngrams []string
	var word []rune

	flush := func() {
		if len(word) < 2 {
			word = word[:0]
			return
		}
		limit := len(word)
		if limit > 20 {
			limit = 20
		}
		for n := 2; n <= limit; n++ {
			ngrams = append(ngrams, string(word[:n]))
		}
		word = word[:0]
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			word = append(word, r)
			continue
		}
		flush()
	}
	flush()

	out := ""
	for i, n := range ngrams {
		if i > 0 {
			out += " "
		}
		out += n
	}
	return out
}
