package searchindex

import "testing"

func TestBuildPreview_ShortContentUnchanged(t *testing.T) {
	got := buildPreview("hello world", previewMaxChars)
	if got != "hello world" {
		t.Fatalf("got %q, want unchanged short content", got)
	}
}

func TestBuildPreview_TruncatesOnRuneCount(t *testing.T) {
	content := ""
	for i := 0; i < 250; i++ {
		content += "a"
	}
	got := buildPreview(content, previewMaxChars)
	runes := []rune(got)
	if len(runes) != previewMaxChars+1 {
		t.Fatalf("want %d runes (200 + ellipsis), got %d", previewMaxChars+1, len(runes))
	}
	if runes[len(runes)-1] != '…' {
		t.Fatalf("want trailing single ellipsis codepoint, got %q", runes[len(runes)-1])
	}
}

func TestBuildPreview_MultibyteRunesCountedAsOne(t *testing.T) {
	content := ""
	for i := 0; i < 201; i++ {
		content += "日"
	}
	got := buildPreview(content, previewMaxChars)
	if len([]rune(got)) != previewMaxChars+1 {
		t.Fatalf("multibyte rune must count as a single character toward the limit")
	}
}

func TestGenerateEdgeNgrams_ShortWordsDropped(t *testing.T) {
	got := generateEdgeNgrams("a hi documentation")
	if containsSubstr(got, " a ") || hasPrefix(got, "a ") {
		t.Fatalf("single-letter word must not produce ngrams, got %q", got)
	}
}

func TestGenerateEdgeNgrams_EmitsPrefixesUpToWordLength(t *testing.T) {
	got := generateEdgeNgrams("cat")
	want := "ca cat"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGenerateEdgeNgrams_CapsAtTwentyRunes(t *testing.T) {
	word := "abcdefghijklmnopqrstuvwxyz" // 26 letters
	got := generateEdgeNgrams(word)
	longest := lastField(got)
	if len([]rune(longest)) != 20 {
		t.Fatalf("longest ngram should be capped at 20 runes, got %d (%q)", len([]rune(longest)), longest)
	}
}

func TestGenerateEdgeNgrams_SplitsOnNonAlphanumeric(t *testing.T) {
	got := generateEdgeNgrams("foo-bar")
	if !containsSubstr(got, "fo") || !containsSubstr(got, "ba") {
		t.Fatalf("expected prefixes from both words, got %q", got)
	}
}

func containsSubstr(s, sub string) bool {
	return len(s) >= len(sub) && indexOf(s, sub) >= 0
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func lastField(s string) string {
	last := s
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			start = i + 1
		}
	}
	last = s[start:]
	return last
}
