package apperr

import (
	"errors"
	"testing"
)

func TestParseSkip_WrapsCauseAndIsRetrieveable(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := ParseSkip("codex", "/tmp/rollout.jsonl", cause)

	if err.Kind != KindParseSkip {
		t.Fatalf("want Kind=parse_skip, got %v", err.Kind)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("want Unwrap() to expose cause via errors.Is")
	}
	if err.Retryable {
		t.Fatalf("parse-skip errors are never retryable")
	}
}

func TestIndexCorrupt_IsRetryable(t *testing.T) {
	err := IndexCorrupt("/data/index/v1", errors.New("bad manifest"))
	if !err.Retryable {
		t.Fatalf("index-corrupt should be retryable (caller rebuilds)")
	}
	if err.Code() == 0 {
		t.Fatalf("want a non-zero exit code for index_corrupt")
	}
}

func TestNotPresent_IsNotRetryableAndZeroExit(t *testing.T) {
	err := NotPresent("gemini", "/home/u/.gemini")
	if err.Retryable {
		t.Fatalf("not-present is an empty scan, not a failure")
	}
	if err.Code() != 0 {
		t.Fatalf("want exit code 0 for not_present, got %d", err.Code())
	}
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := IndexWriteFatal(cause)
	if got := err.Error(); got == "" {
		t.Fatalf("want non-empty error message")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("want wrapped cause reachable via errors.Is")
	}
}

func TestQueryParse_SetsKind(t *testing.T) {
	err := QueryParse("foo AND(", errors.New("unbalanced parens"))
	if err.Kind != KindQueryParse {
		t.Fatalf("want Kind=query_parse, got %v", err.Kind)
	}
	if err.Retryable {
		t.Fatalf("a malformed query is never retryable without editing it")
	}
}

func TestDistinctKinds_HaveDistinctExitCodes(t *testing.T) {
	fatalKinds := []*Error{
		IndexCorrupt("/d", nil),
		IndexWriteFatal(nil),
		QueryParse("q", nil),
		IOFatal("stat", "/p", nil),
	}
	seen := map[int]bool{}
	for _, e := range fatalKinds {
		if seen[e.Code()] {
			t.Fatalf("duplicate exit code %d for kind %v", e.Code(), e.Kind)
		}
		seen[e.Code()] = true
	}
}
