package query

import "testing"

func TestBlendedScore_QualityOrderingAtEqualRecency(t *testing.T) {
	const maxCreated = int64(2_000_000)
	const alpha = 0.4

	types := []MatchType{MatchExact, MatchPrefix, MatchSuffix, MatchSubstring, MatchImplicitWildcard}
	var scores []float64
	for _, mt := range types {
		scores = append(scores, BlendedScore(1.0, mt, maxCreated, maxCreated, alpha))
	}

	for i := 1; i < len(scores); i++ {
		if !(scores[i-1] > scores[i]) {
			t.Fatalf("want strictly descending blended scores by quality, got %v", scores)
		}
	}
}

func TestBlendedScore_RecencyCanOvertakeQuality(t *testing.T) {
	const alpha = 1.0
	const maxCreated = int64(2_000_000)

	olderExact := BlendedScore(1.0, MatchExact, 1_000_000, maxCreated, alpha)
	newerSuffix := BlendedScore(1.0, MatchSuffix, maxCreated, maxCreated, alpha)

	if !(newerSuffix > olderExact) {
		t.Fatalf("want a sufficiently newer lower-quality hit to outrank an older higher-quality one: newer=%v older=%v", newerSuffix, olderExact)
	}
}

func TestBlendedScore_ZeroMaxCreatedDisablesRecencyTerm(t *testing.T) {
	got := BlendedScore(1.0, MatchExact, 500, 0, 1.0)
	if got != 1.0 {
		t.Fatalf("want recency term skipped when max_created_at is 0, got %v", got)
	}
}

func TestMatchType_QualityFactorOrdering(t *testing.T) {
	order := []MatchType{MatchExact, MatchPrefix, MatchSuffix, MatchSubstring, MatchImplicitWildcard}
	for i := 1; i < len(order); i++ {
		if !(order[i-1].qualityFactor() > order[i].qualityFactor()) {
			t.Fatalf("quality factors must be strictly descending: %v", order)
		}
	}
}

func TestMatchType_BetterThan(t *testing.T) {
	if !MatchExact.betterThan(MatchPrefix) {
		t.Fatalf("Exact should be better than Prefix")
	}
	if MatchPrefix.betterThan(MatchExact) {
		t.Fatalf("Prefix should not be better than Exact")
	}
}
