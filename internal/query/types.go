// Package query implements ranked search over a searchindex.Index:
// multi-strategy match classification, quality-weighted blended
// scoring, and agent/workspace/time filter composition, grounded on
// original_source/tests/ranking.rs's blended_score contract.
package query

// MatchType classifies how a hit matched the query, in strict
// descending quality order.
type MatchType int

const (
	MatchExact MatchType = iota
	MatchPrefix
	MatchSuffix
	MatchSubstring
	MatchImplicitWildcard
)

func (m MatchType) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchPrefix:
		return "prefix"
	case MatchSuffix:
		return "suffix"
	case MatchSubstring:
		return "substring"
	case MatchImplicitWildcard:
		return "implicit_wildcard"
	default:
		return "unknown"
	}
}

// qualityFactor weights raw_score by match strategy, by contract in
// strict descending order Exact > Prefix > Suffix > Substring >
// ImplicitWildcard. The exact values are arbitrary as long as that
// ordering holds.
func (m MatchType) qualityFactor() float64 {
	switch m {
	case MatchExact:
		return 1.0
	case MatchPrefix:
		return 0.9
	case MatchSuffix:
		return 0.8
	case MatchSubstring:
		return 0.7
	case MatchImplicitWildcard:
		return 0.6
	default:
		return 0.0
	}
}

// betterThan reports whether m is a strictly higher-quality
// classification than other — used to keep the best classification when
// the same document matches more than one strategy.
func (m MatchType) betterThan(other MatchType) bool {
	return m < other
}

// SearchHit is one ranked result.
type SearchHit struct {
	Title      string    `json:"title,omitempty"`
	Snippet    string    `json:"snippet"`
	Content    string    `json:"content"`
	Score      float64   `json:"score"`
	SourcePath string    `json:"source_path"`
	Agent      string    `json:"agent"`
	Workspace  string    `json:"workspace,omitempty"`
	CreatedAt  *int64    `json:"created_at,omitempty"`
	LineNumber *int      `json:"line_number,omitempty"`
	MatchType  MatchType `json:"match_type"`
}

// Filters composes conjunctively: every non-empty field narrows the
// result set further.
type Filters struct {
	Agents     []string
	Workspaces []string
	Since      *int64
	Until      *int64
}

// RankingMode names the caller-selected recency weighting, mirroring the
// TUI's Balanced/RecentHeavy presets from the original implementation.
type RankingMode struct {
	Alpha float64
}

var (
	// RankingBalanced weighs quality and recency roughly evenly.
	RankingBalanced = RankingMode{Alpha: 0.4}
	// RankingRecentHeavy strongly favors newer hits over match quality.
	RankingRecentHeavy = RankingMode{Alpha: 1.0}
	// RankingQualityOnly disables the recency term entirely.
	RankingQualityOnly = RankingMode{Alpha: 0.0}
)

// BlendedScore implements blended(hit) = raw_score * quality_factor +
// alpha * (created_at / max_created_at_in_result_set).
func BlendedScore(rawScore float64, matchType MatchType, createdAt int64, maxCreatedAt int64, alpha float64) float64 {
	blended := rawScore * matchType.qualityFactor()
	if maxCreatedAt > 0 {
		blended += alpha * (float64(createdAt) / float64(maxCreatedAt))
	}
	return blended
}
