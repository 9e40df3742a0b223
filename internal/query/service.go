package query

import (
	"sort"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codesearch/internal/searchindex"
)

// Service runs ranked searches against a searchindex.Index.
type Service struct {
	index  *searchindex.Index
	logger *zap.Logger
}

// NewService wraps idx for querying.
func NewService(idx *searchindex.Index, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: idx, logger: logger}
}

// Search runs q against the index, applies filters, and returns up to
// limit hits ordered by descending blended score.
func (s *Service) Search(q string, filters Filters, mode RankingMode, limit int) ([]SearchHit, error) {
	classified, err := evaluateStrategies(s.index, q, filters)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(classified))
	var maxCreatedAt int64
	for _, c := range classified {
		hit := toSearchHit(c)
		if hit.CreatedAt != nil && *hit.CreatedAt > maxCreatedAt {
			maxCreatedAt = *hit.CreatedAt
		}
		hits = append(hits, hit)
	}

	blended := make([]float64, len(hits))
	for i, h := range hits {
		var createdAt int64
		if h.CreatedAt != nil {
			createdAt = *h.CreatedAt
		}
		blended[i] = BlendedScore(h.Score, h.MatchType, createdAt, maxCreatedAt, mode.Alpha)
	}

	idxs := make([]int, len(hits))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return blended[idxs[a]] > blended[idxs[b]]
	})

	ordered := make([]SearchHit, 0, len(hits))
	for _, i := range idxs {
		ordered = append(ordered, hits[i])
	}
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered, nil
}

func toSearchHit(c *classifiedHit) SearchHit {
	str := func(k string) string {
		v, _ := c.fields[k].(string)
		return v
	}
	num := func(k string) *int64 {
		switch v := c.fields[k].(type) {
		case float64:
			n := int64(v)
			return &n
		case int64:
			return &v
		default:
			return nil
		}
	}

	content := str(searchindex.FieldContent)
	preview := str(searchindex.FieldPreview)
	if preview == "" {
		preview = content
	}

	return SearchHit{
		Title:      str(searchindex.FieldTitle),
		Snippet:    preview,
		Content:    content,
		Score:      c.rawScore,
		SourcePath: str(searchindex.FieldSourcePath),
		Agent:      str(searchindex.FieldAgent),
		Workspace:  str(searchindex.FieldWorkspace),
		CreatedAt:  num(searchindex.FieldCreatedAt),
		MatchType:  c.matchType,
	}
}
