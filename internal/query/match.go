package query

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/fyrsmithlabs/codesearch/internal/searchindex"
)

const maxStrategyHits = 200

type classifiedHit struct {
	id        string
	matchType MatchType
	rawScore  float64
	fields    map[string]interface{}
}

// evaluateStrategies runs each match strategy in descending quality
// order and keeps, per document ID, the best classification any
// strategy produced for it — duplicates across strategies collapse to
// their highest-quality label.
func evaluateStrategies(idx *searchindex.Index, q string, filters Filters) (map[string]*classifiedHit, error) {
	results := make(map[string]*classifiedHit)

	consider := func(mt MatchType, strategyQuery query.Query) error {
		req := bleve.NewSearchRequestOptions(withFilters(strategyQuery, filters), maxStrategyHits, 0, false)
		req.Fields = []string{
			searchindex.FieldAgent, searchindex.FieldWorkspace, searchindex.FieldSourcePath,
			searchindex.FieldMsgIdx, searchindex.FieldCreatedAt, searchindex.FieldTitle,
			searchindex.FieldContent, searchindex.FieldPreview,
		}
		res, err := idx.Search(req)
		if err != nil {
			return err
		}
		for _, hit := range res.Hits {
			existing, ok := results[hit.ID]
			if ok && !mt.betterThan(existing.matchType) {
				continue
			}
			results[hit.ID] = &classifiedHit{
				id:        hit.ID,
				matchType: mt,
				rawScore:  hit.Score,
				fields:    hit.Fields,
			}
		}
		return nil
	}

	exactContent := bleve.NewMatchPhraseQuery(q)
	exactContent.SetField(searchindex.FieldContent)
	exactTitle := bleve.NewMatchPhraseQuery(q)
	exactTitle.SetField(searchindex.FieldTitle)
	if err := consider(MatchExact, bleve.NewDisjunctionQuery(exactContent, exactTitle)); err != nil {
		return nil, err
	}

	prefixContent := bleve.NewMatchQuery(q)
	prefixContent.SetField(searchindex.FieldContentPrefix)
	prefixTitle := bleve.NewMatchQuery(q)
	prefixTitle.SetField(searchindex.FieldTitlePrefix)
	if err := consider(MatchPrefix, bleve.NewDisjunctionQuery(prefixContent, prefixTitle)); err != nil {
		return nil, err
	}

	// Suffix has no reverse-indexed term dictionary available cheaply in
	// bleve, so it is detected with a leading-wildcard retrieval followed
	// by a literal word-suffix pass over the stored text.
	suffixContent := bleve.NewWildcardQuery("*" + strings.ToLower(q))
	suffixContent.SetField(searchindex.FieldContent)
	suffixTitle := bleve.NewWildcardQuery("*" + strings.ToLower(q))
	suffixTitle.SetField(searchindex.FieldTitle)
	broad := bleve.NewDisjunctionQuery(suffixContent, suffixTitle)
	if err := considerWithPredicate(idx, broad, filters, results, MatchSuffix, func(fields map[string]interface{}) bool {
		return anyWordHasSuffix(fields, q)
	}); err != nil {
		return nil, err
	}

	wildcardContent := bleve.NewWildcardQuery("*" + strings.ToLower(q) + "*")
	wildcardContent.SetField(searchindex.FieldContent)
	wildcardTitle := bleve.NewWildcardQuery("*" + strings.ToLower(q) + "*")
	wildcardTitle.SetField(searchindex.FieldTitle)
	wildcard := bleve.NewDisjunctionQuery(wildcardContent, wildcardTitle)
	if err := considerWithPredicate(idx, wildcard, filters, results, MatchSubstring, func(fields map[string]interface{}) bool {
		return containsLiteral(fields, q)
	}); err != nil {
		return nil, err
	}
	if err := consider(MatchImplicitWildcard, wildcard); err != nil {
		return nil, err
	}

	return results, nil
}

// considerWithPredicate runs strategyQuery, then classifies a hit as
// matchType only when predicate(fields) holds; other hits are left for a
// lower-priority strategy to claim.
func considerWithPredicate(idx *searchindex.Index, strategyQuery query.Query, filters Filters, results map[string]*classifiedHit, mt MatchType, predicate func(map[string]interface{}) bool) error {
	req := bleve.NewSearchRequestOptions(withFilters(strategyQuery, filters), maxStrategyHits, 0, false)
	req.Fields = []string{
		searchindex.FieldAgent, searchindex.FieldWorkspace, searchindex.FieldSourcePath,
		searchindex.FieldMsgIdx, searchindex.FieldCreatedAt, searchindex.FieldTitle,
		searchindex.FieldContent, searchindex.FieldPreview,
	}
	res, err := idx.Search(req)
	if err != nil {
		return err
	}
	for _, hit := range res.Hits {
		if !predicate(hit.Fields) {
			continue
		}
		existing, ok := results[hit.ID]
		if ok && !mt.betterThan(existing.matchType) {
			continue
		}
		results[hit.ID] = &classifiedHit{
			id:        hit.ID,
			matchType: mt,
			rawScore:  hit.Score,
			fields:    hit.Fields,
		}
	}
	return nil
}

func withFilters(base query.Query, filters Filters) query.Query {
	queries := []query.Query{base}

	if len(filters.Agents) > 0 {
		terms := make([]query.Query, 0, len(filters.Agents))
		for _, a := range filters.Agents {
			tq := bleve.NewTermQuery(a)
			tq.SetField(searchindex.FieldAgent)
			terms = append(terms, tq)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(terms...))
	}

	if len(filters.Workspaces) > 0 {
		terms := make([]query.Query, 0, len(filters.Workspaces))
		for _, w := range filters.Workspaces {
			tq := bleve.NewTermQuery(w)
			tq.SetField(searchindex.FieldWorkspace)
			terms = append(terms, tq)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(terms...))
	}

	if filters.Since != nil || filters.Until != nil {
		var min, max *float64
		if filters.Since != nil {
			v := float64(*filters.Since)
			min = &v
		}
		if filters.Until != nil {
			v := float64(*filters.Until)
			max = &v
		}
		rq := bleve.NewNumericRangeQuery(min, max)
		rq.SetField(searchindex.FieldCreatedAt)
		queries = append(queries, rq)
	}

	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

func anyWordHasSuffix(fields map[string]interface{}, q string) bool {
	needle := strings.ToLower(q)
	for _, key := range []string{searchindex.FieldContent, searchindex.FieldTitle} {
		text, _ := fields[key].(string)
		for _, word := range strings.Fields(text) {
			if strings.HasSuffix(strings.ToLower(word), needle) {
				return true
			}
		}
	}
	return false
}

func containsLiteral(fields map[string]interface{}, q string) bool {
	needle := strings.ToLower(q)
	for _, key := range []string{searchindex.FieldContent, searchindex.FieldTitle} {
		text, _ := fields[key].(string)
		if strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}
