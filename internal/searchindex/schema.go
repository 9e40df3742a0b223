package searchindex

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/length"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SchemaHash is bumped whenever the field layout or analyzer changes, so
// that an on-disk index built under a stale schema gets rebuilt from
// scratch rather than silently misqueried. Grounded on
// original_source/src/search/tantivy.rs's SCHEMA_HASH.
const SchemaHash = "codesearch-schema-v1-edge-ngram-agent-keyword"

const (
	lengthFilterName   = "length_40"
	normalizeAnalyzer  = "hyphen_normalize"
	docTypeMessage     = "message"
)

// Field names on the indexed document, matching document.go's json tags.
const (
	FieldAgent          = "agent"
	FieldWorkspace      = "workspace"
	FieldSourcePath     = "source_path"
	FieldMsgIdx         = "msg_idx"
	FieldCreatedAt      = "created_at"
	FieldTitle          = "title"
	FieldContent        = "content"
	FieldTitlePrefix    = "title_prefix"
	FieldContentPrefix  = "content_prefix"
	FieldPreview        = "preview"
)

// buildIndexMapping constructs the bleve mapping equivalent of the
// reference tantivy schema: agent/workspace are exact-match keyword
// fields, title/content are tokenized and stored with the custom
// length-capped lowercasing analyzer, the *_prefix fields carry the same
// analyzer but are never stored (they only exist to be queried), and
// msg_idx/created_at are stored numeric fields.
func buildIndexMapping() (*mapping.IndexMapping, error) {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = normalizeAnalyzer

	if err := im.AddCustomTokenFilter(lengthFilterName, map[string]interface{}{
		"type": length.Name,
		"min":  0.0,
		"max":  40.0,
	}); err != nil {
		return nil, err
	}
	if err := im.AddCustomAnalyzer(normalizeAnalyzer, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
			lengthFilterName,
		},
	}); err != nil {
		return nil, err
	}

	exact := bleve.NewTextFieldMapping()
	exact.Analyzer = keyword.Name
	exact.Store = true
	exact.IncludeInAll = false

	storedText := bleve.NewTextFieldMapping()
	storedText.Analyzer = normalizeAnalyzer
	storedText.Store = true
	storedText.IncludeTermVectors = true

	prefixText := bleve.NewTextFieldMapping()
	prefixText.Analyzer = normalizeAnalyzer
	prefixText.Store = false
	prefixText.IncludeInAll = false

	preview := bleve.NewTextFieldMapping()
	preview.Store = true
	preview.IncludeInAll = false

	sourcePath := bleve.NewTextFieldMapping()
	sourcePath.Index = false
	sourcePath.Store = true

	msgIdx := bleve.NewNumericFieldMapping()
	msgIdx.Store = true

	createdAt := bleve.NewNumericFieldMapping()
	createdAt.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt(FieldAgent, exact)
	doc.AddFieldMappingsAt(FieldWorkspace, exact)
	doc.AddFieldMappingsAt(FieldSourcePath, sourcePath)
	doc.AddFieldMappingsAt(FieldMsgIdx, msgIdx)
	doc.AddFieldMappingsAt(FieldCreatedAt, createdAt)
	doc.AddFieldMappingsAt(FieldTitle, storedText)
	doc.AddFieldMappingsAt(FieldContent, storedText)
	doc.AddFieldMappingsAt(FieldTitlePrefix, prefixText)
	doc.AddFieldMappingsAt(FieldContentPrefix, prefixText)
	doc.AddFieldMappingsAt(FieldPreview, preview)

	im.AddDocumentMapping(docTypeMessage, doc)
	im.DefaultMapping = doc
	return im, nil
}
