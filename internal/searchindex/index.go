// Package searchindex is the full-text index over canonical messages,
// grounded on original_source/src/search/tantivy.rs but implemented
// atop github.com/blevesearch/bleve/v2, the closest idiomatic-Go
// analogue to a tantivy-style inverted index available in the
// ecosystem (see SPEC_FULL.md's domain-stack note on this choice).
package searchindex

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codesearch/pkg/canonical"
)

// SchemaVersion names the on-disk directory an index with the current
// SchemaHash lives under, so a schema bump never has to migrate an
// incompatible directory in place.
const SchemaVersion = "v1"

type pendingDoc struct {
	id  string
	doc messageDoc
}

// Index is the on-disk, schema-versioned search index for one data
// directory. It is safe for concurrent use.
type Index struct {
	mu sync.Mutex

	baseDir  string
	mapping  *mapping.IndexMapping
	manifest *manifest

	segments map[string]bleve.Index
	alias    bleve.IndexAlias

	pending          []pendingDoc
	pendingDeleteAll bool

	logger *zap.Logger
}

// IndexDir returns the schema-versioned index directory under base,
// mirroring original_source/src/search/tantivy.rs's index_dir.
func IndexDir(base string) string {
	return filepath.Join(base, "index", SchemaVersion)
}

// OpenOrCreate opens an existing index directory, or creates a fresh one.
// If the on-disk schema_hash.json doesn't match SchemaHash, the entire
// directory is wiped and rebuilt from scratch to avoid querying against
// a stale field layout.
func OpenOrCreate(dir string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index dir: %w", err)
	}

	hashPath := filepath.Join(dir, "schema_hash.json")
	needsRebuild := true
	if data, err := os.ReadFile(hashPath); err == nil {
		if string(data) == schemaHashJSON() {
			needsRebuild = false
		}
	}

	if needsRebuild {
		logger.Info("searchindex: schema changed or missing, rebuilding", zap.String("dir", dir))
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("clearing stale index dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	im, err := buildIndexMapping()
	if err != nil {
		return nil, fmt.Errorf("building index mapping: %w", err)
	}

	manifestPath := filepath.Join(dir, manifestFile)
	m, err := loadManifest(manifestPath)
	if err != nil {
		logger.Warn("searchindex: manifest unreadable, rebuilding", zap.String("dir", dir), zap.Error(err))
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("clearing corrupt index dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		m = &manifest{SchemaHash: SchemaHash}
	}
	m.SchemaHash = SchemaHash

	idx := &Index{
		baseDir:  dir,
		mapping:  im,
		manifest: m,
		segments: make(map[string]bleve.Index),
		logger:   logger,
	}

	var openSegments []bleve.Index
	var keptSegments []string
	for _, segID := range m.Segments {
		seg, err := bleve.Open(segmentPath(dir, segID))
		if err != nil {
			logger.Warn("searchindex: could not reopen segment, dropping it", zap.String("segment", segID), zap.Error(err))
			continue
		}
		idx.segments[segID] = seg
		openSegments = append(openSegments, seg)
		keptSegments = append(keptSegments, segID)
	}
	m.Segments = keptSegments
	idx.alias = bleve.NewIndexAlias(openSegments...)

	if err := os.WriteFile(hashPath, []byte(schemaHashJSON()), 0o644); err != nil {
		return nil, fmt.Errorf("writing schema hash: %w", err)
	}
	if err := m.save(manifestPath); err != nil {
		return nil, fmt.Errorf("saving manifest: %w", err)
	}

	SegmentCount.Set(float64(len(idx.manifest.Segments)))
	return idx, nil
}

func schemaHashJSON() string {
	return fmt.Sprintf(`{"schema_hash":%q}`, SchemaHash)
}

// AddConversation buffers every message of conv for the next Commit.
func (idx *Index) AddConversation(conv *canonical.Conversation) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for i := range conv.Messages {
		msg := &conv.Messages[i]
		idx.pending = append(idx.pending, pendingDoc{
			id:  docID(conv, msg),
			doc: toMessageDoc(conv, msg),
		})
	}
}

// DeleteAll marks every existing segment for removal on the next Commit.
func (idx *Index) DeleteAll() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.pendingDeleteAll = true
}

// Commit flushes pending adds into a new segment and/or applies a
// pending delete-all, then persists the manifest.
func (idx *Index) Commit() error {
	start := time.Now()
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.pendingDeleteAll {
		for segID, seg := range idx.segments {
			_ = seg.Close()
			_ = os.RemoveAll(segmentPath(idx.baseDir, segID))
		}
		idx.segments = make(map[string]bleve.Index)
		idx.manifest.Segments = nil
		idx.alias = bleve.NewIndexAlias()
		idx.pendingDeleteAll = false
	}

	if len(idx.pending) > 0 {
		segID := idx.manifest.nextSegmentID()
		seg, err := bleve.New(segmentPath(idx.baseDir, segID), idx.mapping)
		if err != nil {
			return fmt.Errorf("creating segment %s: %w", segID, err)
		}

		batch := seg.NewBatch()
		for _, p := range idx.pending {
			if err := batch.Index(p.id, p.doc); err != nil {
				return fmt.Errorf("batching document %s: %w", p.id, err)
			}
		}
		if err := seg.Batch(batch); err != nil {
			return fmt.Errorf("committing segment %s: %w", segID, err)
		}

		idx.segments[segID] = seg
		idx.manifest.Segments = append(idx.manifest.Segments, segID)
		idx.alias.Add(seg)
		DocumentsIndexed.Add(float64(len(idx.pending)))
		idx.pending = idx.pending[:0]
	}

	if err := idx.manifest.save(filepath.Join(idx.baseDir, manifestFile)); err != nil {
		return fmt.Errorf("saving manifest: %w", err)
	}

	SegmentCount.Set(float64(len(idx.manifest.Segments)))
	CommitDuration.Observe(time.Since(start).Seconds())
	return nil
}

// SegmentCount returns the current number of searchable segments.
func (idx *Index) SegmentCount() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.manifest.Segments)
}

// Search runs req against every current segment via a bleve index alias.
func (idx *Index) Search(req *bleve.SearchRequest) (*bleve.SearchResult, error) {
	idx.mu.Lock()
	alias := idx.alias
	empty := len(idx.segments) == 0
	idx.mu.Unlock()

	if empty {
		return &bleve.SearchResult{
			Status: &bleve.SearchStatus{Total: 0, Successful: 0},
		}, nil
	}
	return alias.Search(req)
}

// Close releases all open segment handles.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var firstErr error
	for _, seg := range idx.segments {
		if err := seg.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
