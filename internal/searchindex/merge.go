package searchindex

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
	"go.uber.org/zap"
)

const (
	// MergeSegmentThreshold is the segment count at or above which a merge
	// is triggered.
	MergeSegmentThreshold = 4
	// MergeCooldownMS is the minimum time between merges.
	MergeCooldownMS int64 = 300_000 // 5 minutes
)

// lastMergeTS is process-wide, mirroring the reference implementation's
// static atomic: merge cooldown is a property of the process, not of any
// one Index instance, since re-opening an Index shouldn't reset it.
var lastMergeTS atomic.Int64

// MergeStatus reports the current merge-eligibility state of an Index.
type MergeStatus struct {
	SegmentCount     int   `json:"segment_count"`
	LastMergeTS      int64 `json:"last_merge_ts"`
	MsSinceLastMerge int64 `json:"ms_since_last_merge"`
	MergeThreshold   int   `json:"merge_threshold"`
	CooldownMS       int64 `json:"cooldown_ms"`
}

// ShouldMerge reports whether a merge is recommended given this status.
func (s MergeStatus) ShouldMerge() bool {
	return s.SegmentCount >= s.MergeThreshold &&
		(s.MsSinceLastMerge < 0 || s.MsSinceLastMerge >= s.CooldownMS)
}

// MergeStatus computes the current merge status without mutating state.
func (idx *Index) MergeStatus() MergeStatus {
	last := lastMergeTS.Load()
	nowMS := time.Now().UnixMilli()
	msSince := int64(-1)
	if last > 0 {
		msSince = nowMS - last
	}
	return MergeStatus{
		SegmentCount:     idx.SegmentCount(),
		LastMergeTS:      last,
		MsSinceLastMerge: msSince,
		MergeThreshold:   MergeSegmentThreshold,
		CooldownMS:       MergeCooldownMS,
	}
}

// OptimizeIfIdle merges all current segments into one if the segment
// count is at or above MergeSegmentThreshold and the cooldown has
// elapsed. Returns true if a merge ran.
func (idx *Index) OptimizeIfIdle(logger *zap.Logger) (bool, error) {
	status := idx.MergeStatus()
	if !status.ShouldMerge() {
		if status.SegmentCount < status.MergeThreshold {
			MergeOperations.WithLabelValues("skipped_threshold").Inc()
		} else {
			MergeOperations.WithLabelValues("skipped_cooldown").Inc()
		}
		return false, nil
	}
	if err := idx.mergeAll(logger); err != nil {
		MergeOperations.WithLabelValues("error").Inc()
		return false, err
	}
	MergeOperations.WithLabelValues("merged").Inc()
	return true, nil
}

// ForceMerge merges all current segments into one regardless of
// threshold or cooldown, blocking until it completes.
func (idx *Index) ForceMerge(logger *zap.Logger) error {
	if idx.SegmentCount() == 0 {
		return nil
	}
	if err := idx.mergeAll(logger); err != nil {
		MergeOperations.WithLabelValues("error").Inc()
		return err
	}
	MergeOperations.WithLabelValues("merged").Inc()
	return nil
}

// mergeAll reindexes every stored document across all current segments
// into a single new segment, then drops the old ones. This is our
// stand-in for tantivy's IndexWriter.merge(): bleve's scorch backend
// manages its own internal segment merges transparently and doesn't
// expose a comparable externally-triggerable API, so merging here means
// merging our own segment-of-bleve-indexes abstraction instead.
func (idx *Index) mergeAll(logger *zap.Logger) error {
	idx.mu.Lock()
	oldSegments := make(map[string]bleve.Index, len(idx.segments))
	for id, seg := range idx.segments {
		oldSegments[id] = seg
	}
	baseDir := idx.baseDir
	mapping := idx.mapping
	idx.mu.Unlock()

	if len(oldSegments) == 0 {
		return nil
	}

	docs, err := collectAllDocuments(oldSegments)
	if err != nil {
		return fmt.Errorf("collecting documents for merge: %w", err)
	}

	idx.mu.Lock()
	newSegID := idx.manifest.nextSegmentID()
	idx.mu.Unlock()

	mergedPath := segmentPath(baseDir, newSegID)
	merged, err := bleve.New(mergedPath, mapping)
	if err != nil {
		return fmt.Errorf("creating merged segment: %w", err)
	}

	batch := merged.NewBatch()
	for _, d := range docs {
		if err := batch.Index(d.id, d.doc); err != nil {
			_ = merged.Close()
			return fmt.Errorf("batching merged document %s: %w", d.id, err)
		}
	}
	if err := merged.Batch(batch); err != nil {
		_ = merged.Close()
		return fmt.Errorf("committing merged segment: %w", err)
	}

	idx.mu.Lock()
	for id, seg := range oldSegments {
		_ = seg.Close()
		delete(idx.segments, id)
		_ = os.RemoveAll(segmentPath(baseDir, id))
	}
	idx.segments[newSegID] = merged
	idx.manifest.Segments = []string{newSegID}
	idx.alias = bleve.NewIndexAlias(merged)
	idx.mu.Unlock()

	if err := idx.manifest.save(idx.baseDir + string(os.PathSeparator) + manifestFile); err != nil {
		return fmt.Errorf("saving manifest after merge: %w", err)
	}

	lastMergeTS.Store(time.Now().UnixMilli())
	SegmentCount.Set(1)
	logger.Info("searchindex: merge completed", zap.Int("segments_merged", len(oldSegments)))
	return nil
}

type docWithID struct {
	id  string
	doc messageDoc
}

// collectAllDocuments walks every segment's full document set via
// paginated MatchAll searches requesting stored fields, reconstructing
// messageDoc values from them.
func collectAllDocuments(segments map[string]bleve.Index) ([]docWithID, error) {
	const pageSize = 1000
	var out []docWithID

	fields := []string{
		FieldAgent, FieldWorkspace, FieldSourcePath, FieldMsgIdx,
		FieldCreatedAt, FieldTitle, FieldContent, FieldPreview,
	}

	for _, seg := range segments {
		from := 0
		for {
			req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), pageSize, from, false)
			req.Fields = fields
			res, err := seg.Search(req)
			if err != nil {
				return nil, err
			}
			if len(res.Hits) == 0 {
				break
			}
			for _, hit := range res.Hits {
				out = append(out, docWithID{
					id:  hit.ID,
					doc: docFromFields(hit.Fields),
				})
			}
			from += pageSize
			if uint64(from) >= res.Total {
				break
			}
		}
	}
	return out, nil
}

func docFromFields(fields map[string]interface{}) messageDoc {
	str := func(k string) string {
		v, _ := fields[k].(string)
		return v
	}
	num := func(k string) int64 {
		switch v := fields[k].(type) {
		case float64:
			return int64(v)
		case int64:
			return v
		default:
			return 0
		}
	}

	content := str(FieldContent)
	title := str(FieldTitle)
	return messageDoc{
		Agent:         str(FieldAgent),
		Workspace:     str(FieldWorkspace),
		SourcePath:    str(FieldSourcePath),
		MsgIdx:        int(num(FieldMsgIdx)),
		CreatedAt:     num(FieldCreatedAt),
		Title:         title,
		Content:       content,
		TitlePrefix:   generateEdgeNgrams(title),
		ContentPrefix: generateEdgeNgrams(content),
		Preview:       str(FieldPreview),
	}
}
