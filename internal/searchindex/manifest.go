package searchindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const manifestFile = "segments.json"

// manifest tracks which segment subdirectories currently make up the
// index and the next segment ID to allocate. It is our own stand-in for
// the reference implementation's segment bookkeeping: bleve (via its
// scorch backend) manages its own internal segments per-index, but
// doesn't expose cheap control over merge scheduling the way tantivy's
// IndexWriter does, so each "segment" here is a whole separate bleve
// index directory that we merge by re-indexing.
type manifest struct {
	SchemaHash string   `json:"schema_hash"`
	Segments   []string `json:"segments"`
	NextSeg    int      `json:"next_seg"`
}

func loadManifest(path string) (*manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &manifest{SchemaHash: SchemaHash}, nil
	}
	if err != nil {
		return nil, err
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *manifest) save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (m *manifest) nextSegmentID() string {
	id := fmt.Sprintf("seg-%06d", m.NextSeg)
	m.NextSeg++
	return id
}

func segmentPath(baseDir, segID string) string {
	return filepath.Join(baseDir, "segments", segID)
}
