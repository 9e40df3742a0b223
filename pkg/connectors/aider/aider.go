// Package aider normalizes aider's `.aider.chat.history.md` transcripts,
// grounded on original_source/src/connectors/aider.rs.
package aider

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/codesearch/pkg/canonical"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors/mdlog"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors/util"
)

const (
	slug         = "aider"
	historyFile  = ".aider.chat.history.md"
	dataRootEnv  = "COSEARCH_AIDER_DATA_ROOT"
	maxWalkDepth = 5
)

// Connector implements connectors.Connector for aider.
type Connector struct{}

// New returns a new aider connector.
func New() *Connector { return &Connector{} }

var _ connectors.Connector = (*Connector)(nil)

func (c *Connector) Slug() string { return slug }

// Detect always reports detected=true: aider writes into the current
// workspace rather than a fixed home directory, so watcher-triggered
// reindex paths must not skip it even when nothing is found yet.
func (c *Connector) Detect(ctx context.Context) connectors.DetectionResult {
	roots := candidateRoots("")
	files := findHistoryFiles(roots)

	evidence := []string{"aider connector active"}
	if len(files) > 0 {
		evidence = append(evidence, "found "+files[0])
	}
	return connectors.DetectionResult{Detected: true, Evidence: evidence}
}

func (c *Connector) Scan(ctx context.Context, sc connectors.ScanContext) ([]canonical.Conversation, error) {
	roots := candidateRoots(sc.DataRoot)
	files := findHistoryFiles(roots)

	var out []canonical.Conversation
	for _, path := range files {
		if !util.FileModifiedSince(path, sc.SinceTS) {
			continue
		}
		conv, ok := parseHistoryFile(path)
		if !ok {
			continue // malformed file: skipped without a warning (no logger here), scan continues
		}
		out = append(out, conv)
	}
	return out, nil
}

func candidateRoots(dataRoot string) []string {
	var roots []string
	if dataRoot != "" {
		roots = append(roots, dataRoot)
	}
	if cwd, err := os.Getwd(); err == nil {
		roots = append(roots, cwd)
	}
	if override := os.Getenv(dataRootEnv); override != "" {
		roots = append(roots, override)
	}
	return roots
}

// findHistoryFiles walks each root (shallow depth) looking for
// .aider.chat.history.md files.
func findHistoryFiles(roots []string) []string {
	seen := make(map[string]bool)
	var files []string
	for _, root := range roots {
		if root == "" {
			continue
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // tolerate unreadable subtrees
			}
			if d.IsDir() {
				if depth(root, path) > maxWalkDepth {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Name() == historyFile && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
	}
	return files
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}

func parseHistoryFile(path string) (canonical.Conversation, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return canonical.Conversation{}, false
	}

	messages := mdlog.ParseChatLog(string(data))

	info, err := os.Stat(path)
	var startedAt *int64
	if err == nil {
		ms := info.ModTime().UnixMilli()
		startedAt = &ms
	}

	conv := canonical.Conversation{
		AgentSlug:  slug,
		ExternalID: filepath.Base(path),
		Title:      "Aider Chat: " + path,
		Workspace:  filepath.Dir(path),
		SourcePath: path,
		StartedAt:  startedAt,
		EndedAt:    startedAt,
		Messages:   messages,
	}
	if !conv.Finalize() {
		return canonical.Conversation{}, false
	}
	return conv, true
}
