// Package amp normalizes Amp's cached per-thread JSON files, grounded on
// original_source/tests/e2e_multi_connector.rs's make_amp_fixture and
// spec.md's documented $XDG_DATA_HOME/amp/cache/thread_*.json layout.
package amp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/codesearch/pkg/canonical"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors"
	"github.com/fyrsmithlabs/codesearch/pkg/connectors/util"
)

const (
	slug       = "amp"
	envXDGData = "XDG_DATA_HOME"
	ampSubdir  = "amp"
	cacheDir   = "cache"
	threadGlob = "thread_"
)

// Connector implements connectors.Connector for Amp.
type Connector struct{}

// New returns a new Amp connector.
func New() *Connector { return &Connector{} }

var _ connectors.Connector = (*Connector)(nil)

func (c *Connector) Slug() string { return slug }

func (c *Connector) Detect(ctx context.Context) connectors.DetectionResult {
	root := resolveRoot("")
	if _, err := os.Stat(filepath.Join(root, cacheDir)); err == nil {
		return connectors.DetectionResult{Detected: true, Evidence: []string{"found " + root}}
	}
	return connectors.DetectionResult{Detected: false}
}

func (c *Connector) Scan(ctx context.Context, sc connectors.ScanContext) ([]canonical.Conversation, error) {
	root := resolveRoot(sc.DataRoot)
	cache := filepath.Join(root, cacheDir)

	entries, err := os.ReadDir(cache)
	if err != nil {
		return nil, nil
	}

	var out []canonical.Conversation
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, threadGlob) || !strings.HasSuffix(name, ".json") {
			continue
		}
		path := filepath.Join(cache, name)
		if !util.FileModifiedSince(path, sc.SinceTS) {
			continue
		}
		conv, ok := parseThread(path, sc.SinceTS)
		if !ok {
			continue
		}
		out = append(out, conv)
	}
	return out, nil
}

// resolveRoot follows XDG_DATA_HOME/amp, falling back to ~/.local/share/amp
// when the variable is unset, per the XDG base directory convention.
func resolveRoot(dataRoot string) string {
	if dataRoot != "" {
		if _, err := os.Stat(filepath.Join(dataRoot, cacheDir)); err == nil {
			return dataRoot
		}
	}
	if v := os.Getenv(envXDGData); v != "" {
		return filepath.Join(v, ampSubdir)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", ampSubdir)
}

type threadFile struct {
	Messages []map[string]any `json:"messages"`
}

func parseThread(path string, sinceTS *int64) (canonical.Conversation, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return canonical.Conversation{}, false
	}

	var tf threadFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return canonical.Conversation{}, false
	}

	var messages []canonical.Message
	for _, item := range tf.Messages {
		createdAt := util.TimestampAt(item, "created_at", "timestamp")
		if sinceTS != nil && createdAt != nil && *createdAt <= *sinceTS {
			continue
		}

		role := util.StringAt(item, "role")
		if role == "" {
			role = "agent"
		}
		content := util.StringAt(item, "content", "text")
		if strings.TrimSpace(content) == "" {
			continue
		}

		messages = append(messages, canonical.Message{
			Role:      role,
			CreatedAt: createdAt,
			Content:   content,
			Extra:     item,
		})
	}

	conv := canonical.Conversation{
		AgentSlug:  slug,
		ExternalID: strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), threadGlob), ".json"),
		SourcePath: path,
		Messages:   messages,
	}
	if !conv.Finalize() {
		return canonical.Conversation{}, false
	}
	return conv, true
}
