// Package gemini normalizes Gemini CLI's per-project chat session files,
// grounded on original_source/tests/e2e_multi_connector.rs's
// make_gemini_fixture and spec.md's documented
// ~/.gemini/tmp/<hash>/chats/session-*.json layout.
package gemini

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
	slug        = "gemini"
	envHome     = "GEMINI_HOME"
	homeDir     = ".gemini"
	tmpDir      = "tmp"
	chatsDir    = "chats"
	sessionGlob = "session-"
)

// Connector implements connectors.Connector for Gemini CLI.
type Connector struct{}

// New returns a new Gemini connector.
func New() *Connector { return &Connector{} }

var _ connectors.Connector = (*Connector)(nil)

func (c *Connector) Slug() string { return slug }

func (c *Connector) Detect(ctx context.Context) connectors.DetectionResult {
	root := resolveRoot("")
	if _, err := os.Stat(filepath.Join(root, tmpDir)); err == nil {
		return connectors.DetectionResult{Detected: true, Evidence: []string{"found " + root}}
	}
	return connectors.DetectionResult{Detected: false}
}

func (c *Connector) Scan(ctx context.Context, sc connectors.ScanContext) ([]canonical.Conversation, error) {
	root := resolveRoot(sc.DataRoot)
	tmp := filepath.Join(root, tmpDir)

	var files []string
	_ = filepath.WalkDir(tmp, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if filepath.Base(filepath.Dir(path)) != chatsDir {
			return nil
		}
		if strings.HasPrefix(d.Name(), sessionGlob) && strings.HasSuffix(d.Name(), ".json") {
			files = append(files, path)
		}
		return nil
	})

	var out []canonical.Conversation
	for _, path := range files {
		if !util.FileModifiedSince(path, sc.SinceTS) {
			continue
		}
		conv, ok := parseSession(path, sc.SinceTS)
		if !ok {
			continue
		}
		out = append(out, conv)
	}
	return out, nil
}

func resolveRoot(dataRoot string) string {
	if v := os.Getenv(envHome); v != "" {
		return v
	}
	if dataRoot != "" {
		if _, err := os.Stat(filepath.Join(dataRoot, tmpDir)); err == nil {
			return dataRoot
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, homeDir)
}

type sessionFile struct {
	SessionID string           `json:"sessionId"`
	Messages  []map[string]any `json:"messages"`
}

func parseSession(path string, sinceTS *int64) (canonical.Conversation, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return canonical.Conversation{}, false
	}

	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return canonical.Conversation{}, false
	}

	var messages []canonical.Message
	for _, item := range sf.Messages {
		createdAt := util.TimestampAt(item, "timestamp", "created_at")
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

	nativeID := strings.TrimSpace(sf.SessionID)
	if nativeID == "" {
		nativeID = strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), sessionGlob), ".json")
	}

	conv := canonical.Conversation{
		AgentSlug:  slug,
		ExternalID: nativeID,
		Workspace:  filepath.Dir(filepath.Dir(path)),
		SourcePath: path,
		Messages:   messages,
	}
	if !conv.Finalize() {
		return canonical.Conversation{}, false
	}
	return conv, true
}
