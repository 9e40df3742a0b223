// Package claudecode normalizes Claude Code's per-project JSONL
// transcripts, grounded on the teacher's internal/conversation/parser.go
// (same per-line envelope-plus-nested-message shape) and
// original_source/tests/e2e_multi_connector.rs for the exact fixture
// format actually on disk.
package claudecode

import (
	"bufio"
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
	slug        = "claude_code"
	envHome     = "CLAUDE_CODE_HOME"
	homeDir     = ".claude"
	projectsDir = "projects"
	maxLineKB   = 10 * 1024 * 1024
)

// Connector implements connectors.Connector for Claude Code.
type Connector struct{}

// New returns a new Claude Code connector.
func New() *Connector { return &Connector{} }

var _ connectors.Connector = (*Connector)(nil)

func (c *Connector) Slug() string { return slug }

func (c *Connector) Detect(ctx context.Context) connectors.DetectionResult {
	root := resolveRoot("")
	if _, err := os.Stat(filepath.Join(root, projectsDir)); err == nil {
		return connectors.DetectionResult{Detected: true, Evidence: []string{"found " + root}}
	}
	return connectors.DetectionResult{Detected: false}
}

func (c *Connector) Scan(ctx context.Context, sc connectors.ScanContext) ([]canonical.Conversation, error) {
	root := resolveRoot(sc.DataRoot)
	projects := filepath.Join(root, projectsDir)

	var files []string
	_ = filepath.WalkDir(projects, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".jsonl") {
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
		if _, err := os.Stat(filepath.Join(dataRoot, projectsDir)); err == nil {
			return dataRoot
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, homeDir)
}

// jsonlRecord is one line of a session file: an envelope type plus a
// nested message whose own shape varies (flat {role, content} string, or
// a nestedMessage whose content is an array of content blocks).
type jsonlRecord struct {
	Type      string          `json:"type"`
	UUID      string          `json:"uuid,omitempty"`
	Timestamp string          `json:"timestamp,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
	Message   json.RawMessage `json:"message,omitempty"`
}

type nestedMessage struct {
	Role    string         `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

func parseSession(path string, sinceTS *int64) (canonical.Conversation, bool) {
	f, err := os.Open(path)
	if err != nil {
		return canonical.Conversation{}, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineKB)

	var messages []canonical.Message
	var sessionID string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue // malformed record: skip, keep scanning
		}
		if rec.Type != "user" && rec.Type != "assistant" {
			continue
		}
		if rec.SessionID != "" {
			sessionID = rec.SessionID
		}

		createdAt := util.ParseTimestampPtr(rec.Timestamp)
		content := extractMessageContent(rec.Message)
		if strings.TrimSpace(content) == "" {
			continue
		}
		if sinceTS != nil && createdAt != nil && *createdAt <= *sinceTS {
			continue
		}

		messages = append(messages, canonical.Message{
			Role:      rec.Type,
			CreatedAt: createdAt,
			Content:   content,
		})
	}
	if err := scanner.Err(); err != nil {
		return canonical.Conversation{}, false
	}

	if sessionID == "" {
		sessionID = strings.TrimSuffix(filepath.Base(path), ".jsonl")
	}

	conv := canonical.Conversation{
		AgentSlug:  slug,
		ExternalID: sessionID,
		Workspace:  filepath.Dir(path),
		SourcePath: path,
		Messages:   messages,
	}
	if !conv.Finalize() {
		return canonical.Conversation{}, false
	}
	return conv, true
}

// extractMessageContent tolerates both a flat {"role":..,"content":"text"}
// nested message and the richer {"role":..,"content":[{"type":"text",...}]}
// content-block form.
func extractMessageContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var nm nestedMessage
	if err := json.Unmarshal(raw, &nm); err != nil {
		return ""
	}

	var plain string
	if err := json.Unmarshal(nm.Content, &plain); err == nil {
		return plain
	}

	var blocks []contentBlock
	if err := json.Unmarshal(nm.Content, &blocks); err == nil {
		var parts []string
		for _, b := range blocks {
			if b.Type == "text" && b.Text != "" {
				parts = append(parts, b.Text)
			}
		}
		return strings.Join(parts, "\n")
	}

	return ""
}
