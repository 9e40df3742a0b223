// Package cline normalizes Cline's per-task VS Code globalStorage
// directories, grounded on original_source/src/connectors/cline.rs.
package cline

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
	slug           = "cline"
	extID          = "saoudrizwan.claude-dev"
	uiMessagesFile = "ui_messages.json"
	apiHistoryFile = "api_conversation_history.json"
	metadataFile   = "task_metadata.json"
	titleRunes     = 100
)

// Connector implements connectors.Connector for Cline.
type Connector struct{}

// New returns a new Cline connector.
func New() *Connector { return &Connector{} }

var _ connectors.Connector = (*Connector)(nil)

func (c *Connector) Slug() string { return slug }

func (c *Connector) Detect(ctx context.Context) connectors.DetectionResult {
	root := storageRoot()
	if _, err := os.Stat(root); err == nil {
		return connectors.DetectionResult{Detected: true, Evidence: []string{"found " + root}}
	}
	return connectors.DetectionResult{Detected: false}
}

func (c *Connector) Scan(ctx context.Context, sc connectors.ScanContext) ([]canonical.Conversation, error) {
	root := resolveRoot(sc.DataRoot)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil
	}

	var out []canonical.Conversation
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		taskDir := filepath.Join(root, entry.Name())
		conv, ok := parseTaskDir(taskDir, entry.Name(), sc.SinceTS)
		if !ok {
			continue
		}
		out = append(out, conv)
	}
	return out, nil
}

// storageRoot mirrors VS Code's globalStorage layout for the Cline
// extension: ~/.config/Code/User/globalStorage/<ext-id> on Linux, or the
// "Library/Application Support" equivalent on macOS.
func storageRoot() string {
	home, _ := os.UserHomeDir()
	linux := filepath.Join(home, ".config", "Code", "User", "globalStorage", extID)
	if _, err := os.Stat(linux); err == nil {
		return linux
	}
	return filepath.Join(home, "Library", "Application Support", "Code", "User", "globalStorage", extID)
}

// resolveRoot prefers a caller-supplied data_root if it already looks
// like a Cline globalStorage directory (named after the extension, or
// containing at least one task subdirectory), else falls back to the
// platform default.
func resolveRoot(dataRoot string) string {
	if dataRoot != "" {
		if strings.Contains(filepath.Base(dataRoot), "claude-dev") {
			return dataRoot
		}
		if looksLikeTaskParent(dataRoot) {
			return dataRoot
		}
	}
	return storageRoot()
}

func looksLikeTaskParent(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if fileExists(filepath.Join(p, uiMessagesFile)) || fileExists(filepath.Join(p, apiHistoryFile)) {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func parseTaskDir(taskDir, taskID string, sinceTS *int64) (canonical.Conversation, bool) {
	var sourceFile string
	if p := filepath.Join(taskDir, uiMessagesFile); fileExists(p) {
		sourceFile = p
	} else if p := filepath.Join(taskDir, apiHistoryFile); fileExists(p) {
		sourceFile = p
	} else {
		return canonical.Conversation{}, false
	}

	if !util.FileModifiedSince(sourceFile, sinceTS) {
		return canonical.Conversation{}, false
	}

	data, err := os.ReadFile(sourceFile)
	if err != nil {
		return canonical.Conversation{}, false
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return canonical.Conversation{}, false
	}

	var messages []canonical.Message
	for _, item := range items {
		createdAt := util.TimestampAt(item, "timestamp", "created_at", "ts")
		if sinceTS != nil && createdAt != nil && *createdAt <= *sinceTS {
			continue
		}

		role := util.StringAt(item, "role", "type")
		if role == "" {
			role = "agent"
		}
		content := util.StringAt(item, "content", "text", "message")
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
	if len(messages) == 0 {
		return canonical.Conversation{}, false
	}

	title, workspace := readMetadata(taskDir)
	if title == "" {
		title = firstLineTitle(messages)
	}

	conv := canonical.Conversation{
		AgentSlug:  slug,
		ExternalID: taskID,
		Title:      title,
		Workspace:  workspace,
		SourcePath: taskDir,
		Metadata:   map[string]any{"source": slug},
		Messages:   messages,
	}
	if !conv.Finalize() {
		return canonical.Conversation{}, false
	}
	if conv.Title == "" {
		conv.Title = firstLineTitle(conv.Messages)
	}
	return conv, true
}

func readMetadata(taskDir string) (title, workspace string) {
	data, err := os.ReadFile(filepath.Join(taskDir, metadataFile))
	if err != nil {
		return "", ""
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", ""
	}
	title = util.StringAt(meta, "title")
	workspace = util.StringAt(meta, "rootPath", "cwd", "workspace")
	return title, workspace
}

// firstLineTitle falls back to the first line of the earliest message,
// truncated to titleRunes runes, for a task whose task_metadata.json
// carries no title.
func firstLineTitle(messages []canonical.Message) string {
	if len(messages) == 0 {
		return ""
	}
	line := messages[0].Content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	runes := []rune(line)
	if len(runes) > titleRunes {
		runes = runes[:titleRunes]
	}
	return string(runes)
}
