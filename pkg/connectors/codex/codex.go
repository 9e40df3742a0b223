// Package codex normalizes Codex's JSONL rollout files, where each line
// is an envelope {type, timestamp, payload} and the payload shape varies
// by envelope type.
package codex

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
	slug      = "codex"
	envHome   = "CODEX_HOME"
	homeDir   = ".codex"
	sessions  = "sessions"
	maxLineKB = 10 * 1024 * 1024
)

// Connector implements connectors.Connector for Codex.
type Connector struct{}

// New returns a new Codex connector.
func New() *Connector { return &Connector{} }

var _ connectors.Connector = (*Connector)(nil)

func (c *Connector) Slug() string { return slug }

func (c *Connector) Detect(ctx context.Context) connectors.DetectionResult {
	root := resolveRoot("")
	if _, err := os.Stat(filepath.Join(root, sessions)); err == nil {
		return connectors.DetectionResult{Detected: true, Evidence: []string{"found " + root}}
	}
	return connectors.DetectionResult{Detected: false}
}

func (c *Connector) Scan(ctx context.Context, sc connectors.ScanContext) ([]canonical.Conversation, error) {
	root := resolveRoot(sc.DataRoot)
	sessionsDir := filepath.Join(root, sessions)

	var files []string
	_ = filepath.WalkDir(sessionsDir, func(path string, d os.DirEntry, err error) error {
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
		conv, ok := parseRollout(path, sc.SinceTS)
		if !ok {
			continue
		}
		out = append(out, conv)
	}
	return out, nil
}

// resolveRoot honors CODEX_HOME first, then a caller-supplied data_root
// that already looks like a Codex home (has a sessions/ subdir), then
// falls back to ~/.codex.
func resolveRoot(dataRoot string) string {
	if v := os.Getenv(envHome); v != "" {
		return v
	}
	if dataRoot != "" {
		if _, err := os.Stat(filepath.Join(dataRoot, sessions)); err == nil {
			return dataRoot
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, homeDir)
}

type envelope struct {
	Type      string          `json:"type"`
	Timestamp json.RawMessage `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// noiseEnvelopeTypes are rollout records that carry no conversation
// content — session bookkeeping and operational telemetry, not
// something a user would ever search for.
var noiseEnvelopeTypes = map[string]bool{
	"session_meta": true,
	"turn_context": true,
	"compacted":    true,
	"task_started": true,
	"token_count":  true,
}

func parseRollout(path string, sinceTS *int64) (canonical.Conversation, bool) {
	f, err := os.Open(path)
	if err != nil {
		return canonical.Conversation{}, false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxLineKB)

	nativeID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	var messages []canonical.Message
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var env envelope
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			continue // malformed record: skipped without a warning (no logger here), scan continues
		}

		var payload map[string]any
		_ = json.Unmarshal(env.Payload, &payload)

		if env.Type == "session_meta" {
			if id := util.StringAt(payload, "id"); id != "" {
				nativeID = id
			}
			continue
		}
		if noiseEnvelopeTypes[env.Type] {
			continue
		}

		var ts any
		_ = json.Unmarshal(env.Timestamp, &ts)
		createdAt := util.ParseTimestampPtr(ts)

		role := extractRole(env.Type, payload)
		content := util.StringAt(payload, "message", "content", "text")
		if strings.TrimSpace(content) == "" {
			continue
		}
		if sinceTS != nil && createdAt != nil && *createdAt <= *sinceTS {
			continue
		}

		messages = append(messages, canonical.Message{
			Role:      role,
			CreatedAt: createdAt,
			Content:   content,
			Extra:     payload,
		})
	}
	if err := scanner.Err(); err != nil {
		return canonical.Conversation{}, false
	}

	conv := canonical.Conversation{
		AgentSlug:  slug,
		ExternalID: nativeID,
		SourcePath: path,
		Messages:   messages,
	}
	if !conv.Finalize() {
		return canonical.Conversation{}, false
	}
	return conv, true
}

func extractRole(envelopeType string, payload map[string]any) string {
	if role := util.StringAt(payload, "role"); role != "" {
		return role
	}
	if t := util.StringAt(payload, "type"); strings.Contains(t, "user") {
		return "user"
	}
	if strings.Contains(envelopeType, "user") {
		return "user"
	}
	return "assistant"
}
