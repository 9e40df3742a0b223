package claudecode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fyrsmithlabs/codesearch/pkg/connectors"
)

func writeSession(t *testing.T, dir string) string {
	t.Helper()
	project := filepath.Join(dir, "projects", "test-project")
	if err := os.MkdirAll(project, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(project, "session.jsonl")
	content := `{"type": "user", "timestamp": "2023-11-21T10:00:00Z", "message": {"role": "user", "content": "claude_user"}}
{"type": "assistant", "timestamp": "2023-11-21T10:00:05Z", "message": {"role": "assistant", "content": "claude_assistant"}}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConnector_Scan_ParsesSession(t *testing.T) {
	dir := t.TempDir()
	writeSession(t, dir)

	c := New()
	convs, err := c.Scan(context.Background(), connectors.ScanContext{DataRoot: dir})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(convs) != 1 {
		t.Fatalf("want 1 conversation, got %d", len(convs))
	}
	conv := convs[0]
	if conv.AgentSlug != slug {
		t.Fatalf("want agent_slug %q, got %q", slug, conv.AgentSlug)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("want 2 messages, got %d", len(conv.Messages))
	}
	if conv.Messages[0].Content != "claude_user" || conv.Messages[1].Content != "claude_assistant" {
		t.Fatalf("unexpected message content: %+v", conv.Messages)
	}
}

func TestConnector_Scan_ContentBlockArray(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "projects", "blocks-project")
	if err := os.MkdirAll(project, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(project, "session.jsonl")
	content := `{"type": "assistant", "timestamp": "2023-11-21T10:00:05Z", "message": {"role": "assistant", "content": [{"type": "text", "text": "line one"}, {"type": "text", "text": "line two"}]}}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New()
	convs, err := c.Scan(context.Background(), connectors.ScanContext{DataRoot: dir})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(convs) != 1 || len(convs[0].Messages) != 1 {
		t.Fatalf("want 1 conversation with 1 message, got %+v", convs)
	}
	if got := convs[0].Messages[0].Content; got != "line one\nline two" {
		t.Fatalf("want joined content-block text, got %q", got)
	}
}

func TestConnector_Scan_SkipsUnmodifiedFiles(t *testing.T) {
	dir := t.TempDir()
	writeSession(t, dir)

	future := int64(1) << 62
	c := New()
	convs, err := c.Scan(context.Background(), connectors.ScanContext{DataRoot: dir, SinceTS: &future})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(convs) != 0 {
		t.Fatalf("want 0 conversations for unmodified file, got %d", len(convs))
	}
}
