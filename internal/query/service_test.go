package query

import (
	"testing"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/codesearch/internal/searchindex"
	"github.com/fyrsmithlabs/codesearch/pkg/canonical"
)

func newTestIndex(t *testing.T) *searchindex.Index {
	t.Helper()
	dir := searchindex.IndexDir(t.TempDir())
	idx, err := searchindex.OpenOrCreate(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("OpenOrCreate() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func i64(v int64) *int64 { return &v }

func addConv(t *testing.T, idx *searchindex.Index, agent, workspace, content string, createdAt int64) {
	t.Helper()
	conv := &canonical.Conversation{
		AgentSlug:  agent,
		Workspace:  workspace,
		SourcePath: "/tmp/" + agent + ".jsonl",
		Messages: []canonical.Message{
			{Role: "user", CreatedAt: i64(createdAt), Content: content},
		},
	}
	conv.Finalize()
	idx.AddConversation(conv)
}

func TestService_Search_FiltersByAgent(t *testing.T) {
	idx := newTestIndex(t)
	addConv(t, idx, "claude_code", "/repo/a", "the word user appears here", 1_700_000_000_000)
	addConv(t, idx, "codex", "/repo/b", "the word user appears here too", 1_700_000_001_000)
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	svc := NewService(idx, zap.NewNop())
	hits, err := svc.Search("user", Filters{Agents: []string{"claude_code"}}, RankingBalanced, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("want 1 hit filtered to claude_code, got %d", len(hits))
	}
	if hits[0].Agent != "claude_code" {
		t.Fatalf("want agent=claude_code, got %q", hits[0].Agent)
	}
}

func TestService_Search_PrefixHitClassifiedAsPrefix(t *testing.T) {
	idx := newTestIndex(t)
	addConv(t, idx, "codex", "/repo", "telemetry pipeline", 1_700_000_000_000)
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	svc := NewService(idx, zap.NewNop())
	hits, err := svc.Search("tele", Filters{}, RankingBalanced, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) == 0 {
		t.Fatalf("want at least 1 hit for prefix query 'tele'")
	}
	if hits[0].MatchType != MatchPrefix {
		t.Fatalf("want match_type=Prefix, got %v", hits[0].MatchType)
	}
}

func TestService_Search_ExactPhraseClassifiedAsExact(t *testing.T) {
	idx := newTestIndex(t)
	addConv(t, idx, "codex", "/repo", "the quick brown fox jumps", 1_700_000_000_000)
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	svc := NewService(idx, zap.NewNop())
	hits, err := svc.Search("quick brown fox", Filters{}, RankingBalanced, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) == 0 {
		t.Fatalf("want at least 1 hit for exact phrase query")
	}
	if hits[0].MatchType != MatchExact {
		t.Fatalf("want match_type=Exact, got %v", hits[0].MatchType)
	}
}

func TestService_Search_RespectsLimit(t *testing.T) {
	idx := newTestIndex(t)
	for i := 0; i < 5; i++ {
		addConv(t, idx, "codex", "/repo", "shared keyword across messages", 1_700_000_000_000+int64(i))
	}
	if err := idx.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	svc := NewService(idx, zap.NewNop())
	hits, err := svc.Search("shared", Filters{}, RankingBalanced, 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("want limit of 2 hits, got %d", len(hits))
	}
}

func TestService_Search_EmptyIndexReturnsNoHits(t *testing.T) {
	idx := newTestIndex(t)
	svc := NewService(idx, zap.NewNop())
	hits, err := svc.Search("anything", Filters{}, RankingBalanced, 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("want 0 hits on empty index, got %d", len(hits))
	}
}
