// Package canonical defines the agent-independent conversation and message
// shapes every connector produces, and the invariants that must hold before
// a conversation is handed to the search index.
package canonical

import (
	"sort"

	"github.com/google/uuid"
)

// Message is one turn in a conversation, agent-independent.
type Message struct {
	Idx       int            `json:"idx"`
	Role      string         `json:"role"`
	Author    string         `json:"author,omitempty"`
	CreatedAt *int64         `json:"created_at,omitempty"`
	Content   string         `json:"content"`
	Snippets  []Snippet      `json:"snippets,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Snippet is an extracted code or file excerpt preserved alongside a message.
// It is stored but never separately indexed.
type Snippet struct {
	Path    string `json:"path,omitempty"`
	Content string `json:"content"`
}

// Conversation is one logical chat session produced by a single connector.
type Conversation struct {
	AgentSlug  string         `json:"agent_slug"`
	ExternalID string         `json:"external_id,omitempty"`
	Title      string         `json:"title,omitempty"`
	Workspace  string         `json:"workspace,omitempty"`
	SourcePath string         `json:"source_path"`
	StartedAt  *int64         `json:"started_at,omitempty"`
	EndedAt    *int64         `json:"ended_at,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Messages   []Message      `json:"messages"`
}

// Finalize enforces the data-model invariants from the spec:
//   - messages with empty/whitespace content are dropped
//   - remaining messages are sorted ascending by created_at (absent == 0)
//     and reassigned dense, zero-based idx
//   - started_at/ended_at are set to the first/last message's created_at
//     when not already present
//
// It returns false when the conversation has zero messages after
// filtering, in which case it must not be emitted.
func (c *Conversation) Finalize() bool {
	kept := make([]Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		if isBlank(m.Content) {
			continue
		}
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return false
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return ts(kept[i].CreatedAt) < ts(kept[j].CreatedAt)
	})
	for i := range kept {
		kept[i].Idx = i
	}
	c.Messages = kept

	if c.StartedAt == nil {
		c.StartedAt = kept[0].CreatedAt
	}
	if c.EndedAt == nil {
		c.EndedAt = kept[len(kept)-1].CreatedAt
	}
	if c.ExternalID == "" {
		c.ExternalID = uuid.NewString()
	}
	return true
}

func ts(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
