// Package mdlog implements the shared line-oriented Markdown chat-log
// parser used by connectors whose agent writes a `> `-quoted transcript
// into the current workspace (e.g. aider's `.aider.chat.history.md`).
//
// The role-switching heuristic is carried over unchanged from the
// original Rust implementation: any line starting with "> " marks (or
// continues) a user turn; the first non-quoted, non-blank line while in
// the user state switches to assistant. This can misclassify an
// assistant block that itself happens to start with a blockquote line;
// that is a known, intentionally preserved quirk (see SPEC_FULL.md §6),
// not a bug to fix here.
package mdlog

import (
	"strings"

	"github.com/fyrsmithlabs/codesearch/pkg/canonical"
)

// ParseChatLog splits content into canonical messages using the
// blockquote-prefix heuristic. Returned messages have no CreatedAt;
// callers typically stamp started_at/ended_at from the source file's
// mtime instead.
func ParseChatLog(content string) []canonical.Message {
	var messages []canonical.Message
	currentRole := "system"
	var current strings.Builder
	idx := 0

	flush := func(role string) {
		trimmed := strings.TrimSpace(current.String())
		if trimmed != "" {
			messages = append(messages, canonical.Message{
				Idx:     idx,
				Role:    role,
				Author:  role,
				Content: trimmed,
			})
			idx++
		}
		current.Reset()
	}

	for _, line := range strings.Split(content, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if strings.HasPrefix(trimmedLine, "> ") {
			if currentRole != "user" {
				flush(currentRole)
			}
			currentRole = "user"
			current.WriteString(strings.TrimSpace(strings.TrimPrefix(trimmedLine, "> ")))
			current.WriteByte('\n')
			continue
		}

		if currentRole == "user" && trimmedLine != "" && !strings.HasPrefix(line, ">") {
			flush("user")
			currentRole = "assistant"
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	flush(currentRole)

	return messages
}
