package searchindex

import (
	"fmt"

	"github.com/fyrsmithlabs/codesearch/pkg/canonical"
)

// messageDoc is the unit bleve indexes: one per canonical.Message, with
// the parent conversation's addressable fields denormalized onto it so
// a single-document hit carries everything a search result needs.
type messageDoc struct {
	Agent          string `json:"agent"`
	Workspace      string `json:"workspace,omitempty"`
	SourcePath     string `json:"source_path"`
	MsgIdx         int    `json:"msg_idx"`
	CreatedAt      int64  `json:"created_at"`
	Title          string `json:"title,omitempty"`
	Content        string `json:"content"`
	TitlePrefix    string `json:"title_prefix,omitempty"`
	ContentPrefix  string `json:"content_prefix"`
	Preview        string `json:"preview"`
}

// docID is stable across re-index runs: same source file + message
// index always produces the same bleve document ID. Each commit writes a
// new segment, so a re-indexed message can sit in more than one segment
// until a merge re-indexes them by ID into a single copy; query results
// are keyed by this ID as well.
func docID(conv *canonical.Conversation, msg *canonical.Message) string {
	return fmt.Sprintf("%s#%s#%d", conv.AgentSlug, conv.SourcePath, msg.Idx)
}

func toMessageDoc(conv *canonical.Conversation, msg *canonical.Message) messageDoc {
	createdAt := msg.CreatedAt
	if createdAt == nil {
		createdAt = conv.StartedAt
	}
	var ts int64
	if createdAt != nil {
		ts = *createdAt
	}

	d := messageDoc{
		Agent:         conv.AgentSlug,
		Workspace:     conv.Workspace,
		SourcePath:    conv.SourcePath,
		MsgIdx:        msg.Idx,
		CreatedAt:     ts,
		Content:       msg.Content,
		ContentPrefix: generateEdgeNgrams(msg.Content),
		Preview:       buildPreview(msg.Content, previewMaxChars),
	}
	if conv.Title != "" {
		d.Title = conv.Title
		d.TitlePrefix = generateEdgeNgrams(conv.Title)
	}
	return d
}
