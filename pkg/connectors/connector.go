// Package connectors normalizes each supported coding agent's on-disk
// conversation history into the canonical conversation/message shape,
// and provides incremental, format-tolerant scanning.
package connectors

import (
	"context"

	"github.com/fyrsmithlabs/codesearch/pkg/canonical"
)

// ScanContext carries the parameters of a single scan invocation.
type ScanContext struct {
	// DataRoot is the root the caller believes holds this agent's data.
	// A connector may use it directly, or fall back to its own default.
	DataRoot string
	// SinceTS is the millisecond epoch of the last successful scan.
	// Nil means a full scan.
	SinceTS *int64
}

// DetectionResult reports whether an agent appears to be installed.
type DetectionResult struct {
	Detected bool
	Evidence []string
}

// Connector normalizes one agent's on-disk conversation format.
type Connector interface {
	// Slug is the stable short identifier for this agent (e.g. "codex").
	Slug() string

	// Detect performs a cheap, best-effort check for this agent's presence.
	Detect(ctx context.Context) DetectionResult

	// Scan walks this agent's storage and emits canonical conversations.
	// Implementations must tolerate malformed records and files: skip and
	// continue rather than aborting the whole scan.
	Scan(ctx context.Context, sc ScanContext) ([]canonical.Conversation, error)
}
