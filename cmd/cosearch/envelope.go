package main

import (
	"encoding/json"
	"strings"

	"github.com/fyrsmithlabs/codesearch/internal/apperr"
)

type errorEnvelope struct {
	Code      int    `json:"code"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Hint      string `json:"hint,omitempty"`
	Retryable bool   `json:"retryable"`
}

// envelopeJSON renders err as {"error": {...}}. If err's message is
// already a JSON object (a connector or index error that pre-formatted
// its own robot-mode payload), it's passed through unwrapped instead of
// being double-encoded.
func envelopeJSON(err *apperr.Error) string {
	trimmed := strings.TrimSpace(err.Message)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed
	}

	payload := map[string]errorEnvelope{
		"error": {
			Code:      err.Code(),
			Kind:      string(err.Kind),
			Message:   err.Error(),
			Hint:      err.Hint,
			Retryable: err.Retryable,
		},
	}
	out, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return `{"error":{"message":"failed to render error envelope"}}`
	}
	return string(out)
}
