package main

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// scanState is cosearch's bookkeeping of the last successful scan per
// connector, so `index` without --full only looks at what's changed.
type scanState struct {
	LastScanTS map[string]int64 `json:"last_scan_ts"`
}

func statePath(dataDir string) string {
	return filepath.Join(dataDir, "scan_state.json")
}

func loadScanState(dataDir string) (*scanState, error) {
	data, err := os.ReadFile(statePath(dataDir))
	if os.IsNotExist(err) {
		return &scanState{LastScanTS: map[string]int64{}}, nil
	}
	if err != nil {
		return nil, err
	}
	var s scanState
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt bookkeeping file degrades to "scan everything",
		// never to a crash.
		return &scanState{LastScanTS: map[string]int64{}}, nil
	}
	if s.LastScanTS == nil {
		s.LastScanTS = map[string]int64{}
	}
	return &s, nil
}

func (s *scanState) save(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(statePath(dataDir), data, 0o600)
}
