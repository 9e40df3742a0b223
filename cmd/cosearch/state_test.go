package main

import (
	"os"
	"testing"
)

func writeCorruptState(path string) error {
	return os.WriteFile(path, []byte("{not valid json"), 0o600)
}

func TestLoadScanState_MissingFileReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := loadScanState(dir)
	if err != nil {
		t.Fatalf("loadScanState() error = %v", err)
	}
	if len(s.LastScanTS) != 0 {
		t.Fatalf("want empty state for a fresh data dir, got %v", s.LastScanTS)
	}
}

func TestScanState_SaveAndReload(t *testing.T) {
	dir := t.TempDir()
	s := &scanState{LastScanTS: map[string]int64{"codex": 1_700_000_000_000}}
	if err := s.save(dir); err != nil {
		t.Fatalf("save() error = %v", err)
	}

	reloaded, err := loadScanState(dir)
	if err != nil {
		t.Fatalf("loadScanState() error = %v", err)
	}
	if reloaded.LastScanTS["codex"] != 1_700_000_000_000 {
		t.Fatalf("want persisted timestamp to round-trip, got %v", reloaded.LastScanTS)
	}
}

func TestLoadScanState_CorruptFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := statePath(dir)
	if err := writeCorruptState(path); err != nil {
		t.Fatal(err)
	}

	s, err := loadScanState(dir)
	if err != nil {
		t.Fatalf("want corrupt bookkeeping to degrade gracefully, got error %v", err)
	}
	if len(s.LastScanTS) != 0 {
		t.Fatalf("want empty state recovered from corrupt file, got %v", s.LastScanTS)
	}
}
