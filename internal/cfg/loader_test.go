package cfg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithFile_AppliesDefaultsWhenNoFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := LoadWithFile(filepath.Join(home, ".config", "codesearch", "config.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if c.Logging.Level != "info" {
		t.Fatalf("want default logging level 'info', got %q", c.Logging.Level)
	}
}

func TestLoadWithFile_RejectsPathOutsideAllowedDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	outside := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(outside, []byte("data_dir: /tmp/x"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadWithFile(outside); err == nil {
		t.Fatalf("want error for config path outside allowed directories")
	}
}

func TestLoadWithFile_RejectsWorldReadableFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "codesearch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /tmp/x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadWithFile(path); err == nil {
		t.Fatalf("want error for world-readable config file")
	}
}

func TestLoadWithFile_LoadsYAMLValues(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "codesearch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	yamlContent := "data_dir: /var/lib/codesearch\nlogging:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if c.DataDir != "/var/lib/codesearch" {
		t.Fatalf("want data_dir from yaml, got %q", c.DataDir)
	}
	if c.Logging.Level != "debug" {
		t.Fatalf("want logging.level=debug from yaml, got %q", c.Logging.Level)
	}
}

func TestLoadWithFile_EnvOverridesYAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "codesearch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LOGGING_LEVEL", "warn")

	c, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if c.Logging.Level != "warn" {
		t.Fatalf("want env override logging.level=warn, got %q", c.Logging.Level)
	}
}

func TestLoadWithFile_MergesConnectorRootsSidecarTOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "codesearch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: /var/lib/codesearch\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	sidecar := "[data_roots]\ncodex = \"/custom/codex/sessions\"\n"
	if err := os.WriteFile(filepath.Join(dir, "connectors.toml"), []byte(sidecar), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := LoadWithFile(path)
	if err != nil {
		t.Fatalf("LoadWithFile() error = %v", err)
	}
	if c.Connectors.DataRoots["codex"] != "/custom/codex/sessions" {
		t.Fatalf("want data_roots.codex from sidecar TOML, got %q", c.Connectors.DataRoots["codex"])
	}
}

func TestConfig_Validate_RejectsBadLoggingFormat(t *testing.T) {
	c := &Config{Logging: LoggingConfig{Format: "xml"}}
	if err := c.Validate(); err == nil {
		t.Fatalf("want validation error for unsupported logging format")
	}
}
