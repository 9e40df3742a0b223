package cfg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// LoadWithFile loads configuration from a YAML file, then overrides
// with environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (LOGGING_LEVEL, DATA_DIR, ...)
//  2. YAML config file (~/.config/codesearch/config.yaml)
//  3. Hardcoded defaults
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "codesearch", "config.yaml")
	}

	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyTransformer), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := mergeConnectorRootsTOML(&c, configPath); err != nil {
		return nil, fmt.Errorf("failed to load connector roots sidecar: %w", err)
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// envKeyTransformer maps LOGGING_LEVEL -> logging.level and a bare
// DATA_DIR -> data_dir, splitting on the first underscore only
// (section.field_name pattern).
func envKeyTransformer(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	if parts[0] == "data" && parts[1] == "dir" {
		return "data_dir"
	}
	return parts[0] + "." + parts[1]
}

// connectorRootsSidecar is the optional connectors.toml living beside
// config.yaml, for operators who keep per-connector root overrides in a
// separate file rather than cluttering the main YAML config.
type connectorRootsSidecar struct {
	DataRoots map[string]string `toml:"data_roots"`
}

// mergeConnectorRootsTOML loads connectors.toml from the same directory
// as configPath, if present, filling any data_roots entries not already
// set by the YAML config or an environment variable. The sidecar is
// lower precedence than both.
func mergeConnectorRootsTOML(c *Config, configPath string) error {
	sidecarPath := filepath.Join(filepath.Dir(configPath), "connectors.toml")
	if _, err := os.Stat(sidecarPath); os.IsNotExist(err) {
		return nil
	}

	var sidecar connectorRootsSidecar
	if _, err := toml.DecodeFile(sidecarPath, &sidecar); err != nil {
		return fmt.Errorf("failed to parse %s: %w", sidecarPath, err)
	}

	if c.Connectors.DataRoots == nil {
		c.Connectors.DataRoots = make(map[string]string, len(sidecar.DataRoots))
	}
	for slug, root := range sidecar.DataRoots {
		if _, already := c.Connectors.DataRoots[slug]; !already {
			c.Connectors.DataRoots[slug] = root
		}
	}
	return nil
}

// EnsureConfigDir creates the codesearch config directory with owner-only
// permissions if it doesn't already exist.
func EnsureConfigDir() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".config", "codesearch")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return nil
}

func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		resolvedPath = absPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	allowedDirs := []string{
		filepath.Join(home, ".config", "codesearch"),
		"/etc/codesearch",
	}

	for _, dir := range allowedDirs {
		if strings.HasPrefix(resolvedPath, dir) {
			return nil
		}
	}
	return fmt.Errorf("config file must be in ~/.config/codesearch/ or /etc/codesearch/")
}

func validateConfigFileProperties(info os.FileInfo) error {
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0o600 && perm != 0o400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.DataDir == "" {
		home, _ := os.UserHomeDir()
		c.DataDir = filepath.Join(home, ".local", "share", "codesearch")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}
