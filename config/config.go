package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultBranchingFactor is the B*-tree branching parameter M used by
	// the name index. Matches the M used in the sequential-insert stress
	// scenario.
	DefaultBranchingFactor = 7

	// DefaultStreamWindow is the fixed capacity, in bytes, of the buffered
	// byte-stream window over file content.
	DefaultStreamWindow = 4096

	// DefaultLogLevel is InfoLevel.
	DefaultLogLevel = 2

	// DefaultSnapshotPath is the default SnapshotPath value. The CLI's
	// `savejson` command always takes an explicit path and does not read it.
	DefaultSnapshotPath = "/snapshot.json"
)

// Config contains runtime configuration values for the virtual file system.
type Config struct {
	BranchingFactor int    // B*-tree branching parameter M for the name index (Default 7)
	StreamWindow    int    // Buffered byte-stream window capacity in bytes (Default 4096)
	LogLevel        int    // util.LogLevel value (Default InfoLevel)
	SnapshotPath    string // Snapshot path setting (Default "/snapshot.json"); not read by the CLI's savejson
}

// ConfigOverride uses pointer fields to distinguish between unset and zero values
// when loading partial configuration. See [Config] for field descriptions.
type ConfigOverride struct {
	BranchingFactor *int    `yaml:"branching_factor,omitempty" json:"branching_factor,omitempty"`
	StreamWindow    *int    `yaml:"stream_window,omitempty" json:"stream_window,omitempty"`
	LogLevel        *int    `yaml:"log_level,omitempty" json:"log_level,omitempty"`
	SnapshotPath    *string `yaml:"snapshot_path,omitempty" json:"snapshot_path,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		BranchingFactor: DefaultBranchingFactor,
		StreamWindow:    DefaultStreamWindow,
		LogLevel:        DefaultLogLevel,
		SnapshotPath:    DefaultSnapshotPath,
	}
}

// Merge applies non-nil values from override onto this Config.
// This allows partial configuration updates while preserving existing values.
func (c *Config) Merge(override *ConfigOverride) {
	if override.BranchingFactor != nil {
		c.BranchingFactor = *override.BranchingFactor
	}
	if override.StreamWindow != nil {
		c.StreamWindow = *override.StreamWindow
	}
	if override.LogLevel != nil {
		c.LogLevel = *override.LogLevel
	}
	if override.SnapshotPath != nil {
		c.SnapshotPath = *override.SnapshotPath
	}
}

// LoadConfigOverrideFile loads configuration overrides from a file without merging.
// Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	// Determine format by file extension
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a new Config by merging file overrides with defaults.
// This is a convenience function that combines NewDefaultConfig, LoadConfigOverrideFile, and Merge.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	return cfg, nil
}
