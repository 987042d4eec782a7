package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dolphinbot/dolphin/internal/biz/usecase"
)

// FileConfig is the optional YAML configuration file
type FileConfig struct {
	Replies        RepliesConfig `yaml:"replies"`
	BroadcastRules []string      `yaml:"broadcast_rules"`
}

// RepliesConfig overrides reply texts; empty values keep the defaults
type RepliesConfig struct {
	RepliesEnabled        string `yaml:"replies_enabled"`
	RepliesDisabled       string `yaml:"replies_disabled"`
	ToggleFailed          string `yaml:"toggle_failed"`
	ControlUnauthorized   string `yaml:"control_unauthorized"`
	BroadcastNotFound     string `yaml:"broadcast_not_found"`
	BroadcastSent         string `yaml:"broadcast_sent"`
	BroadcastFailed       string `yaml:"broadcast_failed"`
	BroadcastUnauthorized string `yaml:"broadcast_unauthorized"`
	SuffixNotFound        string `yaml:"suffix_not_found"`
}

// ToReplyTemplates converts to usecase reply templates with defaults applied
func (r RepliesConfig) ToReplyTemplates() usecase.ReplyTemplates {
	return usecase.ReplyTemplates{
		RepliesEnabled:        r.RepliesEnabled,
		RepliesDisabled:       r.RepliesDisabled,
		ToggleFailed:          r.ToggleFailed,
		ControlUnauthorized:   r.ControlUnauthorized,
		BroadcastNotFound:     r.BroadcastNotFound,
		BroadcastSent:         r.BroadcastSent,
		BroadcastFailed:       r.BroadcastFailed,
		BroadcastUnauthorized: r.BroadcastUnauthorized,
		SuffixNotFound:        r.SuffixNotFound,
	}.WithDefaults()
}

// LoadFileConfig loads the YAML configuration file.
// With an empty configPath a few well-known locations are tried; a missing file yields an empty config.
func LoadFileConfig(configPath string) (*FileConfig, string, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/dolphin.yaml",
			"/etc/dolphin/dolphin.yaml",
		}
		// Add path relative to executable
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "dolphin.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err == nil {
			data = b
			loadedPath = p
			break
		}
		if configPath != "" {
			return nil, "", fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	}

	if data == nil {
		return &FileConfig{}, "", nil
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", loadedPath, err)
	}
	return &cfg, loadedPath, nil
}
