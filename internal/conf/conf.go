package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/dolphinbot/dolphin/internal/biz/domain"
	"github.com/dolphinbot/dolphin/internal/biz/usecase"
	"github.com/dolphinbot/dolphin/internal/data"
)

const (
	// legacyRuleKey is the primary single-rule key; numbered variants append 1..legacyRuleKeys
	legacyRuleKey  = "DOLPHIN_USER_TO_GROUP"
	legacyRuleKeys = 10
)

// Config represents application configuration
type Config struct {
	Line      LineConfig
	Server    ServerConfig
	Store     StoreConfig
	Router    RouterConfig
	Broadcast BroadcastConfig
	Log       LogConfig

	// Replies are loaded from the YAML file
	Replies usecase.ReplyTemplates

	// ConfigFile is the YAML file that was loaded, empty if none
	ConfigFile string
}

// LineConfig contains LINE Messaging API configuration
type LineConfig struct {
	ChannelSecret      string        `envconfig:"LINE_CHANNEL_SECRET"`
	ChannelAccessToken string        `envconfig:"LINE_CHANNEL_ACCESS_TOKEN"`
	APIBase            string        `envconfig:"LINE_API_BASE" default:"https://api.line.me/v2/bot"`
	Timeout            time.Duration `envconfig:"LINE_HTTP_TIMEOUT" default:"10s"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port                      string `envconfig:"PORT" default:"3000"`
	SkipSignatureVerification bool   `envconfig:"SKIP_SIGNATURE_VERIFICATION"`
}

// StoreConfig contains persistence configuration
type StoreConfig struct {
	Backend        string        `envconfig:"STORE_BACKEND" default:"sqlite"`
	DBPath         string        `envconfig:"DB_PATH"`
	ReplyStateFile string        `envconfig:"REPLY_STATE_FILE" default:"reply_state.txt"`
	HistoryTTL     time.Duration `envconfig:"HISTORY_TTL" default:"720h"`
}

// RouterConfig contains routing policy switches
type RouterConfig struct {
	MuteDirectWhenDisabled bool `envconfig:"MUTE_DIRECT_WHEN_DISABLED"`
	GroupBroadcast         bool `envconfig:"GROUP_BROADCAST"`
}

// BroadcastConfig contains broadcast rule entries ("<userId>:<groupId>")
type BroadcastConfig struct {
	Rules []string `envconfig:"DOLPHIN_BROADCAST_RULES"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type fileLocation struct {
	Path string `envconfig:"DOLPHIN_CONFIG_PATH"`
}

// LoadFromEnv loads configuration from environment variables and the optional YAML file
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}

	groups := []interface{}{&cfg.Line, &cfg.Server, &cfg.Store, &cfg.Router, &cfg.Broadcast, &cfg.Log}
	for _, g := range groups {
		if err := envconfig.Process("", g); err != nil {
			return nil, &ConfigError{Field: "env", Message: err.Error()}
		}
	}

	if cfg.Store.DBPath == "" {
		homeDir, _ := os.UserHomeDir()
		cfg.Store.DBPath = filepath.Join(homeDir, ".dolphin", "dolphin.db")
	}

	var loc fileLocation
	if err := envconfig.Process("", &loc); err != nil {
		return nil, &ConfigError{Field: "DOLPHIN_CONFIG_PATH", Message: err.Error()}
	}
	fileCfg, loadedPath, err := LoadFileConfig(loc.Path)
	if err != nil {
		return nil, &ConfigError{Field: "DOLPHIN_CONFIG_PATH", Message: err.Error()}
	}
	cfg.ConfigFile = loadedPath
	cfg.Replies = fileCfg.Replies.ToReplyTemplates()

	// Rule order: explicit env list, YAML list, then legacy numbered keys and the primary key
	rules := append([]string{}, cfg.Broadcast.Rules...)
	rules = append(rules, fileCfg.BroadcastRules...)
	rules = append(rules, legacyRuleEntries(os.Getenv)...)
	cfg.Broadcast.Rules = rules

	return cfg, nil
}

// legacyRuleEntries reads DOLPHIN_USER_TO_GROUP1..10 followed by DOLPHIN_USER_TO_GROUP
func legacyRuleEntries(getenv func(string) string) []string {
	var entries []string
	for i := 1; i <= legacyRuleKeys; i++ {
		if v := strings.TrimSpace(getenv(fmt.Sprintf("%s%d", legacyRuleKey, i))); v != "" {
			entries = append(entries, v)
		}
	}
	if v := strings.TrimSpace(getenv(legacyRuleKey)); v != "" {
		entries = append(entries, v)
	}
	return entries
}

// Directory builds the broadcast directory; malformed entries are skipped
func (c *Config) Directory() *domain.BroadcastDirectory {
	return domain.NewBroadcastDirectory(c.Broadcast.Rules)
}

// ToRouterConfig converts to usecase router configuration
func (c *Config) ToRouterConfig() usecase.RouterConfig {
	return usecase.RouterConfig{
		MuteDirectWhenDisabled: c.Router.MuteDirectWhenDisabled,
		GroupBroadcast:         c.Router.GroupBroadcast,
		Replies:                c.Replies.WithDefaults(),
	}
}

// ToStoreConfig converts to data store configuration
func (c *Config) ToStoreConfig() data.StoreConfig {
	return data.StoreConfig{
		Backend:        c.Store.Backend,
		DBPath:         c.Store.DBPath,
		ReplyStateFile: c.Store.ReplyStateFile,
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return "0.0.0.0:" + c.Server.Port
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Line.ChannelAccessToken == "" {
		return &ConfigError{Field: "LINE_CHANNEL_ACCESS_TOKEN", Message: "required"}
	}
	if c.Line.ChannelSecret == "" && !c.Server.SkipSignatureVerification {
		return &ConfigError{Field: "LINE_CHANNEL_SECRET", Message: "required unless SKIP_SIGNATURE_VERIFICATION=true"}
	}
	switch strings.ToLower(c.Store.Backend) {
	case data.BackendSQLite, data.BackendFile, data.BackendMemory:
	default:
		return &ConfigError{Field: "STORE_BACKEND", Message: fmt.Sprintf("unknown backend %q", c.Store.Backend)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
