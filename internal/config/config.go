// Package config loads the bot configuration from YAML, layered over
// built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/joingate/joingate/internal/alert"
	"github.com/joingate/joingate/internal/router"
	"github.com/joingate/joingate/internal/rules"
)

// Gateway holds the connection settings for the chat platform event
// gateway (OneBot v11 over WebSocket).
type Gateway struct {
	URL         string `yaml:"url"`
	AccessToken string `yaml:"access_token"`
}

// Defaults are the rule values applied to groups with no stored config.
type Defaults struct {
	Switch      bool `yaml:"switch"`
	MinLevel    int  `yaml:"min_level"`
	MaxAttempts int  `yaml:"max_attempts"`
}

// Config is the full bot configuration.
type Config struct {
	DataDir string   `yaml:"data_dir"`
	Gateway Gateway  `yaml:"gateway"`
	Rules   Defaults `yaml:"rule_defaults"`

	AdminIDs   []string `yaml:"admin_ids"`
	AdminAudit bool     `yaml:"admin_audit"`

	LeaveNotify bool `yaml:"leave_notify"`
	LeaveBlock  bool `yaml:"leave_block"`

	WelcomeTemplate string `yaml:"welcome_template"`
	MuteSeconds     int    `yaml:"mute_seconds"`

	MetricsAddr string `yaml:"metrics_addr"`
	AuditLog    string `yaml:"audit_log"`

	Alerts []alert.WebhookConfig `yaml:"alerts"`
}

// DefaultConfig returns the built-in configuration. Review is on by
// default so a fresh install gates requests immediately.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		DataDir: filepath.Join(home, ".joingate"),
		Gateway: Gateway{
			URL: "ws://127.0.0.1:6700",
		},
		Rules: Defaults{
			Switch: true,
		},
		LeaveNotify: true,
	}
}

// DefaultPath is the config location used when no path is given.
// Empty when the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".joingate", "config.yaml")
}

// Load reads configuration from a YAML file.
// Empty path falls back to ~/.joingate/config.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// RouterConfig projects the behavior toggles consumed by the event router.
func (c *Config) RouterConfig() router.Config {
	return router.Config{
		AdminIDs:        c.AdminIDs,
		AdminAudit:      c.AdminAudit,
		LeaveNotify:     c.LeaveNotify,
		LeaveBlock:      c.LeaveBlock,
		WelcomeTemplate: c.WelcomeTemplate,
		MuteSeconds:     c.MuteSeconds,
	}
}

// RuleDefaults projects the defaults consumed by the rule store.
func (c *Config) RuleDefaults() rules.Defaults {
	return rules.Defaults{
		Enabled:     c.Rules.Switch,
		MinLevel:    c.Rules.MinLevel,
		MaxAttempts: c.Rules.MaxAttempts,
	}
}

// DefaultConfigYAML is the annotated starter config written by `joingate init`.
const DefaultConfigYAML = `# joingate configuration

# Directory for persisted group rules and other state.
# data_dir: ~/.joingate

gateway:
  # OneBot v11 WebSocket endpoint of your bot runtime.
  url: ws://127.0.0.1:6700
  # access_token: ""

# Defaults applied to groups that have no stored rules yet.
rule_defaults:
  switch: true
  min_level: 0
  max_attempts: 0

# Users allowed to run rule commands in group chat.
admin_ids: []

# Send join-request notices to admins by direct message instead of the group.
admin_audit: false

# Report voluntary leaves to the group.
leave_notify: true
# Blacklist users who leave voluntarily.
leave_block: false

# Sent after a member joins; {nickname} is substituted.
welcome_template: ""

# Mute new members for this many seconds after joining (0 disables).
mute_seconds: 0

# Serve Prometheus metrics on this address (empty disables).
metrics_addr: ""

# Hash-chained JSONL verdict log (empty disables).
audit_log: ""

# Webhook alerts for rejections and auto-blacklist events.
alerts: []
#  - url: https://hooks.example.com/joingate
#    format: slack
#    events: [reject, auto_blacklist]
`
