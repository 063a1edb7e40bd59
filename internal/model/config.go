package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path (or ":memory:").
	Path string `mapstructure:"path" yaml:"path"`
}

// MatcherConfig holds autoresponse matching settings.
type MatcherConfig struct {
	// TriggerMode is the default match type for newly created autoresponses:
	// "literal" or "pattern".
	TriggerMode string `mapstructure:"trigger_mode" yaml:"trigger_mode"`

	// CascadeDelete controls whether deleting a tag also deletes
	// autoresponses referencing it. Off by default; orphaned rows are
	// tolerated either way.
	CascadeDelete bool `mapstructure:"cascade_delete" yaml:"cascade_delete"`
}

// IdentityConfig holds the community and author identifiers the console
// acts under. Both are opaque integers supplied by the surrounding platform;
// the core never interprets them.
type IdentityConfig struct {
	ServerID int64 `mapstructure:"server_id" yaml:"server_id"`
	AuthorID int64 `mapstructure:"author_id" yaml:"author_id"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Matcher  MatcherConfig  `mapstructure:"matcher" yaml:"matcher"`
	Identity IdentityConfig `mapstructure:"identity" yaml:"identity"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tagbot/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tagbot", "config.yaml")
}

// DefaultDBPath returns the default SQLite database location next to the
// config file.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "tagbot.sqlite")
	}
	return filepath.Join(home, ".config", "tagbot", "tagbot.sqlite")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{Path: DefaultDBPath()},
		Matcher: MatcherConfig{
			TriggerMode:   string(MatchLiteral),
			CascadeDelete: false,
		},
		Identity: IdentityConfig{ServerID: 1, AuthorID: 1},
		Display:  DisplayConfig{Theme: "default"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", DefaultDBPath())
	v.SetDefault("matcher.trigger_mode", string(MatchLiteral))
	v.SetDefault("matcher.cascade_delete", false)
	v.SetDefault("identity.server_id", 1)
	v.SetDefault("identity.author_id", 1)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if !MatchType(cfg.Matcher.TriggerMode).Valid() {
		return nil, fmt.Errorf(
			"config %s: matcher.trigger_mode must be %q or %q, got %q",
			path, MatchLiteral, MatchPattern, cfg.Matcher.TriggerMode,
		)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("matcher", cfg.Matcher)
	v.Set("identity", cfg.Identity)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
