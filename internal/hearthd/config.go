// Package hearthd holds the daemon's configuration, logging, and module
// supervision plumbing.
package hearthd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for hearthd.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Modules ModulesConfig `toml:"modules"`
}

// ServerConfig defines shared server settings.
type ServerConfig struct {
	User      string `toml:"user"`
	Broker    string `toml:"broker"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogOutput string `toml:"log_output"`
	LogUTC    bool   `toml:"log_utc"`
}

// ModulesConfig holds module configurations.
type ModulesConfig struct {
	DLNAServer     DLNAServerConfig     `toml:"dlna_server"`
	UpdateFeed     UpdateFeedConfig     `toml:"update_feed"`
	EmbeddedBroker EmbeddedBrokerConfig `toml:"embedded_broker"`
	PodcastFeeds   PodcastFeedsConfig   `toml:"podcast_feeds"`
}

// DLNAServerConfig configures the DLNA control server.
type DLNAServerConfig struct {
	Enabled       bool   `toml:"enabled"`
	Listen        string `toml:"listen"`
	FriendlyName  string `toml:"friendly_name"`
	CacheTTLMS    int64  `toml:"cache_ttl_ms"`
	CacheSize     int    `toml:"cache_size"`
	CacheCompress bool   `toml:"cache_compress"`
}

// UpdateFeedConfig configures the MQTT library update feed.
type UpdateFeedConfig struct {
	Enabled   bool   `toml:"enabled"`
	Topic     string `toml:"topic"`
	ClientID  string `toml:"client_id"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	TimeoutMS int64  `toml:"timeout_ms"`
}

// EmbeddedBrokerConfig configures the in-process MQTT broker.
type EmbeddedBrokerConfig struct {
	Enabled        bool   `toml:"enabled"`
	Listen         string `toml:"listen"`
	AllowAnonymous bool   `toml:"allow_anonymous"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
}

// PodcastFeedsConfig configures podcast ingestion.
type PodcastFeedsConfig struct {
	Enabled                bool     `toml:"enabled"`
	Feeds                  []string `toml:"feeds"`
	RefreshIntervalMinutes int64    `toml:"refresh_interval_minutes"`
	TimeoutMS              int64    `toml:"timeout_ms"`
}

// LoadConfig loads a config file from path.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, err
	}
	if info.IsDir() {
		return Config{}, errors.New("config path is a directory")
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DefaultConfigPath returns the default config location.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "hearthcast", "hearthd.toml"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "hearthcast", "hearthd.toml"), nil
}
