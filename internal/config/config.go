package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	SecureDesktop SecureDesktopConfig `toml:"secure_desktop"`
	Clipboard     ClipboardConfig     `toml:"clipboard"`
	Journal       JournalConfig       `toml:"journal"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Logging       LoggingConfig       `toml:"logging"`
	Theme         ThemeConfig         `toml:"theme"`
}

type SecureDesktopConfig struct {
	Enabled        bool `toml:"enabled"`
	PlaySound      bool `toml:"play_sound"`
	PollIntervalMs int  `toml:"poll_interval_ms"`
	SettleDelayMs  int  `toml:"settle_delay_ms"`
}

type ClipboardConfig struct {
	PollIntervalMs int `toml:"poll_interval_ms"`
}

type JournalConfig struct {
	Enabled    bool `toml:"enabled"`
	MaxEntries int  `toml:"max_entries"`
}

type MetricsConfig struct {
	// Textfile is a path for the node-exporter textfile collector. Empty disables export.
	Textfile string `toml:"textfile"`
}

type LoggingConfig struct {
	LogFile    string `toml:"log_file"`
	Level      string `toml:"level"`
	MaxAge     int    `toml:"max_age"`
	MaxSize    int    `toml:"max_size"`
	MaxBackups int    `toml:"max_backups"`
	Console    bool   `toml:"console"`
}

// ColorConfig is a foreground/background pair. Colors are hex codes, CSS
// names or ANSI numbers.
type ColorConfig struct {
	Foreground string `toml:"foreground"`
	Background string `toml:"background"`
	Bold       bool   `toml:"bold"`
}

// ThemeConfig styles the terminal password prompt.
type ThemeConfig struct {
	Border ColorConfig `toml:"border"`
	Title  ColorConfig `toml:"title"`
	Text   ColorConfig `toml:"text"`
	Help   ColorConfig `toml:"help"`
}

func (c SecureDesktopConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c SecureDesktopConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

func (c ClipboardConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// Dir returns ~/.config/securedesk
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "securedesk"), nil
}

// Load reads ~/.config/securedesk/config.toml, creating it with defaults first if needed
func Load() (*Config, error) {
	configDir, err := Dir()
	if err != nil {
		return nil, err
	}
	return LoadFile(filepath.Join(configDir, "config.toml"))
}

// LoadFile reads the config at configPath, creating it with defaults first if needed
func LoadFile(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := createDefaultConfig(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	config := Config{
		SecureDesktop: SecureDesktopConfig{Enabled: true, PlaySound: true},
		Journal:       JournalConfig{Enabled: true},
	}
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.SecureDesktop.PollIntervalMs <= 0 {
		config.SecureDesktop.PollIntervalMs = 150
	}
	if config.SecureDesktop.SettleDelayMs < 0 {
		config.SecureDesktop.SettleDelayMs = 5
	}

	if config.Clipboard.PollIntervalMs <= 0 {
		config.Clipboard.PollIntervalMs = 500
	}

	if config.Journal.MaxEntries <= 0 {
		config.Journal.MaxEntries = 500
	}

	if config.Logging.LogFile == "" {
		config.Logging.LogFile = "~/.local/state/securedesk/securedesk.log"
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.MaxAge <= 0 {
		config.Logging.MaxAge = 28
	}
	if config.Logging.MaxSize <= 0 {
		config.Logging.MaxSize = 10
	}
	if config.Logging.MaxBackups <= 0 {
		config.Logging.MaxBackups = 3
	}

	if config.Theme.Border.Foreground == "" {
		config.Theme.Border.Foreground = "#FFD700"
	}
	if config.Theme.Title.Foreground == "" {
		config.Theme.Title.Foreground = "#FFD700"
		config.Theme.Title.Bold = true
	}
	if config.Theme.Help.Foreground == "" {
		config.Theme.Help.Foreground = "gray"
	}
}

func createDefaultConfig(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(`[secure_desktop]
enabled = true
play_sound = true
poll_interval_ms = 150
settle_delay_ms = 5

[clipboard]
poll_interval_ms = 500

[journal]
enabled = true
max_entries = 500

[metrics]
textfile = ""

[logging]
log_file = "~/.local/state/securedesk/securedesk.log"
level = "info"
max_age = 28
max_size = 10
max_backups = 3
console = false

[theme.border]
foreground = "#FFD700"

[theme.title]
foreground = "#FFD700"
bold = true

[theme.text]
foreground = ""

[theme.help]
foreground = "gray"
`)

	return err
}
