package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings libcheck needs to talk to the backend.
type Config struct {
	APIBase     string `toml:"api_base"`
	Source      string `toml:"source"`
	RSSURL      string `toml:"rss_url"`
	PollSeconds int    `toml:"poll_interval_seconds"`
	LogFile     string `toml:"log_file"`
}

const (
	defaultConfigPath  = "~/.config/libcheck/config.toml"
	defaultAPIBase     = "127.0.0.1:8000"
	defaultSource      = "goodreads"
	defaultLogFile     = "~/.local/share/libcheck/libcheck.log"
	defaultPollSeconds = 1
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load locates and parses the config file, falling back to defaults when it
// is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw Config
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	if v := strings.TrimSpace(raw.Source); v != "" {
		cfg.Source = v
	}
	if v := strings.TrimSpace(raw.RSSURL); v != "" {
		cfg.RSSURL = v
	}
	if raw.PollSeconds > 0 {
		cfg.PollSeconds = raw.PollSeconds
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = v
	}
	cfg.LogFile = mustExpand(cfg.LogFile)

	return cfg, nil
}

func defaults() Config {
	return Config{
		APIBase:     defaultAPIBase,
		Source:      defaultSource,
		PollSeconds: defaultPollSeconds,
		LogFile:     mustExpand(defaultLogFile),
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
