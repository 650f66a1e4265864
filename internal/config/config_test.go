package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != defaultAPIBase {
		t.Fatalf("APIBase = %q, want %q", cfg.APIBase, defaultAPIBase)
	}
	if cfg.Source != defaultSource {
		t.Fatalf("Source = %q, want %q", cfg.Source, defaultSource)
	}
	if cfg.PollSeconds != defaultPollSeconds {
		t.Fatalf("PollSeconds = %d, want %d", cfg.PollSeconds, defaultPollSeconds)
	}
	if cfg.LogFile == "" {
		t.Fatalf("LogFile is empty, want expanded default")
	}
}

func TestLoad_ParsesFileAndFillsGaps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := []byte(`api_base = "books.local:9000"
rss_url = "https://example.com/list.rss"
poll_interval_seconds = 5
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != "books.local:9000" {
		t.Fatalf("APIBase = %q, want books.local:9000", cfg.APIBase)
	}
	if cfg.RSSURL != "https://example.com/list.rss" {
		t.Fatalf("RSSURL = %q, want feed url", cfg.RSSURL)
	}
	if cfg.PollSeconds != 5 {
		t.Fatalf("PollSeconds = %d, want 5", cfg.PollSeconds)
	}
	// Source was not set in the file, so the default fills in.
	if cfg.Source != defaultSource {
		t.Fatalf("Source = %q, want %q", cfg.Source, defaultSource)
	}
}

func TestLoad_RejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("api_base = ["), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load returned nil error, want parse error")
	}
}

func TestLoad_IgnoresNonPositivePollInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("poll_interval_seconds = -3"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PollSeconds != defaultPollSeconds {
		t.Fatalf("PollSeconds = %d, want default %d", cfg.PollSeconds, defaultPollSeconds)
	}
}

func TestExpandPath_Home(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := expandPath("~/x/y.toml")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "x", "y.toml")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}
