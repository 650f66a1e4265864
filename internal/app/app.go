package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mrjschrack/library-checker-app/internal/config"
	"github.com/mrjschrack/library-checker-app/internal/dashboard"
	"github.com/mrjschrack/library-checker-app/internal/prefs"
	"github.com/mrjschrack/library-checker-app/internal/refresh"
	"github.com/mrjschrack/library-checker-app/internal/state"
	"github.com/mrjschrack/library-checker-app/internal/ui"
)

// Options configure the libcheck application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/libcheck/prefs.toml
	PollEvery  int    // seconds between job polls; zero uses the config value
}

// Run boots the libcheck TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	userPrefs := prefs.Load(opts.PrefsPath)

	client, err := dashboard.NewClient(cfg.APIBase, cfg.Source)
	if err != nil {
		return fmt.Errorf("init dashboard client: %w", err)
	}

	// The TUI owns the terminal, so logs go to a file.
	logger := newFileLogger(cfg.LogFile)

	store := &state.Store{}

	interval := time.Duration(cfg.PollSeconds) * time.Second
	if opts.PollEvery > 0 {
		interval = time.Duration(opts.PollEvery) * time.Second
	}
	controller := refresh.New(client, store, interval, logger)
	defer controller.Stop()

	uiOpts := ui.Options{
		Context:    ctx,
		Client:     client,
		Store:      store,
		Controller: controller,
		RSSURL:     cfg.RSSURL,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  opts.PrefsPath,
		Logger:     logger,
	}
	return ui.Run(uiOpts)
}

func newFileLogger(path string) *log.Logger {
	var w io.Writer = io.Discard
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
				w = f
			}
		}
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true})
}
