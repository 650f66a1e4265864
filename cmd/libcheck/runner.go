package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/mrjschrack/library-checker-app/internal/app"
	"github.com/mrjschrack/library-checker-app/internal/availability"
	"github.com/mrjschrack/library-checker-app/internal/config"
	"github.com/mrjschrack/library-checker-app/internal/dashboard"
	"github.com/mrjschrack/library-checker-app/internal/refresh"
	"github.com/mrjschrack/library-checker-app/internal/state"
)

// Runner holds dependencies for CLI commands and provides a method per
// command action.
type Runner struct {
	logger    *log.Logger
	output    io.Writer
	newClient func(cfg config.Config) (dashboard.API, error)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Logger    *log.Logger
	Output    io.Writer
	NewClient func(cfg config.Config) (dashboard.API, error)
}

// NewRunner creates a Runner with the provided options, defaulting the
// logger to stderr and output to stdout.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.NewClient == nil {
		opts.NewClient = func(cfg config.Config) (dashboard.API, error) {
			return dashboard.NewClient(cfg.APIBase, cfg.Source)
		}
	}
	return &Runner{
		logger:    opts.Logger,
		output:    opts.Output,
		newClient: opts.NewClient,
	}
}

func (r *Runner) setup(cmd *cli.Command) (config.Config, dashboard.API, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, nil, err
	}
	client, err := r.newClient(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, client, nil
}

// Tui opens the interactive dashboard.
func (r *Runner) Tui(ctx context.Context, cmd *cli.Command) error {
	return app.Run(ctx, app.Options{ConfigPath: cmd.String("config")})
}

// Sync imports the reading list from its RSS feed.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	cfg, client, err := r.setup(cmd)
	if err != nil {
		return err
	}
	rssURL := cmd.String("rss-url")
	if rssURL == "" {
		rssURL = cfg.RSSURL
	}
	if rssURL == "" {
		return fmt.Errorf("no RSS URL: pass --rss-url or set rss_url in config")
	}

	r.logger.Info("syncing reading list", "rss_url", rssURL)
	books, err := client.SyncReadingList(ctx, rssURL)
	if err != nil {
		return fmt.Errorf("sync reading list: %w", err)
	}
	fmt.Fprintf(r.output, "Synced %d books\n", len(books))
	return nil
}

// Books lists the collection with current availability, available-first.
func (r *Runner) Books(ctx context.Context, cmd *cli.Command) error {
	_, client, err := r.setup(cmd)
	if err != nil {
		return err
	}
	books, err := client.Books(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(r.output)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	}

	for _, book := range availability.RankBooks(books) {
		marker := " "
		if availability.HasAvailable(book.Availability) {
			marker = "*"
		}
		fmt.Fprintf(r.output, "%s %4d  %s — %s%s\n",
			marker, book.ID, book.Title, book.Author, summarize(book.Availability))
	}
	return nil
}

// Check runs a single-book check or the bulk job depending on flags.
func (r *Runner) Check(ctx context.Context, cmd *cli.Command) error {
	_, client, err := r.setup(cmd)
	if err != nil {
		return err
	}
	force := cmd.Bool("force")

	if cmd.Bool("all") {
		return r.checkAll(ctx, client, force)
	}

	bookID := cmd.Int64("book")
	if bookID <= 0 {
		return fmt.Errorf("pass --book <id> or --all")
	}
	records, err := client.CheckBook(ctx, bookID, force)
	if err != nil {
		return fmt.Errorf("check book %d: %w", bookID, err)
	}
	for _, rec := range availability.SortByStatus(records) {
		fmt.Fprintf(r.output, "%-12s %s\n", rec.Status, rec.LibraryName)
	}
	return nil
}

// checkAll drives the bulk job to completion, printing progress as it goes.
func (r *Runner) checkAll(ctx context.Context, client dashboard.API, force bool) error {
	store := &state.Store{}
	controller := refresh.New(client, store, time.Second, r.logger)
	defer controller.Stop()

	if err := controller.Start(ctx, force); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-controller.Events():
			switch ev.Kind {
			case refresh.EventProgress:
				fmt.Fprintf(r.output, "\rchecking… %3d%%", ev.Progress)
			case refresh.EventCompleted:
				snap := store.Snapshot()
				fmt.Fprintf(r.output, "\rchecking… 100%%\n")
				fmt.Fprintf(r.output, "Done: %d books, %d available now\n",
					len(snap.Books), availability.CountAvailable(snap.Books))
				return nil
			case refresh.EventFailed:
				fmt.Fprintln(r.output)
				return ev.Err
			}
		}
	}
}

// LibrariesList prints the configured library catalogs.
func (r *Runner) LibrariesList(ctx context.Context, cmd *cli.Command) error {
	_, client, err := r.setup(cmd)
	if err != nil {
		return err
	}
	libs, err := client.Libraries(ctx)
	if err != nil {
		return fmt.Errorf("list libraries: %w", err)
	}
	if len(libs) == 0 {
		fmt.Fprintln(r.output, "No libraries configured")
		return nil
	}
	for _, lib := range libs {
		status := "active"
		if !lib.IsActive {
			status = "inactive"
		}
		fmt.Fprintf(r.output, "%4d  %-24s %-8s %s\n", lib.ID, lib.Name, status, lib.BaseURL)
	}
	return nil
}

// LibrariesAdd registers a new library catalog.
func (r *Runner) LibrariesAdd(ctx context.Context, cmd *cli.Command) error {
	_, client, err := r.setup(cmd)
	if err != nil {
		return err
	}
	lib, err := client.AddLibrary(ctx, dashboard.NewLibrary{
		Name:       cmd.String("name"),
		BaseURL:    cmd.String("url"),
		CardNumber: cmd.String("card"),
		IsActive:   !cmd.Bool("inactive"),
	})
	if err != nil {
		return fmt.Errorf("add library: %w", err)
	}
	fmt.Fprintf(r.output, "Added library #%d %s\n", lib.ID, lib.Name)
	return nil
}

// LibrariesUpdate applies a partial update to a library catalog.
func (r *Runner) LibrariesUpdate(ctx context.Context, cmd *cli.Command) error {
	_, client, err := r.setup(cmd)
	if err != nil {
		return err
	}

	var patch dashboard.LibraryPatch
	if cmd.IsSet("name") {
		v := cmd.String("name")
		patch.Name = &v
	}
	if cmd.IsSet("url") {
		v := cmd.String("url")
		patch.BaseURL = &v
	}
	if cmd.IsSet("card") {
		v := cmd.String("card")
		patch.CardNumber = &v
	}
	if cmd.IsSet("active") {
		v, err := strconv.ParseBool(cmd.String("active"))
		if err != nil {
			return fmt.Errorf("parse --active: %w", err)
		}
		patch.IsActive = &v
	}

	lib, err := client.UpdateLibrary(ctx, cmd.Int64("id"), patch)
	if err != nil {
		return fmt.Errorf("update library: %w", err)
	}
	fmt.Fprintf(r.output, "Updated library #%d %s\n", lib.ID, lib.Name)
	return nil
}

// LibrariesRemove deletes a library catalog.
func (r *Runner) LibrariesRemove(ctx context.Context, cmd *cli.Command) error {
	_, client, err := r.setup(cmd)
	if err != nil {
		return err
	}
	id := cmd.Int64("id")
	if err := client.RemoveLibrary(ctx, id); err != nil {
		return fmt.Errorf("remove library: %w", err)
	}
	fmt.Fprintf(r.output, "Removed library #%d\n", id)
	return nil
}

// Borrow checks a book out from a library.
func (r *Runner) Borrow(ctx context.Context, cmd *cli.Command) error {
	return r.checkout(ctx, cmd, "borrow")
}

// Hold places a hold on a book at a library.
func (r *Runner) Hold(ctx context.Context, cmd *cli.Command) error {
	return r.checkout(ctx, cmd, "hold")
}

func (r *Runner) checkout(ctx context.Context, cmd *cli.Command, verb string) error {
	_, client, err := r.setup(cmd)
	if err != nil {
		return err
	}
	bookID := cmd.Int64("book")
	libraryID := cmd.Int64("library")

	var result dashboard.ActionResult
	if verb == "borrow" {
		result, err = client.Borrow(ctx, bookID, libraryID)
	} else {
		result, err = client.PlaceHold(ctx, bookID, libraryID)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", verb, err)
	}
	if !result.Success {
		return fmt.Errorf("%s rejected: %s", verb, result.Message)
	}
	fmt.Fprintln(r.output, result.Message)
	return nil
}

// summarize renders a short availability suffix for one book line.
func summarize(records []dashboard.Availability) string {
	if len(records) == 0 {
		return "  (no libraries configured)"
	}
	counts := map[string]int{}
	for _, rec := range records {
		counts[rec.Status]++
	}
	out := ""
	for _, status := range []string{
		dashboard.StatusAvailable,
		dashboard.StatusHold,
		dashboard.StatusUnknown,
		dashboard.StatusUnavailable,
		dashboard.StatusNotFound,
		dashboard.StatusError,
	} {
		if n := counts[status]; n > 0 {
			out += fmt.Sprintf("  %s:%d", status, n)
		}
	}
	return out
}
