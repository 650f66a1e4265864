package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/mrjschrack/library-checker-app/internal/availability"
	"github.com/mrjschrack/library-checker-app/internal/dashboard"
	"github.com/mrjschrack/library-checker-app/internal/prefs"
	"github.com/mrjschrack/library-checker-app/internal/refresh"
	"github.com/mrjschrack/library-checker-app/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewBooks View = iota
	ViewLibraries
)

const defaultUITick = time.Second

// Options configures the UI.
type Options struct {
	Context      context.Context
	Client       dashboard.API
	Store        *state.Store
	Controller   *refresh.Controller
	RSSURL       string
	ThemeName    string
	PrefsPath    string
	RefreshEvery time.Duration
	Logger       *log.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx        context.Context
	client     dashboard.API
	store      *state.Store
	controller *refresh.Controller
	rssURL     string
	prefsPath  string
	logger     *log.Logger
	tick       time.Duration

	theme  Theme
	view   View
	width  int
	height int
	ready  bool

	snapshot state.Snapshot
	display  []dashboard.BookWithAvailability
	selected int

	checking map[int64]bool
	syncing  bool

	bulkActive   bool
	bulkProgress int
	progressBar  progress.Model
	spin         spinner.Model

	libraries       []dashboard.Library
	librariesLoaded bool

	notice   string
	errNote  string
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.RefreshEvery
	if tick <= 0 {
		tick = defaultUITick
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.Load(opts.PrefsPath).Theme
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		controller:  opts.Controller,
		rssURL:      opts.RSSURL,
		prefsPath:   opts.PrefsPath,
		logger:      logger,
		tick:        tick,
		theme:       GetTheme(themeName),
		view:        ViewBooks,
		checking:    make(map[int64]bool),
		progressBar: progress.New(progress.WithDefaultGradient()),
		spin:        sp,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.tick),
		loadBooksCmd(m.ctx, m.client, m.store),
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progressBar.Width = clampInt(msg.Width-24, 10, 60)
		m.ready = true
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.tick))

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case booksLoadedMsg:
		if msg.err != nil {
			m.errNote = "could not load books from the backend"
		} else {
			m.errNote = ""
		}
		return m, fetchSnapshotCmd(m.store)

	case checkDoneMsg:
		delete(m.checking, msg.bookID)
		if msg.err != nil {
			m.logger.Error("availability check failed", "book_id", msg.bookID, "err", msg.err)
			m.errNote = "availability check failed"
			return m, nil
		}
		m.notice = "availability updated"
		return m, fetchSnapshotCmd(m.store)

	case refreshStartedMsg:
		if msg.err != nil {
			m.bulkActive = false
			if errors.Is(msg.err, refresh.ErrAlreadyRunning) {
				m.notice = "a bulk refresh is already running"
			} else {
				m.errNote = msg.err.Error()
			}
			return m, nil
		}
		m.bulkActive = true
		m.bulkProgress = 0
		m.errNote = ""
		m.notice = "checking all books…"
		return m, tea.Batch(waitEventCmd(m.controller.Events()), m.spin.Tick)

	case refreshEventMsg:
		return m.handleRefreshEvent(refresh.Event(msg))

	case librariesMsg:
		m.librariesLoaded = true
		if msg.err != nil {
			m.errNote = "could not load libraries"
			return m, nil
		}
		m.libraries = msg.libs
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.logger.Error("checkout action failed", "verb", msg.verb, "err", msg.err)
			m.errNote = msg.verb + " failed"
			return m, nil
		}
		if msg.result.Message != "" {
			m.notice = msg.result.Message
		} else if msg.result.Success {
			m.notice = msg.verb + " succeeded"
		} else {
			m.errNote = msg.verb + " was not accepted"
		}
		return m, nil

	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			m.logger.Error("reading-list sync failed", "err", msg.err)
			m.errNote = "reading-list sync failed"
			return m, nil
		}
		m.notice = "reading list synced"
		return m, loadBooksCmd(m.ctx, m.client, m.store)

	case linkOpenedMsg:
		if msg.err != nil {
			m.errNote = "could not open browser"
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.display = availability.RankBooks(snap.Books)
	if m.selected >= len(m.display) {
		m.selected = len(m.display) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) handleRefreshEvent(ev refresh.Event) (tea.Model, tea.Cmd) {
	switch ev.Kind {
	case refresh.EventProgress:
		m.bulkProgress = ev.Progress
		return m, waitEventCmd(m.controller.Events())

	case refresh.EventCompleted:
		m.bulkActive = false
		m.bulkProgress = 100
		m.notice = "availability refreshed"
		return m, fetchSnapshotCmd(m.store)

	case refresh.EventFailed:
		m.bulkActive = false
		if ev.Err != nil {
			m.errNote = ev.Err.Error()
		} else {
			m.errNote = "bulk refresh failed"
		}
		return m, fetchSnapshotCmd(m.store)
	}
	return m, waitEventCmd(m.controller.Events())
}

// busy reports whether any spinner-worthy work is in flight.
func (m Model) busy() bool {
	return m.bulkActive || m.syncing || len(m.checking) > 0
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Any keypress dismisses transient notes.
	m.notice = ""

	switch msg.String() {
	case "ctrl+c", "e":
		return m, tea.Quit

	case "h", "?":
		m.showHelp = true
		return m, nil

	case "T":
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name})
		}
		return m, nil

	case "L":
		m.view = ViewLibraries
		if !m.librariesLoaded {
			return m, loadLibrariesCmd(m.ctx, m.client)
		}
		return m, nil

	case "esc", "q":
		m.view = ViewBooks
		return m, nil
	}

	switch m.view {
	case ViewBooks:
		return m.handleBooksKey(msg)
	case ViewLibraries:
		return m.handleLibrariesKey(msg)
	}
	return m, nil
}

func (m Model) handleBooksKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.display)

	switch msg.String() {
	case "j", "down":
		if m.selected < count-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "g", "home":
		m.selected = 0
	case "G", "end":
		if count > 0 {
			m.selected = count - 1
		}

	case "r":
		book, ok := m.selectedBook()
		if !ok || m.checking[book.ID] {
			return m, nil
		}
		m.checking[book.ID] = true
		m.errNote = ""
		return m, tea.Batch(checkBookCmd(m.ctx, m.client, m.store, book.ID), m.spin.Tick)

	case "R", "A":
		force := msg.String() == "A"
		return m, startBulkCmd(m.ctx, m.controller, force)

	case "S":
		if m.rssURL == "" {
			m.errNote = "no rss_url configured; set it in config.toml"
			return m, nil
		}
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		return m, tea.Batch(syncCmd(m.ctx, m.client, m.rssURL), m.spin.Tick)

	case "b":
		return m.checkoutSelected("borrow")

	case "H":
		return m.checkoutSelected("hold")

	case "o", "enter":
		book, ok := m.selectedBook()
		if !ok {
			return m, nil
		}
		rec, ok := topRecord(book)
		if !ok {
			return m, nil
		}
		dest, ok := availability.DeepLink(rec.SearchURL, rec.LibbyURL)
		if !ok {
			// No actionable destination; nothing to navigate to.
			return m, nil
		}
		return m, openLinkCmd(dest)

	case "O":
		book, ok := m.selectedBook()
		if !ok || book.GoodreadsURL() == "" {
			return m, nil
		}
		return m, openLinkCmd(book.GoodreadsURL())
	}

	return m, nil
}

func (m Model) handleLibrariesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "l":
		return m, loadLibrariesCmd(m.ctx, m.client)
	}
	return m, nil
}

func (m Model) checkoutSelected(verb string) (tea.Model, tea.Cmd) {
	book, ok := m.selectedBook()
	if !ok {
		return m, nil
	}
	rec, ok := topRecord(book)
	if !ok {
		m.errNote = "no library records for this book yet"
		return m, nil
	}
	if verb == "borrow" {
		return m, borrowCmd(m.ctx, m.client, book.ID, rec.LibraryID)
	}
	return m, holdCmd(m.ctx, m.client, book.ID, rec.LibraryID)
}

func (m Model) selectedBook() (dashboard.BookWithAvailability, bool) {
	if m.selected < 0 || m.selected >= len(m.display) {
		return dashboard.BookWithAvailability{}, false
	}
	return m.display[m.selected], true
}

// topRecord returns the highest-precedence availability record for a book.
func topRecord(book dashboard.BookWithAvailability) (dashboard.Availability, bool) {
	sorted := availability.SortByStatus(book.Availability)
	if len(sorted) == 0 {
		return dashboard.Availability{}, false
	}
	return sorted[0], true
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type booksLoadedMsg struct{ err error }

type checkDoneMsg struct {
	bookID int64
	err    error
}

type refreshStartedMsg struct{ err error }

type refreshEventMsg refresh.Event

type librariesMsg struct {
	libs []dashboard.Library
	err  error
}

type actionMsg struct {
	verb   string
	result dashboard.ActionResult
	err    error
}

type syncDoneMsg struct {
	count int
	err   error
}

type linkOpenedMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func loadBooksCmd(ctx context.Context, client dashboard.API, store *state.Store) tea.Cmd {
	return func() tea.Msg {
		books, err := client.Books(ctx)
		if err != nil {
			store.RecordError(errors.New("could not load books"))
			return booksLoadedMsg{err: err}
		}
		store.ReplaceAll(books)
		return booksLoadedMsg{}
	}
}

func checkBookCmd(ctx context.Context, client dashboard.API, store *state.Store, bookID int64) tea.Cmd {
	return func() tea.Msg {
		records, err := client.CheckBook(ctx, bookID, true)
		if err != nil {
			return checkDoneMsg{bookID: bookID, err: err}
		}
		store.ApplyCheck(bookID, records)
		return checkDoneMsg{bookID: bookID}
	}
}

func startBulkCmd(ctx context.Context, controller *refresh.Controller, force bool) tea.Cmd {
	return func() tea.Msg {
		return refreshStartedMsg{err: controller.Start(ctx, force)}
	}
}

func waitEventCmd(events <-chan refresh.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return refreshEventMsg(ev)
	}
}

func loadLibrariesCmd(ctx context.Context, client dashboard.API) tea.Cmd {
	return func() tea.Msg {
		libs, err := client.Libraries(ctx)
		return librariesMsg{libs: libs, err: err}
	}
}

func borrowCmd(ctx context.Context, client dashboard.API, bookID, libraryID int64) tea.Cmd {
	return func() tea.Msg {
		result, err := client.Borrow(ctx, bookID, libraryID)
		return actionMsg{verb: "borrow", result: result, err: err}
	}
}

func holdCmd(ctx context.Context, client dashboard.API, bookID, libraryID int64) tea.Cmd {
	return func() tea.Msg {
		result, err := client.PlaceHold(ctx, bookID, libraryID)
		return actionMsg{verb: "hold", result: result, err: err}
	}
}

func syncCmd(ctx context.Context, client dashboard.API, rssURL string) tea.Cmd {
	return func() tea.Msg {
		books, err := client.SyncReadingList(ctx, rssURL)
		return syncDoneMsg{count: len(books), err: err}
	}
}

func openLinkCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return linkOpenedMsg{err: openBrowser(url)}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	return err
}
