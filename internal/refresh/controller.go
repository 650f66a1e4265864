package refresh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mrjschrack/library-checker-app/internal/dashboard"
	"github.com/mrjschrack/library-checker-app/internal/state"
)

// Backend is the slice of the dashboard API the controller drives.
type Backend interface {
	StartCheckAll(ctx context.Context, force bool) (dashboard.JobStart, error)
	JobStatus(ctx context.Context, jobID string) (dashboard.JobStatus, error)
	Books(ctx context.Context) ([]dashboard.BookWithAvailability, error)
}

// Phase is the controller's lifecycle state.
type Phase int

const (
	// Idle means no bulk refresh is active. Start is only valid here.
	Idle Phase = iota
	// Starting means the start request is in flight.
	Starting
	// Polling means a job is being tracked at the poll cadence.
	Polling
)

// EventKind classifies lifecycle events.
type EventKind int

const (
	// EventProgress reports updated job progress while polling.
	EventProgress EventKind = iota
	// EventCompleted fires once after the job finishes and the collection
	// has been reconciled.
	EventCompleted
	// EventFailed fires once when the job or its transport fails.
	EventFailed
)

// Event is a lifecycle notification delivered on the Events channel.
type Event struct {
	Kind     EventKind
	Progress int
	Err      error
}

var (
	// ErrAlreadyRunning is returned by Start while a job is active.
	ErrAlreadyRunning = errors.New("a bulk refresh is already running")
	// ErrStopped is returned when the controller is torn down while the
	// start request is in flight.
	ErrStopped = errors.New("refresh controller stopped")
)

// Failure messages shown to the user. Raw transport detail stays in the log.
const (
	msgStartFailed  = "could not start the bulk refresh"
	msgPollFailed   = "lost contact with the availability service"
	msgReloadFailed = "bulk refresh finished but reloading books failed"
	msgJobFailed    = "bulk refresh failed"
)

const defaultPollInterval = time.Second

// Controller owns the lifecycle of the one-at-a-time bulk availability
// refresh: it starts the server-side job, polls it sequentially, reports
// progress, and reconciles the store when the job completes.
//
// Every asynchronous continuation is guarded by a session token rather than
// a flag: Stop (and each new Start) bumps the token, so a response that
// resolves after teardown is discarded without touching a session started in
// the meantime.
type Controller struct {
	backend  Backend
	store    *state.Store
	interval time.Duration
	logger   *log.Logger
	events   chan Event

	mu       sync.Mutex
	phase    Phase
	jobID    string
	progress int
	session  uint64
	cancel   context.CancelFunc
}

// New builds a Controller polling at the given interval (zero uses the
// 1-second default). logger may be nil.
func New(backend Backend, store *state.Store, interval time.Duration, logger *log.Logger) *Controller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{
		backend:  backend,
		store:    store,
		interval: interval,
		logger:   logger,
		// Buffered so the poll loop never blocks on a slow consumer;
		// progress events may be dropped, terminal events fit comfortably.
		events: make(chan Event, 16),
	}
}

// Events returns the channel on which lifecycle events are delivered. The
// consumer should drain it while a refresh is active.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Active reports whether a bulk refresh is starting or being polled.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase != Idle
}

// Progress returns the last known job progress in [0,100].
func (c *Controller) Progress() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress
}

// Start begins a bulk refresh. It issues the start request synchronously and,
// on success, launches the polling loop. Start is rejected with
// ErrAlreadyRunning unless the controller is idle; the poll loop itself never
// has to arbitrate overlapping jobs.
func (c *Controller) Start(ctx context.Context, force bool) error {
	c.mu.Lock()
	if c.phase != Idle {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.phase = Starting
	c.progress = 0
	c.session++
	session := c.session
	c.mu.Unlock()

	job, err := c.backend.StartCheckAll(ctx, force)
	if err != nil {
		c.logger.Error("bulk refresh start failed", "err", err)
		c.mu.Lock()
		if c.session == session {
			c.phase = Idle
		}
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", msgStartFailed, err)
	}

	c.mu.Lock()
	if c.session != session {
		// Torn down while the start request was in flight; the job keeps
		// running server-side but this controller no longer tracks it.
		c.mu.Unlock()
		return ErrStopped
	}
	c.phase = Polling
	c.jobID = job.JobID
	pollCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	c.logger.Info("bulk refresh started", "job_id", job.JobID, "force", force)
	go c.poll(pollCtx, session, job.JobID)
	return nil
}

// Stop tears the controller down. The current session's in-flight responses
// become inert; a Start issued immediately afterwards opens a fresh session
// unaffected by stale replies.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.session++
	c.phase = Idle
	c.jobID = ""
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// poll fetches job status sequentially: each request is issued a full
// interval after the previous one resolved, so a slow response stretches the
// cadence instead of stacking overlapping polls.
func (c *Controller) poll(ctx context.Context, session uint64, jobID string) {
	timer := time.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		status, err := c.backend.JobStatus(ctx, jobID)
		if !c.alive(session) {
			return
		}
		if err != nil {
			c.logger.Error("bulk refresh poll failed", "job_id", jobID, "err", err)
			c.finish(session, Event{Kind: EventFailed, Err: errors.New(msgPollFailed)})
			return
		}

		switch status.Status {
		case dashboard.JobCompleted:
			c.reconcile(ctx, session)
			return

		case dashboard.JobError:
			msg := strings.TrimSpace(status.Error)
			if msg == "" {
				msg = msgJobFailed
			}
			c.logger.Warn("bulk refresh job failed", "job_id", jobID, "err", msg)
			c.finish(session, Event{Kind: EventFailed, Err: errors.New(msg)})
			return

		default:
			// Running, or an unknown status a newer backend might add;
			// keep tracking either way.
			progress := c.updateProgress(session, status.Progress)
			if progress < 0 {
				return
			}
			c.emit(Event{Kind: EventProgress, Progress: progress})
			timer.Reset(c.interval)
		}
	}
}

// reconcile performs the single post-completion reload from the source of
// truth, then returns the controller to idle.
func (c *Controller) reconcile(ctx context.Context, session uint64) {
	books, err := c.backend.Books(ctx)
	if !c.alive(session) {
		return
	}
	if err != nil {
		c.logger.Error("post-refresh reload failed", "err", err)
		c.store.RecordError(errors.New(msgReloadFailed))
		c.finish(session, Event{Kind: EventFailed, Err: errors.New(msgReloadFailed)})
		return
	}
	c.store.ReplaceAll(books)
	c.logger.Info("bulk refresh completed", "books", len(books))
	c.finish(session, Event{Kind: EventCompleted, Progress: 100})
}

// updateProgress records fresh progress when the payload carries it, keeping
// the previous value otherwise. It returns -1 when the session is stale.
func (c *Controller) updateProgress(session uint64, fresh *int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != session {
		return -1
	}
	if fresh != nil {
		c.progress = *fresh
	}
	return c.progress
}

func (c *Controller) alive(session uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == session
}

// finish moves the controller back to idle and emits the terminal event,
// unless the session went stale in the meantime.
func (c *Controller) finish(session uint64, ev Event) {
	c.mu.Lock()
	if c.session != session {
		c.mu.Unlock()
		return
	}
	c.phase = Idle
	c.jobID = ""
	if ev.Kind == EventCompleted {
		c.progress = 100
	}
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.emit(ev)
}

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}
