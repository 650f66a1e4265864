package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrjschrack/library-checker-app/internal/dashboard"
	"github.com/mrjschrack/library-checker-app/internal/state"
)

const testInterval = time.Millisecond

func intPtr(v int) *int { return &v }

// fakeBackend scripts JobStatus responses; the last entry repeats.
type fakeBackend struct {
	mu sync.Mutex

	startErr   error
	startCalls int

	statuses    []dashboard.JobStatus
	statusErr   error
	statusCalls int
	statusGate  chan struct{} // when set, JobStatus blocks until closed

	books      []dashboard.BookWithAvailability
	booksErr   error
	booksCalls int
}

func (f *fakeBackend) StartCheckAll(ctx context.Context, force bool) (dashboard.JobStart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	if f.startErr != nil {
		return dashboard.JobStart{}, f.startErr
	}
	return dashboard.JobStart{JobID: "job-1"}, nil
}

func (f *fakeBackend) JobStatus(ctx context.Context, jobID string) (dashboard.JobStatus, error) {
	f.mu.Lock()
	gate := f.statusGate
	f.statusCalls++
	call := f.statusCalls
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return dashboard.JobStatus{}, f.statusErr
	}
	idx := call - 1
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	return f.statuses[idx], nil
}

func (f *fakeBackend) Books(ctx context.Context) ([]dashboard.BookWithAvailability, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.booksCalls++
	return f.books, f.booksErr
}

func (f *fakeBackend) counts() (start, status, books int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCalls, f.statusCalls, f.booksCalls
}

func waitEvent(t *testing.T, c *Controller) Event {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for controller event")
		return Event{}
	}
}

// waitTerminal drains progress events until a terminal event arrives.
func waitTerminal(t *testing.T, c *Controller) Event {
	t.Helper()
	for {
		ev := waitEvent(t, c)
		if ev.Kind != EventProgress {
			return ev
		}
	}
}

func TestControllerCompletedReloadsOnceAndGoesIdle(t *testing.T) {
	backend := &fakeBackend{
		statuses: []dashboard.JobStatus{
			{Status: dashboard.JobRunning, Progress: intPtr(50)},
			{Status: dashboard.JobCompleted},
		},
		books: []dashboard.BookWithAvailability{
			{Book: dashboard.Book{ID: 1, Title: "Dune"}},
		},
	}
	store := &state.Store{}
	c := New(backend, store, testInterval, nil)
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), false))
	assert.Equal(t, Polling, c.Phase())

	ev := waitEvent(t, c)
	require.Equal(t, EventProgress, ev.Kind)
	assert.Equal(t, 50, ev.Progress)

	ev = waitTerminal(t, c)
	require.Equal(t, EventCompleted, ev.Kind)
	assert.Equal(t, 100, ev.Progress)

	assert.Equal(t, Idle, c.Phase())
	assert.Equal(t, 100, c.Progress())

	_, _, books := backend.counts()
	assert.Equal(t, 1, books, "completed job must trigger exactly one reload")

	snap := store.Snapshot()
	require.Len(t, snap.Books, 1)
	assert.Equal(t, "Dune", snap.Books[0].Title)
}

func TestControllerRejectsStartWhileActive(t *testing.T) {
	backend := &fakeBackend{
		statuses: []dashboard.JobStatus{{Status: dashboard.JobRunning, Progress: intPtr(10)}},
	}
	c := New(backend, &state.Store{}, time.Hour, nil)
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), false))

	err := c.Start(context.Background(), true)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	start, _, _ := backend.counts()
	assert.Equal(t, 1, start, "rejected start must not issue a second request")
}

func TestControllerStartFailureReturnsToIdle(t *testing.T) {
	backend := &fakeBackend{startErr: errors.New("503")}
	c := New(backend, &state.Store{}, testInterval, nil)

	err := c.Start(context.Background(), false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyRunning)
	assert.Equal(t, Idle, c.Phase())

	// A fresh start must be accepted after the failure.
	backend.mu.Lock()
	backend.startErr = nil
	backend.statuses = []dashboard.JobStatus{{Status: dashboard.JobCompleted}}
	backend.mu.Unlock()
	require.NoError(t, c.Start(context.Background(), false))
	c.Stop()
}

func TestControllerJobErrorSurfacesMessageWithoutReload(t *testing.T) {
	backend := &fakeBackend{
		statuses: []dashboard.JobStatus{
			{Status: dashboard.JobError, Error: "scraper exploded"},
		},
	}
	c := New(backend, &state.Store{}, testInterval, nil)
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), false))

	ev := waitTerminal(t, c)
	require.Equal(t, EventFailed, ev.Kind)
	assert.EqualError(t, ev.Err, "scraper exploded")
	assert.Equal(t, Idle, c.Phase())

	_, _, books := backend.counts()
	assert.Zero(t, books, "failed job must not trigger a reload")
}

func TestControllerJobErrorFallsBackToGenericMessage(t *testing.T) {
	backend := &fakeBackend{
		statuses: []dashboard.JobStatus{{Status: dashboard.JobError}},
	}
	c := New(backend, &state.Store{}, testInterval, nil)
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), false))

	ev := waitTerminal(t, c)
	require.Equal(t, EventFailed, ev.Kind)
	assert.EqualError(t, ev.Err, msgJobFailed)
}

func TestControllerTransportFailureStopsPolling(t *testing.T) {
	backend := &fakeBackend{statusErr: errors.New("connection refused")}
	c := New(backend, &state.Store{}, testInterval, nil)
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), false))

	ev := waitTerminal(t, c)
	require.Equal(t, EventFailed, ev.Kind)
	// Generic message; raw transport detail stays out of the UI.
	assert.EqualError(t, ev.Err, msgPollFailed)
	assert.Equal(t, Idle, c.Phase())

	_, statusCalls, books := backend.counts()
	assert.Equal(t, 1, statusCalls, "polling must stop after a transport failure")
	assert.Zero(t, books)
}

func TestControllerProgressDefaultsToPreviousValue(t *testing.T) {
	backend := &fakeBackend{
		statuses: []dashboard.JobStatus{
			{Status: dashboard.JobRunning, Progress: intPtr(40)},
			{Status: dashboard.JobRunning}, // progress omitted
			{Status: dashboard.JobCompleted},
		},
	}
	c := New(backend, &state.Store{}, testInterval, nil)
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), false))

	ev := waitEvent(t, c)
	require.Equal(t, EventProgress, ev.Kind)
	assert.Equal(t, 40, ev.Progress)

	ev = waitEvent(t, c)
	require.Equal(t, EventProgress, ev.Kind)
	assert.Equal(t, 40, ev.Progress, "missing progress keeps the previous value")
}

func TestControllerTeardownDiscardsInFlightResponse(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{
		statuses:   []dashboard.JobStatus{{Status: dashboard.JobCompleted}},
		statusGate: gate,
		books:      []dashboard.BookWithAvailability{{Book: dashboard.Book{ID: 1}}},
	}
	store := &state.Store{}
	c := New(backend, store, testInterval, nil)

	require.NoError(t, c.Start(context.Background(), false))

	// Wait for the poll request to be in flight, then tear down.
	require.Eventually(t, func() bool {
		_, status, _ := backend.counts()
		return status == 1
	}, 2*time.Second, time.Millisecond)
	c.Stop()

	close(gate)

	// The stale completed response must not reconcile or emit anything.
	assert.Never(t, func() bool {
		_, _, books := backend.counts()
		return books > 0
	}, 50*time.Millisecond, 5*time.Millisecond, "stale response triggered a reload after teardown")
	assert.Empty(t, store.Snapshot().Books)
	assert.Equal(t, Idle, c.Phase())
	select {
	case ev := <-c.Events():
		t.Fatalf("unexpected event after teardown: %#v", ev)
	default:
	}
}

func TestControllerNewSessionUnaffectedByStaleResponse(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{
		statuses:   []dashboard.JobStatus{{Status: dashboard.JobError, Error: "old session"}},
		statusGate: gate,
	}
	store := &state.Store{}
	c := New(backend, store, testInterval, nil)
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), false))
	require.Eventually(t, func() bool {
		_, status, _ := backend.counts()
		return status == 1
	}, 2*time.Second, time.Millisecond)
	c.Stop()

	// Second session: the job completes normally.
	backend.mu.Lock()
	backend.statusGate = nil
	backend.statuses = []dashboard.JobStatus{{Status: dashboard.JobCompleted}}
	backend.books = []dashboard.BookWithAvailability{{Book: dashboard.Book{ID: 2}}}
	backend.mu.Unlock()
	require.NoError(t, c.Start(context.Background(), false))

	// Release the stale response from the first session mid-flight.
	close(gate)

	ev := waitTerminal(t, c)
	require.Equal(t, EventCompleted, ev.Kind, "stale error from the old session must not leak into the new one")

	snap := store.Snapshot()
	require.Len(t, snap.Books, 1)
	assert.Equal(t, int64(2), snap.Books[0].ID)
}

func TestControllerReloadFailureSurfacesError(t *testing.T) {
	backend := &fakeBackend{
		statuses: []dashboard.JobStatus{{Status: dashboard.JobCompleted}},
		booksErr: errors.New("boom"),
	}
	store := &state.Store{}
	c := New(backend, store, testInterval, nil)
	defer c.Stop()

	require.NoError(t, c.Start(context.Background(), false))

	ev := waitTerminal(t, c)
	require.Equal(t, EventFailed, ev.Kind)
	assert.EqualError(t, ev.Err, msgReloadFailed)
	assert.Equal(t, Idle, c.Phase(), "failed reload must still clear the active job")
	assert.Error(t, store.Snapshot().LastError)
}
