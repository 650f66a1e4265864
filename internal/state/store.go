package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/mrjschrack/library-checker-app/internal/availability"
	"github.com/mrjschrack/library-checker-app/internal/dashboard"
)

// Snapshot represents the latest collection data available to the UI.
type Snapshot struct {
	Books               []dashboard.BookWithAvailability
	Loaded              bool // at least one successful full load
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int
}

// IsOffline returns true when the API has been unreachable for multiple
// consecutive operations.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store is the authoritative in-memory view of the reading list. Books keep
// their server-given order; targeted updates never disturb unrelated entries,
// which lets the UI overlay live refresh results without a full redraw
// flicker.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// ReplaceAll swaps in a freshly loaded collection. This is the authoritative
// path; per-book merges are only same-session optimistic updates on top.
func (s *Store) ReplaceAll(books []dashboard.BookWithAvailability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Books = cloneBooks(books)
	s.snapshot.Loaded = true
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Upsert replaces the entry whose id matches, keeping its position. Unknown
// books are appended. Other entries and their order are untouched.
func (s *Store) Upsert(book dashboard.BookWithAvailability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snapshot.Books {
		if s.snapshot.Books[i].ID == book.ID {
			s.snapshot.Books[i] = book
			s.snapshot.LastUpdated = time.Now()
			return
		}
	}
	s.snapshot.Books = append(s.snapshot.Books, book)
	s.snapshot.LastUpdated = time.Now()
}

// ApplyCheck merges fresh per-library records into one book. The merged list
// replaces the book's availability in a single step under the lock, so
// concurrent partial updates to the same book converge per-record rather
// than interleave.
func (s *Store) ApplyCheck(bookID int64, updated []dashboard.Availability) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.snapshot.Books {
		if s.snapshot.Books[i].ID != bookID {
			continue
		}
		s.snapshot.Books[i].Availability = availability.Merge(s.snapshot.Books[i].Availability, updated)
		s.snapshot.LastUpdated = time.Now()
		return
	}
}

// RecordError notes a failed operation. Previous data is kept; the error is
// recorded for visibility.
func (s *Store) RecordError(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
}

// Snapshot returns a copy of the current snapshot. The books slice is cloned;
// availability slices are replaced wholesale by mutations and never edited in
// place, so sharing them is safe.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Books = cloneBooks(s.snapshot.Books)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneBooks(books []dashboard.BookWithAvailability) []dashboard.BookWithAvailability {
	if len(books) == 0 {
		return nil
	}
	dup := make([]dashboard.BookWithAvailability, len(books))
	copy(dup, books)
	return dup
}
