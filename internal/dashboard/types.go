package dashboard

import "time"

// Availability statuses reported by the backend. The set is closed; anything
// else coming over the wire is treated as unranked by the display layer.
const (
	StatusAvailable   = "available"
	StatusHold        = "hold"
	StatusUnavailable = "unavailable"
	StatusUnknown     = "unknown"
	StatusNotFound    = "not_found"
	StatusError       = "error"
)

// Job statuses reported by /api/availability/job/{id}.
const (
	JobRunning   = "running"
	JobCompleted = "completed"
	JobError     = "error"
)

// Book mirrors a reading-list entry returned by the backend.
type Book struct {
	ID          int64  `json:"id"`
	GoodreadsID string `json:"goodreads_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN13      string `json:"isbn13,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	DateAdded   string `json:"date_added"`
	Shelf       string `json:"shelf"`
}

// Library mirrors a configured library catalog.
type Library struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	BaseURL    string `json:"base_url"`
	CardNumber string `json:"card_number,omitempty"`
	IsActive   bool   `json:"is_active"`
}

// NewLibrary is the create payload for POST /api/libraries.
type NewLibrary struct {
	Name       string `json:"name"`
	BaseURL    string `json:"base_url"`
	CardNumber string `json:"card_number,omitempty"`
	IsActive   bool   `json:"is_active"`
}

// LibraryPatch is the partial-update payload for PUT /api/libraries/{id}.
// Nil fields are omitted and left unchanged by the backend.
type LibraryPatch struct {
	Name       *string `json:"name,omitempty"`
	BaseURL    *string `json:"base_url,omitempty"`
	CardNumber *string `json:"card_number,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// Availability is the latest known checkout state of one book at one library.
// The backend keeps exactly one record per (book, library) pair.
type Availability struct {
	BookID      int64  `json:"book_id"`
	LibraryID   int64  `json:"library_id"`
	LibraryName string `json:"library_name"`
	Status      string `json:"status"`
	SearchURL   string `json:"search_url"`
	LibbyURL    string `json:"libby_url,omitempty"`
	CheckedAt   string `json:"checked_at"`
}

// ParsedCheckedAt returns the check timestamp as time.Time when possible.
func (a Availability) ParsedCheckedAt() time.Time {
	return parseTime(a.CheckedAt)
}

// BookWithAvailability pairs a book with its current per-library records.
type BookWithAvailability struct {
	Book
	Availability []Availability `json:"availability"`
}

// JobStart mirrors the response of POST /api/availability/check-all.
type JobStart struct {
	JobID string `json:"job_id"`
}

// JobStatus mirrors the payload returned by /api/availability/job/{id}.
// Progress is a pointer because the backend omits it on some transitions;
// callers fall back to the last value they saw.
type JobStatus struct {
	Status   string `json:"status"`
	Progress *int   `json:"progress,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ActionResult mirrors the response of the borrow and hold endpoints.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GoodreadsURL returns the public book page for a reading-list entry.
func (b Book) GoodreadsURL() string {
	if b.GoodreadsID == "" {
		return ""
	}
	return "https://www.goodreads.com/book/show/" + b.GoodreadsID
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
