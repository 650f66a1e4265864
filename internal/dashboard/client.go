package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// API defines the backend operations the rest of the app consumes.
// This interface is implemented by *Client and can be used for testing.
type API interface {
	SyncReadingList(ctx context.Context, rssURL string) ([]Book, error)
	Books(ctx context.Context) ([]BookWithAvailability, error)
	Libraries(ctx context.Context) ([]Library, error)
	AddLibrary(ctx context.Context, lib NewLibrary) (Library, error)
	UpdateLibrary(ctx context.Context, id int64, patch LibraryPatch) (Library, error)
	RemoveLibrary(ctx context.Context, id int64) error
	CheckBook(ctx context.Context, bookID int64, force bool) ([]Availability, error)
	StartCheckAll(ctx context.Context, force bool) (JobStart, error)
	JobStatus(ctx context.Context, jobID string) (JobStatus, error)
	Borrow(ctx context.Context, bookID, libraryID int64) (ActionResult, error)
	PlaceHold(ctx context.Context, bookID, libraryID int64) (ActionResult, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the library-dashboard HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	source    string
	limiter   *rate.Limiter
}

const (
	defaultAPIBase   = "127.0.0.1:8000"
	defaultSource    = "goodreads"
	defaultUserAgent = "libcheck/0.1"

	// Availability checks hit live catalog scrapers and can be slow, so the
	// shared client timeout is generous. Callers bound individual requests
	// with their own contexts.
	requestTimeout = 90 * time.Second
)

// Manual per-book checks are throttled so a held-down refresh key cannot
// hammer the scraper backend.
var checkEvery = rate.Every(2 * time.Second)

// NewClient builds a Client for the given base URL ("host:port" or full URL).
// source selects the reading-list import route, defaulting to "goodreads".
func NewClient(apiBase, source string) (*Client, error) {
	base, err := parseBaseURL(apiBase)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(source) == "" {
		source = defaultSource
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		source:    source,
		limiter:   rate.NewLimiter(checkEvery, 1),
	}, nil
}

// SyncReadingList imports the reading list from its RSS feed and returns the
// resulting books.
func (c *Client) SyncReadingList(ctx context.Context, rssURL string) ([]Book, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(rssURL) == "" {
		return nil, fmt.Errorf("rss url required")
	}
	body := struct {
		RSSURL string `json:"rss_url"`
	}{RSSURL: rssURL}
	var books []Book
	if err := c.do(ctx, http.MethodPost, "/api/"+c.source+"/sync", body, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// Books retrieves the full reading list with current availability.
func (c *Client) Books(ctx context.Context) ([]BookWithAvailability, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var books []BookWithAvailability
	if err := c.do(ctx, http.MethodGet, "/api/"+c.source+"/books", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// Libraries retrieves the configured library catalogs.
func (c *Client) Libraries(ctx context.Context) ([]Library, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var libs []Library
	if err := c.do(ctx, http.MethodGet, "/api/libraries", nil, &libs); err != nil {
		return nil, err
	}
	return libs, nil
}

// AddLibrary registers a new library catalog.
func (c *Client) AddLibrary(ctx context.Context, lib NewLibrary) (Library, error) {
	if c == nil {
		return Library{}, fmt.Errorf("client is nil")
	}
	var created Library
	if err := c.do(ctx, http.MethodPost, "/api/libraries", lib, &created); err != nil {
		return Library{}, err
	}
	return created, nil
}

// UpdateLibrary applies a partial update to a library catalog.
func (c *Client) UpdateLibrary(ctx context.Context, id int64, patch LibraryPatch) (Library, error) {
	if c == nil {
		return Library{}, fmt.Errorf("client is nil")
	}
	var updated Library
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/libraries/%d", id), patch, &updated); err != nil {
		return Library{}, err
	}
	return updated, nil
}

// RemoveLibrary deletes a library catalog.
func (c *Client) RemoveLibrary(ctx context.Context, id int64) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/libraries/%d", id), nil, nil)
}

// CheckBook runs an availability check for one book across all configured
// libraries and returns the fresh records.
func (c *Client) CheckBook(ctx context.Context, bookID int64, force bool) ([]Availability, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle check: %w", err)
	}
	body := struct {
		BookID int64 `json:"book_id"`
		Force  bool  `json:"force"`
	}{BookID: bookID, Force: force}
	var records []Availability
	if err := c.do(ctx, http.MethodPost, "/api/availability/check", body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// StartCheckAll kicks off a server-side bulk availability job and returns its
// opaque job id.
func (c *Client) StartCheckAll(ctx context.Context, force bool) (JobStart, error) {
	if c == nil {
		return JobStart{}, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "/api/availability/check-all"}
	if force {
		values := url.Values{}
		values.Set("force", "true")
		rel.RawQuery = values.Encode()
	}
	var job JobStart
	if err := c.doURL(ctx, http.MethodPost, rel, nil, &job); err != nil {
		return JobStart{}, err
	}
	return job, nil
}

// JobStatus polls a bulk availability job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (JobStatus, error) {
	if c == nil {
		return JobStatus{}, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(jobID) == "" {
		return JobStatus{}, fmt.Errorf("job id required")
	}
	var status JobStatus
	if err := c.do(ctx, http.MethodGet, "/api/availability/job/"+url.PathEscape(jobID), nil, &status); err != nil {
		return JobStatus{}, err
	}
	return status, nil
}

// Borrow checks a book out from the given library.
func (c *Client) Borrow(ctx context.Context, bookID, libraryID int64) (ActionResult, error) {
	return c.checkout(ctx, "/api/checkout/borrow", bookID, libraryID)
}

// PlaceHold places a hold on a book at the given library.
func (c *Client) PlaceHold(ctx context.Context, bookID, libraryID int64) (ActionResult, error) {
	return c.checkout(ctx, "/api/checkout/hold", bookID, libraryID)
}

func (c *Client) checkout(ctx context.Context, path string, bookID, libraryID int64) (ActionResult, error) {
	if c == nil {
		return ActionResult{}, fmt.Errorf("client is nil")
	}
	body := struct {
		BookID    int64 `json:"book_id"`
		LibraryID int64 `json:"library_id"`
	}{BookID: bookID, LibraryID: libraryID}
	var result ActionResult
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return ActionResult{}, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var payload *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(encoded)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), payload)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBase string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBase)
	if trimmed == "" {
		trimmed = defaultAPIBase
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", apiBase, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
