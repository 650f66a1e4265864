// Package refresh drives the server-side bulk availability job.
//
// # Lifecycle
//
// The controller is a small phase machine:
//
//	Idle ──Start──> Starting ──ok──> Polling ──completed──> reload ──> Idle
//	                   │                │
//	                   └──start error───┴──job error / transport error──> Idle
//
// Start is the only entry point and is valid only while idle; a second Start
// during an active job returns ErrAlreadyRunning without issuing a request.
// While polling, job status is fetched strictly sequentially: the next poll
// is scheduled one interval after the previous response lands, never by
// wall-clock tick, so a slow backend stretches the cadence instead of
// producing overlapping requests.
//
// # Terminal transitions
//
// A job that reports completed triggers exactly one full collection reload
// (the authoritative reconciliation) before the controller goes idle. A job
// that reports error goes idle with the job's own message, falling back to a
// generic one; no reload happens. A failed status fetch is different: the
// job may still be running server-side, so only a generic connectivity
// message is surfaced.
//
// # Cancellation
//
// Teardown is cooperative. Stop does not abort in-flight requests; it bumps
// the session token, and every continuation re-checks that token before
// touching state. A session started right after Stop gets a new token, so a
// stale response from the old session can never leak into it.
package refresh
