// Package app is the composition root for the libcheck TUI.
//
// Run loads configuration and preferences, builds the dashboard HTTP client,
// the shared book store, and the bulk-refresh controller, then hands them to
// the UI and blocks until the user quits or the context is cancelled.
// Business logic lives in the domain packages; this package only wires them
// together with sensible defaults.
package app
