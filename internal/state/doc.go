// Package state provides the shared in-memory book collection.
//
// A single Store instance sits between the network side (initial load,
// single-book checks, bulk-refresh reconciliation) and the UI. Writers
// mutate it through three operations with distinct authority:
//
//   - ReplaceAll: a full reload from the backend, the source of truth.
//   - Upsert: replace one book wholesale, preserving its list position.
//   - ApplyCheck: merge fresh per-library records into one book atomically.
//
// Readers take Snapshot copies at their own cadence, so a slow render never
// blocks an update and a snapshot never observes a half-applied merge.
// Errors are recorded alongside the data instead of replacing it; the UI
// keeps showing the last good collection while surfacing the failure.
package state
