// Package availability holds the pure merge and ordering logic for
// per-library checkout records.
//
// Everything here is side-effect free: Merge reconciles a fresh check into
// the records already known for a book, Rank and SortByStatus give badges a
// stable actionable-first order, RankBooks partitions the whole collection
// available-first, and DeepLink turns a catalog search URL into a Libby
// destination. Callers apply these at render or merge time; nothing in this
// package talks to the network or mutates shared state.
package availability
