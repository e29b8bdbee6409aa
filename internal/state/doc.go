// Package state persists the last-notified status per target.
//
// This package is internal to edgewatch and backs the change-detection
// loop: without it, every restart would re-notify the current status of
// every target. The main components are:
//
//   - [Store]: Interface defining load and save of the status mapping
//   - [FileStore]: JSON-file-backed implementation used in production
//   - [MemoryStore]: In-memory implementation for tests and dry runs
//
// Persistence failures are deliberately non-fatal everywhere: a lost or
// corrupt state file degrades to an empty mapping, which at worst causes
// one duplicate notification per target.
package state
