// Package store provides a SQLite-backed quad store whose pattern matches
// serve as join entries.
//
// # Entries
//
// Entry compiles a pattern once and returns a join entry:
//   - the stream runs the SELECT lazily on first pull, on its own goroutine
//   - the metadata reports an Exact cardinality from a COUNT query
//
// Metadata is cached until the store changes. Every Insert that adds a quad
// invalidates the ValidationState handed out with earlier metadata, so join
// results built on it are invalidated too.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - single connection: SQLite allows one writer
//
// All queries order by id so repeated runs stream rows identically.
package store
