// Package storage persists scheduler state between runs.
//
// State is the dispatch ledger (slots already fired) and the consumption
// tracker (poll ids already delivered). Backends:
//   - "file": state.json + asked.json in a directory (atomic rewrite)
//   - "sqlite": a single SQLite database, saved in one transaction
//   - "memory": process-local, for tests
//
// Loading follows a load-or-default contract: missing or corrupt state is
// logged and treated as empty rather than failing the run.
package storage
