// Package store provides SQLite-backed run history.
//
// Each harness run is recorded as one row in runs plus one row per case in
// case_results. History lets a developer see when a case started failing and
// whether the tool's output changed between runs, via the stdout digest.
//
// # Ordering
//
// Runs list newest first: ORDER BY started_at DESC, id DESC. Case rows are
// returned in manifest order (idx ASC).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
