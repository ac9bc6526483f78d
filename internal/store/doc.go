// Package store provides SQLite-backed storage for encoded parameter sets.
//
// Each encode run gets a run ID; every parameter set encoded in that run is
// recorded with its content-addressed ID, attribute text, and canonical JSON.
//
// # Invariants
//
//   - Writes are idempotent: PRIMARY KEY(run_id, id) with ON CONFLICT DO NOTHING
//   - Ordering uses seq INTEGER (logical clock), never timestamps
//   - All list queries ORDER BY seq ASC, id ASC COLLATE BINARY
//   - The recorded IR version must share the current major version
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// IDs are computed by ir.ParamSetID using RFC 8785 canonical JSON and SHA-256
// with domain separation.
package store
