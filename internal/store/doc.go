// Package store provides the SQLite-backed baseline store: the persisted
// mapping from canonical file path to its last-known integrity record.
//
// The baseline is the only durable artifact the engine owns. Every
// mutation commits individually so a crash mid-run leaves previously
// committed records intact; an interrupted run is simply re-evaluated
// from scratch on the next invocation.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Schema changes are applied via PRAGMA user_version migrations; see
// runMigrations.
package store
