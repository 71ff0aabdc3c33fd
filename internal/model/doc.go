// Package model holds the types shared across the fixity core: the
// persisted IntegrityRecord, the per-run Observation, and the outcome
// Event emitted by the reconciliation engine.
package model
