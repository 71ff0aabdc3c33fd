// Package engine implements the reconciliation engine: the merge of a
// run's file observations against the persisted baseline.
//
// ARCHITECTURE:
//
// Single-Writer Apply Loop:
// All baseline mutations and all outcome reporting happen in a single
// goroutine. This ensures:
// - No two writers ever touch the same record
// - The reporting sink never sees interleaved events
// - Store write failures stop the run at a well-defined point
//
// Processing Flow:
// 1. Roots are enumerated sequentially; each observation is classified
//    against its baseline record into a task
// 2. Tasks fan out to a digest worker pool (checksums are pure functions
//    of content, so they parallelize freely)
// 3. The apply loop consumes finished tasks, encodes the decision table,
//    writes the baseline, and reports one outcome event per file
// 4. After every root has been fully enumerated, records whose keys were
//    never observed are deleted (stale pass)
//
// No lock is held across a digest: workers own only their task while the
// file streams through the hash. A digest of a multi-gigabyte archive
// file can take minutes without stalling baseline writes for other files.
//
// Each file reaches exactly one terminal outcome per run; there is no
// persisted per-file state machine beyond the record itself. The state is
// recomputed fresh from the comparison each run, which is what makes
// detection idempotent: an unremediated anomaly reproduces on every run.
package engine
