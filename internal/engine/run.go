package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fixity/internal/config"
	"fixity/internal/model"
)

// errStatFailed is attached to unreadable events for entries whose
// metadata could not be read during enumeration.
var errStatFailed = errors.New("file metadata could not be read")

// Run performs one reconciliation pass over the configured roots and
// reports one outcome event per file touched, plus a trailing set of
// removal events for records no longer observed anywhere.
//
// The run continues through any number of anomalies and unreadable
// files; only store I/O failures and context cancellation abort it. On
// abort the baseline is left at its last committed mutation.
func (e *Engine) Run(ctx context.Context, dirs []config.Directory, sink Sink) (*Stats, error) {
	stats := newStats(e.runID)
	seen := make(map[string]struct{})

	slog.Info("run starting",
		"run_id", e.runID,
		"roots", len(dirs),
		"algorithm", string(e.algorithm),
		"workers", e.workers,
		"overrides", len(e.overrides),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *task, e.workers*2)
	results := make(chan *task, e.workers*2)

	// Digest worker pool. Workers never touch the store or the sink.
	var workers sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for t := range jobs {
				if len(t.algos) > 0 {
					if err := ctx.Err(); err != nil {
						// Digest skipped; the task must still carry an error
						// or apply would read absent sums.
						t.digestErr = err
					} else {
						t.sums, t.bytesRead, t.digestErr = e.digester.File(ctx, t.obs.Path, t.algos...)
					}
				}
				results <- t
			}
		}()
	}

	// Single-writer apply loop: all baseline mutations and all event
	// reporting happen here.
	var applyWG sync.WaitGroup
	var applyErr error
	applyWG.Add(1)
	go func() {
		defer applyWG.Done()
		for t := range results {
			if applyErr != nil {
				continue // drain
			}
			if err := e.apply(ctx, t, sink, stats); err != nil {
				applyErr = err
				cancel()
			}
		}
	}()

	// Enumerate roots sequentially; digests fan out across all of them.
	var walkErr error
	for _, dir := range dirs {
		slog.Debug("scanning root",
			"path", dir.Path,
			"recursive", dir.ScanSubdirectories,
			"allow_changes", dir.AllowFileChanges,
		)
		var storeErr error
		err := e.source.Walk(ctx, dir, func(obs model.Observation) error {
			if _, dup := seen[obs.Path]; dup {
				// Overlapping roots; process each key once per run.
				slog.Warn("path observed twice, ignoring duplicate", "path", obs.Path)
				return nil
			}
			seen[obs.Path] = struct{}{}

			rec, err := e.store.Get(ctx, obs.Path)
			if err != nil {
				storeErr = fmt.Errorf("read baseline record %s: %w", obs.Path, err)
				return storeErr
			}
			select {
			case jobs <- e.classify(obs, dir, rec):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil {
			// A baseline read failure is store I/O, not a traversal
			// problem; keep the two distinguishable for operators.
			if storeErr != nil {
				walkErr = storeErr
			} else {
				walkErr = fmt.Errorf("scan %s: %w", dir.Path, err)
			}
			break
		}
	}

	close(jobs)
	workers.Wait()
	close(results)
	applyWG.Wait()

	if applyErr != nil {
		return stats, fmt.Errorf("apply outcome: %w", applyErr)
	}
	if walkErr != nil {
		return stats, walkErr
	}

	// Stale pass: only after every root has been fully enumerated may a
	// missing key be read as a removed file.
	if err := e.removeStale(ctx, seen, sink, stats); err != nil {
		return stats, err
	}

	stats.Elapsed = time.Since(stats.Started)
	slog.Info("run complete",
		"run_id", e.runID,
		"files", stats.FilesSeen,
		"bytes", stats.BytesRead,
		"anomalies", stats.Anomalies(),
		"elapsed", stats.Elapsed,
	)
	return stats, nil
}

// apply encodes the post-digest half of the decision table for one task,
// committing at most one baseline mutation and exactly one event (or
// none, for the ignore policy).
func (e *Engine) apply(ctx context.Context, t *task, sink Sink, stats *Stats) error {
	stats.FilesSeen++
	stats.BytesRead += t.bytesRead

	emit := func(ev model.Event) {
		stats.record(ev)
		sink.Report(ev)
	}

	switch t.act {
	case actStatFailed:
		emit(model.Event{Kind: model.KindSkippedUnreadable, Key: t.obs.Path, Err: errStatFailed})
		return nil

	case actModifiedDisallowed:
		if e.policy == ModifiedIgnore {
			slog.Debug("modification ignored by policy", "path", t.obs.Path)
			return nil
		}
		emit(model.Event{Kind: model.KindUnexpectedModification, Key: t.obs.Path})
		return nil

	case actOlder:
		// A file older than its own recorded history is never expected,
		// regardless of the root's change policy.
		emit(model.Event{Kind: model.KindPossibleFilesystemCorruption, Key: t.obs.Path})
		return nil
	}

	// Every remaining branch required a digest.
	if t.digestErr != nil {
		// Cancellation is an abort, not an unreadable file.
		if errors.Is(t.digestErr, context.Canceled) || errors.Is(t.digestErr, context.DeadlineExceeded) {
			return t.digestErr
		}
		slog.Warn("file unreadable, skipped this cycle", "path", t.obs.Path, "error", t.digestErr)
		emit(model.Event{Kind: model.KindSkippedUnreadable, Key: t.obs.Path, Err: t.digestErr})
		return nil
	}

	put := func(sum string) error {
		return e.store.Put(ctx, model.IntegrityRecord{
			Key:          t.obs.Path,
			Checksum:     sum,
			Algorithm:    string(e.algorithm),
			LastModified: t.obs.ModTime,
		})
	}

	switch t.act {
	case actOverride:
		if err := put(t.sums[0]); err != nil {
			return err
		}
		emit(model.Event{Kind: model.KindForcedOverride, Key: t.obs.Path})

	case actNew:
		if err := put(t.sums[0]); err != nil {
			return err
		}
		emit(model.Event{Kind: model.KindNew, Key: t.obs.Path})

	case actUpdateAllowed:
		if err := put(t.sums[0]); err != nil {
			return err
		}
		emit(model.Event{Kind: model.KindUpdatedAllowed, Key: t.obs.Path})

	case actCompare:
		runSum := t.sums[len(t.sums)-1]
		switch {
		case t.sums[0] == t.record.Checksum:
			if !t.migrating() {
				// Baseline confirmed; nothing to write.
				emit(model.Event{Kind: model.KindOk, Key: t.obs.Path})
				break
			}
			// Content intact under the old algorithm; migrate the record
			// to the run algorithm instead of reporting false bit rot.
			if err := put(runSum); err != nil {
				return err
			}
			emit(model.Event{Kind: model.KindRehashed, Key: t.obs.Path})

		case t.dir.AllowFileChanges:
			// Content changed without a timestamp bump; still an allowed
			// edit under this root.
			if err := put(runSum); err != nil {
				return err
			}
			emit(model.Event{Kind: model.KindUpdatedAllowed, Key: t.obs.Path})

		default:
			// Record left untouched so the anomaly reproduces on every
			// run until the bytes are restored or the key is overridden.
			emit(model.Event{Kind: model.KindBitRot, Key: t.obs.Path})
		}

	default:
		return fmt.Errorf("unhandled action %d for %s", t.act, t.obs.Path)
	}

	return nil
}

// removeStale deletes every record whose key was not observed on any root
// this run, emitting one Removed event per key. A file gone from disk is
// forgotten, not flagged.
func (e *Engine) removeStale(ctx context.Context, seen map[string]struct{}, sink Sink, stats *Stats) error {
	keys, err := e.store.AllKeys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		if err := e.store.Delete(ctx, key); err != nil {
			return err
		}
		slog.Debug("record removed, file no longer on any root", "path", key)
		ev := model.Event{Kind: model.KindRemoved, Key: key}
		stats.record(ev)
		sink.Report(ev)
	}
	return nil
}
