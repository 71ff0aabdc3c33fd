package engine

import (
	"fixity/internal/checksum"
	"fixity/internal/config"
	"fixity/internal/model"
)

// action is the classification of one observation before any digest work.
type action int

const (
	// actOverride: key is in the override set; rewrite unconditionally.
	actOverride action = iota + 1
	// actNew: no baseline record exists.
	actNew
	// actUpdateAllowed: file diverged under a root that allows changes;
	// digest and rewrite.
	actUpdateAllowed
	// actModifiedDisallowed: mtime advanced under a root that disallows
	// changes; resolved by the engine's ModifiedPolicy.
	actModifiedDisallowed
	// actOlder: mtime regressed below the record's own history.
	actOlder
	// actCompare: mtimes equal; digest and compare checksums.
	actCompare
	// actStatFailed: the walker could not read the entry's metadata.
	actStatFailed
)

// task carries one observation through the pipeline: classification on
// the way in, digest results on the way out.
type task struct {
	obs    model.Observation
	dir    config.Directory
	record *model.IntegrityRecord
	act    action

	// algos are the digests to compute, filled by classify. For
	// actCompare the first entry is the record's algorithm and the last
	// is the run algorithm (one entry when they coincide).
	algos []checksum.Algorithm

	sums      []string
	bytesRead int64
	digestErr error
}

// classify encodes the pre-digest half of the decision table: which
// branch the observation lands in and which digests that branch needs.
// No I/O beyond the record lookup the caller already performed.
func (e *Engine) classify(obs model.Observation, dir config.Directory, rec *model.IntegrityRecord) *task {
	t := &task{obs: obs, dir: dir, record: rec}

	switch {
	case obs.ModTime.IsZero():
		t.act = actStatFailed

	case e.isOverride(obs.Path):
		t.act = actOverride
		t.algos = []checksum.Algorithm{e.algorithm}

	case rec == nil:
		t.act = actNew
		t.algos = []checksum.Algorithm{e.algorithm}

	case obs.ModTime.UnixNano() > rec.LastModified.UnixNano():
		if dir.AllowFileChanges || e.policy == ModifiedAccept {
			t.act = actUpdateAllowed
			t.algos = []checksum.Algorithm{e.algorithm}
		} else {
			t.act = actModifiedDisallowed
		}

	case obs.ModTime.UnixNano() < rec.LastModified.UnixNano():
		t.act = actOlder

	default:
		t.act = actCompare
		t.algos = compareAlgos(e.algorithm, rec)
	}

	return t
}

// compareAlgos returns the digests an equal-timestamp comparison needs:
// the record's own algorithm for the comparison, plus the run algorithm
// for the rewrite when the record predates it. Legacy records with no
// algorithm tag are trusted to the run-wide algorithm.
func compareAlgos(run checksum.Algorithm, rec *model.IntegrityRecord) []checksum.Algorithm {
	recorded := checksum.Algorithm(rec.Algorithm)
	if rec.Algorithm == "" || recorded == run || !recorded.Valid() {
		return []checksum.Algorithm{run}
	}
	return []checksum.Algorithm{recorded, run}
}

// migrating reports whether an actCompare task digests under two
// algorithms, i.e. a match must rewrite the record under the run
// algorithm instead of confirming it silently.
func (t *task) migrating() bool {
	return len(t.algos) == 2
}

func (e *Engine) isOverride(key string) bool {
	_, ok := e.overrides[key]
	return ok
}
