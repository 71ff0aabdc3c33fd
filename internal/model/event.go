package model

// EventKind classifies the outcome of one file in one run.
type EventKind int

const (
	// KindOk means content and mtime both match the baseline.
	KindOk EventKind = iota + 1
	// KindNew means the path had no baseline record and one was created.
	KindNew
	// KindRemoved means the record's path was not observed anywhere this
	// run and the record was deleted.
	KindRemoved
	// KindUpdatedAllowed means the file diverged from baseline under a
	// root that allows changes; the baseline was silently rewritten.
	KindUpdatedAllowed
	// KindRehashed means content matched the baseline under the record's
	// old algorithm and the record was rewritten under the run algorithm.
	KindRehashed
	// KindForcedOverride means the key was in the override set and the
	// baseline was rewritten without any comparison.
	KindForcedOverride
	// KindUnexpectedModification means the file's mtime advanced under a
	// root that disallows changes. The record is left untouched.
	KindUnexpectedModification
	// KindPossibleFilesystemCorruption means the file's mtime is older
	// than its own recorded history. The record is left untouched.
	KindPossibleFilesystemCorruption
	// KindBitRot means mtimes match but checksums do not, under a root
	// that disallows changes. The record is left untouched so the anomaly
	// reproduces on every run until resolved.
	KindBitRot
	// KindSkippedUnreadable means the file could not be opened or fully
	// read; it was skipped this cycle and its record left untouched.
	KindSkippedUnreadable
)

// String returns the stable wire/report name for the kind.
func (k EventKind) String() string {
	switch k {
	case KindOk:
		return "ok"
	case KindNew:
		return "new"
	case KindRemoved:
		return "removed"
	case KindUpdatedAllowed:
		return "updated"
	case KindRehashed:
		return "rehashed"
	case KindForcedOverride:
		return "override"
	case KindUnexpectedModification:
		return "unexpected-modification"
	case KindPossibleFilesystemCorruption:
		return "fs-corruption"
	case KindBitRot:
		return "bitrot"
	case KindSkippedUnreadable:
		return "unreadable"
	default:
		return "unknown"
	}
}

// Event is one terminal outcome for one file in one run.
type Event struct {
	Kind EventKind
	Key  string
	// Err carries the underlying I/O error for KindSkippedUnreadable.
	Err error
}

// Anomaly reports whether the event must always be surfaced to the
// operator regardless of verbosity.
func (e Event) Anomaly() bool {
	switch e.Kind {
	case KindBitRot, KindPossibleFilesystemCorruption, KindUnexpectedModification, KindSkippedUnreadable:
		return true
	default:
		return false
	}
}
