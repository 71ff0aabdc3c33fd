package model

import (
	"time"

	"golang.org/x/text/unicode/norm"
)

// IntegrityRecord is one baseline entry per tracked file.
//
// The record is authoritative until the engine explicitly rewrites it:
// an insert, an allowed update, an algorithm migration, or a forced
// override replaces the whole record, never individual fields.
type IntegrityRecord struct {
	// Key is the canonical absolute path of the file. It is the record's
	// identity and is only ever matched by exact string equality.
	Key string

	// Checksum is the hex-encoded digest of the file content.
	Checksum string

	// Algorithm names the digest algorithm that produced Checksum.
	// Records written before algorithm tagging carry an empty string and
	// are trusted to the run-wide configured algorithm.
	Algorithm string

	// LastModified is the filesystem mtime captured when the record was
	// last written.
	LastModified time.Time
}

// Observation is one enumerated file in a single run. Observations are
// ephemeral and never persisted.
type Observation struct {
	Path    string
	ModTime time.Time
}

// CanonicalKey normalizes a path for use as a record key.
//
// Paths are NFC-normalized so the same file observed under decomposed and
// precomposed Unicode names (macOS volumes report NFD) maps to a single
// record. Absolute-path resolution is the caller's responsibility since it
// depends on the filesystem the path came from.
func CanonicalKey(path string) string {
	return norm.NFC.String(path)
}
