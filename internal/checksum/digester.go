// Package checksum computes hex-encoded content digests for tracked files.
//
// Digests are pure functions of file content: identical bytes always yield
// identical digests regardless of path or timestamp. Files are streamed
// through the hash state, never buffered whole, since individual archive
// files may be many gigabytes.
package checksum

import (
	"context"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/viant/afs"
)

// DefaultBufferSize is the copy buffer used while streaming file content.
const DefaultBufferSize = 1 << 20

// UnreadableError reports that a file could not be opened or fully read
// while digesting. It is recoverable: the file is skipped for the cycle
// and its baseline record left untouched.
type UnreadableError struct {
	Path string
	Err  error
}

func (e *UnreadableError) Error() string {
	return fmt.Sprintf("unreadable file %s: %v", e.Path, e.Err)
}

func (e *UnreadableError) Unwrap() error { return e.Err }

// Digester streams file content from an afs.Service through one or more
// digest algorithms in a single read pass.
type Digester struct {
	fs      afs.Service
	bufSize int
}

// DigesterOption configures a Digester.
type DigesterOption func(*Digester)

// WithBufferSize overrides the streaming copy buffer size.
func WithBufferSize(n int) DigesterOption {
	return func(d *Digester) {
		if n > 0 {
			d.bufSize = n
		}
	}
}

// NewDigester creates a Digester reading content through the given service.
func NewDigester(fs afs.Service, opts ...DigesterOption) *Digester {
	d := &Digester{fs: fs, bufSize: DefaultBufferSize}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// File digests the content at path under every requested algorithm in one
// streaming pass and returns the hex digests in request order, along with
// the number of bytes read.
//
// Open and read failures are returned as *UnreadableError.
func (d *Digester) File(ctx context.Context, path string, algos ...Algorithm) ([]string, int64, error) {
	if len(algos) == 0 {
		return nil, 0, fmt.Errorf("digest %s: no algorithm requested", path)
	}

	reader, err := d.fs.OpenURL(ctx, path)
	if err != nil {
		return nil, 0, &UnreadableError{Path: path, Err: err}
	}
	defer reader.Close()

	hashes := make([]hash.Hash, len(algos))
	writers := make([]io.Writer, len(algos))
	for i, a := range algos {
		hashes[i] = a.New()
		writers[i] = hashes[i]
	}

	buf := make([]byte, d.bufSize)
	n, err := io.CopyBuffer(io.MultiWriter(writers...), reader, buf)
	if err != nil {
		return nil, n, &UnreadableError{Path: path, Err: err}
	}

	sums := make([]string, len(hashes))
	for i, h := range hashes {
		sums[i] = hex.EncodeToString(h.Sum(nil))
	}
	return sums, n, nil
}
