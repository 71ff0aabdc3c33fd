// Package scan enumerates configured roots into a stream of file
// observations for the reconciliation engine.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"fixity/internal/config"
	"fixity/internal/model"
)

// Filesystem noise that must never enter the baseline: platform metadata
// files and SQLite side files (the baseline's own WAL lives next to it).
var skipNames = []string{
	`^\.DS_Store$`,
	`^Thumbs\.db$`,
	`-wal$`,
	`-shm$`,
	`-journal$`,
}

var skipNameRegexp []*regexp.Regexp

func init() {
	skipNameRegexp = make([]*regexp.Regexp, len(skipNames))
	for i, v := range skipNames {
		skipNameRegexp[i] = regexp.MustCompile(v)
	}
}

func skipped(name string) bool {
	for _, re := range skipNameRegexp {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Walker enumerates every regular file under a configured root.
type Walker struct {
	excluded map[string]struct{}
}

// Option configures a Walker.
type Option func(*Walker)

// WithExcludedPaths excludes exact canonical paths from observation. Used
// for the baseline database and report file themselves: the run rewrites
// both, so tracking them would report a spurious modification every run.
// An exact-path match, not a pattern; archives may legitimately contain
// .db files of their own.
func WithExcludedPaths(paths ...string) Option {
	return func(w *Walker) {
		for _, p := range paths {
			w.excluded[model.CanonicalKey(p)] = struct{}{}
		}
	}
}

// NewWalker creates a Walker.
func NewWalker(opts ...Option) *Walker {
	w := &Walker{excluded: make(map[string]struct{})}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk calls fn once per regular file under dir.Path, recursing into
// subdirectories iff dir.ScanSubdirectories. Observations carry the
// canonical absolute path and the filesystem mtime; a zero mtime marks an
// entry whose metadata could not be read (the engine reports it as
// unreadable rather than letting it vanish from the run).
//
// Any directory listing failure is returned as an error: a subtree that
// cannot be enumerated would otherwise cause every record beneath it to be
// misclassified as removed.
func (w *Walker) Walk(ctx context.Context, dir config.Directory, fn func(model.Observation) error) error {
	return w.walk(ctx, dir.Path, dir.ScanSubdirectories, fn)
}

func (w *Walker) walk(ctx context.Context, dir string, recurse bool, fn func(model.Observation) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(dir, name)

		if entry.IsDir() {
			if recurse {
				if err := w.walk(ctx, path, recurse, fn); err != nil {
					return err
				}
			}
			continue
		}
		if !entry.Type().IsRegular() || skipped(name) {
			continue
		}

		obs := model.Observation{Path: model.CanonicalKey(path)}
		if _, ok := w.excluded[obs.Path]; ok {
			continue
		}
		if info, err := entry.Info(); err == nil {
			obs.ModTime = info.ModTime()
		}
		if err := fn(obs); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of files Walk would observe under dir. Used
// for pre-run progress totals; a count that races with concurrent
// filesystem activity is fine, it only feeds reporting.
func (w *Walker) Count(ctx context.Context, dir config.Directory) (int64, error) {
	var n int64
	err := w.Walk(ctx, dir, func(model.Observation) error {
		n++
		return nil
	})
	return n, err
}
