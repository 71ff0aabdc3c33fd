package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"

	"fixity/internal/checksum"
	"fixity/internal/config"
	"fixity/internal/model"
	"fixity/internal/store"
)

// Source produces the stream of file observations for a configured root.
// Implemented by scan.Walker (production) and test stubs.
type Source interface {
	Walk(ctx context.Context, dir config.Directory, fn func(model.Observation) error) error
}

// Sink consumes outcome events. Implementations may filter non-anomalous
// events on verbosity but must always surface anomalies. The engine
// serializes Report calls.
type Sink interface {
	Report(event model.Event)
}

// ModifiedPolicy selects the outcome for the newer-timestamp branch when
// the root disallows changes. The source documentation never specified
// this branch, so it is configurable rather than hard-coded.
type ModifiedPolicy int

const (
	// ModifiedReport surfaces an UnexpectedModification anomaly and
	// leaves the record untouched. This is the default.
	ModifiedReport ModifiedPolicy = iota + 1
	// ModifiedIgnore leaves the record untouched and emits nothing.
	ModifiedIgnore
	// ModifiedAccept rewrites the baseline as an allowed update.
	ModifiedAccept
)

// ParseModifiedPolicy maps the config value to a ModifiedPolicy.
func ParseModifiedPolicy(name string) (ModifiedPolicy, error) {
	switch name {
	case "", config.ModifiedReport:
		return ModifiedReport, nil
	case config.ModifiedIgnore:
		return ModifiedIgnore, nil
	case config.ModifiedAccept:
		return ModifiedAccept, nil
	default:
		return 0, fmt.Errorf("unknown modified policy %q", name)
	}
}

// Engine merges observations against the baseline store and emits one
// outcome event per file touched.
type Engine struct {
	store     *store.Store
	source    Source
	digester  *checksum.Digester
	algorithm checksum.Algorithm
	overrides map[string]struct{}
	policy    ModifiedPolicy
	workers   int
	runID     string
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the digest worker pool size.
// Default: runtime.GOMAXPROCS(0). Use WithWorkers(1) for deterministic
// event ordering in tests.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithOverrides supplies the run's override set: exact record keys whose
// baseline is unconditionally rewritten, bypassing all comparison. The
// set is one-shot input to this run; the engine holds no memory of past
// overrides.
func WithOverrides(keys []string) Option {
	return func(e *Engine) {
		for _, key := range keys {
			e.overrides[model.CanonicalKey(key)] = struct{}{}
		}
	}
}

// WithModifiedPolicy overrides the newer-timestamp/changes-disallowed
// branch behavior.
func WithModifiedPolicy(p ModifiedPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithRunID overrides the generated run correlation ID (for testing).
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// New creates an Engine. The algorithm is the run-wide digest choice; the
// caller keeps it stable across the baseline's lifetime, and records
// written under a different algorithm are migrated explicitly via their
// per-record algorithm tag.
func New(st *store.Store, source Source, digester *checksum.Digester, algorithm checksum.Algorithm, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		source:    source,
		digester:  digester,
		algorithm: algorithm,
		overrides: make(map[string]struct{}),
		policy:    ModifiedReport,
		workers:   runtime.GOMAXPROCS(0),
		runID:     uuid.NewString(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunID returns the run correlation ID.
func (e *Engine) RunID() string { return e.runID }
