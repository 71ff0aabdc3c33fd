// Package config loads and validates the fixity run configuration.
//
// The configuration is a YAML file validated against an embedded CUE
// schema before any reconciliation begins. Absence or malformation aborts
// the run before the baseline store is touched.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"fixity/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// DefaultDatabase is used when the config file does not name a database.
// Relative paths resolve against the config file's directory.
const DefaultDatabase = "fixity.db"

// Modified-policy values for the newer-timestamp/changes-disallowed
// branch of the decision table.
const (
	ModifiedReport = "report" // surface an unexpected-modification anomaly
	ModifiedIgnore = "ignore" // no event, no mutation
	ModifiedAccept = "accept" // rewrite the baseline as an allowed update
)

// Directory is one configured scan root. The engine never mutates it.
type Directory struct {
	Path               string `yaml:"path"`
	ScanSubdirectories bool   `yaml:"scan_subdirectories"`
	AllowFileChanges   bool   `yaml:"allow_file_changes"`
}

// Config is the full run configuration.
type Config struct {
	Database                 string      `yaml:"database"`
	ChecksumAlgorithm        string      `yaml:"checksum_algorithm"`
	VerboseOutput            bool        `yaml:"verbose_output"`
	OutputFile               string      `yaml:"output_file"`
	OnUnexpectedModification string      `yaml:"on_unexpected_modification"`
	DirectoriesToScan        []Directory `yaml:"directories_to_scan"`
	Overrides                []string    `yaml:"overrides"`
}

// Load reads, validates, and normalizes the configuration at path.
//
// Validation happens in two stages: the raw YAML is unified with the
// embedded CUE schema (types, enums, required fields), then the decoded
// config is normalized (absolute canonical paths) and its scan roots are
// verified to exist. Any failure is fatal before reconciliation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := validateSchema(path, data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path %s: %w", path, err)
	}
	if err := cfg.normalize(filepath.Dir(absPath)); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateSchema unifies the YAML document with the embedded CUE schema.
func validateSchema(filename string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("internal: compile config schema: %w", err)
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", filename, err)
	}

	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return fmt.Errorf("parse config %s: %w", filename, err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return nil
}

// normalize fills defaults and rewrites all paths to absolute canonical
// form. Relative paths resolve against baseDir, the config file's
// directory, so a config travels with its database the way the original
// deployment expects.
func (c *Config) normalize(baseDir string) error {
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if !filepath.IsAbs(c.Database) {
		c.Database = filepath.Join(baseDir, c.Database)
	}
	if c.OutputFile != "" && !filepath.IsAbs(c.OutputFile) {
		c.OutputFile = filepath.Join(baseDir, c.OutputFile)
	}
	if c.OnUnexpectedModification == "" {
		c.OnUnexpectedModification = ModifiedReport
	}

	for i := range c.DirectoriesToScan {
		dir := &c.DirectoriesToScan[i]
		abs := dir.Path
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(baseDir, abs)
		}
		abs, err := filepath.Abs(abs)
		if err != nil {
			return fmt.Errorf("resolve scan root %s: %w", dir.Path, err)
		}
		dir.Path = model.CanonicalKey(abs)
	}

	for i, key := range c.Overrides {
		abs := key
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(baseDir, abs)
		}
		c.Overrides[i] = model.CanonicalKey(abs)
	}

	return nil
}

// CheckRoots verifies every configured scan root exists and is a
// directory. An unreachable root aborts the run before reconciliation.
func (c *Config) CheckRoots() error {
	for _, dir := range c.DirectoriesToScan {
		info, err := os.Stat(dir.Path)
		if err != nil {
			return fmt.Errorf("scan root unreachable: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("scan root %s is not a directory", dir.Path)
		}
	}
	return nil
}
