package testsupport

import (
	"path/filepath"
	"testing"

	"artfiler/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LinksFile = filepath.Join(base, "links.txt")
	cfg.Paths.DestinationDir = filepath.Join(base, "library")
	cfg.Paths.SourceDir = filepath.Join(base, "staged")
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.MappingFile = filepath.Join(base, "author_mapping.json")
	cfg.Paths.HistoryDB = filepath.Join(base, "history.db")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSeparator overrides the folder-name separator on the test config.
func WithSeparator(sep string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Behavior.Separator = sep
	}
}

// WithoutHistory disables the placement ledger on the test config.
func WithoutHistory() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.HistoryDB = ""
	}
}
