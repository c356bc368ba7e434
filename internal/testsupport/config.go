package testsupport

import (
	"path/filepath"
	"testing"

	"cdlconvert/internal/config"
)

// ConfigOption adjusts a test configuration before it is validated.
type ConfigOption func(*config.Config)

// NewConfig returns the default configuration with every path moved under a
// fresh temp directory, so tests never touch the user's output or history.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.History.Path = filepath.Join(base, "history.db")
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return &cfg
}

// WithFormats sets the output formats written by the converter.
func WithFormats(formats ...string) ConfigOption {
	return func(cfg *config.Config) { cfg.Convert.OutputFormats = formats }
}

// WithHistoryDisabled turns off the history database.
func WithHistoryDisabled() ConfigOption {
	return func(cfg *config.Config) { cfg.History.Enabled = false }
}

// WithOverwrite allows the converter to replace existing outputs.
func WithOverwrite() ConfigOption {
	return func(cfg *config.Config) { cfg.Convert.Overwrite = true }
}

// BaseDir returns the temp directory NewConfig placed the paths under.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.History.Path)
}
