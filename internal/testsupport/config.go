package testsupport

import (
	"path/filepath"
	"testing"

	"reeltrack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithMinCredits overrides the auto-creation credit threshold.
func WithMinCredits(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.MinCredits = n
	}
}

// WithDefaultTier overrides the tier assigned to auto-created projects.
func WithDefaultTier(tier string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.DefaultTier = tier
	}
}
