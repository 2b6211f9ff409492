package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reeltrack/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatalf("expected missing config, resolved %s", resolved)
	}
	if cfg.Workflow.DefaultTier != "B" {
		t.Fatalf("expected default tier B, got %q", cfg.Workflow.DefaultTier)
	}
	if got := cfg.Workflow.StageWeights; len(got) != 4 || got[1] != 50 {
		t.Fatalf("unexpected default stage weights: %v", got)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`data_dir = "` + filepath.Join(dir, "data") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[workflow]",
		"stage_weights = [25.0, 25.0, 25.0, 25.0]",
		`default_tier = "c"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Workflow.DefaultTier != "C" {
		t.Fatalf("expected tier normalized to C, got %q", cfg.Workflow.DefaultTier)
	}
	if cfg.Workflow.StageWeights[0] != 25 {
		t.Fatalf("expected overridden weights, got %v", cfg.Workflow.StageWeights)
	}
	if cfg.Workflow.BottleneckThreshold != 1.2 {
		t.Fatalf("expected default threshold preserved, got %g", cfg.Workflow.BottleneckThreshold)
	}
}

func TestValidateRejectsBadWeights(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()

	cfg.Workflow.StageWeights = []float64{10, 50, 25}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for three weights")
	}

	cfg.Workflow.StageWeights = []float64{10, 50, 25, 25}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for weights not summing to 100")
	}
}

func TestValidateRejectsBadTier(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Workflow.DefaultTier = "D"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown tier")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path, false); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path, false); err == nil {
		t.Fatal("expected overwrite refusal")
	}
	if err := config.WriteSample(path, true); err != nil {
		t.Fatalf("forced WriteSample failed: %v", err)
	}
}
