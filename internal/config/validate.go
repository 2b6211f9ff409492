package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if len(c.Workflow.StageWeights) != 4 {
		return fmt.Errorf("workflow.stage_weights must have exactly 4 entries, got %d", len(c.Workflow.StageWeights))
	}
	var sum float64
	for i, w := range c.Workflow.StageWeights {
		if w < 0 {
			return fmt.Errorf("workflow.stage_weights[%d] must not be negative", i)
		}
		sum += w
	}
	if math.Abs(sum-100) > 1e-9 {
		return fmt.Errorf("workflow.stage_weights must sum to 100, got %g", sum)
	}
	for name, m := range map[string]float64{
		"workflow.tier_multiplier_a": c.Workflow.TierMultiplierA,
		"workflow.tier_multiplier_b": c.Workflow.TierMultiplierB,
		"workflow.tier_multiplier_c": c.Workflow.TierMultiplierC,
	} {
		if m <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.Workflow.BottleneckThreshold <= 1 {
		return errors.New("workflow.bottleneck_threshold must be greater than 1")
	}
	switch c.Workflow.DefaultTier {
	case "A", "B", "C":
	default:
		return fmt.Errorf("workflow.default_tier must be A, B, or C, got %q", c.Workflow.DefaultTier)
	}
	if c.Workflow.MinCredits < 1 {
		return errors.New("workflow.min_credits must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
