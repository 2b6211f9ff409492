package config

const (
	defaultDataDir             = "~/.local/share/reeltrack"
	defaultLogDir              = "~/.local/share/reeltrack/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultTier                = "B"
	defaultMinCredits          = 2
	defaultBottleneckThreshold = 1.2
	defaultTierMultiplierA     = 0.75
	defaultTierMultiplierB     = 1.0
	defaultTierMultiplierC     = 1.25
)

// DefaultStageWeights returns the progress contribution of the four pipeline
// stages: prep, scripting, production, distribution.
func DefaultStageWeights() []float64 {
	return []float64{10, 50, 25, 15}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Workflow: Workflow{
			StageWeights:        DefaultStageWeights(),
			TierMultiplierA:     defaultTierMultiplierA,
			TierMultiplierB:     defaultTierMultiplierB,
			TierMultiplierC:     defaultTierMultiplierC,
			BottleneckThreshold: defaultBottleneckThreshold,
			DefaultTier:         defaultTier,
			MinCredits:          defaultMinCredits,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
