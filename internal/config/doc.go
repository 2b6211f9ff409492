// Package config loads, validates, and provides defaults for reeltrack
// configuration. Configuration is stored in TOML at
// ~/.config/reeltrack/config.toml, with a project-local reeltrack.toml as a
// fallback for development checkouts.
package config
