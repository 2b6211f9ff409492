// Package logging wires log/slog for reeltrack: console or JSON output,
// optional file mirroring under the configured log directory, and small attr
// helpers shared by every component.
package logging
