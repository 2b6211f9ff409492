// Command reeltrack is the CLI for the accessibility track production
// tracker: assets, credits, templates, projects, the board, and analytics.
package main
