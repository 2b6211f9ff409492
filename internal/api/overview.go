package api

import (
	"context"
	"time"

	"reeltrack/internal/analytics"
	"reeltrack/internal/config"
	"reeltrack/internal/production"
)

// Overview is the full analytics report over archived projects.
type Overview struct {
	Summary       analytics.Summary        `json:"summary"`
	ByContentType []analytics.GroupSummary `json:"by_content_type"`
	ByTier        []analytics.GroupSummary `json:"by_tier"`
	Bottlenecks   []analytics.StageTally   `json:"bottlenecks"`
	Trend         analytics.Trend          `json:"trend"`
}

// BuildOverview computes the analytics report from all archives. The trend
// compares the window ending at now against the window before it. An empty
// archive set produces a zero report.
func BuildOverview(ctx context.Context, store *production.Store, cfg *config.Config, now time.Time, window time.Duration) (*Overview, error) {
	archives, err := store.ListArchives(ctx)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Summary:       analytics.Summarize(archives),
		ByContentType: analytics.ByContentType(archives),
		ByTier:        analytics.ByTier(archives),
		Bottlenecks:   analytics.Bottlenecks(archives, cfg.Workflow.BottleneckThreshold),
		Trend:         analytics.CompareTrend(archives, now, window),
	}, nil
}
