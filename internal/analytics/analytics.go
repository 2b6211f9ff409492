// Package analytics derives reporting aggregates from archived projects.
// Archives are the only input; live projects never influence the numbers,
// so reports are stable under concurrent pipeline activity.
package analytics

import (
	"sort"
	"time"

	"reeltrack/internal/production"
)

// qualityBar is the minimum average quality an archive needs to count as a
// successful completion.
const qualityBar = 4.0

// Summary aggregates a set of archives. Pointer fields are nil when no
// archive in the set carries the underlying measurement.
type Summary struct {
	Archives       int
	TotalHours     float64
	AvgDays        float64
	AvgHours       float64
	AvgEfficiency  *float64
	AvgQuality     *float64
	CompletionRate *float64
}

// Summarize computes the aggregate view of a set of archives. An empty set
// yields a zero summary rather than an error.
func Summarize(archives []production.Archive) Summary {
	var out Summary
	if len(archives) == 0 {
		return out
	}
	out.Archives = len(archives)

	var days int
	var effSum float64
	var effCount int
	var qualSum float64
	var rated, successful int
	for _, a := range archives {
		days += a.TotalDays
		out.TotalHours += a.TotalHours
		if a.Efficiency != nil {
			effSum += *a.Efficiency
			effCount++
		}
		if a.AverageQuality != nil {
			qualSum += *a.AverageQuality
			rated++
			if *a.AverageQuality >= qualityBar {
				successful++
			}
		}
	}

	out.AvgDays = float64(days) / float64(len(archives))
	out.AvgHours = out.TotalHours / float64(len(archives))
	if effCount > 0 {
		avg := effSum / float64(effCount)
		out.AvgEfficiency = &avg
	}
	if rated > 0 {
		avg := qualSum / float64(rated)
		out.AvgQuality = &avg
		rate := float64(successful) / float64(rated)
		out.CompletionRate = &rate
	}
	return out
}

// FilterPeriod keeps archives completed within [from, to).
func FilterPeriod(archives []production.Archive, from, to time.Time) []production.Archive {
	var out []production.Archive
	for _, a := range archives {
		if !a.CompletedAt.Before(from) && a.CompletedAt.Before(to) {
			out = append(out, a)
		}
	}
	return out
}

// Trend compares the most recent window against the one before it.
type Trend struct {
	Current  Summary
	Previous Summary
}

// CompareTrend summarizes two adjacent windows of equal length ending at
// now. Either window may be empty.
func CompareTrend(archives []production.Archive, now time.Time, window time.Duration) Trend {
	return Trend{
		Current:  Summarize(FilterPeriod(archives, now.Add(-window), now)),
		Previous: Summarize(FilterPeriod(archives, now.Add(-2*window), now.Add(-window))),
	}
}

// GroupSummary is a summary labelled with its grouping key.
type GroupSummary struct {
	Key string
	Summary
}

// ByContentType groups archives by content type code, sorted by code.
func ByContentType(archives []production.Archive) []GroupSummary {
	return groupBy(archives, func(a production.Archive) string { return string(a.ContentType) })
}

// ByTier groups archives by speed tier, sorted by tier.
func ByTier(archives []production.Archive) []GroupSummary {
	return groupBy(archives, func(a production.Archive) string { return string(a.Tier) })
}

func groupBy(archives []production.Archive, key func(production.Archive) string) []GroupSummary {
	grouped := make(map[string][]production.Archive)
	for _, a := range archives {
		k := key(a)
		grouped[k] = append(grouped[k], a)
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]GroupSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, GroupSummary{Key: k, Summary: Summarize(grouped[k])})
	}
	return out
}

// StageTally counts how often a pipeline stage was a bottleneck.
type StageTally struct {
	Stage string
	Count int
}

// Bottlenecks tallies, across archives, the stages whose recorded hours
// exceeded threshold times that archive's own average over stages with
// recorded work. Each archive is judged against itself, so a slow shop
// does not mask its slowest step. Results are ranked by tally, worst
// first.
func Bottlenecks(archives []production.Archive, threshold float64) []StageTally {
	counts := make(map[int]int)
	for _, a := range archives {
		var sum float64
		var active int
		for _, h := range a.StageHours {
			if h > 0 {
				sum += h
				active++
			}
		}
		if active == 0 {
			continue
		}
		mean := sum / float64(active)
		for stage, h := range a.StageHours {
			if h > threshold*mean {
				counts[stage]++
			}
		}
	}

	out := make([]StageTally, 0, len(counts))
	for stage, count := range counts {
		out = append(out, StageTally{Stage: production.StageName(stage), Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Stage < out[j].Stage
	})
	return out
}
