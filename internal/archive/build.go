// Package archive freezes finished projects into immutable historical
// records. Everything on an archive is copied by value so later edits to
// live rows can never rewrite history.
package archive

import (
	"fmt"
	"math"
	"time"

	"reeltrack/internal/production"
	"reeltrack/internal/services"
)

// Build assembles the archive record for a completed project. The project
// must be in completed status with both its start and completion dates
// set; anything else is a precondition failure. The returned archive is
// not persisted; Store.CommitArchive writes it and flips the project in
// one transaction.
func Build(project *production.Project, asset *production.ContentAsset, credits []production.Credit, tasks []production.Task) (*production.Archive, error) {
	if project == nil || asset == nil {
		return nil, services.Wrap(services.ErrPrecondition, "archive", "build", "project and asset are required", nil)
	}
	if project.Status != production.ProjectCompleted {
		return nil, services.Wrap(services.ErrPrecondition, "archive", "build",
			fmt.Sprintf("project %d is %s, not completed", project.ID, project.Status), nil)
	}
	if project.StartedAt.IsZero() || project.CompletedAt == nil {
		return nil, services.Wrap(services.ErrPrecondition, "archive", "build",
			fmt.Sprintf("project %d is missing its start or completion date", project.ID), nil)
	}

	record := &production.Archive{
		ProjectID:   project.ID,
		AssetTitle:  asset.Title,
		ContentType: asset.ContentType,
		TrackName:   asset.TrackName,
		Tier:        project.Tier,
		StartedAt:   project.StartedAt.UTC(),
		CompletedAt: project.CompletedAt.UTC(),
		TotalDays:   elapsedDays(project.StartedAt, *project.CompletedAt),
		StageHours:  make(map[int]float64, production.StageCount),
	}
	for stage := production.StagePrep; stage <= production.StageDistribution; stage++ {
		record.StageHours[stage] = 0
	}

	var plannedTotal, actualTotal float64
	for _, t := range tasks {
		spent := trackHours(t.ActualHours, t.PlannedHours) +
			trackHours(t.ActualReviewHours, t.PlannedReviewHours) +
			trackHours(t.ActualMonitoringHours, t.PlannedMonitoringHours)
		record.TotalHours += spent
		if production.ValidStage(t.Stage) {
			record.StageHours[t.Stage] += spent
		}

		plannedTotal += t.PlannedHours + t.PlannedReviewHours + t.PlannedMonitoringHours
		actualTotal += t.ActualHours + t.ActualReviewHours + t.ActualMonitoringHours
	}

	if actualTotal > 0 {
		efficiency := plannedTotal / actualTotal
		record.Efficiency = &efficiency
	}

	var qualitySum, qualityCount int
	for _, t := range tasks {
		if t.QualityScore != nil {
			qualitySum += *t.QualityScore
			qualityCount++
		}
	}
	if qualityCount > 0 {
		avg := float64(qualitySum) / float64(qualityCount)
		record.AverageQuality = &avg
	}

	for _, credit := range credits {
		if credit.DeletedAt != nil {
			continue
		}
		record.Participants = append(record.Participants, production.Participant{
			CreditID:   credit.ID,
			PersonID:   credit.Person.ID,
			PersonKind: credit.Person.Kind,
			Name:       credit.PersonName,
			Role:       credit.RoleLabel,
			Primary:    credit.Primary,
		})
	}

	return record, nil
}

// trackHours prefers recorded actual hours and falls back to the plan when
// a track finished without anyone logging time against it.
func trackHours(actual, planned float64) float64 {
	if actual > 0 {
		return actual
	}
	return planned
}

// elapsedDays counts calendar days between start and completion, rounding
// up so same-day projects report one day.
func elapsedDays(started, completed time.Time) int {
	delta := completed.Sub(started)
	if delta <= 0 {
		return 1
	}
	days := int(math.Ceil(delta.Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}
