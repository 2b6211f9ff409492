package lifecycle

import (
	"fmt"
	"time"

	"reeltrack/internal/production"
	"reeltrack/internal/services"
)

// stageRanges maps progress percentages onto pipeline stages. The ranges
// are half-open except the last, so the table is total and non-overlapping
// over [0,100].
type stageRange struct {
	stage int
	min   float64
	max   float64
}

var stageRanges = []stageRange{
	{production.StagePrep, 0, 10},
	{production.StageScripting, 10, 60},
	{production.StageProduction, 60, 85},
	{production.StageDistribution, 85, 100},
}

// StageForProgress returns the pipeline stage a progress percentage falls
// into. Input is clamped to [0,100] first.
func StageForProgress(progress float64) int {
	progress = clamp(progress)
	for _, r := range stageRanges[:len(stageRanges)-1] {
		if progress >= r.min && progress < r.max {
			return r.stage
		}
	}
	return production.StageDistribution
}

// RangeMin returns the lower bound of a stage's progress range.
func RangeMin(stage int) float64 {
	for _, r := range stageRanges {
		if r.stage == stage {
			return r.min
		}
	}
	return 0
}

func clamp(progress float64) float64 {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// AdvanceStage moves a project to a target stage manually. Progress resets
// to the target stage's range minimum. Moving a completed project out of
// stage 4 reverses completion: status returns to active and the completion
// date is cleared. Task completion markers are never touched by a stage
// move. Validation failures leave the project unmodified.
func AdvanceStage(p *production.Project, target int, now time.Time) error {
	if !production.ValidStage(target) {
		return services.Wrap(services.ErrValidation, "lifecycle", "advance stage",
			fmt.Sprintf("stage %d is not in 1..4", target), nil)
	}

	switch p.Status {
	case production.ProjectActive, production.ProjectPaused:
	case production.ProjectCompleted:
		if target == production.StageDistribution {
			return services.Wrap(services.ErrValidation, "lifecycle", "advance stage",
				"project is already completed", nil)
		}
	default:
		return services.Wrap(services.ErrValidation, "lifecycle", "advance stage",
			fmt.Sprintf("project status %s permits no stage move", p.Status), nil)
	}

	reversing := p.Status == production.ProjectCompleted && target != production.StageDistribution

	p.Stage = target
	p.Progress = RangeMin(target)
	if reversing {
		p.Status = production.ProjectActive
		p.CompletedAt = nil
	}
	if p.Progress >= 100 {
		complete(p, now)
	}
	return nil
}

// SetProgress clamps the percentage, recomputes the stage from the range
// table, and auto-completes an active project that reaches 100.
func SetProgress(p *production.Project, progress float64, now time.Time) error {
	switch p.Status {
	case production.ProjectActive, production.ProjectPaused:
	default:
		return services.Wrap(services.ErrValidation, "lifecycle", "set progress",
			fmt.Sprintf("project status %s permits no progress change", p.Status), nil)
	}

	p.Progress = clamp(progress)
	p.Stage = StageForProgress(p.Progress)
	if p.Progress >= 100 && p.Status == production.ProjectActive {
		complete(p, now)
	}
	return nil
}

// MarkCompleted finishes a project explicitly. Legal only from
// (stage 4, active).
func MarkCompleted(p *production.Project, now time.Time) error {
	if p.Stage != production.StageDistribution || p.Status != production.ProjectActive {
		return services.Wrap(services.ErrValidation, "lifecycle", "complete",
			fmt.Sprintf("completion requires stage 4 and active status, have stage %d status %s", p.Stage, p.Status), nil)
	}
	complete(p, now)
	return nil
}

// Pause suspends an active project.
func Pause(p *production.Project) error {
	if p.Status != production.ProjectActive {
		return services.Wrap(services.ErrValidation, "lifecycle", "pause",
			fmt.Sprintf("only active projects pause, status is %s", p.Status), nil)
	}
	p.Status = production.ProjectPaused
	return nil
}

// Resume reactivates a paused project.
func Resume(p *production.Project) error {
	if p.Status != production.ProjectPaused {
		return services.Wrap(services.ErrValidation, "lifecycle", "resume",
			fmt.Sprintf("only paused projects resume, status is %s", p.Status), nil)
	}
	p.Status = production.ProjectActive
	return nil
}

// Cancel abandons a project that has not finished.
func Cancel(p *production.Project) error {
	switch p.Status {
	case production.ProjectActive, production.ProjectPaused:
		p.Status = production.ProjectCancelled
		return nil
	default:
		return services.Wrap(services.ErrValidation, "lifecycle", "cancel",
			fmt.Sprintf("project status %s cannot be cancelled", p.Status), nil)
	}
}

// CanArchive reports whether a project may be archived. The archive record
// itself must already be durably built before the status flip happens; this
// guard only checks transition legality.
func CanArchive(p *production.Project) error {
	if p.Status != production.ProjectCompleted {
		return services.Wrap(services.ErrPrecondition, "lifecycle", "archive",
			fmt.Sprintf("archival requires completed status, have %s", p.Status), nil)
	}
	return nil
}

func complete(p *production.Project, now time.Time) {
	p.Status = production.ProjectCompleted
	utc := now.UTC()
	p.CompletedAt = &utc
}
