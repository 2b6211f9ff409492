package taskgen

import (
	"math"
	"sort"
	"time"

	"reeltrack/internal/catalog"
	"reeltrack/internal/production"
)

// hoursPerWorkday converts summed planned hours into a calendar estimate.
const hoursPerWorkday = 6.0

// Generate instantiates a project's task list from the active templates of
// its content type. One task is produced per template, ordered by
// (stage, task order), with planned hours resolved for the project's speed
// tier. Every task starts pending except the first prep-stage task, which
// opens in progress so the board shows where work begins. An empty template
// set yields an empty task list without error.
func Generate(templates []production.Template, tier production.SpeedTier) ([]production.Task, error) {
	ordered := make([]production.Template, 0, len(templates))
	for _, tpl := range templates {
		if tpl.Active {
			ordered = append(ordered, tpl)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Stage != ordered[j].Stage {
			return ordered[i].Stage < ordered[j].Stage
		}
		return ordered[i].TaskOrder < ordered[j].TaskOrder
	})

	tasks := make([]production.Task, 0, len(ordered))
	for _, tpl := range ordered {
		hours, err := catalog.ResolveHours(tpl, tier)
		if err != nil {
			return nil, err
		}

		task := production.Task{
			Stage:     tpl.Stage,
			TaskName:  tpl.TaskName,
			TaskOrder: tpl.TaskOrder,
			Status:    production.TaskPending,

			PlannedHours: hours.Main,

			ReviewRequired:     tpl.RequiresReview,
			PlannedReviewHours: hours.Review,

			MonitoringRequired:     tpl.RequiresMonitoring,
			PlannedMonitoringHours: hours.Monitoring,
		}
		if len(tpl.Checklist) > 0 {
			task.ChecklistProgress = make(map[string]bool, len(tpl.Checklist))
			for _, item := range tpl.Checklist {
				task.ChecklistProgress[item] = false
			}
		}
		tasks = append(tasks, task)
	}

	for i := range tasks {
		if tasks[i].Stage == production.StagePrep {
			tasks[i].Status = production.TaskInProgress
			break
		}
	}
	return tasks, nil
}

// EstimateCompletion projects a finish date from the summed planned hours
// of all three effort tracks, at six working hours per day. Returns nil
// when nothing is planned.
func EstimateCompletion(start time.Time, tasks []production.Task) *time.Time {
	var total float64
	for _, t := range tasks {
		total += t.PlannedHours + t.PlannedReviewHours + t.PlannedMonitoringHours
	}
	if total <= 0 {
		return nil
	}
	days := int(math.Ceil(total / hoursPerWorkday))
	estimate := start.UTC().AddDate(0, 0, days)
	return &estimate
}
