// Package api assembles the read models the CLI renders: the production
// board and the analytics overview. It only reads; mutations go through
// the workflow manager.
package api

import (
	"context"
	"sort"
	"time"

	"reeltrack/internal/production"
)

// BoardRow is one project on the production board with its task rollup.
type BoardRow struct {
	ProjectID   int64                    `json:"project_id"`
	ProjectKey  string                   `json:"project_key"`
	Title       string                   `json:"title"`
	ContentType production.ContentType   `json:"content_type"`
	TrackName   string                   `json:"track_name,omitempty"`
	Stage       int                      `json:"stage"`
	StageName   string                   `json:"stage_name"`
	Status      production.ProjectStatus `json:"status"`
	Progress    float64                  `json:"progress"`
	Tier        production.SpeedTier     `json:"tier"`
	Priority    int                      `json:"priority"`
	Pinned      bool                     `json:"pinned"`

	TasksTotal   int `json:"tasks_total"`
	TasksDone    int `json:"tasks_done"`
	TasksBlocked int `json:"tasks_blocked"`

	ReviewsPending    int `json:"reviews_pending"`
	MonitoringPending int `json:"monitoring_pending"`

	CreatedAt time.Time `json:"created_at"`
}

// BuildBoard assembles the board for the given statuses (active and paused
// when none are passed). Rows sort pinned first, then by priority
// descending, then by creation time.
func BuildBoard(ctx context.Context, store *production.Store, statuses ...production.ProjectStatus) ([]BoardRow, error) {
	if len(statuses) == 0 {
		statuses = []production.ProjectStatus{production.ProjectActive, production.ProjectPaused}
	}
	projects, err := store.ListProjects(ctx, statuses...)
	if err != nil {
		return nil, err
	}

	rows := make([]BoardRow, 0, len(projects))
	for _, project := range projects {
		row := BoardRow{
			ProjectID:  project.ID,
			ProjectKey: project.Key,
			Stage:      project.Stage,
			StageName:  production.StageName(project.Stage),
			Status:     project.Status,
			Progress:   project.Progress,
			Tier:       project.Tier,
			Priority:   project.Priority,
			Pinned:     project.Pinned,
			CreatedAt:  project.CreatedAt,
		}

		asset, err := store.GetAssetByID(ctx, project.AssetID)
		if err != nil {
			return nil, err
		}
		if asset != nil {
			row.Title = asset.Title
			row.ContentType = asset.ContentType
			row.TrackName = asset.TrackName
		}

		tasks, err := store.ListTasksByProject(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		row.TasksTotal = len(tasks)
		for _, task := range tasks {
			switch task.Status {
			case production.TaskCompleted:
				row.TasksDone++
			case production.TaskBlocked:
				row.TasksBlocked++
			}
			if task.ReviewRequired && !task.ReviewDone {
				row.ReviewsPending++
			}
			if task.MonitoringRequired && !task.MonitoringDone {
				row.MonitoringPending++
			}
		}

		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Pinned != rows[j].Pinned {
			return rows[i].Pinned
		}
		if rows[i].Priority != rows[j].Priority {
			return rows[i].Priority > rows[j].Priority
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	return rows, nil
}
