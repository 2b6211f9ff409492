package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reeltrack/internal/lifecycle"
	"reeltrack/internal/logging"
	"reeltrack/internal/production"
	"reeltrack/internal/services"
)

// TaskEventKind names the operations a task accepts.
type TaskEventKind string

const (
	EventStart          TaskEventKind = "start"
	EventComplete       TaskEventKind = "complete"
	EventBlock          TaskEventKind = "block"
	EventUnblock        TaskEventKind = "unblock"
	EventReviewDone     TaskEventKind = "review_done"
	EventMonitoringDone TaskEventKind = "monitoring_done"
	EventRework         TaskEventKind = "rework"
	EventCheckItem      TaskEventKind = "check_item"
)

// ParseTaskEventKind converts a string into a known TaskEventKind.
func ParseTaskEventKind(value string) (TaskEventKind, bool) {
	normalized := TaskEventKind(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case EventStart, EventComplete, EventBlock, EventUnblock,
		EventReviewDone, EventMonitoringDone, EventRework, EventCheckItem:
		return normalized, true
	}
	return "", false
}

// TaskEvent carries one task operation and its payload. Hours accompany
// complete, review, and monitoring events; quality scores only complete.
type TaskEvent struct {
	Kind          TaskEventKind
	Hours         float64
	QualityScore  *int
	ChecklistItem string
}

// ApplyTaskEvent validates and applies one event against a task, persists
// the task, and recomputes the owning project's progress. Events are only
// accepted while the project is active.
func (m *Manager) ApplyTaskEvent(ctx context.Context, taskID int64, event TaskEvent) (*production.Task, error) {
	task, err := m.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, services.Wrap(services.ErrNotFound, "workflow", "task event",
			fmt.Sprintf("task %d", taskID), nil)
	}

	project, err := m.loadProject(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Status != production.ProjectActive {
		return nil, services.Wrap(services.ErrPrecondition, "workflow", "task event",
			fmt.Sprintf("project %d is %s, task events need an active project", project.ID, project.Status), nil)
	}

	if err := applyEvent(task, event); err != nil {
		return nil, err
	}
	if err := m.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	m.logger.Info("task event applied",
		logging.Int64("task_id", task.ID),
		logging.Int64("project_id", project.ID),
		logging.String("event", string(event.Kind)),
		logging.String("status", string(task.Status)))

	if err := m.RecomputeProject(ctx, project.ID); err != nil {
		return nil, err
	}
	return task, nil
}

func applyEvent(task *production.Task, event TaskEvent) error {
	invalid := func(message string) error {
		return services.Wrap(services.ErrValidation, "workflow", string(event.Kind), message, nil)
	}

	switch event.Kind {
	case EventStart:
		if task.Status != production.TaskPending {
			return invalid(fmt.Sprintf("task is %s, only pending tasks start", task.Status))
		}
		task.Status = production.TaskInProgress

	case EventComplete:
		if task.Status != production.TaskInProgress {
			return invalid(fmt.Sprintf("task is %s, only in-progress tasks complete", task.Status))
		}
		if event.QualityScore != nil && (*event.QualityScore < 1 || *event.QualityScore > 5) {
			return invalid(fmt.Sprintf("quality score %d outside 1..5", *event.QualityScore))
		}
		task.Status = production.TaskCompleted
		if event.Hours > 0 {
			task.ActualHours = event.Hours
		}
		if event.QualityScore != nil {
			task.QualityScore = event.QualityScore
		}

	case EventBlock:
		if task.Status != production.TaskPending && task.Status != production.TaskInProgress {
			return invalid(fmt.Sprintf("task is %s, only open tasks block", task.Status))
		}
		task.Status = production.TaskBlocked

	case EventUnblock:
		if task.Status != production.TaskBlocked {
			return invalid(fmt.Sprintf("task is %s, not blocked", task.Status))
		}
		task.Status = production.TaskInProgress

	case EventReviewDone:
		if !task.ReviewRequired {
			return invalid("task has no review track")
		}
		if task.Status != production.TaskCompleted {
			return invalid("review sign-off needs the main work completed first")
		}
		task.ReviewDone = true
		if event.Hours > 0 {
			task.ActualReviewHours = event.Hours
		}

	case EventMonitoringDone:
		if !task.MonitoringRequired {
			return invalid("task has no monitoring track")
		}
		if task.Status != production.TaskCompleted {
			return invalid("monitoring sign-off needs the main work completed first")
		}
		task.MonitoringDone = true
		if event.Hours > 0 {
			task.ActualMonitoringHours = event.Hours
		}

	case EventRework:
		if task.Status != production.TaskCompleted {
			return invalid(fmt.Sprintf("task is %s, only completed tasks go back for rework", task.Status))
		}
		task.Status = production.TaskInProgress
		task.ReviewDone = false
		task.MonitoringDone = false
		task.ReworkCount++

	case EventCheckItem:
		if task.ChecklistProgress == nil {
			return invalid("task has no checklist")
		}
		if _, ok := task.ChecklistProgress[event.ChecklistItem]; !ok {
			return invalid(fmt.Sprintf("unknown checklist item %q", event.ChecklistItem))
		}
		task.ChecklistProgress[event.ChecklistItem] = true

	default:
		return invalid(fmt.Sprintf("unknown event kind %q", event.Kind))
	}
	return nil
}

// RecomputeProject recalculates a project's weighted progress from its
// tasks and persists the result. Paused and terminal projects are left
// untouched.
func (m *Manager) RecomputeProject(ctx context.Context, projectID int64) error {
	project, err := m.loadProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project.Status != production.ProjectActive {
		return nil
	}

	tasks, err := m.store.ListTasksByProject(ctx, projectID)
	if err != nil {
		return err
	}
	progress := m.ComputeProgress(tasks)
	if err := lifecycle.SetProgress(project, progress, timeNow()); err != nil {
		return err
	}
	if err := m.store.UpdateProject(ctx, project); err != nil {
		return err
	}

	if project.Status == production.ProjectCompleted {
		m.logger.Info("project completed",
			logging.Int64("project_id", project.ID))
	}
	return nil
}

// ComputeProgress exposes the weighted progress calculation with the
// manager's configured stage weights.
func (m *Manager) ComputeProgress(tasks []production.Task) float64 {
	return lifecycle.WeightedProgress(tasks, m.weights)
}

var timeNow = time.Now
