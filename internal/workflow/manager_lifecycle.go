package workflow

import (
	"context"

	"reeltrack/internal/lifecycle"
	"reeltrack/internal/logging"
	"reeltrack/internal/production"
)

// mutateProject loads a project, applies a state-machine operation, and
// persists the result when the operation succeeds.
func (m *Manager) mutateProject(ctx context.Context, projectID int64, operation string, apply func(*production.Project) error) (*production.Project, error) {
	project, err := m.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := apply(project); err != nil {
		return nil, err
	}
	if err := m.store.UpdateProject(ctx, project); err != nil {
		return nil, err
	}
	m.logger.Info("project updated",
		logging.Int64("project_id", project.ID),
		logging.String("operation", operation),
		logging.String("status", string(project.Status)),
		logging.Int("stage", project.Stage),
		logging.Float64("progress", project.Progress))
	return project, nil
}

// AdvanceStage moves a project to a pipeline stage manually.
func (m *Manager) AdvanceStage(ctx context.Context, projectID int64, target int) (*production.Project, error) {
	return m.mutateProject(ctx, projectID, "advance stage", func(p *production.Project) error {
		return lifecycle.AdvanceStage(p, target, timeNow())
	})
}

// SetProgress overrides a project's progress percentage manually.
func (m *Manager) SetProgress(ctx context.Context, projectID int64, progress float64) (*production.Project, error) {
	return m.mutateProject(ctx, projectID, "set progress", func(p *production.Project) error {
		return lifecycle.SetProgress(p, progress, timeNow())
	})
}

// MarkCompleted finishes a project explicitly from stage four.
func (m *Manager) MarkCompleted(ctx context.Context, projectID int64) (*production.Project, error) {
	return m.mutateProject(ctx, projectID, "complete", func(p *production.Project) error {
		return lifecycle.MarkCompleted(p, timeNow())
	})
}

// Pause suspends an active project; its progress stops recomputing until
// resumed.
func (m *Manager) Pause(ctx context.Context, projectID int64) (*production.Project, error) {
	return m.mutateProject(ctx, projectID, "pause", func(p *production.Project) error {
		return lifecycle.Pause(p)
	})
}

// Resume reactivates a paused project and refreshes its progress.
func (m *Manager) Resume(ctx context.Context, projectID int64) (*production.Project, error) {
	project, err := m.mutateProject(ctx, projectID, "resume", func(p *production.Project) error {
		return lifecycle.Resume(p)
	})
	if err != nil {
		return nil, err
	}
	if err := m.RecomputeProject(ctx, project.ID); err != nil {
		return nil, err
	}
	return m.loadProject(ctx, project.ID)
}

// Cancel abandons a project.
func (m *Manager) Cancel(ctx context.Context, projectID int64) (*production.Project, error) {
	return m.mutateProject(ctx, projectID, "cancel", func(p *production.Project) error {
		return lifecycle.Cancel(p)
	})
}

// SetPriority changes the board sort priority of a project.
func (m *Manager) SetPriority(ctx context.Context, projectID int64, priority int) (*production.Project, error) {
	return m.mutateProject(ctx, projectID, "set priority", func(p *production.Project) error {
		p.Priority = priority
		return nil
	})
}

// SetPinned pins or unpins a project on the board.
func (m *Manager) SetPinned(ctx context.Context, projectID int64, pinned bool) (*production.Project, error) {
	return m.mutateProject(ctx, projectID, "set pinned", func(p *production.Project) error {
		p.Pinned = pinned
		return nil
	})
}
