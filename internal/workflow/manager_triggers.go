package workflow

import (
	"context"
	"errors"
	"time"

	"reeltrack/internal/assign"
	"reeltrack/internal/eligibility"
	"reeltrack/internal/logging"
	"reeltrack/internal/production"
	"reeltrack/internal/services"
	"reeltrack/internal/taskgen"
)

// OnAssetStatusChanged runs the auto-creation check after an asset status
// edit. Returns the created project, or nil when nothing happened.
func (m *Manager) OnAssetStatusChanged(ctx context.Context, assetID int64) (*production.Project, error) {
	return m.maybeCreateProject(ctx, assetID, "status change")
}

// OnCreditChanged runs the auto-creation check after a credit was added or
// removed, and re-routes unfilled assignments on an existing project.
func (m *Manager) OnCreditChanged(ctx context.Context, assetID int64) (*production.Project, error) {
	project, err := m.maybeCreateProject(ctx, assetID, "credit change")
	if err != nil {
		return nil, err
	}
	if project != nil {
		return project, nil
	}

	existing, err := m.store.GetProjectByAssetID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Status.IsTerminal() {
		return nil, nil
	}
	if err := m.reassignGaps(ctx, existing.ID, assetID); err != nil {
		return nil, err
	}
	return nil, nil
}

// maybeCreateProject evaluates eligibility and, when met, creates the
// project with its generated task list. The whole decision runs inside the
// store's creation transaction, so two concurrent triggers cannot both
// create; the losing trigger sees either a snapshot with the project or a
// conflict, and both outcomes are treated as a clean skip.
func (m *Manager) maybeCreateProject(ctx context.Context, assetID int64, trigger string) (*production.Project, error) {
	var skipReason string
	project, tasks, err := m.store.CreateProjectWithTasks(ctx, assetID, func(snap production.CreationSnapshot) (*production.Project, []production.Task, error) {
		decision := eligibility.Evaluate(snap, m.cfg.Workflow.MinCredits)
		if !decision.Eligible {
			skipReason = decision.Reason
			return nil, nil, nil
		}

		generated, err := taskgen.Generate(snap.Templates, m.tier)
		if err != nil {
			return nil, nil, err
		}
		assign.Assign(generated, snap.Credits)

		now := time.Now().UTC()
		p := &production.Project{
			AssetID:             snap.Asset.ID,
			Stage:               production.StagePrep,
			Status:              production.ProjectActive,
			Tier:                m.tier,
			StartedAt:           now,
			EstimatedCompletion: taskgen.EstimateCompletion(now, generated),
			AutoCreated:         true,
			TriggerReason:       trigger + ": " + decision.Reason,
		}
		return p, generated, nil
	})
	if errors.Is(err, services.ErrConflict) {
		m.logger.Debug("project creation lost race", logging.Int64("asset_id", assetID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if project == nil {
		m.logger.Debug("project not created",
			logging.Int64("asset_id", assetID),
			logging.String("reason", skipReason))
		return nil, nil
	}

	m.logger.Info("project auto-created",
		logging.Int64("asset_id", assetID),
		logging.Int64("project_id", project.ID),
		logging.String("trigger", trigger),
		logging.Int("tasks", len(tasks)))
	return project, nil
}

// reassignGaps re-runs assignment over a project's tasks and persists only
// the tasks whose slots were filled.
func (m *Manager) reassignGaps(ctx context.Context, projectID, assetID int64) error {
	tasks, err := m.store.ListTasksByProject(ctx, projectID)
	if err != nil {
		return err
	}
	credits, err := m.store.ListCreditsByAsset(ctx, assetID)
	if err != nil {
		return err
	}

	before := make([]production.Task, len(tasks))
	copy(before, tasks)
	assign.Assign(tasks, credits)

	for i := range tasks {
		if sameAssignments(before[i], tasks[i]) {
			continue
		}
		if err := m.store.UpdateTask(ctx, &tasks[i]); err != nil {
			return err
		}
		m.logger.Info("task assignments filled",
			logging.Int64("project_id", projectID),
			logging.Int64("task_id", tasks[i].ID))
	}
	return nil
}

func sameAssignments(a, b production.Task) bool {
	return sameRef(a.AssignedCreditID, b.AssignedCreditID) &&
		sameRef(a.ReviewerCreditID, b.ReviewerCreditID) &&
		sameRef(a.MonitorCreditID, b.MonitorCreditID)
}

func sameRef(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
