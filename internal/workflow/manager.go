package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"reeltrack/internal/config"
	"reeltrack/internal/lifecycle"
	"reeltrack/internal/production"
	"reeltrack/internal/services"
)

// Manager coordinates the production pipeline: it reacts to asset and
// credit changes, applies task events, keeps project progress current, and
// drives manual lifecycle operations. All persistence goes through the
// production store.
type Manager struct {
	cfg     *config.Config
	store   *production.Store
	logger  *slog.Logger
	weights lifecycle.StageWeights
	tier    production.SpeedTier
}

// NewManager constructs a workflow manager from validated configuration.
func NewManager(cfg *config.Config, store *production.Store, logger *slog.Logger) (*Manager, error) {
	weights, err := lifecycle.WeightsFromSlice(cfg.Workflow.StageWeights)
	if err != nil {
		return nil, err
	}
	tier, ok := production.ParseSpeedTier(cfg.Workflow.DefaultTier)
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "workflow", "new manager",
			fmt.Sprintf("unknown default tier %q", cfg.Workflow.DefaultTier), nil)
	}
	return &Manager{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		weights: weights,
		tier:    tier,
	}, nil
}

func (m *Manager) loadProject(ctx context.Context, projectID int64) (*production.Project, error) {
	project, err := m.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, services.Wrap(services.ErrNotFound, "workflow", "load project",
			fmt.Sprintf("project %d", projectID), nil)
	}
	return project, nil
}
