package workflow

import (
	"context"
	"fmt"

	"reeltrack/internal/archive"
	"reeltrack/internal/lifecycle"
	"reeltrack/internal/logging"
	"reeltrack/internal/production"
	"reeltrack/internal/services"
)

// ArchiveProject builds the immutable record for a completed project and
// commits it. The store flips the project to archived in the same
// transaction as the archive insert, so a crash can never leave an
// archived project without its record.
func (m *Manager) ArchiveProject(ctx context.Context, projectID int64) (*production.Archive, error) {
	project, err := m.loadProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanArchive(project); err != nil {
		return nil, err
	}

	asset, err := m.store.GetAssetByID(ctx, project.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, services.Wrap(services.ErrNotFound, "workflow", "archive",
			fmt.Sprintf("asset %d for project %d", project.AssetID, projectID), nil)
	}

	credits, err := m.store.ListCreditsByAsset(ctx, project.AssetID)
	if err != nil {
		return nil, err
	}
	tasks, err := m.store.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	record, err := archive.Build(project, asset, credits, tasks)
	if err != nil {
		return nil, err
	}
	if err := m.store.CommitArchive(ctx, record); err != nil {
		return nil, err
	}

	m.logger.Info("project archived",
		logging.Int64("project_id", projectID),
		logging.String("archive_key", record.Key),
		logging.Float64("total_hours", record.TotalHours))
	return record, nil
}
