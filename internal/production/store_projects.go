package production

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"reeltrack/internal/services"
)

const projectColumns = "id, project_key, asset_id, stage, status, progress, speed_tier, started_at, estimated_completion, completed_at, auto_created, trigger_reason, priority, pinned, created_at, updated_at"

// CreationSnapshot is the latest persisted state handed to a project
// builder inside the creation transaction. Eligibility decisions made
// against it cannot race with concurrent credit or status edits.
type CreationSnapshot struct {
	Asset      *ContentAsset
	Credits    []Credit
	Templates  []Template
	HasProject bool
}

// ProjectBuilder decides, given the transactional snapshot, whether a
// project should be created and what it and its tasks look like. Returning
// a nil project (and nil error) skips creation without failing.
type ProjectBuilder func(snap CreationSnapshot) (*Project, []Task, error)

// CreateProjectWithTasks atomically evaluates and performs project creation
// for an asset: the snapshot read, the eligibility decision inside build,
// and the project plus task inserts all happen in one immediate
// transaction. A concurrent duplicate insert surfaces as ErrConflict via
// the unique index on projects.asset_id.
func (s *Store) CreateProjectWithTasks(ctx context.Context, assetID int64, build ProjectBuilder) (*Project, []Task, error) {
	var (
		created *Project
		tasks   []Task
	)
	err := s.withImmediateTx(ctx, func(tx dbtx) error {
		asset, err := s.getAsset(ctx, tx, `WHERE id = ? AND deleted_at IS NULL`, assetID)
		if err != nil {
			return err
		}
		if asset == nil {
			return services.Wrap(services.ErrNotFound, "store", "create project", fmt.Sprintf("asset %d", assetID), nil)
		}

		credits, err := listCredits(ensureContext(ctx), tx, assetID)
		if err != nil {
			return err
		}
		templates, err := listTemplates(ensureContext(ctx), tx, asset.ContentType, true)
		if err != nil {
			return err
		}

		var existing int
		if err := tx.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM projects WHERE asset_id = ?`, assetID).Scan(&existing); err != nil {
			return fmt.Errorf("count projects for asset: %w", err)
		}

		project, builtTasks, err := build(CreationSnapshot{
			Asset:      asset,
			Credits:    credits,
			Templates:  templates,
			HasProject: existing > 0,
		})
		if err != nil {
			return err
		}
		if project == nil {
			return nil
		}

		if err := insertProject(ensureContext(ctx), tx, project); err != nil {
			return err
		}
		for i := range builtTasks {
			builtTasks[i].ProjectID = project.ID
			if err := insertTask(ensureContext(ctx), tx, &builtTasks[i]); err != nil {
				return err
			}
		}

		created = project
		tasks = builtTasks
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, tasks, nil
}

func insertProject(ctx context.Context, q dbtx, p *Project) error {
	if p.Key == "" {
		p.Key = uuid.NewString()
	}
	now := time.Now()
	if p.StartedAt.IsZero() {
		p.StartedAt = now.UTC()
	}
	p.CreatedAt = now.UTC()
	p.UpdatedAt = now.UTC()

	res, err := q.ExecContext(
		ctx,
		`INSERT INTO projects (
            project_key, asset_id, stage, status, progress, speed_tier,
            started_at, estimated_completion, completed_at,
            auto_created, trigger_reason, priority, pinned, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Key,
		p.AssetID,
		p.Stage,
		p.Status,
		p.Progress,
		p.Tier,
		timestamp(p.StartedAt),
		nullableTime(p.EstimatedCompletion),
		nullableTime(p.CompletedAt),
		boolToInt(p.AutoCreated),
		nullableString(p.TriggerReason),
		p.Priority,
		boolToInt(p.Pinned),
		timestamp(p.CreatedAt),
		timestamp(p.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err, "projects.asset_id") {
			return services.Wrap(services.ErrConflict, "store", "create project",
				fmt.Sprintf("asset %d already has a project", p.AssetID), nil)
		}
		return fmt.Errorf("insert project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	p.ID = id
	return nil
}

// GetProjectByID fetches a project by identifier. Missing rows return
// (nil, nil).
func (s *Store) GetProjectByID(ctx context.Context, id int64) (*Project, error) {
	return s.getProject(ctx, s.db, `WHERE id = ?`, id)
}

// GetProjectByAssetID fetches the project tracking an asset, if any.
func (s *Store) GetProjectByAssetID(ctx context.Context, assetID int64) (*Project, error) {
	return s.getProject(ctx, s.db, `WHERE asset_id = ?`, assetID)
}

func (s *Store) getProject(ctx context.Context, q dbtx, where string, args ...any) (*Project, error) {
	row := q.QueryRowContext(ensureContext(ctx), `SELECT `+projectColumns+` FROM projects `+where, args...)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// ListProjects returns projects filtered by status set (or all projects
// when no status is provided), ordered by creation time.
func (s *Store) ListProjects(ctx context.Context, statuses ...ProjectStatus) ([]*Project, error) {
	baseQuery := `SELECT ` + projectColumns + ` FROM projects`
	orderClause := ` ORDER BY created_at, id`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ensureContext(ctx), baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// UpdateProject persists changes to an existing project.
func (s *Store) UpdateProject(ctx context.Context, p *Project) error {
	if p == nil {
		return errors.New("project is nil")
	}
	p.UpdatedAt = time.Now().UTC()
	_, err := s.execWithRetry(
		ctx,
		`UPDATE projects
         SET stage = ?, status = ?, progress = ?, speed_tier = ?,
             started_at = ?, estimated_completion = ?, completed_at = ?,
             priority = ?, pinned = ?, updated_at = ?
         WHERE id = ?`,
		p.Stage,
		p.Status,
		p.Progress,
		p.Tier,
		timestamp(p.StartedAt),
		nullableTime(p.EstimatedCompletion),
		nullableTime(p.CompletedAt),
		p.Priority,
		boolToInt(p.Pinned),
		timestamp(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// CountProjects returns the number of projects in a status.
func (s *Store) CountProjects(ctx context.Context, status ProjectStatus) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT COUNT(1) FROM projects WHERE status = ?`,
		status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return count, nil
}

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, error) {
	var (
		id           int64
		key          string
		assetID      int64
		stage        int
		status       string
		progress     float64
		tier         string
		startedRaw   sql.NullString
		estimatedRaw sql.NullString
		completedRaw sql.NullString
		autoCreated  int
		reason       sql.NullString
		priority     int
		pinned       int
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id, &key, &assetID, &stage, &status, &progress, &tier,
		&startedRaw, &estimatedRaw, &completedRaw,
		&autoCreated, &reason, &priority, &pinned,
		&createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}

	project := &Project{
		ID:            id,
		Key:           key,
		AssetID:       assetID,
		Stage:         stage,
		Status:        ProjectStatus(status),
		Progress:      progress,
		Tier:          SpeedTier(tier),
		AutoCreated:   autoCreated != 0,
		TriggerReason: reason.String,
		Priority:      priority,
		Pinned:        pinned != 0,
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		project.StartedAt = started
	}
	if estimatedRaw.Valid {
		project.EstimatedCompletion = parseTimePtr(estimatedRaw.String)
	}
	if completedRaw.Valid {
		project.CompletedAt = parseTimePtr(completedRaw.String)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		project.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		project.UpdatedAt = updated
	}
	return project, nil
}
