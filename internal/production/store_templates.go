package production

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const templateColumns = "id, content_type, stage, task_order, task_name, hours_a, hours_b, hours_c, requires_review, review_hours_a, review_hours_b, review_hours_c, requires_monitoring, monitoring_hours_a, monitoring_hours_b, monitoring_hours_c, required, parallel, prerequisites, checklist, active, created_at, updated_at"

// InsertTemplate adds a single template row. Bulk loading goes through
// ApplyTemplateReplace instead.
func (s *Store) InsertTemplate(ctx context.Context, tpl *Template) (*Template, error) {
	now := time.Now()
	id, err := insertTemplate(ensureContext(ctx), s.db, tpl, now)
	if err != nil {
		return nil, err
	}
	return s.GetTemplateByID(ctx, id)
}

func insertTemplate(ctx context.Context, q dbtx, tpl *Template, now time.Time) (int64, error) {
	prereqs, err := marshalJSON(tpl.Prerequisites)
	if err != nil {
		return 0, err
	}
	checklist, err := marshalJSON(tpl.Checklist)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(
		ctx,
		`INSERT INTO templates (
            content_type, stage, task_order, task_name,
            hours_a, hours_b, hours_c,
            requires_review, review_hours_a, review_hours_b, review_hours_c,
            requires_monitoring, monitoring_hours_a, monitoring_hours_b, monitoring_hours_c,
            required, parallel, prerequisites, checklist, active, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tpl.ContentType,
		tpl.Stage,
		tpl.TaskOrder,
		tpl.TaskName,
		tpl.HoursA, tpl.HoursB, tpl.HoursC,
		boolToInt(tpl.RequiresReview), tpl.ReviewHoursA, tpl.ReviewHoursB, tpl.ReviewHoursC,
		boolToInt(tpl.RequiresMonitoring), tpl.MonitoringHoursA, tpl.MonitoringHoursB, tpl.MonitoringHoursC,
		boolToInt(tpl.Required),
		boolToInt(tpl.Parallel),
		prereqs,
		checklist,
		1,
		timestamp(now),
		timestamp(now),
	)
	if err != nil {
		return 0, fmt.Errorf("insert template: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// GetTemplateByID fetches one template. Missing rows return (nil, nil).
func (s *Store) GetTemplateByID(ctx context.Context, id int64) (*Template, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+templateColumns+` FROM templates WHERE id = ?`, id)
	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return tpl, nil
}

// ListTemplates returns the templates for a content type ordered by
// (stage, task order). When activeOnly is set, deactivated rows are skipped.
func (s *Store) ListTemplates(ctx context.Context, contentType ContentType, activeOnly bool) ([]Template, error) {
	return listTemplates(ensureContext(ctx), s.db, contentType, activeOnly)
}

func listTemplates(ctx context.Context, q dbtx, contentType ContentType, activeOnly bool) ([]Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE content_type = ?`
	if activeOnly {
		query += ` AND active = 1`
	}
	query += ` ORDER BY stage, task_order, id`

	rows, err := q.QueryContext(ctx, query, contentType)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, *tpl)
	}
	return templates, rows.Err()
}

// ApplyTemplateReplace applies a bulk replace plan in one transaction:
// matched keys update in place preserving ids, unmatched existing rows are
// deactivated, and new keys are inserted. Either everything commits or
// nothing does.
func (s *Store) ApplyTemplateReplace(ctx context.Context, plan TemplateReplacePlan) error {
	now := time.Now()
	return s.withImmediateTx(ctx, func(tx dbtx) error {
		for _, tpl := range plan.Updates {
			if err := updateTemplate(ctx, tx, &tpl, now); err != nil {
				return err
			}
		}
		for _, id := range plan.DeactivateIDs {
			if _, err := tx.ExecContext(
				ctx,
				`UPDATE templates SET active = 0, updated_at = ? WHERE id = ?`,
				timestamp(now),
				id,
			); err != nil {
				return fmt.Errorf("deactivate template %d: %w", id, err)
			}
		}
		for _, tpl := range plan.Inserts {
			if _, err := insertTemplate(ctx, tx, &tpl, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func updateTemplate(ctx context.Context, q dbtx, tpl *Template, now time.Time) error {
	prereqs, err := marshalJSON(tpl.Prerequisites)
	if err != nil {
		return err
	}
	checklist, err := marshalJSON(tpl.Checklist)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(
		ctx,
		`UPDATE templates SET
            task_name = ?,
            hours_a = ?, hours_b = ?, hours_c = ?,
            requires_review = ?, review_hours_a = ?, review_hours_b = ?, review_hours_c = ?,
            requires_monitoring = ?, monitoring_hours_a = ?, monitoring_hours_b = ?, monitoring_hours_c = ?,
            required = ?, parallel = ?, prerequisites = ?, checklist = ?,
            active = 1, updated_at = ?
        WHERE id = ?`,
		tpl.TaskName,
		tpl.HoursA, tpl.HoursB, tpl.HoursC,
		boolToInt(tpl.RequiresReview), tpl.ReviewHoursA, tpl.ReviewHoursB, tpl.ReviewHoursC,
		boolToInt(tpl.RequiresMonitoring), tpl.MonitoringHoursA, tpl.MonitoringHoursB, tpl.MonitoringHoursC,
		boolToInt(tpl.Required),
		boolToInt(tpl.Parallel),
		prereqs,
		checklist,
		timestamp(now),
		tpl.ID,
	)
	if err != nil {
		return fmt.Errorf("update template %d: %w", tpl.ID, err)
	}
	return nil
}

func scanTemplate(scanner interface{ Scan(dest ...any) error }) (*Template, error) {
	var (
		id            int64
		contentType   string
		stage         int
		taskOrder     int
		taskName      string
		hoursA        float64
		hoursB        float64
		hoursC        float64
		reqReview     int
		revA          float64
		revB          float64
		revC          float64
		reqMonitoring int
		monA          float64
		monB          float64
		monC          float64
		required      int
		parallel      int
		prereqs       sql.NullString
		checklist     sql.NullString
		active        int
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&id, &contentType, &stage, &taskOrder, &taskName,
		&hoursA, &hoursB, &hoursC,
		&reqReview, &revA, &revB, &revC,
		&reqMonitoring, &monA, &monB, &monC,
		&required, &parallel, &prereqs, &checklist, &active,
		&createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}

	tpl := &Template{
		ID:                 id,
		ContentType:        ContentType(contentType),
		Stage:              stage,
		TaskOrder:          taskOrder,
		TaskName:           taskName,
		HoursA:             hoursA,
		HoursB:             hoursB,
		HoursC:             hoursC,
		RequiresReview:     reqReview != 0,
		ReviewHoursA:       revA,
		ReviewHoursB:       revB,
		ReviewHoursC:       revC,
		RequiresMonitoring: reqMonitoring != 0,
		MonitoringHoursA:   monA,
		MonitoringHoursB:   monB,
		MonitoringHoursC:   monC,
		Required:           required != 0,
		Parallel:           parallel != 0,
		Prerequisites:      unmarshalStringSlice(prereqs.String),
		Checklist:          unmarshalStringSlice(checklist.String),
		Active:             active != 0,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		tpl.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		tpl.UpdatedAt = updated
	}
	return tpl, nil
}
