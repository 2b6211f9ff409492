package production

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const taskColumns = "id, project_id, stage, task_name, task_order, status, assigned_credit_id, reviewer_credit_id, monitor_credit_id, planned_hours, actual_hours, review_required, planned_review_hours, actual_review_hours, review_done, monitoring_required, planned_monitoring_hours, actual_monitoring_hours, monitoring_done, quality_score, rework_count, checklist_progress, created_at, updated_at"

func insertTask(ctx context.Context, q dbtx, t *Task) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	checklist, err := marshalJSON(t.ChecklistProgress)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(
		ctx,
		`INSERT INTO tasks (
            project_id, stage, task_name, task_order, status,
            assigned_credit_id, reviewer_credit_id, monitor_credit_id,
            planned_hours, actual_hours,
            review_required, planned_review_hours, actual_review_hours, review_done,
            monitoring_required, planned_monitoring_hours, actual_monitoring_hours, monitoring_done,
            quality_score, rework_count, checklist_progress, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ProjectID,
		t.Stage,
		t.TaskName,
		t.TaskOrder,
		t.Status,
		nullableInt64(t.AssignedCreditID),
		nullableInt64(t.ReviewerCreditID),
		nullableInt64(t.MonitorCreditID),
		t.PlannedHours,
		t.ActualHours,
		boolToInt(t.ReviewRequired),
		t.PlannedReviewHours,
		t.ActualReviewHours,
		boolToInt(t.ReviewDone),
		boolToInt(t.MonitoringRequired),
		t.PlannedMonitoringHours,
		t.ActualMonitoringHours,
		boolToInt(t.MonitoringDone),
		nullableInt(t.QualityScore),
		t.ReworkCount,
		checklist,
		timestamp(t.CreatedAt),
		timestamp(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	t.ID = id
	return nil
}

// GetTaskByID fetches one task. Missing rows return (nil, nil).
func (s *Store) GetTaskByID(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// ListTasksByProject returns a project's tasks ordered by (stage, order).
func (s *Store) ListTasksByProject(ctx context.Context, projectID int64) ([]Task, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = ? ORDER BY stage, task_order, id`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTask persists changes to an existing task.
func (s *Store) UpdateTask(ctx context.Context, t *Task) error {
	if t == nil {
		return errors.New("task is nil")
	}
	t.UpdatedAt = time.Now().UTC()
	checklist, err := marshalJSON(t.ChecklistProgress)
	if err != nil {
		return err
	}
	_, err = s.execWithRetry(
		ctx,
		`UPDATE tasks
         SET status = ?, assigned_credit_id = ?, reviewer_credit_id = ?, monitor_credit_id = ?,
             planned_hours = ?, actual_hours = ?,
             review_required = ?, planned_review_hours = ?, actual_review_hours = ?, review_done = ?,
             monitoring_required = ?, planned_monitoring_hours = ?, actual_monitoring_hours = ?, monitoring_done = ?,
             quality_score = ?, rework_count = ?, checklist_progress = ?, updated_at = ?
         WHERE id = ?`,
		t.Status,
		nullableInt64(t.AssignedCreditID),
		nullableInt64(t.ReviewerCreditID),
		nullableInt64(t.MonitorCreditID),
		t.PlannedHours,
		t.ActualHours,
		boolToInt(t.ReviewRequired),
		t.PlannedReviewHours,
		t.ActualReviewHours,
		boolToInt(t.ReviewDone),
		boolToInt(t.MonitoringRequired),
		t.PlannedMonitoringHours,
		t.ActualMonitoringHours,
		boolToInt(t.MonitoringDone),
		nullableInt(t.QualityScore),
		t.ReworkCount,
		checklist,
		timestamp(t.UpdatedAt),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		id            int64
		projectID     int64
		stage         int
		taskName      string
		taskOrder     int
		status        string
		assignedID    sql.NullInt64
		reviewerID    sql.NullInt64
		monitorID     sql.NullInt64
		plannedHours  float64
		actualHours   float64
		reviewReq     int
		plannedReview float64
		actualReview  float64
		reviewDone    int
		monReq        int
		plannedMon    float64
		actualMon     float64
		monDone       int
		quality       sql.NullInt64
		reworkCount   int
		checklist     sql.NullString
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)
	if err := scanner.Scan(
		&id, &projectID, &stage, &taskName, &taskOrder, &status,
		&assignedID, &reviewerID, &monitorID,
		&plannedHours, &actualHours,
		&reviewReq, &plannedReview, &actualReview, &reviewDone,
		&monReq, &plannedMon, &actualMon, &monDone,
		&quality, &reworkCount, &checklist,
		&createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}

	task := &Task{
		ID:                     id,
		ProjectID:              projectID,
		Stage:                  stage,
		TaskName:               taskName,
		TaskOrder:              taskOrder,
		Status:                 TaskStatus(status),
		PlannedHours:           plannedHours,
		ActualHours:            actualHours,
		ReviewRequired:         reviewReq != 0,
		PlannedReviewHours:     plannedReview,
		ActualReviewHours:      actualReview,
		ReviewDone:             reviewDone != 0,
		MonitoringRequired:     monReq != 0,
		PlannedMonitoringHours: plannedMon,
		ActualMonitoringHours:  actualMon,
		MonitoringDone:         monDone != 0,
		ReworkCount:            reworkCount,
		ChecklistProgress:      unmarshalBoolMap(checklist.String),
	}
	if assignedID.Valid {
		v := assignedID.Int64
		task.AssignedCreditID = &v
	}
	if reviewerID.Valid {
		v := reviewerID.Int64
		task.ReviewerCreditID = &v
	}
	if monitorID.Valid {
		v := monitorID.Int64
		task.MonitorCreditID = &v
	}
	if quality.Valid {
		v := int(quality.Int64)
		task.QualityScore = &v
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		task.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		task.UpdatedAt = updated
	}
	return task, nil
}
