package production

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"reeltrack/internal/services"
)

const archiveColumns = "id, archive_key, project_id, asset_title, content_type, track_name, speed_tier, started_at, completed_at, total_days, total_hours, participants, stage_hours, efficiency, average_quality, created_at"

// CommitArchive durably writes an archive record and marks its source
// project archived in the same transaction. The archive insert
// happens-before the status flip; if either fails, neither persists.
// Re-running for an already archived project returns ErrConflict, and a
// project no longer in completed status returns ErrPrecondition.
func (s *Store) CommitArchive(ctx context.Context, archive *Archive) error {
	if archive == nil {
		return errors.New("archive is nil")
	}
	if archive.Key == "" {
		archive.Key = uuid.NewString()
	}
	now := time.Now().UTC()
	archive.CreatedAt = now

	participants, err := marshalJSON(archive.Participants)
	if err != nil {
		return err
	}
	if participants == nil {
		participants = "[]"
	}
	stageHours, err := marshalStageHours(archive.StageHours)
	if err != nil {
		return err
	}

	return s.withImmediateTx(ctx, func(tx dbtx) error {
		res, err := tx.ExecContext(
			ensureContext(ctx),
			`INSERT INTO archives (
                archive_key, project_id, asset_title, content_type, track_name, speed_tier,
                started_at, completed_at, total_days, total_hours,
                participants, stage_hours, efficiency, average_quality, created_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			archive.Key,
			archive.ProjectID,
			archive.AssetTitle,
			archive.ContentType,
			nullableString(archive.TrackName),
			archive.Tier,
			timestamp(archive.StartedAt),
			timestamp(archive.CompletedAt),
			archive.TotalDays,
			archive.TotalHours,
			participants,
			stageHours,
			nullableFloat64(archive.Efficiency),
			nullableFloat64(archive.AverageQuality),
			timestamp(archive.CreatedAt),
		)
		if err != nil {
			if isUniqueViolation(err, "archives.project_id") {
				return services.Wrap(services.ErrConflict, "store", "commit archive",
					fmt.Sprintf("project %d is already archived", archive.ProjectID), nil)
			}
			return fmt.Errorf("insert archive: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		archive.ID = id

		flip, err := tx.ExecContext(
			ensureContext(ctx),
			`UPDATE projects SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
			ProjectArchived,
			timestamp(now),
			archive.ProjectID,
			ProjectCompleted,
		)
		if err != nil {
			return fmt.Errorf("mark project archived: %w", err)
		}
		affected, err := flip.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return services.Wrap(services.ErrPrecondition, "store", "commit archive",
				fmt.Sprintf("project %d is not in completed status", archive.ProjectID), nil)
		}
		return nil
	})
}

// GetArchiveByProjectID fetches the archive for a project, if one exists.
func (s *Store) GetArchiveByProjectID(ctx context.Context, projectID int64) (*Archive, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+archiveColumns+` FROM archives WHERE project_id = ?`,
		projectID,
	)
	archive, err := scanArchive(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get archive: %w", err)
	}
	return archive, nil
}

// ListArchives returns all archives ordered by completion time. Analytics
// reads run through here; they only ever see committed rows.
func (s *Store) ListArchives(ctx context.Context) ([]Archive, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+archiveColumns+` FROM archives ORDER BY completed_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()

	var archives []Archive
	for rows.Next() {
		archive, err := scanArchive(rows)
		if err != nil {
			return nil, err
		}
		archives = append(archives, *archive)
	}
	return archives, rows.Err()
}

// marshalStageHours stores the per-stage hour map with string keys so the
// column round-trips through standard JSON.
func marshalStageHours(hours map[int]float64) (string, error) {
	encoded := make(map[string]float64, len(hours))
	for stage, h := range hours {
		encoded[strconv.Itoa(stage)] = h
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return "", fmt.Errorf("marshal stage hours: %w", err)
	}
	return string(data), nil
}

func unmarshalStageHours(raw string) map[int]float64 {
	out := make(map[int]float64)
	if raw == "" {
		return out
	}
	var encoded map[string]float64
	if err := json.Unmarshal([]byte(raw), &encoded); err != nil {
		return out
	}
	for key, h := range encoded {
		stage, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		out[stage] = h
	}
	return out
}

func scanArchive(scanner interface{ Scan(dest ...any) error }) (*Archive, error) {
	var (
		id           int64
		key          string
		projectID    int64
		assetTitle   string
		contentType  string
		trackName    sql.NullString
		tier         string
		startedRaw   sql.NullString
		completedRaw sql.NullString
		totalDays    int
		totalHours   float64
		participants sql.NullString
		stageHours   sql.NullString
		efficiency   sql.NullFloat64
		avgQuality   sql.NullFloat64
		createdRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id, &key, &projectID, &assetTitle, &contentType, &trackName, &tier,
		&startedRaw, &completedRaw, &totalDays, &totalHours,
		&participants, &stageHours, &efficiency, &avgQuality, &createdRaw,
	); err != nil {
		return nil, err
	}

	archive := &Archive{
		ID:          id,
		Key:         key,
		ProjectID:   projectID,
		AssetTitle:  assetTitle,
		ContentType: ContentType(contentType),
		TrackName:   trackName.String,
		Tier:        SpeedTier(tier),
		TotalDays:   totalDays,
		TotalHours:  totalHours,
		StageHours:  unmarshalStageHours(stageHours.String),
	}
	if participants.Valid && participants.String != "" {
		_ = json.Unmarshal([]byte(participants.String), &archive.Participants)
	}
	if efficiency.Valid {
		v := efficiency.Float64
		archive.Efficiency = &v
	}
	if avgQuality.Valid {
		v := avgQuality.Float64
		archive.AverageQuality = &v
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		archive.StartedAt = started
	}
	if completed, err := parseTimeString(completedRaw.String); err == nil {
		archive.CompletedAt = completed
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		archive.CreatedAt = created
	}
	return archive, nil
}
