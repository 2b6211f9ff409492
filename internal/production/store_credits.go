package production

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const creditColumns = "id, asset_id, person_kind, person_id, person_name, role_label, is_primary, seq, created_at, updated_at, deleted_at"

// AddCredit links a person to an asset with a role.
func (s *Store) AddCredit(ctx context.Context, assetID int64, person PersonRef, name, role string, primary bool, seq int) (*Credit, error) {
	if _, ok := ParsePersonKind(string(person.Kind)); !ok {
		return nil, fmt.Errorf("unknown person kind %q", person.Kind)
	}
	now := timestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO credits (asset_id, person_kind, person_id, person_name, role_label, is_primary, seq, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		assetID,
		person.Kind,
		person.ID,
		name,
		nullableString(role),
		boolToInt(primary),
		seq,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert credit: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCreditByID(ctx, id)
}

// GetCreditByID fetches one credit. Missing rows return (nil, nil).
func (s *Store) GetCreditByID(ctx context.Context, id int64) (*Credit, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+creditColumns+` FROM credits WHERE id = ?`, id)
	credit, err := scanCredit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credit: %w", err)
	}
	return credit, nil
}

// ListCreditsByAsset returns the active credits of an asset ordered by
// sequence then insertion order.
func (s *Store) ListCreditsByAsset(ctx context.Context, assetID int64) ([]Credit, error) {
	return listCredits(ensureContext(ctx), s.db, assetID)
}

func listCredits(ctx context.Context, q dbtx, assetID int64) ([]Credit, error) {
	rows, err := q.QueryContext(
		ctx,
		`SELECT `+creditColumns+` FROM credits WHERE asset_id = ? AND deleted_at IS NULL ORDER BY seq, id`,
		assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	defer rows.Close()

	var credits []Credit
	for rows.Next() {
		credit, err := scanCredit(rows)
		if err != nil {
			return nil, err
		}
		credits = append(credits, *credit)
	}
	return credits, rows.Err()
}

// SoftDeleteCredit marks a credit removed without losing the row.
func (s *Store) SoftDeleteCredit(ctx context.Context, id int64) error {
	now := timestamp(time.Now())
	_, err := s.execWithRetry(
		ctx,
		`UPDATE credits SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete credit: %w", err)
	}
	return nil
}

// CountActiveCredits returns the number of non-deleted credits for an asset.
func (s *Store) CountActiveCredits(ctx context.Context, assetID int64) (int, error) {
	return countActiveCredits(ensureContext(ctx), s.db, assetID)
}

func countActiveCredits(ctx context.Context, q dbtx, assetID int64) (int, error) {
	var count int
	err := q.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM credits WHERE asset_id = ? AND deleted_at IS NULL`,
		assetID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count credits: %w", err)
	}
	return count, nil
}

func scanCredit(scanner interface{ Scan(dest ...any) error }) (*Credit, error) {
	var (
		id         int64
		assetID    int64
		personKind string
		personID   int64
		personName string
		roleLabel  sql.NullString
		isPrimary  int
		seq        int
		createdRaw sql.NullString
		updatedRaw sql.NullString
		deletedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &assetID, &personKind, &personID, &personName, &roleLabel, &isPrimary, &seq, &createdRaw, &updatedRaw, &deletedRaw); err != nil {
		return nil, err
	}

	credit := &Credit{
		ID:         id,
		AssetID:    assetID,
		Person:     PersonRef{Kind: PersonKind(personKind), ID: personID},
		PersonName: personName,
		RoleLabel:  roleLabel.String,
		Primary:    isPrimary != 0,
		Seq:        seq,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		credit.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		credit.UpdatedAt = updated
	}
	if deletedRaw.Valid {
		credit.DeletedAt = parseTimePtr(deletedRaw.String)
	}
	return credit, nil
}
