package production

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const assetColumns = "id, asset_key, title, content_type, track_name, status, created_at, updated_at, deleted_at"

// CreateAsset inserts a new content asset in planned status.
func (s *Store) CreateAsset(ctx context.Context, title string, contentType ContentType, trackName string) (*ContentAsset, error) {
	if _, ok := ParseContentType(string(contentType)); !ok {
		return nil, fmt.Errorf("unknown content type %q", contentType)
	}
	now := timestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO content_assets (asset_key, title, content_type, track_name, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(),
		title,
		contentType,
		nullableString(trackName),
		AssetStatusPlanned,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert asset: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetAssetByID(ctx, id)
}

// GetAssetByID fetches a content asset by identifier. Missing rows return
// (nil, nil).
func (s *Store) GetAssetByID(ctx context.Context, id int64) (*ContentAsset, error) {
	return s.getAsset(ctx, s.db, `WHERE id = ?`, id)
}

// GetAssetByKey fetches a content asset by its external key.
func (s *Store) GetAssetByKey(ctx context.Context, key string) (*ContentAsset, error) {
	return s.getAsset(ctx, s.db, `WHERE asset_key = ?`, key)
}

func (s *Store) getAsset(ctx context.Context, q dbtx, where string, args ...any) (*ContentAsset, error) {
	row := q.QueryRowContext(ensureContext(ctx), `SELECT `+assetColumns+` FROM content_assets `+where, args...)
	asset, err := scanAsset(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get asset: %w", err)
	}
	return asset, nil
}

// ListAssets returns non-deleted assets ordered by creation time.
func (s *Store) ListAssets(ctx context.Context) ([]*ContentAsset, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+assetColumns+` FROM content_assets WHERE deleted_at IS NULL ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []*ContentAsset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, rows.Err()
}

// UpdateAssetStatus persists a new production status for an asset.
func (s *Store) UpdateAssetStatus(ctx context.Context, id int64, status AssetStatus) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_assets SET status = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		status,
		timestamp(time.Now()),
		id,
	)
	if err != nil {
		return fmt.Errorf("update asset status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("asset %d not found", id)
	}
	return nil
}

// SoftDeleteAsset marks an asset deleted without removing the row.
func (s *Store) SoftDeleteAsset(ctx context.Context, id int64) error {
	now := timestamp(time.Now())
	_, err := s.execWithRetry(
		ctx,
		`UPDATE content_assets SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("soft delete asset: %w", err)
	}
	return nil
}

// CountAssets returns the number of non-deleted assets in a status.
func (s *Store) CountAssets(ctx context.Context, status AssetStatus) (int, error) {
	var count int
	err := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT COUNT(1) FROM content_assets WHERE status = ? AND deleted_at IS NULL`,
		status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}

func scanAsset(scanner interface{ Scan(dest ...any) error }) (*ContentAsset, error) {
	var (
		id         int64
		key        string
		title      string
		cType      string
		trackName  sql.NullString
		status     string
		createdRaw sql.NullString
		updatedRaw sql.NullString
		deletedRaw sql.NullString
	)
	if err := scanner.Scan(&id, &key, &title, &cType, &trackName, &status, &createdRaw, &updatedRaw, &deletedRaw); err != nil {
		return nil, err
	}

	asset := &ContentAsset{
		ID:          id,
		Key:         key,
		Title:       title,
		ContentType: ContentType(cType),
		TrackName:   trackName.String,
		Status:      AssetStatus(status),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		asset.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		asset.UpdatedAt = updated
	}
	if deletedRaw.Valid {
		asset.DeletedAt = parseTimePtr(deletedRaw.String)
	}
	return asset, nil
}
