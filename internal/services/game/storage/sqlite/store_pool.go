package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/storage"
)

// PutPool stores the pool document, guarded by optimistic revision checks.
// A pool loaded at revision N writes back as revision N+1; a write against a
// stale revision returns storage.ErrRevisionConflict. New pools carry
// revision zero.
func (s *Store) PutPool(ctx context.Context, pool entity.Pool) (entity.Pool, error) {
	if err := ctx.Err(); err != nil {
		return entity.Pool{}, err
	}
	if s == nil || s.sqlDB == nil {
		return entity.Pool{}, fmt.Errorf("storage is not configured")
	}
	sessionID := strings.TrimSpace(pool.SessionID)
	if sessionID == "" {
		return entity.Pool{}, fmt.Errorf("session id is required")
	}

	loadedRevision := pool.Revision
	pool.Revision = loadedRevision + 1
	document, err := json.Marshal(pool)
	if err != nil {
		return entity.Pool{}, fmt.Errorf("encode pool: %w", err)
	}

	if loadedRevision == 0 {
		_, err := s.sqlDB.ExecContext(
			ctx,
			`INSERT INTO entity_pools (session_id, campaign_id, revision, document, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			sessionID,
			pool.CampaignID,
			pool.Revision,
			string(document),
			toMillis(pool.CreatedAt),
			toMillis(pool.LastUpdated),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return entity.Pool{}, storage.ErrRevisionConflict
			}
			return entity.Pool{}, fmt.Errorf("create pool: %w", err)
		}
		return pool, nil
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE entity_pools
		    SET campaign_id = ?, revision = ?, document = ?, updated_at = ?
		  WHERE session_id = ? AND revision = ?`,
		pool.CampaignID,
		pool.Revision,
		string(document),
		toMillis(pool.LastUpdated),
		sessionID,
		loadedRevision,
	)
	if err != nil {
		return entity.Pool{}, fmt.Errorf("update pool: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return entity.Pool{}, fmt.Errorf("update pool: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetPool(ctx, sessionID); errors.Is(err, storage.ErrNotFound) {
			return entity.Pool{}, storage.ErrNotFound
		}
		return entity.Pool{}, storage.ErrRevisionConflict
	}
	return pool, nil
}

// GetPool returns one pool by session ID.
func (s *Store) GetPool(ctx context.Context, sessionID string) (entity.Pool, error) {
	if err := ctx.Err(); err != nil {
		return entity.Pool{}, err
	}
	if s == nil || s.sqlDB == nil {
		return entity.Pool{}, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return entity.Pool{}, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT document FROM entity_pools WHERE session_id = ?`,
		sessionID,
	)
	var document string
	if err := row.Scan(&document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Pool{}, storage.ErrNotFound
		}
		return entity.Pool{}, fmt.Errorf("get pool: %w", err)
	}
	var pool entity.Pool
	if err := json.Unmarshal([]byte(document), &pool); err != nil {
		return entity.Pool{}, fmt.Errorf("decode pool: %w", err)
	}
	return pool, nil
}

// ListPoolsByCampaign returns every pool attached to a campaign.
func (s *Store) ListPoolsByCampaign(ctx context.Context, campaignID string) ([]entity.Pool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	campaignID = strings.TrimSpace(campaignID)
	if campaignID == "" {
		return nil, fmt.Errorf("campaign id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT document FROM entity_pools WHERE campaign_id = ? ORDER BY session_id ASC`,
		campaignID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	var pools []entity.Pool
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("list pools: %w", err)
		}
		var pool entity.Pool
		if err := json.Unmarshal([]byte(document), &pool); err != nil {
			return nil, fmt.Errorf("decode pool: %w", err)
		}
		pools = append(pools, pool)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	return pools, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
