package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lanternworks/expedition/internal/services/game/domain/entity"
	"github.com/lanternworks/expedition/internal/services/game/domain/mapping"
	"github.com/lanternworks/expedition/internal/services/game/storage"
)

const mappingColumns = `id, session_id, location_id, entity_id, entity_kind, entity_category,
	        is_available, discovered_at, opens_at_minute, closes_at_minute, prerequisites,
	        created_at, updated_at`

// PutMappings inserts a batch of mappings inside one transaction. An existing
// mapping ID is overwritten in place.
func (s *Store) PutMappings(ctx context.Context, mappings []mapping.Mapping) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if len(mappings) == 0 {
		return nil
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put mappings: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range mappings {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("mapping id is required")
		}
		prerequisites, err := json.Marshal(m.Prerequisites)
		if err != nil {
			return fmt.Errorf("encode prerequisites: %w", err)
		}
		opensAt := sql.NullInt64{}
		closesAt := int64(0)
		if m.TimeWindow != nil {
			opensAt = sql.NullInt64{Int64: int64(m.TimeWindow.OpensAtMinute), Valid: true}
			closesAt = int64(m.TimeWindow.ClosesAtMinute)
		}
		_, err = tx.ExecContext(
			ctx,
			`INSERT INTO location_entities (`+mappingColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
			   session_id = excluded.session_id,
			   location_id = excluded.location_id,
			   entity_id = excluded.entity_id,
			   entity_kind = excluded.entity_kind,
			   entity_category = excluded.entity_category,
			   is_available = excluded.is_available,
			   discovered_at = excluded.discovered_at,
			   opens_at_minute = excluded.opens_at_minute,
			   closes_at_minute = excluded.closes_at_minute,
			   prerequisites = excluded.prerequisites,
			   updated_at = excluded.updated_at`,
			m.ID,
			m.SessionID,
			m.LocationID,
			m.EntityID,
			string(m.EntityKind),
			string(m.EntityCategory),
			boolToInt(m.IsAvailable),
			toNullMillis(m.DiscoveredAt),
			opensAt,
			closesAt,
			string(prerequisites),
			toMillis(m.CreatedAt),
			toMillis(m.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("put mapping %s: %w", m.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put mappings: %w", err)
	}
	return nil
}

// GetMapping returns one mapping by ID.
func (s *Store) GetMapping(ctx context.Context, mappingID string) (mapping.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return mapping.Mapping{}, err
	}
	if s == nil || s.sqlDB == nil {
		return mapping.Mapping{}, fmt.Errorf("storage is not configured")
	}
	mappingID = strings.TrimSpace(mappingID)
	if mappingID == "" {
		return mapping.Mapping{}, fmt.Errorf("mapping id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+mappingColumns+` FROM location_entities WHERE id = ?`,
		mappingID,
	)
	m, err := scanMapping(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mapping.Mapping{}, storage.ErrNotFound
		}
		return mapping.Mapping{}, fmt.Errorf("get mapping: %w", err)
	}
	return m, nil
}

// ListMappingsByLocation returns every mapping for one location in a session.
func (s *Store) ListMappingsByLocation(ctx context.Context, sessionID, locationID string) ([]mapping.Mapping, error) {
	return s.listMappings(
		ctx,
		`SELECT `+mappingColumns+`
		   FROM location_entities
		  WHERE session_id = ? AND location_id = ?
		  ORDER BY created_at ASC, id ASC`,
		strings.TrimSpace(sessionID),
		strings.TrimSpace(locationID),
	)
}

// ListMappingsBySession returns every mapping in a session.
func (s *Store) ListMappingsBySession(ctx context.Context, sessionID string) ([]mapping.Mapping, error) {
	return s.listMappings(
		ctx,
		`SELECT `+mappingColumns+`
		   FROM location_entities
		  WHERE session_id = ?
		  ORDER BY created_at ASC, id ASC`,
		strings.TrimSpace(sessionID),
	)
}

func (s *Store) listMappings(ctx context.Context, query string, args ...any) ([]mapping.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	for _, arg := range args {
		if value, ok := arg.(string); ok && value == "" {
			return nil, fmt.Errorf("identifier is required")
		}
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	defer rows.Close()

	var mappings []mapping.Mapping
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("list mappings: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return mappings, nil
}

// UpdateAvailability flips the availability flag on one mapping.
func (s *Store) UpdateAvailability(ctx context.Context, mappingID string, isAvailable bool, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	mappingID = strings.TrimSpace(mappingID)
	if mappingID == "" {
		return fmt.Errorf("mapping id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE location_entities SET is_available = ?, updated_at = ? WHERE id = ?`,
		boolToInt(isAvailable),
		toMillis(updatedAt),
		mappingID,
	)
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MarkDiscovered records the discovery timestamp for one mapping. A mapping
// already discovered keeps its original timestamp.
func (s *Store) MarkDiscovered(ctx context.Context, mappingID string, discoveredAt time.Time) (mapping.Mapping, error) {
	if err := ctx.Err(); err != nil {
		return mapping.Mapping{}, err
	}
	if s == nil || s.sqlDB == nil {
		return mapping.Mapping{}, fmt.Errorf("storage is not configured")
	}
	mappingID = strings.TrimSpace(mappingID)
	if mappingID == "" {
		return mapping.Mapping{}, fmt.Errorf("mapping id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE location_entities
		    SET discovered_at = COALESCE(discovered_at, ?), is_available = 1, updated_at = ?
		  WHERE id = ?`,
		toMillis(discoveredAt),
		toMillis(discoveredAt),
		mappingID,
	)
	if err != nil {
		return mapping.Mapping{}, fmt.Errorf("mark discovered: %w", err)
	}
	return s.GetMapping(ctx, mappingID)
}

// GetSessionClock returns the session minute, zero when no clock row exists.
func (s *Store) GetSessionClock(ctx context.Context, sessionID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return 0, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT minute FROM session_clocks WHERE session_id = ?`,
		sessionID,
	)
	var minute int
	if err := row.Scan(&minute); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get session clock: %w", err)
	}
	return minute, nil
}

// AdvanceSessionClock adds minutes to the session clock and returns the new
// minute count.
func (s *Store) AdvanceSessionClock(ctx context.Context, sessionID string, minutes int, updatedAt time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return 0, fmt.Errorf("session id is required")
	}
	if minutes < 0 {
		return 0, fmt.Errorf("minutes must not be negative")
	}

	now := toMillis(updatedAt)
	row := s.sqlDB.QueryRowContext(
		ctx,
		`INSERT INTO session_clocks (session_id, minute, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (session_id) DO UPDATE SET
		   minute = session_clocks.minute + excluded.minute,
		   updated_at = excluded.updated_at
		 RETURNING minute`,
		sessionID,
		minutes,
		now,
	)
	var minute int
	if err := row.Scan(&minute); err != nil {
		return 0, fmt.Errorf("advance session clock: %w", err)
	}
	return minute, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMapping(row rowScanner) (mapping.Mapping, error) {
	var m mapping.Mapping
	var kind, category, prerequisites string
	var isAvailable int
	var discoveredAt, opensAt sql.NullInt64
	var closesAt int64
	var createdAt, updatedAt int64
	if err := row.Scan(
		&m.ID,
		&m.SessionID,
		&m.LocationID,
		&m.EntityID,
		&kind,
		&category,
		&isAvailable,
		&discoveredAt,
		&opensAt,
		&closesAt,
		&prerequisites,
		&createdAt,
		&updatedAt,
	); err != nil {
		return mapping.Mapping{}, err
	}
	m.EntityKind = entity.Kind(kind)
	m.EntityCategory = entity.Category(category)
	m.IsAvailable = isAvailable != 0
	m.DiscoveredAt = fromNullMillis(discoveredAt)
	if opensAt.Valid {
		m.TimeWindow = &mapping.TimeWindow{
			OpensAtMinute:  int(opensAt.Int64),
			ClosesAtMinute: int(closesAt),
		}
	}
	if prerequisites != "" {
		if err := json.Unmarshal([]byte(prerequisites), &m.Prerequisites); err != nil {
			return mapping.Mapping{}, fmt.Errorf("decode prerequisites: %w", err)
		}
	}
	m.CreatedAt = fromMillis(createdAt)
	m.UpdatedAt = fromMillis(updatedAt)
	return m, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
