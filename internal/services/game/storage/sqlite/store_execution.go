package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lanternworks/expedition/internal/services/game/domain/exploration"
	"github.com/lanternworks/expedition/internal/services/game/storage"
)

// PutExecution upserts one exploration execution document.
func (s *Store) PutExecution(ctx context.Context, execution exploration.Execution) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(execution.ID) == "" {
		return fmt.Errorf("execution id is required")
	}

	document, err := json.Marshal(execution)
	if err != nil {
		return fmt.Errorf("encode execution: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO exploration_executions (id, session_id, phase, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   phase = excluded.phase,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		execution.ID,
		execution.SessionID,
		string(execution.Phase),
		string(document),
		toMillis(execution.CreatedAt),
		toMillis(execution.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put execution: %w", err)
	}
	return nil
}

// GetExecution returns one execution by ID.
func (s *Store) GetExecution(ctx context.Context, executionID string) (exploration.Execution, error) {
	if err := ctx.Err(); err != nil {
		return exploration.Execution{}, err
	}
	if s == nil || s.sqlDB == nil {
		return exploration.Execution{}, fmt.Errorf("storage is not configured")
	}
	executionID = strings.TrimSpace(executionID)
	if executionID == "" {
		return exploration.Execution{}, fmt.Errorf("execution id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT document FROM exploration_executions WHERE id = ?`,
		executionID,
	)
	var document string
	if err := row.Scan(&document); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exploration.Execution{}, storage.ErrNotFound
		}
		return exploration.Execution{}, fmt.Errorf("get execution: %w", err)
	}
	var execution exploration.Execution
	if err := json.Unmarshal([]byte(document), &execution); err != nil {
		return exploration.Execution{}, fmt.Errorf("decode execution: %w", err)
	}
	return execution, nil
}

// DeleteExpired removes non-terminal executions last touched before the
// cutoff and reports how many were removed.
func (s *Store) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM exploration_executions WHERE phase != ? AND updated_at < ?`,
		string(exploration.PhaseResolved),
		toMillis(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired executions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired executions: %w", err)
	}
	return int(affected), nil
}
