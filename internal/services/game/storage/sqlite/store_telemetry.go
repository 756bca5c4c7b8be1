package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lanternworks/expedition/internal/services/game/storage"
)

// AppendEvent records one telemetry event.
func (s *Store) AppendEvent(ctx context.Context, event storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(event.ID) == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(event.Kind) == "" {
		return fmt.Errorf("event kind is required")
	}

	payload := event.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events (id, session_id, kind, payload, occurred_at)
		 VALUES (?, ?, ?, ?, ?)`,
		event.ID,
		event.SessionID,
		event.Kind,
		string(encoded),
		toMillis(event.OccurredAt),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// ListEventsBySession returns the most recent events for a session, newest
// first.
func (s *Store) ListEventsBySession(ctx context.Context, sessionID string, limit int) ([]storage.TelemetryEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT id, session_id, kind, payload, occurred_at
		   FROM telemetry_events
		  WHERE session_id = ?
		  ORDER BY occurred_at DESC, id DESC
		  LIMIT ?`,
		sessionID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []storage.TelemetryEvent
	for rows.Next() {
		var event storage.TelemetryEvent
		var payload string
		var occurredAt int64
		if err := rows.Scan(&event.ID, &event.SessionID, &event.Kind, &payload, &occurredAt); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &event.Payload); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		event.OccurredAt = fromMillis(occurredAt)
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}
