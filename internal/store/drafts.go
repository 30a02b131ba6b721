package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Draft is an unsaved form kept between page loads.
type Draft struct {
	Key       string
	Payload   []byte
	UpdatedAt time.Time
}

// SaveDraft stores payload under key, replacing any earlier draft.
func (s *Store) SaveDraft(ctx context.Context, ownerID, key string, payload []byte) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO drafts (owner_id, key, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner_id, key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, ownerID, key, payload, s.timestamp()); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// LoadDraft returns the draft stored under key.
func (s *Store) LoadDraft(ctx context.Context, ownerID, key string) (Draft, error) {
	var (
		d       = Draft{Key: key}
		updated string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, updated_at FROM drafts WHERE owner_id = ? AND key = ?
	`, ownerID, key).Scan(&d.Payload, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, fmt.Errorf("load draft: %w", err)
	}
	d.UpdatedAt = parseTime(updated)
	return d, nil
}

// ClearDraft drops the draft under key. Clearing a missing draft is not an error.
func (s *Store) ClearDraft(ctx context.Context, ownerID, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM drafts WHERE owner_id = ? AND key = ?`, ownerID, key); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
