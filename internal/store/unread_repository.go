package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Arch0125/zulip-mobile/internal/models"
)

// ErrNoSnapshot is returned when no unread snapshot has been persisted.
var ErrNoSnapshot = errors.New("no unread snapshot cached")

// UnreadSnapshotRepository persists the latest unread snapshot so the
// CLI can render counts without a live session.
type UnreadSnapshotRepository struct {
	store *Store
}

// NewUnreadSnapshotRepository creates a new UnreadSnapshotRepository.
func NewUnreadSnapshotRepository(store *Store) *UnreadSnapshotRepository {
	return &UnreadSnapshotRepository{store: store}
}

// CachedSnapshot is a persisted unread snapshot with its provenance.
type CachedSnapshot struct {
	QueueID     string
	LastEventID int64
	Snapshot    models.UnreadSnapshot
	SavedAt     time.Time
}

// Save replaces the cached snapshot.
func (r *UnreadSnapshotRepository) Save(ctx context.Context, queueID string, lastEventID int64, snap models.UnreadSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode unread snapshot: %w", err)
	}

	_, err = r.store.db.ExecContext(ctx, `
		INSERT INTO unread_snapshot (id, queue_id, last_event_id, payload_json, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			queue_id = excluded.queue_id,
			last_event_id = excluded.last_event_id,
			payload_json = excluded.payload_json,
			saved_at = excluded.saved_at
	`, queueID, lastEventID, string(payload), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save unread snapshot: %w", err)
	}
	return nil
}

// Load returns the cached snapshot, or ErrNoSnapshot.
func (r *UnreadSnapshotRepository) Load(ctx context.Context) (*CachedSnapshot, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT queue_id, last_event_id, payload_json, saved_at
		FROM unread_snapshot WHERE id = 1
	`)

	var (
		cached  CachedSnapshot
		payload string
		savedAt string
	)
	err := row.Scan(&cached.QueueID, &cached.LastEventID, &payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load unread snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &cached.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode unread snapshot: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, savedAt); err == nil {
		cached.SavedAt = t
	}
	return &cached, nil
}

// Clear removes the cached snapshot, used on logout.
func (r *UnreadSnapshotRepository) Clear(ctx context.Context) error {
	if _, err := r.store.db.ExecContext(ctx, `DELETE FROM unread_snapshot`); err != nil {
		return fmt.Errorf("failed to clear unread snapshot: %w", err)
	}
	return nil
}
