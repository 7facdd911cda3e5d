package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Arch0125/zulip-mobile/internal/models"
)

// Message repository errors.
var (
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidMessage  = errors.New("invalid message")
)

// MessageRepository caches messages and their per-viewer flags.
type MessageRepository struct {
	store *Store
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(store *Store) *MessageRepository {
	return &MessageRepository{store: store}
}

// Upsert stores a message and replaces its flag set.
func (r *MessageRepository) Upsert(ctx context.Context, msg *models.Message, flags []string) error {
	if msg == nil || msg.ID == 0 {
		return ErrInvalidMessage
	}

	threadKey := ""
	if msg.Type == models.MessageTypePrivate {
		threadKey = models.HuddleKeyForMessage(msg)
	}

	return r.store.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, type, sender_id, stream_id, subject, thread_key, content, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				content = excluded.content,
				subject = excluded.subject,
				stream_id = excluded.stream_id
		`,
			msg.ID,
			string(msg.Type),
			msg.SenderID,
			nullableInt(msg.StreamID),
			nullableString(msg.Subject),
			nullableString(threadKey),
			msg.Content,
			msg.Timestamp,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert message %d: %w", msg.ID, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM message_flags WHERE message_id = ?`, msg.ID); err != nil {
			return fmt.Errorf("failed to clear flags for message %d: %w", msg.ID, err)
		}
		for _, flag := range flags {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO message_flags (message_id, flag) VALUES (?, ?)`,
				msg.ID, flag); err != nil {
				return fmt.Errorf("failed to store flag %q for message %d: %w", flag, msg.ID, err)
			}
		}
		return nil
	})
}

// Get retrieves a cached message with its flags.
func (r *MessageRepository) Get(ctx context.Context, id int64) (*models.Message, []string, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, type, sender_id, stream_id, subject, content, timestamp
		FROM messages WHERE id = ?
	`, id)

	msg, err := scanMessage(row)
	if err != nil {
		return nil, nil, err
	}

	rows, err := r.store.db.QueryContext(ctx,
		`SELECT flag FROM message_flags WHERE message_id = ? ORDER BY flag`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load flags for message %d: %w", id, err)
	}
	defer rows.Close()

	var flags []string
	for rows.Next() {
		var flag string
		if err := rows.Scan(&flag); err != nil {
			return nil, nil, fmt.Errorf("failed to scan flag: %w", err)
		}
		flags = append(flags, flag)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate flags: %w", err)
	}
	return msg, flags, nil
}

// ListTopic returns the cached messages of one topic, ascending by ID.
func (r *MessageRepository) ListTopic(ctx context.Context, streamID int64, topic string, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.store.db.QueryContext(ctx, `
		SELECT id, type, sender_id, stream_id, subject, content, timestamp
		FROM messages
		WHERE stream_id = ? AND subject = ?
		ORDER BY id ASC
		LIMIT ?
	`, streamID, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic messages: %w", err)
	}
	defer rows.Close()

	return collectMessages(rows)
}

// ApplyMove rewrites the stream/topic of the given messages after a
// topic or stream move.
func (r *MessageRepository) ApplyMove(ctx context.Context, ids []int64, newStreamID int64, newTopic string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		UPDATE messages SET stream_id = ?, subject = ?
		WHERE id IN (%s)
	`, placeholders(len(ids)))

	args := make([]any, 0, len(ids)+2)
	args = append(args, newStreamID, newTopic)
	for _, id := range ids {
		args = append(args, id)
	}

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to move messages: %w", err)
	}
	return nil
}

// Delete removes messages and their flags.
func (r *MessageRepository) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	in := placeholders(len(ids))

	return r.store.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM message_flags WHERE message_id IN (`+in+`)`, args...); err != nil {
			return fmt.Errorf("failed to delete message flags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id IN (`+in+`)`, args...); err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		return nil
	})
}

// AddFlag sets a flag on the given messages, or on every cached message
// when all is true.
func (r *MessageRepository) AddFlag(ctx context.Context, flag string, all bool, ids []int64) error {
	if all {
		_, err := r.store.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO message_flags (message_id, flag) SELECT id, ? FROM messages`, flag)
		if err != nil {
			return fmt.Errorf("failed to flag all messages %q: %w", flag, err)
		}
		return nil
	}

	return r.store.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO message_flags (message_id, flag) VALUES (?, ?)`, id, flag); err != nil {
				return fmt.Errorf("failed to flag message %d %q: %w", id, flag, err)
			}
		}
		return nil
	})
}

// RemoveFlag clears a flag from the given messages.
func (r *MessageRepository) RemoveFlag(ctx context.Context, flag string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, 0, len(ids)+1)
	args = append(args, flag)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := r.store.db.ExecContext(ctx,
		`DELETE FROM message_flags WHERE flag = ? AND message_id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to clear flag %q: %w", flag, err)
	}
	return nil
}

// Clear drops all cached messages, used on logout.
func (r *MessageRepository) Clear(ctx context.Context) error {
	return r.store.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM message_flags`); err != nil {
			return fmt.Errorf("failed to clear flags: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages`); err != nil {
			return fmt.Errorf("failed to clear messages: %w", err)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var (
		msg      models.Message
		msgType  string
		streamID sql.NullInt64
		subject  sql.NullString
	)
	err := row.Scan(&msg.ID, &msgType, &msg.SenderID, &streamID, &subject, &msg.Content, &msg.Timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}

	msg.Type = models.MessageType(msgType)
	if streamID.Valid {
		msg.StreamID = streamID.Int64
	}
	if subject.Valid {
		msg.Subject = subject.String
	}
	return &msg, nil
}

func collectMessages(rows *sql.Rows) ([]*models.Message, error) {
	var out []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return out, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullableInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}
