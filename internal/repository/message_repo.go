package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"anonymous_messages/internal/models"
)

type MessageSQLite struct {
	db *sql.DB
}

func NewMessageSQLite(db *sql.DB) *MessageSQLite { return &MessageSQLite{db: db} }

var _ Messages = (*MessageSQLite)(nil)

const (
	insertMessageSQL     = `INSERT INTO messages (user_id, content, created_at, read) VALUES (?, ?, ?, ?)`
	selectMessageByIDSQL = `SELECT id, user_id, content, created_at, read FROM messages WHERE id = ?`
	listMessagesSQL      = `SELECT id, user_id, content, created_at, read FROM messages`
	countMessagesSQL     = `SELECT COUNT(*), COALESCE(SUM(CASE WHEN read = 0 THEN 1 ELSE 0 END), 0) FROM messages WHERE user_id = ?`
	markReadSQL          = `UPDATE messages SET read = 1 WHERE id = ? AND read = 0`
)

// Create stores a message. A zero CreatedAt is set to now (UTC).
func (r *MessageSQLite) Create(ctx context.Context, m models.Message) (int, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, insertMessageSQL, m.UserID, m.Content, formatTimestamp(m.CreatedAt), m.Read)
	if err != nil {
		return 0, fmt.Errorf("insert message for user %d: %w", m.UserID, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for message: %w", err)
	}
	return int(lastID), nil
}

// GetByID returns (nil, nil) when the message does not exist.
func (r *MessageSQLite) GetByID(ctx context.Context, id int) (*models.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, selectMessageByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select message %d: %w", id, err)
	}
	return &m, nil
}

// ListByUser returns the owner's messages newest first, narrowed by f.
func (r *MessageSQLite) ListByUser(ctx context.Context, userID int, f MessageFilter) ([]models.Message, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID}

	if !f.From.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, formatTimestamp(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, formatTimestamp(f.To))
	}
	if f.Unread != nil {
		conds = append(conds, "read = ?")
		args = append(args, !*f.Unread)
	}

	q := listMessagesSQL + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Message, 0, 16)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByUser returns the owner's total and unread message counts.
func (r *MessageSQLite) CountByUser(ctx context.Context, userID int) (int, int, error) {
	var total, unread int
	if err := r.db.QueryRowContext(ctx, countMessagesSQL, userID).Scan(&total, &unread); err != nil {
		return 0, 0, fmt.Errorf("count messages for user %d: %w", userID, err)
	}
	return total, unread, nil
}

// MarkRead flips an unread message to read. It reports whether a row changed,
// so a second call on the same message is a no-op returning false.
func (r *MessageSQLite) MarkRead(ctx context.Context, id int) (bool, error) {
	res, err := r.db.ExecContext(ctx, markReadSQL, id)
	if err != nil {
		return false, fmt.Errorf("mark message %d read: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for message %d: %w", id, err)
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (models.Message, error) {
	var (
		m  models.Message
		ts timestamp
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Content, &ts, &m.Read); err != nil {
		return models.Message{}, err
	}
	m.CreatedAt = ts.Time
	return m, nil
}
