package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"anonymous_messages/internal/models"
)

type UserSQLite struct {
	db *sql.DB
}

func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserSQLite)(nil)

const (
	insertUserSQL = `INSERT INTO users (username, email, password_hash, link_token, created_at) VALUES (?, ?, ?, ?, ?)`

	selectUserColumns        = `SELECT id, username, email, password_hash, link_token, created_at FROM users`
	selectUserByIDSQL        = selectUserColumns + ` WHERE id = ?`
	selectUserByUsernameSQL  = selectUserColumns + ` WHERE username = ?`
	selectUserByEmailSQL     = selectUserColumns + ` WHERE email = ?`
	selectUserByLinkTokenSQL = selectUserColumns + ` WHERE link_token = ?`

	updateLinkTokenSQL = `UPDATE users SET link_token = ? WHERE id = ?`
)

// Create inserts a new user and returns its ID.
func (r *UserSQLite) Create(ctx context.Context, u models.User) (int, error) {
	res, err := r.db.ExecContext(ctx, insertUserSQL,
		u.Username, u.Email, u.PasswordHash, u.LinkToken, formatTimestamp(u.CreatedAt))
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return 0, dup
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", u.Username, err)
	}
	return int(lastID), nil
}

func (r *UserSQLite) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getOne(ctx, selectUserByIDSQL, id)
}

// GetByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserSQLite) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, selectUserByUsernameSQL, username)
}

func (r *UserSQLite) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUserByEmailSQL, email)
}

func (r *UserSQLite) GetByLinkToken(ctx context.Context, token string) (*models.User, error) {
	return r.getOne(ctx, selectUserByLinkTokenSQL, token)
}

// UpdateLinkToken swaps the user's sharing token; the old one stops resolving immediately.
func (r *UserSQLite) UpdateLinkToken(ctx context.Context, id int, token string) error {
	res, err := r.db.ExecContext(ctx, updateLinkTokenSQL, token, id)
	if err != nil {
		if dup := uniqueViolation(err); dup != nil {
			return dup
		}
		return fmt.Errorf("update link token for user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %d: %w", id, err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserSQLite) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var (
		u  models.User
		ts timestamp
	)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.LinkToken, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user by %v: %w", arg, err)
	}
	u.CreatedAt = ts.Time
	return &u, nil
}

// uniqueViolation maps sqlite UNIQUE constraint failures on users to domain errors.
func uniqueViolation(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return nil
	}
	switch {
	case strings.Contains(msg, "users.username"):
		return ErrDuplicateUsername
	case strings.Contains(msg, "users.email"):
		return ErrDuplicateEmail
	case strings.Contains(msg, "users.link_token"):
		return ErrDuplicateLinkToken
	}
	return nil
}
