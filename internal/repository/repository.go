package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"anonymous_messages/internal/models"
)

// Constraint violations surfaced by the users table.
var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateLinkToken = errors.New("link token already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrMessageNotFound    = errors.New("message not found")
)

// timestampLayout is lexically sortable and parsed back by the sqlite driver
// for TIMESTAMP columns.
const timestampLayout = "2006-01-02 15:04:05.000000"

// Lookups return (nil, nil) when nothing matches.
type Users interface {
	Create(ctx context.Context, u models.User) (int, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByLinkToken(ctx context.Context, token string) (*models.User, error)
	UpdateLinkToken(ctx context.Context, id int, token string) error
}

// MessageFilter narrows an owner's message listing. Zero values mean no bound.
type MessageFilter struct {
	From   time.Time
	To     time.Time
	Unread *bool
}

type Messages interface {
	Create(ctx context.Context, m models.Message) (int, error)
	GetByID(ctx context.Context, id int) (*models.Message, error)
	ListByUser(ctx context.Context, userID int, f MessageFilter) ([]models.Message, error)
	CountByUser(ctx context.Context, userID int) (total int, unread int, err error)
	MarkRead(ctx context.Context, id int) (bool, error)
}

type Repository struct {
	Users    Users
	Messages Messages
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users:    NewUserSQLite(db),
		Messages: NewMessageSQLite(db),
	}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// timestamp scans TIMESTAMP columns whether the driver hands back a parsed
// time.Time or the raw text written by formatTimestamp.
type timestamp struct {
	time.Time
}

func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *timestamp) parse(s string) error {
	for _, layout := range []string{timestampLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", s)
}
