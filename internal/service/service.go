package service

import (
	"context"
	"errors"
	"time"

	"anonymous_messages/internal/models"
	"anonymous_messages/internal/repository"
)

// Domain errors surfaced to the HTTP layer.
var (
	ErrMissingFields      = errors.New("username, email and password are required")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidSession     = errors.New("invalid session")
	ErrLinkNotFound       = errors.New("link not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrForbidden          = errors.New("message belongs to another user")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrInvalidFilter      = errors.New("invalid filter")
)

// Authorization covers accounts and the signed session that identifies them.
type Authorization interface {
	SignUp(ctx context.Context, in SignUpInput) (int, error)
	SignIn(ctx context.Context, username, password string) (*models.User, error)
	IssueSession(userID int) (string, error)
	ParseSession(token string) (int, error)
	CurrentUser(ctx context.Context, userID int) (*models.User, error)
}

// Links resolves and rotates the public sharing tokens.
type Links interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
	Regenerate(ctx context.Context, userID int) (string, error)
}

// Inbox stores anonymous messages and exposes them to their owner only.
type Inbox interface {
	Send(ctx context.Context, ownerID int, content string) (*models.Message, error)
	Dashboard(ctx context.Context, userID int, f InboxFilter) (Dashboard, error)
	View(ctx context.Context, userID, messageID int) (*models.Message, error)
	Counts(ctx context.Context, userID int) (InboxCounts, error)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Links
	Inbox
}

// SessionOptions configures how sessions are signed.
type SessionOptions struct {
	Secret []byte
	TTL    time.Duration
}

// NewService wires repository layer into concrete services.
func NewService(repos *repository.Repository, opts SessionOptions) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, opts),
		Links:         NewLinkService(repos.Users),
		Inbox:         NewInboxService(repos.Messages),
	}
}
