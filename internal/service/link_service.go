package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"anonymous_messages/internal/models"
	"anonymous_messages/internal/repository"
)

const (
	linkTokenBytes   = 16 // 22 URL-safe characters
	maxLinkTokenLen  = 64
	maxTokenAttempts = 5
)

var errTokenExhausted = errors.New("could not generate a unique link token")

type LinkService struct {
	users    repository.Users
	newToken func() (string, error)
}

func NewLinkService(users repository.Users) *LinkService {
	return &LinkService{users: users, newToken: generateLinkToken}
}

// Resolve finds the owner of a sharing token. Every miss, malformed or not,
// is reported as ErrLinkNotFound.
func (s *LinkService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" || len(token) > maxLinkTokenLen {
		return nil, ErrLinkNotFound
	}
	u, err := s.users.GetByLinkToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrLinkNotFound
	}
	return u, nil
}

// Regenerate replaces the user's token; links built from the old one stop working.
func (s *LinkService) Regenerate(ctx context.Context, userID int) (string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := uniqueLinkToken(ctx, s.users, s.newToken)
		if err != nil {
			return "", err
		}
		err = s.users.UpdateLinkToken(ctx, userID, token)
		switch {
		case err == nil:
			return token, nil
		case errors.Is(err, repository.ErrDuplicateLinkToken):
			continue // lost a race for this value
		case errors.Is(err, repository.ErrUserNotFound):
			return "", ErrUserNotFound
		default:
			return "", err
		}
	}
	return "", errTokenExhausted
}

// generateLinkToken returns 128 random bits, base64url encoded without padding.
func generateLinkToken() (string, error) {
	b := make([]byte, linkTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// uniqueLinkToken draws tokens until one is not held by any user.
func uniqueLinkToken(ctx context.Context, users repository.Users, gen func() (string, error)) (string, error) {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := gen()
		if err != nil {
			return "", err
		}
		holder, err := users.GetByLinkToken(ctx, token)
		if err != nil {
			return "", err
		}
		if holder == nil {
			return token, nil
		}
	}
	return "", errTokenExhausted
}
