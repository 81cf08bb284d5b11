package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"anonymous_messages/internal/models"
	"anonymous_messages/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL = 24 * time.Hour
	sessionSecretSize = 32

	maxBcryptPasswordLen = 72
)

// SignUpInput carries the registration form.
type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// AuthService handles user auth logic
type AuthService struct {
	users     repository.Users
	secret    []byte
	ttl       time.Duration
	newToken  func() (string, error)
	now       func() time.Time
	dummyHash func() []byte
}

// NewAuthService builds the service. An empty secret is replaced by RandomSecret.
func NewAuthService(users repository.Users, opts SessionOptions) *AuthService {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	secret := opts.Secret
	if len(secret) == 0 {
		var err error
		if secret, err = RandomSecret(); err != nil {
			panic(err)
		}
	}
	return &AuthService{
		users:     users,
		secret:    secret,
		ttl:       ttl,
		newToken:  generateLinkToken,
		now:       time.Now,
		dummyHash: dummyHash,
	}
}

// RandomSecret returns a fresh signing key; sessions signed with it die with the process.
func RandomSecret() ([]byte, error) {
	b := make([]byte, sessionSecretSize)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return b, nil
}

// SignUp checks username then email for duplicates, hashes the password and
// creates the user with a fresh link token.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (int, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return 0, ErrMissingFields
	}

	existing, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrUsernameTaken
	}
	existing, err = s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, ErrEmailTaken
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return 0, err
	}
	token, err := uniqueLinkToken(ctx, s.users, s.newToken)
	if err != nil {
		return 0, err
	}

	id, err := s.users.Create(ctx, models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		LinkToken:    token,
		CreatedAt:    s.now().UTC(),
	})
	switch {
	case errors.Is(err, repository.ErrDuplicateUsername):
		return 0, ErrUsernameTaken
	case errors.Is(err, repository.ErrDuplicateEmail):
		return 0, ErrEmailTaken
	case err != nil:
		return 0, err
	}
	return id, nil
}

// SignIn validates credentials. Unknown usernames and wrong passwords both
// return ErrInvalidCredentials; the wrapped cause is for logs only.
func (s *AuthService) SignIn(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// Burn the same bcrypt cost as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummyHash(), bcryptInput(password))
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrUserNotFound)
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrInvalidPassword)
	}
	return u, nil
}

// Claims defines session claims
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// IssueSession returns a signed session token for the user.
func (s *AuthService) IssueSession(userID int) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString(s.secret)
}

// ParseSession verifies a session token and returns the user id it names.
func (s *AuthService) ParseSession(accessToken string) (int, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, ErrInvalidSession
	}

	return claims.UserID, nil
}

// CurrentUser loads the account a session points at.
func (s *AuthService) CurrentUser(ctx context.Context, userID int) (*models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// bcryptInput returns the bytes fed to bcrypt. Passwords longer than bcrypt's
// 72-byte limit are reduced to a base64 SHA-256 digest first.
func bcryptInput(password string) []byte {
	if len(password) <= maxBcryptPasswordLen {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
}

var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("bcrypt dummy hash: %v", err))
	}
	return h
})
