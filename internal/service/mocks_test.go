package service

import (
	"context"

	"anonymous_messages/internal/models"
	"anonymous_messages/internal/repository"
)

// mockUsers is a lightweight in-test mock for repository.Users.
// Unset funcs behave like an empty table.
type mockUsers struct {
	CreateFn          func(u models.User) (int, error)
	GetByIDFn         func(id int) (*models.User, error)
	GetByUsernameFn   func(username string) (*models.User, error)
	GetByEmailFn      func(email string) (*models.User, error)
	GetByLinkTokenFn  func(token string) (*models.User, error)
	UpdateLinkTokenFn func(id int, token string) error

	created      []models.User
	tokenLookups []string
	tokenUpdates []string
}

func (m *mockUsers) Create(_ context.Context, u models.User) (int, error) {
	m.created = append(m.created, u)
	if m.CreateFn == nil {
		return len(m.created), nil
	}
	return m.CreateFn(u)
}

func (m *mockUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	if m.GetByIDFn == nil {
		return nil, nil
	}
	return m.GetByIDFn(id)
}

func (m *mockUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFn == nil {
		return nil, nil
	}
	return m.GetByUsernameFn(username)
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if m.GetByEmailFn == nil {
		return nil, nil
	}
	return m.GetByEmailFn(email)
}

func (m *mockUsers) GetByLinkToken(_ context.Context, token string) (*models.User, error) {
	m.tokenLookups = append(m.tokenLookups, token)
	if m.GetByLinkTokenFn == nil {
		return nil, nil
	}
	return m.GetByLinkTokenFn(token)
}

func (m *mockUsers) UpdateLinkToken(_ context.Context, id int, token string) error {
	m.tokenUpdates = append(m.tokenUpdates, token)
	if m.UpdateLinkTokenFn == nil {
		return nil
	}
	return m.UpdateLinkTokenFn(id, token)
}

// mockMessages is a lightweight in-test mock for repository.Messages.
type mockMessages struct {
	CreateFn      func(m models.Message) (int, error)
	GetByIDFn     func(id int) (*models.Message, error)
	ListByUserFn  func(userID int, f repository.MessageFilter) ([]models.Message, error)
	CountByUserFn func(userID int) (int, int, error)

	created   []models.Message
	lastList  repository.MessageFilter
	markReads []int
}

func (m *mockMessages) Create(_ context.Context, msg models.Message) (int, error) {
	m.created = append(m.created, msg)
	if m.CreateFn == nil {
		return len(m.created), nil
	}
	return m.CreateFn(msg)
}

func (m *mockMessages) GetByID(_ context.Context, id int) (*models.Message, error) {
	if m.GetByIDFn == nil {
		return nil, nil
	}
	return m.GetByIDFn(id)
}

func (m *mockMessages) ListByUser(_ context.Context, userID int, f repository.MessageFilter) ([]models.Message, error) {
	m.lastList = f
	if m.ListByUserFn == nil {
		return nil, nil
	}
	return m.ListByUserFn(userID, f)
}

func (m *mockMessages) CountByUser(_ context.Context, userID int) (int, int, error) {
	if m.CountByUserFn == nil {
		return 0, 0, nil
	}
	return m.CountByUserFn(userID)
}

func (m *mockMessages) MarkRead(_ context.Context, id int) (bool, error) {
	m.markReads = append(m.markReads, id)
	return true, nil
}
