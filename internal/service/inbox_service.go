package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"anonymous_messages/internal/models"
	"anonymous_messages/internal/repository"
)

type InboxService struct {
	messages repository.Messages
	now      func() time.Time
}

func NewInboxService(messages repository.Messages) *InboxService {
	return &InboxService{messages: messages, now: time.Now}
}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeAndValidateFilter prepares query parameters and validates the time range and status.
func normalizeAndValidateFilter(f InboxFilter) (repository.MessageFilter, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.MessageFilter{}, fmt.Errorf("%w: from must be <= to", ErrInvalidFilter)
	}

	out := repository.MessageFilter{From: from, To: to}
	switch strings.ToLower(strings.TrimSpace(f.Status)) {
	case "":
	case StatusUnread:
		unread := true
		out.Unread = &unread
	case StatusRead:
		unread := false
		out.Unread = &unread
	default:
		return repository.MessageFilter{}, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, f.Status)
	}
	return out, nil
}

// Send stores an unread message for the owner. Empty content returns
// ErrEmptyMessage and stores nothing.
func (s *InboxService) Send(ctx context.Context, ownerID int, content string) (*models.Message, error) {
	if content == "" {
		return nil, ErrEmptyMessage
	}
	m := models.Message{
		UserID:    ownerID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.messages.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	m.ID = id
	return &m, nil
}

// Dashboard lists the owner's messages newest first. The counts always cover
// the whole inbox, whatever the filter.
func (s *InboxService) Dashboard(ctx context.Context, userID int, f InboxFilter) (Dashboard, error) {
	mf, err := normalizeAndValidateFilter(f)
	if err != nil {
		return Dashboard{}, err
	}
	msgs, err := s.messages.ListByUser(ctx, userID, mf)
	if err != nil {
		return Dashboard{}, err
	}
	total, unread, err := s.messages.CountByUser(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Messages: msgs, UnreadCount: unread, TotalCount: total}, nil
}

// View returns a message to its owner, marking it read on first view.
// Any other user gets ErrForbidden.
func (s *InboxService) View(ctx context.Context, userID, messageID int) (*models.Message, error) {
	m, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMessageNotFound
	}
	if m.UserID != userID {
		return nil, ErrForbidden
	}
	if !m.Read {
		if _, err := s.messages.MarkRead(ctx, m.ID); err != nil {
			return nil, err
		}
		m.Read = true
	}
	return m, nil
}

func (s *InboxService) Counts(ctx context.Context, userID int) (InboxCounts, error) {
	total, unread, err := s.messages.CountByUser(ctx, userID)
	if err != nil {
		return InboxCounts{}, err
	}
	return InboxCounts{UnreadCount: unread, TotalCount: total}, nil
}
