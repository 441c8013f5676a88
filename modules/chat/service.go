package chat

import (
	"context"
	"time"

	domain "github.com/creativity-code/planora/domain/chat"
	"github.com/google/uuid"
)

// Notifier receives chat activity after it has been applied to the store.
type Notifier interface {
	MessageSent(msg domain.Message)
	UserJoined(room, email string, at time.Time)
	UserLeft(room, email string, at time.Time)
}

type noopNotifier struct{}

func (noopNotifier) MessageSent(domain.Message)           {}
func (noopNotifier) UserJoined(string, string, time.Time) {}
func (noopNotifier) UserLeft(string, string, time.Time)   {}

// Service provides project channel operations. Rooms are created lazily:
// the first join or message for a project opens its channel.
type Service struct {
	store  *RoomStore
	notify Notifier
	now    func() time.Time
}

// NewService creates a new chat service.
func NewService(store *RoomStore, notify Notifier) *Service {
	if notify == nil {
		notify = noopNotifier{}
	}
	return &Service{
		store:  store,
		notify: notify,
		now:    time.Now,
	}
}

// RoomName returns the channel name for a project.
func RoomName(projectID string) string {
	return "project-" + projectID
}

// Join adds a user to a project's channel.
func (s *Service) Join(_ context.Context, projectID, email string) (string, int, error) {
	if projectID == "" {
		return "", 0, ErrProjectRequired
	}
	if email == "" {
		return "", 0, ErrEmailRequired
	}

	room := RoomName(projectID)
	count := s.store.Join(room, projectID, email)
	s.notify.UserJoined(room, email, s.now())
	return room, count, nil
}

// Leave removes a user from a project's channel. Leaving a channel the user
// never joined is not an error.
func (s *Service) Leave(_ context.Context, projectID, email string) (string, error) {
	if projectID == "" {
		return "", ErrProjectRequired
	}
	if email == "" {
		return "", ErrEmailRequired
	}

	room := RoomName(projectID)
	if s.store.Leave(room, email) {
		s.notify.UserLeft(room, email, s.now())
	}
	return room, nil
}

// Send posts a message to a project's channel. The sender must have joined
// the channel first.
func (s *Service) Send(_ context.Context, projectID, email, content string) (domain.Message, error) {
	if projectID == "" {
		return domain.Message{}, ErrProjectRequired
	}
	if email == "" {
		return domain.Message{}, ErrEmailRequired
	}
	if err := ValidateMessage(content); err != nil {
		return domain.Message{}, err
	}

	room := RoomName(projectID)
	if !s.store.IsMember(room, email) {
		return domain.Message{}, ErrNotMember
	}

	msg := domain.Message{
		ID:        uuid.New().String(),
		Room:      room,
		UserEmail: email,
		Content:   content,
		Timestamp: s.now(),
	}
	s.store.AddMessage(msg)
	s.notify.MessageSent(msg)
	return msg, nil
}

// History returns the last limit messages of a project's channel, oldest
// first. An unopened channel has empty history.
func (s *Service) History(_ context.Context, projectID string, limit int) ([]domain.Message, error) {
	if projectID == "" {
		return nil, ErrProjectRequired
	}
	return s.store.History(RoomName(projectID), limit), nil
}

// Members returns the users currently in a project's channel.
func (s *Service) Members(_ context.Context, projectID string) ([]domain.Member, error) {
	if projectID == "" {
		return nil, ErrProjectRequired
	}
	return s.store.Members(RoomName(projectID)), nil
}
