package chat

import (
	"sync"
	"time"

	domain "github.com/creativity-code/planora/domain/chat"
)

// RoomStore is thread-safe in-memory storage for project channels. Channels
// are created on first use: joining or posting to a project's room brings it
// into existence. History is bounded per room; older messages fall off.
type RoomStore struct {
	mu         sync.RWMutex
	rooms      map[string]*domain.Room     // room name -> room
	messages   map[string][]domain.Message // room name -> messages, oldest first
	members    map[string]map[string]bool  // room name -> set of user emails
	maxHistory int
}

// NewRoomStore creates a new room store.
func NewRoomStore(maxHistory int) *RoomStore {
	if maxHistory <= 0 {
		maxHistory = 100
	}
	return &RoomStore{
		rooms:      make(map[string]*domain.Room),
		messages:   make(map[string][]domain.Message),
		members:    make(map[string]map[string]bool),
		maxHistory: maxHistory,
	}
}

// EnsureRoom returns the channel for a project, creating it if needed.
func (s *RoomStore) EnsureRoom(room, projectID string) *domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureRoomLocked(room, projectID)
}

func (s *RoomStore) ensureRoomLocked(room, projectID string) *domain.Room {
	if r, ok := s.rooms[room]; ok {
		return r
	}
	r := &domain.Room{
		Name:      room,
		ProjectID: projectID,
		CreatedAt: time.Now(),
	}
	s.rooms[room] = r
	s.messages[room] = make([]domain.Message, 0)
	s.members[room] = make(map[string]bool)
	return r
}

// Join adds a user to a channel and returns the member count after joining.
// Joining twice is a no-op.
func (s *RoomStore) Join(room, projectID, email string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ensureRoomLocked(room, projectID)
	s.members[room][email] = true
	return len(s.members[room])
}

// Leave removes a user from a channel. Returns false when the user was not
// a member.
func (s *RoomStore) Leave(room, email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.members[room]
	if !ok || !set[email] {
		return false
	}
	delete(set, email)
	return true
}

// IsMember reports whether a user is currently in a channel.
func (s *RoomStore) IsMember(room, email string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.members[room][email]
}

// Members returns the users currently present in a channel.
func (s *RoomStore) Members(room string) []domain.Member {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set, ok := s.members[room]
	if !ok {
		return nil
	}
	result := make([]domain.Member, 0, len(set))
	for email := range set {
		result = append(result, domain.Member{Email: email, Room: room})
	}
	return result
}

// AddMessage appends a message to its channel's history, trimming to the
// history bound.
func (s *RoomStore) AddMessage(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, ok := s.messages[msg.Room]
	if !ok {
		return
	}
	messages = append(messages, msg)
	if len(messages) > s.maxHistory {
		messages = messages[len(messages)-s.maxHistory:]
	}
	s.messages[msg.Room] = messages
}

// History returns the last limit messages of a channel, oldest first.
// A limit of zero or less returns the whole retained history.
func (s *RoomStore) History(room string, limit int) []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[room]
	if !ok {
		return nil
	}
	if limit <= 0 || limit > len(messages) {
		limit = len(messages)
	}
	start := len(messages) - limit
	result := make([]domain.Message, limit)
	copy(result, messages[start:])
	return result
}

// RoomCount returns the number of channels that have been opened.
func (s *RoomStore) RoomCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// MemberCount returns the total number of memberships across all channels.
func (s *RoomStore) MemberCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, set := range s.members {
		total += len(set)
	}
	return total
}
