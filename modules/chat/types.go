package chat

import (
	"errors"
	"unicode/utf8"

	domain "github.com/creativity-code/planora/domain/chat"
)

// Validation constants
const (
	MaxMessageLength = 5000
)

// Validation errors
var (
	ErrEmailRequired   = errors.New("user email is required")
	ErrProjectRequired = errors.New("project id is required")
	ErrMessageEmpty    = errors.New("message content cannot be empty")
	ErrMessageTooLong  = errors.New("message exceeds maximum length")
	ErrMessageInvalid  = errors.New("message contains invalid characters")
	ErrNotMember       = errors.New("user is not a member of the channel")
)

// Service names registered by the chat module.
const (
	ServiceJoin       = "join"
	ServiceLeave      = "leave"
	ServiceSend       = "send-message"
	ServiceGetHistory = "get-history"
	ServiceGetMembers = "get-members"
)

// ValidateMessage validates message content.
func ValidateMessage(content string) error {
	if content == "" {
		return ErrMessageEmpty
	}
	if len(content) > MaxMessageLength {
		return ErrMessageTooLong
	}
	if !utf8.ValidString(content) {
		return ErrMessageInvalid
	}
	return nil
}

// JoinRequest asks to join a project's chat channel.
type JoinRequest struct {
	ProjectID string `json:"project_id"`
	UserEmail string `json:"user_email"`
}

// JoinResponse confirms channel membership.
type JoinResponse struct {
	Room    string `json:"room"`
	Members int    `json:"members"`
}

// LeaveRequest asks to leave a project's chat channel.
type LeaveRequest struct {
	ProjectID string `json:"project_id"`
	UserEmail string `json:"user_email"`
}

// LeaveResponse confirms the departure.
type LeaveResponse struct {
	Room string `json:"room"`
}

// SendMessageRequest posts a message to a project channel.
type SendMessageRequest struct {
	ProjectID string `json:"project_id"`
	UserEmail string `json:"user_email"`
	Content   string `json:"content"`
}

// SendMessageResponse returns the stored message.
type SendMessageResponse struct {
	Message domain.Message `json:"message"`
}

// GetHistoryRequest fetches recent messages for a project channel.
type GetHistoryRequest struct {
	ProjectID string `json:"project_id"`
	Limit     int    `json:"limit"`
}

// GetHistoryResponse carries the channel history, oldest first.
type GetHistoryResponse struct {
	Messages []domain.Message `json:"messages"`
	Total    int              `json:"total"`
}

// GetMembersRequest lists the users present in a project channel.
type GetMembersRequest struct {
	ProjectID string `json:"project_id"`
}

// GetMembersResponse carries current channel members.
type GetMembersResponse struct {
	Members []domain.Member `json:"members"`
}
