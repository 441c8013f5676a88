package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// MessageSentEvent is emitted when a user posts a message to a project
// channel. Rooms are implicit: publishing to one creates it.
type MessageSentEvent struct {
	MessageID string    `json:"message_id"`
	Room      string    `json:"room"`
	UserEmail string    `json:"user_email"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserJoinedEvent is emitted when a user subscribes to a project channel.
type UserJoinedEvent struct {
	Room      string    `json:"room"`
	UserEmail string    `json:"user_email"`
	Timestamp time.Time `json:"timestamp"`
}

// UserLeftEvent is emitted when a user unsubscribes from a project channel.
type UserLeftEvent struct {
	Room      string    `json:"room"`
	UserEmail string    `json:"user_email"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the chat domain.
var (
	MessageSentV1 = helper.EventDefinition[MessageSentEvent](
		"chat",
		"MessageSent",
		"v1",
	)

	UserJoinedV1 = helper.EventDefinition[UserJoinedEvent](
		"chat",
		"UserJoined",
		"v1",
	)

	UserLeftV1 = helper.EventDefinition[UserLeftEvent](
		"chat",
		"UserLeft",
		"v1",
	)
)
