package chat

import "time"

// Room represents a project chat channel.
type Room struct {
	Name      string    `json:"name"`       // room name, e.g. "project-42"
	ProjectID string    `json:"project_id"` // project the channel belongs to
	CreatedAt time.Time `json:"created_at"`
}

// Message represents a chat message in a project channel.
type Message struct {
	ID        string    `json:"id"`
	Room      string    `json:"room"`
	UserEmail string    `json:"user_email"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Member represents a user currently present in a channel.
type Member struct {
	Email string `json:"email"`
	Room  string `json:"room"`
}
