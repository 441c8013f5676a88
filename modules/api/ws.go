package api

import (
	"context"
	"encoding/json"
	"log"

	"github.com/creativity-code/planora/modules/broadcast"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// WebSocket command types accepted from clients. Everything the server
// pushes (task updates, chat traffic) arrives as broadcast frames; the
// commands below only manage channel membership and outbound messages.
const (
	wsCmdJoin    = "join"
	wsCmdLeave   = "leave"
	wsCmdMessage = "message"
)

// WSCommand is one inbound client command.
type WSCommand struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// WSReply is a direct reply to one client command. Room-wide effects of the
// command fan out separately through the hub.
type WSReply struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id,omitempty"`
	Room      string `json:"room,omitempty"`
	Members   int    `json:"members,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	UserID    uint   `json:"user_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleWebSocket handles WebSocket connections at /ws. The access token is
// passed as a query parameter because browsers cannot set headers on
// WebSocket upgrades.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	token := c.Query("token")
	if token == "" {
		_ = c.WriteJSON(WSReply{Type: "error", Error: "Token is required"})
		_ = c.Close()
		return
	}

	claims, err := m.authAdapter.ValidateToken(context.Background(), token)
	if err != nil {
		_ = c.WriteJSON(WSReply{Type: "error", Error: "Invalid or expired token"})
		_ = c.Close()
		return
	}

	client := &broadcast.Client{
		ID:     uuid.New().String(),
		UserID: claims.UserID,
		Conn:   c,
	}

	// Registering subscribes the client to its own user room, so task
	// updates start flowing immediately.
	m.hub.Register(client)

	joined := make(map[string]bool) // projectID -> joined channel

	defer func() {
		for projectID := range joined {
			_ = m.chatAdapter.Leave(context.Background(), projectID, claims.Email)
		}
		m.hub.Unregister(client)
		log.Printf("[api] WebSocket client disconnected: %s (user %d)", client.ID, claims.UserID)
	}()

	log.Printf("[api] WebSocket client connected: %s (user %d)", client.ID, claims.UserID)

	if err := client.SendJSON(WSReply{Type: "connected", UserID: claims.UserID}); err != nil {
		log.Printf("[api] Failed to send welcome: %v", err)
		return
	}

	for {
		_, msgBytes, err := c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Client %s closed connection", client.ID)
			} else {
				log.Printf("[api] Read error from %s: %v", client.ID, err)
			}
			break
		}

		var cmd WSCommand
		if err := json.Unmarshal(msgBytes, &cmd); err != nil {
			m.sendWSError(client, "Invalid message format")
			continue
		}

		switch cmd.Type {
		case wsCmdJoin:
			m.handleWSJoin(client, claims.Email, cmd, joined)
		case wsCmdLeave:
			m.handleWSLeave(client, claims.Email, cmd, joined)
		case wsCmdMessage:
			m.handleWSMessage(client, claims.Email, cmd, joined)
		default:
			m.sendWSError(client, "Unknown message type: "+cmd.Type)
		}
	}
}

// handleWSJoin subscribes the session to a project channel. Membership is
// recorded in the chat module; the hub subscription makes the channel's
// frames reach this connection.
func (m *APIModule) handleWSJoin(client *broadcast.Client, email string, cmd WSCommand, joined map[string]bool) {
	if cmd.ProjectID == "" {
		m.sendWSError(client, "Project id is required")
		return
	}

	resp, err := m.chatAdapter.Join(context.Background(), cmd.ProjectID, email)
	if err != nil {
		m.sendWSError(client, "Failed to join channel: "+firstErrorLine(err.Error()))
		return
	}

	m.hub.JoinRoom(client.ID, resp.Room)
	joined[cmd.ProjectID] = true

	_ = client.SendJSON(WSReply{
		Type:      "joined",
		ProjectID: cmd.ProjectID,
		Room:      resp.Room,
		Members:   resp.Members,
	})
}

// handleWSLeave drops the session from a project channel.
func (m *APIModule) handleWSLeave(client *broadcast.Client, email string, cmd WSCommand, joined map[string]bool) {
	if cmd.ProjectID == "" {
		m.sendWSError(client, "Project id is required")
		return
	}
	if !joined[cmd.ProjectID] {
		m.sendWSError(client, "Not in that channel")
		return
	}

	if err := m.chatAdapter.Leave(context.Background(), cmd.ProjectID, email); err != nil {
		m.sendWSError(client, "Failed to leave channel")
		return
	}

	m.hub.LeaveRoom(client.ID, broadcast.ProjectRoom(cmd.ProjectID))
	delete(joined, cmd.ProjectID)

	_ = client.SendJSON(WSReply{Type: "left", ProjectID: cmd.ProjectID})
}

// handleWSMessage posts a message to a joined project channel. The message
// itself comes back to every member, sender included, as a broadcast frame;
// the direct reply only acknowledges acceptance.
func (m *APIModule) handleWSMessage(client *broadcast.Client, email string, cmd WSCommand, joined map[string]bool) {
	if cmd.ProjectID == "" {
		m.sendWSError(client, "Project id is required")
		return
	}
	if !joined[cmd.ProjectID] {
		m.sendWSError(client, "Join the channel first")
		return
	}

	msg, err := m.chatAdapter.Send(context.Background(), cmd.ProjectID, email, cmd.Content)
	if err != nil {
		m.sendWSError(client, firstErrorLine(err.Error()))
		return
	}

	_ = client.SendJSON(WSReply{
		Type:      "sent",
		ProjectID: cmd.ProjectID,
		MessageID: msg.ID,
	})
}

func (m *APIModule) sendWSError(client *broadcast.Client, message string) {
	_ = client.SendJSON(WSReply{Type: "error", Error: message})
}
