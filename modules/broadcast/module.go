// Package broadcast fans task mutations and chat traffic out to connected
// WebSocket clients. It consumes events from the bus and relays them into
// per-user and per-project rooms. Delivery is at-most-once and nothing is
// buffered for offline clients: a client that reconnects must re-fetch the
// day's tasks to get back in sync.
package broadcast

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/creativity-code/planora/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// BroadcastModule is an EventConsumerModule that relays task and chat
// events to WebSocket clients.
type BroadcastModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.EventConsumerModule = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new BroadcastModule.
func NewModule() *BroadcastModule {
	return &BroadcastModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start launches the hub loop.
func (m *BroadcastModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[broadcast] Module started - WebSocket hub running")
	return nil
}

// Stop shuts down the hub and closes every connection.
func (m *BroadcastModule) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[broadcast] Module stopped - %d clients were connected", clientCount)
	return nil
}

// Health returns the health status.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// RegisterEventConsumers subscribes to the task lifecycle and chat events.
func (m *BroadcastModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskCreatedV1, m.handleTaskCreated, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskUpdatedV1, m.handleTaskUpdated, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskUpdated consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskCompletedV1, m.handleTaskCompleted, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.TaskDeletedV1, m.handleTaskDeleted, m,
	); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageSentV1, m.handleMessageSent, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageSent consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserJoinedV1, m.handleUserJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register UserJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserLeftV1, m.handleUserLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register UserLeft consumer: %w", err)
	}

	log.Println("[broadcast] Registered event consumers: task lifecycle + chat")
	return nil
}

// Task event handlers. Each task event fans out to the owning user's room,
// so every session that user has open sees the change.

func (m *BroadcastModule) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(UserRoom(event.Task.UserID), "task_created", WSBroadcast{
		Type: "task_created",
		Task: &event.Task,
	})
	return nil
}

func (m *BroadcastModule) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(UserRoom(event.Task.UserID), "task_updated", WSBroadcast{
		Type: "task_updated",
		Task: &event.Task,
	})
	return nil
}

func (m *BroadcastModule) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(UserRoom(event.Task.UserID), "task_completed", WSBroadcast{
		Type: "task_completed",
		Task: &event.Task,
	})
	return nil
}

func (m *BroadcastModule) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(UserRoom(event.UserID), "task_deleted", WSBroadcast{
		Type:   "task_deleted",
		TaskID: event.TaskID,
	})
	return nil
}

// Chat event handlers. Chat events carry their room name directly.

func (m *BroadcastModule) handleMessageSent(_ context.Context, event events.MessageSentEvent, _ *mono.Msg) error {
	log.Printf("[broadcast] Broadcasting message from %s in room %s", event.UserEmail, event.Room)

	m.hub.Broadcast(event.Room, "message", WSBroadcast{
		Type:      "message",
		Room:      event.Room,
		MessageID: event.MessageID,
		UserEmail: event.UserEmail,
		Content:   event.Content,
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *BroadcastModule) handleUserJoined(_ context.Context, event events.UserJoinedEvent, _ *mono.Msg) error {
	m.hub.Broadcast(event.Room, "user_joined", WSBroadcast{
		Type:      "user_joined",
		Room:      event.Room,
		UserEmail: event.UserEmail,
		Timestamp: event.Timestamp,
	})
	return nil
}

func (m *BroadcastModule) handleUserLeft(_ context.Context, event events.UserLeftEvent, _ *mono.Msg) error {
	m.hub.Broadcast(event.Room, "user_left", WSBroadcast{
		Type:      "user_left",
		Room:      event.Room,
		UserEmail: event.UserEmail,
		Timestamp: event.Timestamp,
	})
	return nil
}

// GetHub returns the WebSocket hub for the API module to use.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}

// WSBroadcast is the frame sent to WebSocket clients.
type WSBroadcast struct {
	Type      string               `json:"type"`
	Task      *events.TaskSnapshot `json:"task,omitempty"`
	TaskID    uint                 `json:"task_id,omitempty"`
	Room      string               `json:"room,omitempty"`
	MessageID string               `json:"message_id,omitempty"`
	UserEmail string               `json:"user_email,omitempty"`
	Content   string               `json:"content,omitempty"`
	Timestamp time.Time            `json:"timestamp,omitempty"`
}
