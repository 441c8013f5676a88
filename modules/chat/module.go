// Package chat provides per-project chat channels. Channels are in-memory
// with a bounded history: a restart drops rooms and messages, clients are
// expected to treat chat as ephemeral presence, not durable record.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	domain "github.com/creativity-code/planora/domain/chat"
	"github.com/creativity-code/planora/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Module wires the chat service into the application.
type Module struct {
	store    *RoomStore
	service  *Service
	eventBus mono.EventBus
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new chat module.
func NewModule() *Module {
	return &Module{
		store: NewRoomStore(100),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "chat"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.MessageSentV1.ToBase(),
		events.UserJoinedV1.ToBase(),
		events.UserLeftV1.ToBase(),
	}
}

// Start initializes the chat service.
func (m *Module) Start(_ context.Context) error {
	m.service = NewService(m.store, &busNotifier{module: m})
	log.Println("[chat] Module started")
	return nil
}

// Stop shuts down the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[chat] Module stopped")
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"rooms":   m.store.RoomCount(),
			"members": m.store.MemberCount(),
		},
	}
}

// RegisterServices registers request/reply services with the container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	services := []struct {
		name     string
		register func() error
	}{
		{ServiceJoin, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceJoin, json.Unmarshal, json.Marshal, m.handleJoin)
		}},
		{ServiceLeave, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceLeave, json.Unmarshal, json.Marshal, m.handleLeave)
		}},
		{ServiceSend, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceSend, json.Unmarshal, json.Marshal, m.handleSend)
		}},
		{ServiceGetHistory, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceGetHistory, json.Unmarshal, json.Marshal, m.handleGetHistory)
		}},
		{ServiceGetMembers, func() error {
			return helper.RegisterTypedRequestReplyService(
				container, ServiceGetMembers, json.Unmarshal, json.Marshal, m.handleGetMembers)
		}},
	}

	for _, svc := range services {
		if err := svc.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", svc.name, err)
		}
	}

	log.Println("[chat] Registered services: join, leave, send-message, get-history, get-members")
	return nil
}

// Service handlers

func (m *Module) handleJoin(ctx context.Context, req JoinRequest, _ *mono.Msg) (JoinResponse, error) {
	room, members, err := m.service.Join(ctx, req.ProjectID, req.UserEmail)
	if err != nil {
		return JoinResponse{}, err
	}
	return JoinResponse{Room: room, Members: members}, nil
}

func (m *Module) handleLeave(ctx context.Context, req LeaveRequest, _ *mono.Msg) (LeaveResponse, error) {
	room, err := m.service.Leave(ctx, req.ProjectID, req.UserEmail)
	if err != nil {
		return LeaveResponse{}, err
	}
	return LeaveResponse{Room: room}, nil
}

func (m *Module) handleSend(ctx context.Context, req SendMessageRequest, _ *mono.Msg) (SendMessageResponse, error) {
	msg, err := m.service.Send(ctx, req.ProjectID, req.UserEmail, req.Content)
	if err != nil {
		return SendMessageResponse{}, err
	}
	return SendMessageResponse{Message: msg}, nil
}

func (m *Module) handleGetHistory(ctx context.Context, req GetHistoryRequest, _ *mono.Msg) (GetHistoryResponse, error) {
	messages, err := m.service.History(ctx, req.ProjectID, req.Limit)
	if err != nil {
		return GetHistoryResponse{}, err
	}
	return GetHistoryResponse{Messages: messages, Total: len(messages)}, nil
}

func (m *Module) handleGetMembers(ctx context.Context, req GetMembersRequest, _ *mono.Msg) (GetMembersResponse, error) {
	members, err := m.service.Members(ctx, req.ProjectID)
	if err != nil {
		return GetMembersResponse{}, err
	}
	return GetMembersResponse{Members: members}, nil
}

// busNotifier publishes chat activity to the event bus. Publish failures are
// logged and swallowed; chat state is already applied.
type busNotifier struct {
	module *Module
}

func (n *busNotifier) MessageSent(msg domain.Message) {
	event := events.MessageSentEvent{
		MessageID: msg.ID,
		Room:      msg.Room,
		UserEmail: msg.UserEmail,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	}
	if err := events.MessageSentV1.Publish(n.module.eventBus, event, nil); err != nil {
		log.Printf("[chat] Failed to publish MessageSent event: %v", err)
	}
}

func (n *busNotifier) UserJoined(room, email string, at time.Time) {
	event := events.UserJoinedEvent{Room: room, UserEmail: email, Timestamp: at}
	if err := events.UserJoinedV1.Publish(n.module.eventBus, event, nil); err != nil {
		log.Printf("[chat] Failed to publish UserJoined event: %v", err)
	}
}

func (n *busNotifier) UserLeft(room, email string, at time.Time) {
	event := events.UserLeftEvent{Room: room, UserEmail: email, Timestamp: at}
	if err := events.UserLeftV1.Publish(n.module.eventBus, event, nil); err != nil {
		log.Printf("[chat] Failed to publish UserLeft event: %v", err)
	}
}
