// Package taskstore is the durable home of task state. Every mutating
// operation persists first and notifies subscribers second; the write is
// authoritative and a lost notification is never retried.
package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/creativity-code/planora/domain/task"
	"github.com/creativity-code/planora/events"
)

// Module provides the task store services via GORM + SQLite.
type Module struct {
	db       *gorm.DB
	repo     *Repository
	service  *Service
	eventBus mono.EventBus
	dbPath   string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventBusAwareModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new task store module.
func NewModule() *Module {
	dbPath := os.Getenv("PLANORA_DB_PATH")
	if dbPath == "" {
		dbPath = "planora.db"
	}
	return &Module{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "taskstore"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// RegisterServices registers the task store request-reply services. The
// framework prefixes the names, so "create" is served on
// "services.taskstore.create".
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	handlers := []struct {
		name     string
		register func() error
	}{
		{"create", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "create", json.Unmarshal, json.Marshal, m.handleCreate)
		}},
		{"get", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "get", json.Unmarshal, json.Marshal, m.handleGet)
		}},
		{"get-by-date", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "get-by-date", json.Unmarshal, json.Marshal, m.handleGetByDate)
		}},
		{"update", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "update", json.Unmarshal, json.Marshal, m.handleUpdate)
		}},
		{"delete", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "delete", json.Unmarshal, json.Marshal, m.handleDelete)
		}},
		{"start", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "start", json.Unmarshal, json.Marshal, m.handleStart)
		}},
		{"complete", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "complete", json.Unmarshal, json.Marshal, m.handleComplete)
		}},
		{"report", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "report", json.Unmarshal, json.Marshal, m.handleReport)
		}},
		{"archive", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "archive", json.Unmarshal, json.Marshal, m.handleArchive)
		}},
		{"search", func() error {
			return helper.RegisterTypedRequestReplyService(
				container, "search", json.Unmarshal, json.Marshal, m.handleSearch)
		}},
	}

	for _, h := range handlers {
		if err := h.register(); err != nil {
			return fmt.Errorf("failed to register %s service: %w", h.name, err)
		}
	}

	log.Printf("[taskstore] Registered services: services.taskstore.{create,get,get-by-date,update,delete,start,complete,report,archive,search}")
	return nil
}

// Start opens the database, applies the schema pipeline and wires the
// service.
func (m *Module) Start(_ context.Context) error {
	log.Printf("[taskstore] Connecting to SQLite database: %s", m.dbPath)

	logLevel := logger.Silent
	if os.Getenv("PLANORA_DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	if err := Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.repo = NewRepository(db)
	m.service = NewService(m.repo, &busNotifier{module: m})

	log.Println("[taskstore] Module started")
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	log.Println("[taskstore] Database connection closed")
	return nil
}

// Health performs a health check on the task store.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get sql.DB: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver": "sqlite",
			"path":   m.dbPath,
		},
	}
}

// Service handlers. These exist to satisfy the typed request-reply handler
// signature; all behavior lives in the Service.

func (m *Module) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.Create(ctx, req)
}

func (m *Module) handleGet(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.Get(ctx, req)
}

func (m *Module) handleGetByDate(ctx context.Context, req GetTasksRequest, _ *mono.Msg) (TaskListResponse, error) {
	return m.service.GetByDate(ctx, req)
}

func (m *Module) handleUpdate(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.Update(ctx, req)
}

func (m *Module) handleDelete(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	return m.service.Delete(ctx, req)
}

func (m *Module) handleStart(ctx context.Context, req StartTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.Start(ctx, req)
}

func (m *Module) handleComplete(ctx context.Context, req CompleteTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	return m.service.Complete(ctx, req)
}

func (m *Module) handleReport(ctx context.Context, req ReportRequest, _ *mono.Msg) (ReportResponse, error) {
	return m.service.Report(ctx, req)
}

func (m *Module) handleArchive(ctx context.Context, req ArchiveRequest, _ *mono.Msg) (TaskListResponse, error) {
	return m.service.Archive(ctx, req)
}

func (m *Module) handleSearch(ctx context.Context, req SearchRequest, _ *mono.Msg) (TaskListResponse, error) {
	return m.service.Search(ctx, req)
}

// busNotifier publishes change notifications on the event bus. Publish
// failures are logged and swallowed: no functional guarantee depends on the
// broadcast path and the durable write already committed.
type busNotifier struct {
	module *Module
}

func (n *busNotifier) TaskCreated(t *task.Task) {
	event := events.TaskCreatedEvent{Task: toSnapshot(t)}
	if err := events.TaskCreatedV1.Publish(n.module.eventBus, event, nil); err != nil {
		log.Printf("[taskstore] Failed to publish TaskCreated event: %v", err)
	}
}

func (n *busNotifier) TaskUpdated(t *task.Task) {
	event := events.TaskUpdatedEvent{Task: toSnapshot(t)}
	if err := events.TaskUpdatedV1.Publish(n.module.eventBus, event, nil); err != nil {
		log.Printf("[taskstore] Failed to publish TaskUpdated event: %v", err)
	}
}

func (n *busNotifier) TaskCompleted(t *task.Task) {
	event := events.TaskCompletedEvent{Task: toSnapshot(t)}
	if err := events.TaskCompletedV1.Publish(n.module.eventBus, event, nil); err != nil {
		log.Printf("[taskstore] Failed to publish TaskCompleted event: %v", err)
	}
}

func (n *busNotifier) TaskDeleted(id, userID uint) {
	event := events.TaskDeletedEvent{TaskID: id, UserID: userID}
	if err := events.TaskDeletedV1.Publish(n.module.eventBus, event, nil); err != nil {
		log.Printf("[taskstore] Failed to publish TaskDeleted event: %v", err)
	}
}

// toSnapshot copies a task row into its event representation.
func toSnapshot(t *task.Task) events.TaskSnapshot {
	return events.TaskSnapshot{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Status:      t.Status,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		CreatedAt:   t.CreatedAt,
	}
}
