// Package monitor drives the countdown for timed tasks. Once per second it
// sweeps the tracking table and pushes every task whose end time has passed
// into completed status through the task store, so expiry survives even
// when no client is watching.
package monitor

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"

	"github.com/creativity-code/planora/events"
	"github.com/creativity-code/planora/modules/taskstore"
)

// DefaultTickInterval is the countdown granularity. Drift up to one
// interval is acceptable.
const DefaultTickInterval = time.Second

// completeTimeout bounds the store call made for one expiry so a slow
// write cannot stall the sweep loop for good.
const completeTimeout = 5 * time.Second

// TaskCompleter is the slice of the task store the monitor needs.
type TaskCompleter interface {
	Complete(ctx context.Context, id uint) (taskstore.TaskResponse, error)
}

// Module is the timer monitor.
type Module struct {
	tracker  *Tracker
	tasks    TaskCompleter
	alerter  Alerter
	interval time.Duration

	stopChan chan struct{}
	doneChan chan struct{}
	stopOnce sync.Once
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.DependentModule = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new timer monitor module.
func NewModule() *Module {
	return &Module{
		tracker:  NewTracker(),
		alerter:  logAlerter{},
		interval: DefaultTickInterval,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "monitor"
}

// Dependencies returns the list of module dependencies.
func (m *Module) Dependencies() []string {
	return []string{"taskstore"}
}

// SetDependencyServiceContainer receives service containers from
// dependencies.
func (m *Module) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "taskstore" {
		m.tasks = taskstore.NewAdapter(container)
	}
}

// SetAlerter replaces the default log-backed alerter.
func (m *Module) SetAlerter(alerter Alerter) {
	if alerter != nil {
		m.alerter = alerter
	}
}

// RegisterEventConsumers subscribes the tracker to task change events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
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

	log.Println("[monitor] Registered event consumers: TaskCreated, TaskUpdated, TaskCompleted, TaskDeleted")
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	m.tracker.Observe(event.Task)
	return nil
}

func (m *Module) handleTaskUpdated(_ context.Context, event events.TaskUpdatedEvent, _ *mono.Msg) error {
	m.tracker.Observe(event.Task)
	return nil
}

func (m *Module) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	m.tracker.Forget(event.Task.ID)
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	m.tracker.Forget(event.TaskID)
	return nil
}

// Start launches the sweep loop.
func (m *Module) Start(_ context.Context) error {
	if m.tasks == nil {
		return fmt.Errorf("taskstore dependency not set")
	}

	m.stopChan = make(chan struct{})
	m.doneChan = make(chan struct{})
	go m.run()

	log.Printf("[monitor] Module started (tick interval %s)", m.interval)
	return nil
}

// run ticks at the configured interval and sweeps the tracking table.
func (m *Module) run() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	defer close(m.doneChan)

	for {
		select {
		case <-m.stopChan:
			log.Println("[monitor] Sweep loop received stop signal")
			return
		case now := <-ticker.C:
			m.sweep(now)
		}
	}
}

// sweep completes every tracked task whose end time has passed. Each task
// leaves the tracking table before its store call, so one expiry issues
// exactly one completion attempt; a failed attempt is logged and dropped.
func (m *Module) sweep(now time.Time) {
	for _, expired := range m.tracker.Expired(now) {
		m.alerter.TaskExpired(expired)

		ctx, cancel := context.WithTimeout(context.Background(), completeTimeout)
		_, err := m.tasks.Complete(ctx, expired.ID)
		cancel()
		if err != nil {
			log.Printf("[monitor] Failed to complete expired task %d: %v", expired.ID, err)
		}
	}
}

// Stop shuts down the sweep loop.
func (m *Module) Stop(ctx context.Context) error {
	if m.stopChan == nil {
		return nil
	}

	m.stopOnce.Do(func() {
		close(m.stopChan)
	})

	select {
	case <-m.doneChan:
		log.Println("[monitor] Module stopped")
	case <-ctx.Done():
		log.Println("[monitor] Shutdown timeout exceeded")
		return ctx.Err()
	}
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"tracked_tasks": m.tracker.Len(),
			"tick_interval": m.interval.String(),
		},
	}
}
