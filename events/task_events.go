// Package events declares the typed events exchanged between modules over
// the framework event bus.
package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskSnapshot is the canonical task record carried by task events. It
// mirrors the stored row; subscribers must treat it as read-only.
type TaskSnapshot struct {
	ID          uint       `json:"id"`
	UserID      uint       `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	Status      string     `json:"status"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskCreatedEvent is emitted after a task row is durably inserted.
type TaskCreatedEvent struct {
	Task TaskSnapshot `json:"task"`
}

// TaskUpdatedEvent is emitted after a task row is durably rewritten. It
// covers edits, explicit starts and status changes alike.
type TaskUpdatedEvent struct {
	Task TaskSnapshot `json:"task"`
}

// TaskCompletedEvent is emitted after a task reaches completed status,
// whether by explicit user action or timer expiry.
type TaskCompletedEvent struct {
	Task TaskSnapshot `json:"task"`
}

// TaskDeletedEvent is emitted after a task row is removed.
type TaskDeletedEvent struct {
	TaskID uint `json:"task_id"`
	UserID uint `json:"user_id"`
}

// Event definitions for the task domain.
var (
	TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
		"taskstore",
		"TaskCreated",
		"v1",
	)

	TaskUpdatedV1 = helper.EventDefinition[TaskUpdatedEvent](
		"taskstore",
		"TaskUpdated",
		"v1",
	)

	TaskCompletedV1 = helper.EventDefinition[TaskCompletedEvent](
		"taskstore",
		"TaskCompleted",
		"v1",
	)

	TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
		"taskstore",
		"TaskDeleted",
		"v1",
	)
)
