package taskstore

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/creativity-code/planora/domain/task"
)

// migration is one named, idempotent schema-evolution step. Steps run in
// declaration order at startup; re-running a step that has already been
// applied is a no-op.
type migration struct {
	name  string
	apply func(m gorm.Migrator) error
}

// migrations is the ordered schema history for the task store. New steps
// are appended, never reordered or edited.
var migrations = []migration{
	{
		name: "create-tasks-table",
		apply: func(m gorm.Migrator) error {
			if m.HasTable(&task.Task{}) {
				return nil
			}
			return m.CreateTable(&task.Task{})
		},
	},
	{
		name: "add-start-time-column",
		apply: func(m gorm.Migrator) error {
			if m.HasColumn(&task.Task{}, "StartTime") {
				return nil
			}
			return m.AddColumn(&task.Task{}, "StartTime")
		},
	},
	{
		name: "add-end-time-column",
		apply: func(m gorm.Migrator) error {
			if m.HasColumn(&task.Task{}, "EndTime") {
				return nil
			}
			return m.AddColumn(&task.Task{}, "EndTime")
		},
	},
	{
		name: "add-created-at-column",
		apply: func(m gorm.Migrator) error {
			if m.HasColumn(&task.Task{}, "CreatedAt") {
				return nil
			}
			return m.AddColumn(&task.Task{}, "CreatedAt")
		},
	},
	{
		name: "index-user-id",
		apply: func(m gorm.Migrator) error {
			if m.HasIndex(&task.Task{}, "UserID") {
				return nil
			}
			return m.CreateIndex(&task.Task{}, "UserID")
		},
	},
	{
		name: "index-due-date",
		apply: func(m gorm.Migrator) error {
			if m.HasIndex(&task.Task{}, "DueDate") {
				return nil
			}
			return m.CreateIndex(&task.Task{}, "DueDate")
		},
	},
	{
		name: "index-created-at",
		apply: func(m gorm.Migrator) error {
			if m.HasIndex(&task.Task{}, "CreatedAt") {
				return nil
			}
			return m.CreateIndex(&task.Task{}, "CreatedAt")
		},
	},
}

// Migrate applies the schema steps in order and stops at the first failure.
func Migrate(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, step := range migrations {
		if err := step.apply(migrator); err != nil {
			return fmt.Errorf("migration %q failed: %w", step.name, err)
		}
	}
	return nil
}
