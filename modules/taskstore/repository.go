package taskstore

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/creativity-code/planora/domain/task"
)

// Repository is the sole authority for durable task state. It is
// constructor-injected so tests can substitute an in-memory database.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new task row and fills in the assigned id.
func (r *Repository) Create(t *task.Task) error {
	if err := r.db.Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its id.
func (r *Repository) FindByID(id uint) (*task.Task, error) {
	var t task.Task
	if err := r.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// FindByUserAndDate returns all tasks for a user due on the given day, in
// insertion order.
func (r *Repository) FindByUserAndDate(userID uint, date string) ([]task.Task, error) {
	var tasks []task.Task
	err := r.db.
		Where("user_id = ? AND due_date = ?", userID, date).
		Order("id").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// Update rewrites the mutable fields of a task row. The creation timestamp
// is never touched. Existence is the caller's concern; an update of a
// missing row is a no-op here.
func (r *Repository) Update(t *task.Task) error {
	err := r.db.Model(&task.Task{}).
		Where("id = ?", t.ID).
		Select("title", "description", "due_date", "status", "start_time", "end_time").
		Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"due_date":    t.DueDate,
			"status":      t.Status,
			"start_time":  t.StartTime,
			"end_time":    t.EndTime,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Delete removes a task row. Deleting an id that is already gone succeeds.
func (r *Repository) Delete(id uint) error {
	if err := r.db.Unscoped().Delete(&task.Task{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// FindByDateRange returns all tasks for a user whose due date falls inside
// the inclusive range.
func (r *Repository) FindByDateRange(userID uint, startDate, endDate string) ([]task.Task, error) {
	var tasks []task.Task
	err := r.db.
		Where("user_id = ? AND due_date BETWEEN ? AND ?", userID, startDate, endDate).
		Order("due_date, id").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query date range: %w", err)
	}
	return tasks, nil
}

// FindByCreatedMonth returns all tasks for a user created in the given
// calendar month. This is the archive view and filters on creation time,
// not due date.
func (r *Repository) FindByCreatedMonth(userID uint, year int, month time.Month) ([]task.Task, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	var tasks []task.Task
	err := r.db.
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Order("created_at, id").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query archive month: %w", err)
	}
	return tasks, nil
}

// Search returns the user's tasks whose title or description contains the
// query, case-insensitively.
func (r *Repository) Search(userID uint, query string) ([]task.Task, error) {
	pattern := "%" + strings.ToLower(query) + "%"

	var tasks []task.Task
	err := r.db.
		Where("user_id = ? AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)",
			userID, pattern, pattern).
		Order("id").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return tasks, nil
}
