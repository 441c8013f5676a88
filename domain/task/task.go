package task

import (
	"errors"
	"fmt"
	"time"
)

// Task statuses. A task is created pending and stays pending until it is
// completed explicitly or by timer expiry.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// DateLayout is the canonical day-precision format for due dates.
const DateLayout = "2006-01-02"

var (
	// ErrValidation is the base error for rejected requests. Specific
	// validation failures wrap it so callers can match with errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when an operation targets a task id that
	// does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrTitleRequired is returned when a task has no title.
	ErrTitleRequired = fmt.Errorf("%w: title is required", ErrValidation)
	// ErrInvalidDueDate is returned when the due date is not a calendar date.
	ErrInvalidDueDate = fmt.Errorf("%w: due date must be YYYY-MM-DD", ErrValidation)
	// ErrTimesIncomplete is returned when only one of start/end time is set.
	ErrTimesIncomplete = fmt.Errorf("%w: start and end time must be supplied together", ErrValidation)
	// ErrEndBeforeStart is returned when the end time does not come after
	// the start time.
	ErrEndBeforeStart = fmt.Errorf("%w: end time must be after start time", ErrValidation)
)

// Task is one schedulable unit of work owned by a single user. The due date
// carries no time component and is independent of the start/end timestamps;
// it exists for day-based filtering and reporting only.
type Task struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"size:2000" json:"description"`
	DueDate     string     `gorm:"size:10;index" json:"due_date"`
	Status      string     `gorm:"size:20;not null" json:"status"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// ValidateDueDate checks that a due date is a well-formed calendar date.
func ValidateDueDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return ErrInvalidDueDate
	}
	return nil
}

// ValidateTimes enforces the timer contract: start and end are either both
// absent or both present, and end is strictly later than start.
func ValidateTimes(start, end *time.Time) error {
	if (start == nil) != (end == nil) {
		return ErrTimesIncomplete
	}
	if start != nil && !end.After(*start) {
		return ErrEndBeforeStart
	}
	return nil
}

// Completed reports whether the task has reached its terminal status.
func (t *Task) Completed() bool {
	return t.Status == StatusCompleted
}

// Remaining returns the time left until the task's end time, clamped at
// zero. Tasks without an end time have nothing to count down.
func (t *Task) Remaining(now time.Time) (time.Duration, bool) {
	if t.EndTime == nil {
		return 0, false
	}
	left := t.EndTime.Sub(now)
	if left < 0 {
		left = 0
	}
	return left, true
}
