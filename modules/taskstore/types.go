package taskstore

import (
	"time"

	"github.com/creativity-code/planora/domain/task"
)

// CreateTaskRequest is the request for creating a task. Start and end time
// must be supplied together or not at all.
type CreateTaskRequest struct {
	UserID      uint       `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// TaskResponse represents a task in responses.
type TaskResponse struct {
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

// GetTaskRequest is the request for fetching a single task by id.
type GetTaskRequest struct {
	ID uint `json:"id"`
}

// GetTasksRequest is the request for listing a user's tasks due on one day.
type GetTasksRequest struct {
	UserID uint   `json:"user_id"`
	Date   string `json:"date"`
}

// TaskListResponse is the response containing a list of tasks.
type TaskListResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// UpdateTaskRequest is the request for a full replace of a task's mutable
// fields.
type UpdateTaskRequest struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     string     `json:"due_date"`
	Status      string     `json:"status"`
	StartTime   *time.Time `json:"start_time,omitempty"`
	EndTime     *time.Time `json:"end_time,omitempty"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	ID uint `json:"id"`
}

// DeleteTaskResponse is the response after deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
	ID      uint `json:"id"`
}

// StartTaskRequest is the request for stamping a task's start time to now.
type StartTaskRequest struct {
	ID uint `json:"id"`
}

// CompleteTaskRequest is the request for marking a task completed.
type CompleteTaskRequest struct {
	ID uint `json:"id"`
}

// ReportRequest is the request for a report over an inclusive due-date
// range.
type ReportRequest struct {
	UserID    uint   `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SummaryResponse holds the aggregate counts of a report.
type SummaryResponse struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// ReportResponse is the derived report view. It is computed on demand and
// never stored.
type ReportResponse struct {
	Tasks   []TaskResponse  `json:"tasks"`
	Summary SummaryResponse `json:"summary"`
}

// ArchiveRequest is the request for the archive view: tasks grouped by the
// calendar month they were created in.
type ArchiveRequest struct {
	UserID uint `json:"user_id"`
	Year   int  `json:"year"`
	Month  int  `json:"month"`
}

// SearchRequest is the request for a case-insensitive substring search over
// a user's task titles and descriptions.
type SearchRequest struct {
	UserID uint   `json:"user_id"`
	Query  string `json:"query"`
}

// toTaskResponse converts a Task entity to its response record.
func toTaskResponse(t *task.Task) TaskResponse {
	return TaskResponse{
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

// toTaskListResponse converts a slice of Task entities to a list response.
func toTaskListResponse(tasks []task.Task) TaskListResponse {
	response := TaskListResponse{
		Tasks: make([]TaskResponse, 0, len(tasks)),
		Total: len(tasks),
	}
	for i := range tasks {
		response.Tasks = append(response.Tasks, toTaskResponse(&tasks[i]))
	}
	return response
}
