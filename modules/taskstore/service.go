package taskstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creativity-code/planora/domain/task"
)

// Service implements the task store operations over the repository.
// Validation happens before any state change; change notifications fire
// after the durable write and never roll it back.
type Service struct {
	repo   *Repository
	notify Notifier
	now    func() time.Time
}

// NewService creates a new task service.
func NewService(repo *Repository, notify Notifier) *Service {
	if notify == nil {
		notify = noopNotifier{}
	}
	return &Service{
		repo:   repo,
		notify: notify,
		now:    time.Now,
	}
}

// Create validates and persists a new task. New tasks are always pending
// and their creation timestamp is stamped once, at insert.
func (s *Service) Create(_ context.Context, req CreateTaskRequest) (TaskResponse, error) {
	if req.Title == "" {
		return TaskResponse{}, task.ErrTitleRequired
	}
	if err := task.ValidateDueDate(req.DueDate); err != nil {
		return TaskResponse{}, err
	}
	if err := task.ValidateTimes(req.StartTime, req.EndTime); err != nil {
		return TaskResponse{}, err
	}

	t := &task.Task{
		UserID:      req.UserID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      task.StatusPending,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(t); err != nil {
		return TaskResponse{}, err
	}

	s.notify.TaskCreated(t)
	return toTaskResponse(t), nil
}

// Get returns a single task by id.
func (s *Service) Get(_ context.Context, req GetTaskRequest) (TaskResponse, error) {
	t, err := s.repo.FindByID(req.ID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(t), nil
}

// GetByDate returns a user's tasks due on the given day.
func (s *Service) GetByDate(_ context.Context, req GetTasksRequest) (TaskListResponse, error) {
	if err := task.ValidateDueDate(req.Date); err != nil {
		return TaskListResponse{}, err
	}

	tasks, err := s.repo.FindByUserAndDate(req.UserID, req.Date)
	if err != nil {
		return TaskListResponse{}, err
	}
	return toTaskListResponse(tasks), nil
}

// Update fully replaces a task's mutable fields. The row is re-read first
// so a missing id fails before anything is written.
func (s *Service) Update(_ context.Context, req UpdateTaskRequest) (TaskResponse, error) {
	if req.Title == "" {
		return TaskResponse{}, task.ErrTitleRequired
	}
	if err := task.ValidateDueDate(req.DueDate); err != nil {
		return TaskResponse{}, err
	}
	if err := task.ValidateTimes(req.StartTime, req.EndTime); err != nil {
		return TaskResponse{}, err
	}
	if req.Status != task.StatusPending && req.Status != task.StatusCompleted {
		return TaskResponse{}, fmt.Errorf("%w: unknown status %q", task.ErrValidation, req.Status)
	}

	t, err := s.repo.FindByID(req.ID)
	if err != nil {
		return TaskResponse{}, err
	}

	wasPending := !t.Completed()

	t.Title = req.Title
	t.Description = req.Description
	t.DueDate = req.DueDate
	t.Status = req.Status
	t.StartTime = req.StartTime
	t.EndTime = req.EndTime

	if err := s.repo.Update(t); err != nil {
		return TaskResponse{}, err
	}

	s.notify.TaskUpdated(t)
	if wasPending && t.Completed() {
		s.notify.TaskCompleted(t)
	}
	return toTaskResponse(t), nil
}

// Delete hard-deletes a task. Deleting a task that is already gone is
// treated as success; no tombstone is kept.
func (s *Service) Delete(_ context.Context, req DeleteTaskRequest) (DeleteTaskResponse, error) {
	existing, err := s.repo.FindByID(req.ID)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			return DeleteTaskResponse{Deleted: true, ID: req.ID}, nil
		}
		return DeleteTaskResponse{ID: req.ID}, err
	}

	if err := s.repo.Delete(req.ID); err != nil {
		return DeleteTaskResponse{ID: req.ID}, err
	}

	s.notify.TaskDeleted(req.ID, existing.UserID)
	return DeleteTaskResponse{Deleted: true, ID: req.ID}, nil
}

// Start stamps a task's start time to the current wall-clock time.
func (s *Service) Start(_ context.Context, req StartTaskRequest) (TaskResponse, error) {
	t, err := s.repo.FindByID(req.ID)
	if err != nil {
		return TaskResponse{}, err
	}

	now := s.now()
	t.StartTime = &now

	if err := s.repo.Update(t); err != nil {
		return TaskResponse{}, err
	}

	s.notify.TaskUpdated(t)
	return toTaskResponse(t), nil
}

// Complete marks a task completed. Completing an already-completed task is
// not an error: the write is last-write-wins and competing completions from
// several watchers land on the same terminal state.
func (s *Service) Complete(_ context.Context, req CompleteTaskRequest) (TaskResponse, error) {
	t, err := s.repo.FindByID(req.ID)
	if err != nil {
		return TaskResponse{}, err
	}

	wasPending := !t.Completed()
	t.Status = task.StatusCompleted

	if err := s.repo.Update(t); err != nil {
		return TaskResponse{}, err
	}

	s.notify.TaskUpdated(t)
	if wasPending {
		s.notify.TaskCompleted(t)
	}
	return toTaskResponse(t), nil
}

// Report builds the derived report over an inclusive due-date range.
func (s *Service) Report(_ context.Context, req ReportRequest) (ReportResponse, error) {
	if err := task.ValidateDueDate(req.StartDate); err != nil {
		return ReportResponse{}, err
	}
	if err := task.ValidateDueDate(req.EndDate); err != nil {
		return ReportResponse{}, err
	}

	tasks, err := s.repo.FindByDateRange(req.UserID, req.StartDate, req.EndDate)
	if err != nil {
		return ReportResponse{}, err
	}

	report := task.BuildReport(tasks)
	response := ReportResponse{
		Tasks: toTaskListResponse(report.Tasks).Tasks,
		Summary: SummaryResponse{
			Total:     report.Summary.Total,
			Completed: report.Summary.Completed,
			Pending:   report.Summary.Pending,
		},
	}
	return response, nil
}

// Archive returns the tasks a user created in the given calendar month.
func (s *Service) Archive(_ context.Context, req ArchiveRequest) (TaskListResponse, error) {
	if req.Month < 1 || req.Month > 12 {
		return TaskListResponse{}, fmt.Errorf("%w: month must be 1-12", task.ErrValidation)
	}
	if req.Year < 1 {
		return TaskListResponse{}, fmt.Errorf("%w: year is required", task.ErrValidation)
	}

	tasks, err := s.repo.FindByCreatedMonth(req.UserID, req.Year, time.Month(req.Month))
	if err != nil {
		return TaskListResponse{}, err
	}
	return toTaskListResponse(tasks), nil
}

// Search returns the user's tasks matching the query case-insensitively in
// title or description.
func (s *Service) Search(_ context.Context, req SearchRequest) (TaskListResponse, error) {
	tasks, err := s.repo.Search(req.UserID, req.Query)
	if err != nil {
		return TaskListResponse{}, err
	}
	return toTaskListResponse(tasks), nil
}
