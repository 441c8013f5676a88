package taskstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort is the interface other modules use to reach the task store.
type TaskPort interface {
	Create(ctx context.Context, req CreateTaskRequest) (TaskResponse, error)
	Get(ctx context.Context, id uint) (TaskResponse, error)
	GetByDate(ctx context.Context, req GetTasksRequest) (TaskListResponse, error)
	Update(ctx context.Context, req UpdateTaskRequest) (TaskResponse, error)
	Delete(ctx context.Context, id uint) (DeleteTaskResponse, error)
	Start(ctx context.Context, id uint) (TaskResponse, error)
	Complete(ctx context.Context, id uint) (TaskResponse, error)
	Report(ctx context.Context, req ReportRequest) (ReportResponse, error)
	Archive(ctx context.Context, req ArchiveRequest) (TaskListResponse, error)
	Search(ctx context.Context, req SearchRequest) (TaskListResponse, error)
}

// Adapter implements TaskPort over the service container.
type Adapter struct {
	container mono.ServiceContainer
}

// Compile-time interface check.
var _ TaskPort = (*Adapter)(nil)

// NewAdapter creates a new task store adapter.
func NewAdapter(container mono.ServiceContainer) *Adapter {
	return &Adapter{container: container}
}

// call issues one typed request-reply round trip to the task store.
func call[Req any, Resp any](ctx context.Context, a *Adapter, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Create creates a task.
func (a *Adapter) Create(ctx context.Context, req CreateTaskRequest) (TaskResponse, error) {
	var resp TaskResponse
	err := call(ctx, a, "create", &req, &resp)
	return resp, err
}

// Get fetches a single task by id.
func (a *Adapter) Get(ctx context.Context, id uint) (TaskResponse, error) {
	req := GetTaskRequest{ID: id}
	var resp TaskResponse
	err := call(ctx, a, "get", &req, &resp)
	return resp, err
}

// GetByDate lists a user's tasks due on one day.
func (a *Adapter) GetByDate(ctx context.Context, req GetTasksRequest) (TaskListResponse, error) {
	var resp TaskListResponse
	err := call(ctx, a, "get-by-date", &req, &resp)
	return resp, err
}

// Update replaces a task's mutable fields.
func (a *Adapter) Update(ctx context.Context, req UpdateTaskRequest) (TaskResponse, error) {
	var resp TaskResponse
	err := call(ctx, a, "update", &req, &resp)
	return resp, err
}

// Delete removes a task.
func (a *Adapter) Delete(ctx context.Context, id uint) (DeleteTaskResponse, error) {
	req := DeleteTaskRequest{ID: id}
	var resp DeleteTaskResponse
	err := call(ctx, a, "delete", &req, &resp)
	return resp, err
}

// Start stamps a task's start time to now.
func (a *Adapter) Start(ctx context.Context, id uint) (TaskResponse, error) {
	req := StartTaskRequest{ID: id}
	var resp TaskResponse
	err := call(ctx, a, "start", &req, &resp)
	return resp, err
}

// Complete marks a task completed.
func (a *Adapter) Complete(ctx context.Context, id uint) (TaskResponse, error) {
	req := CompleteTaskRequest{ID: id}
	var resp TaskResponse
	err := call(ctx, a, "complete", &req, &resp)
	return resp, err
}

// Report builds a report over a due-date range.
func (a *Adapter) Report(ctx context.Context, req ReportRequest) (ReportResponse, error) {
	var resp ReportResponse
	err := call(ctx, a, "report", &req, &resp)
	return resp, err
}

// Archive lists tasks created in a calendar month.
func (a *Adapter) Archive(ctx context.Context, req ArchiveRequest) (TaskListResponse, error) {
	var resp TaskListResponse
	err := call(ctx, a, "archive", &req, &resp)
	return resp, err
}

// Search matches tasks by title or description substring.
func (a *Adapter) Search(ctx context.Context, req SearchRequest) (TaskListResponse, error) {
	var resp TaskListResponse
	err := call(ctx, a, "search", &req, &resp)
	return resp, err
}
