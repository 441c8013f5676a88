package taskstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/creativity-code/planora/domain/task"
)

// recordingNotifier captures change notifications in order.
type recordingNotifier struct {
	created   []uint
	updated   []uint
	completed []uint
	deleted   []uint
}

func (n *recordingNotifier) TaskCreated(t *task.Task)   { n.created = append(n.created, t.ID) }
func (n *recordingNotifier) TaskUpdated(t *task.Task)   { n.updated = append(n.updated, t.ID) }
func (n *recordingNotifier) TaskCompleted(t *task.Task) { n.completed = append(n.completed, t.ID) }
func (n *recordingNotifier) TaskDeleted(id, _ uint)     { n.deleted = append(n.deleted, id) }

func setupService(t *testing.T) (*Service, *Repository, *recordingNotifier) {
	t.Helper()
	repo := NewRepository(setupTestDB(t))
	notifier := &recordingNotifier{}
	return NewService(repo, notifier), repo, notifier
}

func timePtr(tm time.Time) *time.Time { return &tm }

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     CreateTaskRequest
		wantErr error
	}{
		{
			name: "valid task without timer",
			req:  CreateTaskRequest{UserID: 1, Title: "Plan sprint", DueDate: "2025-03-01"},
		},
		{
			name: "valid task with timer",
			req: CreateTaskRequest{
				UserID: 1, Title: "Timed", DueDate: "2025-03-01",
				StartTime: timePtr(now), EndTime: timePtr(now.Add(time.Hour)),
			},
		},
		{
			name:    "missing title",
			req:     CreateTaskRequest{UserID: 1, DueDate: "2025-03-01"},
			wantErr: task.ErrTitleRequired,
		},
		{
			name:    "bad due date",
			req:     CreateTaskRequest{UserID: 1, Title: "x", DueDate: "March 1st"},
			wantErr: task.ErrInvalidDueDate,
		},
		{
			name: "start without end",
			req: CreateTaskRequest{
				UserID: 1, Title: "x", DueDate: "2025-03-01", StartTime: timePtr(now),
			},
			wantErr: task.ErrTimesIncomplete,
		},
		{
			name: "end without start",
			req: CreateTaskRequest{
				UserID: 1, Title: "x", DueDate: "2025-03-01", EndTime: timePtr(now),
			},
			wantErr: task.ErrTimesIncomplete,
		},
		{
			name: "end not after start",
			req: CreateTaskRequest{
				UserID: 1, Title: "x", DueDate: "2025-03-01",
				StartTime: timePtr(now), EndTime: timePtr(now),
			},
			wantErr: task.ErrEndBeforeStart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := setupService(t)

			resp, err := service.Create(ctx, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
				}
				// A rejected request must produce no stored record.
				tasks, _ := repo.FindByUserAndDate(tt.req.UserID, "2025-03-01")
				if len(tasks) != 0 {
					t.Errorf("rejected create left %d stored tasks", len(tasks))
				}
				return
			}

			if err != nil {
				t.Fatalf("Create() unexpected error: %v", err)
			}
			if resp.ID == 0 {
				t.Error("Create() did not assign an id")
			}
			if resp.Status != task.StatusPending {
				t.Errorf("status = %q, want %q", resp.Status, task.StatusPending)
			}
			if resp.CreatedAt.IsZero() {
				t.Error("Create() did not stamp creation time")
			}
		})
	}
}

func TestService_CreateNotifiesAfterWrite(t *testing.T) {
	ctx := context.Background()
	service, _, notifier := setupService(t)

	resp, err := service.Create(ctx, CreateTaskRequest{UserID: 1, Title: "n", DueDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(notifier.created) != 1 || notifier.created[0] != resp.ID {
		t.Errorf("created notifications = %v, want [%d]", notifier.created, resp.ID)
	}

	// Validation failures never notify.
	if _, err := service.Create(ctx, CreateTaskRequest{UserID: 1, DueDate: "2025-03-01"}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(notifier.created) != 1 {
		t.Errorf("rejected create still notified: %v", notifier.created)
	}
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupService(t)

	created, err := service.Create(ctx, CreateTaskRequest{UserID: 7, Title: "find me", DueDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := service.Get(ctx, GetTaskRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != created.ID || got.UserID != 7 || got.Title != "find me" {
		t.Errorf("Get() = %+v, want the created task", got)
	}

	if _, err := service.Get(ctx, GetTaskRequest{ID: 9999}); !errors.Is(err, task.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want %v", err, task.ErrNotFound)
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	service, _, notifier := setupService(t)

	created, err := service.Create(ctx, CreateTaskRequest{UserID: 1, Title: "before", DueDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("full replace", func(t *testing.T) {
		resp, err := service.Update(ctx, UpdateTaskRequest{
			ID: created.ID, Title: "after", Description: "edited",
			DueDate: "2025-03-02", Status: task.StatusPending,
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if resp.Title != "after" || resp.DueDate != "2025-03-02" {
			t.Errorf("Update() returned %+v", resp)
		}
		if len(notifier.updated) == 0 {
			t.Error("Update() did not notify")
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.Update(ctx, UpdateTaskRequest{
			ID: 9999, Title: "x", DueDate: "2025-03-01", Status: task.StatusPending,
		})
		if !errors.Is(err, task.ErrNotFound) {
			t.Errorf("Update() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		_, err := service.Update(ctx, UpdateTaskRequest{
			ID: created.ID, Title: "x", DueDate: "2025-03-01", Status: "archived",
		})
		if !errors.Is(err, task.ErrValidation) {
			t.Errorf("Update() error = %v, want validation error", err)
		}
	})

	t.Run("incomplete times rejected without change", func(t *testing.T) {
		now := time.Now()
		_, err := service.Update(ctx, UpdateTaskRequest{
			ID: created.ID, Title: "x", DueDate: "2025-03-01",
			Status: task.StatusPending, StartTime: &now,
		})
		if !errors.Is(err, task.ErrTimesIncomplete) {
			t.Fatalf("Update() error = %v, want ErrTimesIncomplete", err)
		}

		tasks, _ := service.GetByDate(ctx, GetTasksRequest{UserID: 1, Date: "2025-03-02"})
		if len(tasks.Tasks) != 1 || tasks.Tasks[0].StartTime != nil {
			t.Error("rejected update changed stored state")
		}
	})
}

func TestService_CompleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, _, notifier := setupService(t)

	created, err := service.Create(ctx, CreateTaskRequest{UserID: 1, Title: "finish me", DueDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, err := service.Complete(ctx, CompleteTaskRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("first Complete() error = %v", err)
	}
	if first.Status != task.StatusCompleted {
		t.Errorf("status after first complete = %q", first.Status)
	}

	// Competing completions land on the same terminal state with no error.
	second, err := service.Complete(ctx, CompleteTaskRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("second Complete() error = %v", err)
	}
	if second.Status != task.StatusCompleted {
		t.Errorf("status after second complete = %q", second.Status)
	}

	// Only the transition fires the completed notification.
	if len(notifier.completed) != 1 {
		t.Errorf("completed notifications = %v, want exactly one", notifier.completed)
	}
}

func TestService_Start(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupService(t)

	created, err := service.Create(ctx, CreateTaskRequest{UserID: 1, Title: "go", DueDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	before := time.Now()
	resp, err := service.Start(ctx, StartTaskRequest{ID: created.ID})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if resp.StartTime == nil || resp.StartTime.Before(before.Add(-time.Second)) {
		t.Errorf("Start() start time = %v", resp.StartTime)
	}
	if resp.Status != task.StatusPending {
		t.Errorf("Start() must not change status, got %q", resp.Status)
	}
}

func TestService_DeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	service, _, notifier := setupService(t)

	created, err := service.Create(ctx, CreateTaskRequest{UserID: 7, Title: "gone", DueDate: "2025-03-01"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	resp, err := service.Delete(ctx, DeleteTaskRequest{ID: created.ID})
	if err != nil || !resp.Deleted {
		t.Fatalf("Delete() = %+v, %v", resp, err)
	}
	if len(notifier.deleted) != 1 {
		t.Errorf("deleted notifications = %v", notifier.deleted)
	}

	// Second delete succeeds without another notification.
	if _, err := service.Delete(ctx, DeleteTaskRequest{ID: created.ID}); err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if len(notifier.deleted) != 1 {
		t.Errorf("repeated delete notified again: %v", notifier.deleted)
	}

	tasks, _ := service.GetByDate(ctx, GetTasksRequest{UserID: 7, Date: "2025-03-01"})
	if len(tasks.Tasks) != 0 {
		t.Errorf("deleted task still listed: %+v", tasks.Tasks)
	}
}

func TestService_ReportAggregation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupService(t)

	days := []string{"2025-01-03", "2025-01-10", "2025-01-17", "2025-01-24", "2025-01-31"}
	var ids []uint
	for _, d := range days {
		resp, err := service.Create(ctx, CreateTaskRequest{UserID: 3, Title: "Task " + d, DueDate: d})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		ids = append(ids, resp.ID)
	}
	for _, id := range ids[:3] {
		if _, err := service.Complete(ctx, CompleteTaskRequest{ID: id}); err != nil {
			t.Fatalf("Complete() error = %v", err)
		}
	}

	report, err := service.Report(ctx, ReportRequest{UserID: 3, StartDate: "2025-01-01", EndDate: "2025-01-31"})
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if report.Summary.Total != 5 {
		t.Errorf("summary.total = %d, want 5", report.Summary.Total)
	}
	if report.Summary.Completed != 3 {
		t.Errorf("summary.completed = %d, want 3", report.Summary.Completed)
	}
	if report.Summary.Pending != 2 {
		t.Errorf("summary.pending = %d, want 2", report.Summary.Pending)
	}
	if len(report.Tasks) != 5 {
		t.Errorf("report carries %d tasks, want 5", len(report.Tasks))
	}
}

func TestService_ArchiveValidation(t *testing.T) {
	ctx := context.Background()
	service, _, _ := setupService(t)

	if _, err := service.Archive(ctx, ArchiveRequest{UserID: 1, Year: 2025, Month: 13}); !errors.Is(err, task.ErrValidation) {
		t.Errorf("Archive() month 13 error = %v, want validation error", err)
	}
	if _, err := service.Archive(ctx, ArchiveRequest{UserID: 1, Month: 4}); !errors.Is(err, task.ErrValidation) {
		t.Errorf("Archive() without year error = %v, want validation error", err)
	}
	if _, err := service.Archive(ctx, ArchiveRequest{UserID: 1, Year: 2025, Month: 4}); err != nil {
		t.Errorf("Archive() valid request error = %v", err)
	}
}
