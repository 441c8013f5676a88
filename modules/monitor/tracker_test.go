package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/creativity-code/planora/domain/task"
	"github.com/creativity-code/planora/events"
	"github.com/creativity-code/planora/modules/taskstore"
)

func snapshot(id uint, status string, end *time.Time) events.TaskSnapshot {
	return events.TaskSnapshot{
		ID:      id,
		UserID:  1,
		Title:   "tracked",
		DueDate: "2025-03-01",
		Status:  status,
		EndTime: end,
	}
}

func TestTracker_ObserveStates(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(time.Minute)

	tests := []struct {
		name    string
		snap    events.TaskSnapshot
		tracked bool
	}{
		{"pending with end time is tracked", snapshot(1, task.StatusPending, &end), true},
		{"pending without end time is idle", snapshot(2, task.StatusPending, nil), false},
		{"completed is never tracked", snapshot(3, task.StatusCompleted, &end), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker()
			tr.Observe(tt.snap)
			if got := tr.Tracking(tt.snap.ID); got != tt.tracked {
				t.Errorf("Tracking(%d) = %v, want %v", tt.snap.ID, got, tt.tracked)
			}
		})
	}
}

func TestTracker_ObserveTransitions(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(time.Minute)
	tr := NewTracker()

	// Running task...
	tr.Observe(snapshot(1, task.StatusPending, &end))
	if !tr.Tracking(1) {
		t.Fatal("expected task to be tracked")
	}

	// ...drops out when an edit clears its end time...
	tr.Observe(snapshot(1, task.StatusPending, nil))
	if tr.Tracking(1) {
		t.Error("task without end time still tracked")
	}

	// ...and when it completes from any source.
	tr.Observe(snapshot(1, task.StatusPending, &end))
	tr.Observe(snapshot(1, task.StatusCompleted, &end))
	if tr.Tracking(1) {
		t.Error("completed task still tracked")
	}
}

func TestTracker_ExpiredFiresOnce(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(time.Second)
	tr := NewTracker()
	tr.Observe(snapshot(1, task.StatusPending, &end))

	// Before the end time nothing expires.
	if got := tr.Expired(now); len(got) != 0 {
		t.Fatalf("Expired() before end = %v", got)
	}

	// On the second tick the task expires, exactly once.
	expired := tr.Expired(now.Add(2 * time.Second))
	if len(expired) != 1 || expired[0].ID != 1 {
		t.Fatalf("Expired() = %v, want task 1", expired)
	}

	// Further ticks see a terminal timer: no additional transitions.
	for i := 0; i < 3; i++ {
		if got := tr.Expired(now.Add(time.Duration(3+i) * time.Second)); len(got) != 0 {
			t.Fatalf("Expired() after terminal tick = %v", got)
		}
	}
}

func TestTracker_DeleteStopsTracking(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(time.Second)
	tr := NewTracker()

	// Task created with a one-second countdown, deleted half way through.
	tr.Observe(snapshot(1, task.StatusPending, &end))
	tr.Forget(1)

	// No resurrection: later ticks never see it.
	if got := tr.Expired(now.Add(2 * time.Second)); len(got) != 0 {
		t.Errorf("deleted task expired anyway: %v", got)
	}
	if tr.Len() != 0 {
		t.Errorf("tracker still holds %d tasks", tr.Len())
	}
}

// countingCompleter records completion calls.
type countingCompleter struct {
	mu    sync.Mutex
	calls []uint
}

func (c *countingCompleter) Complete(_ context.Context, id uint) (taskstore.TaskResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, id)
	return taskstore.TaskResponse{ID: id, Status: task.StatusCompleted}, nil
}

func (c *countingCompleter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

// silentAlerter drops alerts in tests.
type silentAlerter struct{}

func (silentAlerter) TaskExpired(ExpiredTask) {}

func TestModule_AutoExpiry(t *testing.T) {
	completer := &countingCompleter{}
	m := NewModule()
	m.tasks = completer
	m.alerter = silentAlerter{}
	m.interval = 10 * time.Millisecond

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := m.Stop(ctx); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	}()

	end := time.Now().Add(30 * time.Millisecond)
	m.tracker.Observe(snapshot(42, task.StatusPending, &end))

	deadline := time.Now().Add(time.Second)
	for completer.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	// Give further ticks a chance to misfire, then assert exactly one
	// completion call was issued.
	time.Sleep(50 * time.Millisecond)
	if got := completer.count(); got != 1 {
		t.Fatalf("Complete() called %d times, want exactly 1", got)
	}
	if completer.calls[0] != 42 {
		t.Errorf("Complete() called with id %d, want 42", completer.calls[0])
	}
}
