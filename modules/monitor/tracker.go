package monitor

import (
	"sync"
	"time"

	"github.com/creativity-code/planora/domain/task"
	"github.com/creativity-code/planora/events"
)

// ExpiredTask describes a tracked task whose countdown reached zero.
type ExpiredTask struct {
	ID     uint
	UserID uint
	Title  string
	EndAt  time.Time
}

// entry is one task under countdown.
type entry struct {
	userID uint
	title  string
	endAt  time.Time
}

// Tracker keeps the countdown state for in-flight tasks. A task is tracked
// only while it is pending and has an end time; completion, deletion or the
// loss of its end time removes it. A task handed out by Expired is gone
// from the table, so each expiry is observed exactly once.
type Tracker struct {
	mu    sync.Mutex
	tasks map[uint]entry
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		tasks: make(map[uint]entry),
	}
}

// Observe reconciles the tracker with the latest snapshot of a task.
// Pending tasks with an end time are tracked; everything else is dropped.
func (tr *Tracker) Observe(snap events.TaskSnapshot) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if snap.Status != task.StatusPending || snap.EndTime == nil {
		delete(tr.tasks, snap.ID)
		return
	}
	tr.tasks[snap.ID] = entry{
		userID: snap.UserID,
		title:  snap.Title,
		endAt:  *snap.EndTime,
	}
}

// Forget stops tracking a task, typically because it was deleted.
func (tr *Tracker) Forget(id uint) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	delete(tr.tasks, id)
}

// Expired removes and returns every tracked task whose end time has been
// reached at now.
func (tr *Tracker) Expired(now time.Time) []ExpiredTask {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	var expired []ExpiredTask
	for id, e := range tr.tasks {
		if e.endAt.After(now) {
			continue
		}
		expired = append(expired, ExpiredTask{
			ID:     id,
			UserID: e.userID,
			Title:  e.title,
			EndAt:  e.endAt,
		})
		delete(tr.tasks, id)
	}
	return expired
}

// Tracking reports whether a task is currently under countdown.
func (tr *Tracker) Tracking(id uint) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	_, ok := tr.tasks[id]
	return ok
}

// Len returns the number of tracked tasks.
func (tr *Tracker) Len() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.tasks)
}
