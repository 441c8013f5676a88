package taskstore

import "github.com/creativity-code/planora/domain/task"

// Notifier receives change notifications after a durable write has
// succeeded, never before. Delivery is best-effort: a notifier must not
// fail the mutation that triggered it.
type Notifier interface {
	TaskCreated(t *task.Task)
	TaskUpdated(t *task.Task)
	TaskCompleted(t *task.Task)
	TaskDeleted(id, userID uint)
}

// noopNotifier drops all notifications. It stands in until the module wires
// the event bus, and in tests that don't care about propagation.
type noopNotifier struct{}

func (noopNotifier) TaskCreated(*task.Task)   {}
func (noopNotifier) TaskUpdated(*task.Task)   {}
func (noopNotifier) TaskCompleted(*task.Task) {}
func (noopNotifier) TaskDeleted(uint, uint)   {}
