package monitor

import "log"

// Alerter receives the one-time notification fired when a task's countdown
// reaches zero. The UI boundary supplies its own implementation; the
// default writes to the server log.
type Alerter interface {
	TaskExpired(t ExpiredTask)
}

// logAlerter is the default Alerter.
type logAlerter struct{}

func (logAlerter) TaskExpired(t ExpiredTask) {
	log.Printf("[monitor] Task %d (%q) reached its end time", t.ID, t.Title)
}
