package task

// Summary holds the aggregate counts for a report period.
type Summary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

// Report is a derived view over a due-date range. It is computed on demand
// and never stored.
type Report struct {
	Tasks   []Task  `json:"tasks"`
	Summary Summary `json:"summary"`
}

// BuildReport aggregates a set of tasks into a report.
func BuildReport(tasks []Task) Report {
	report := Report{Tasks: tasks}
	for _, t := range tasks {
		report.Summary.Total++
		if t.Status == StatusCompleted {
			report.Summary.Completed++
		} else {
			report.Summary.Pending++
		}
	}
	return report
}
