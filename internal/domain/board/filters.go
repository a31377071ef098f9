package board

import "strings"

// FilterTasks returns the tasks matching f, preserving order. A status or
// priority of "all" (or empty) matches everything; Q matches title or
// description case-insensitively.
func FilterTasks(tasks []Task, f Filters) []Task {
	q := strings.ToLower(strings.TrimSpace(f.Q))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Status != "" && f.Status != FilterAll && string(t.Status) != f.Status {
			continue
		}
		if f.Priority != "" && f.Priority != FilterAll && string(t.Priority) != f.Priority {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(t.Title), q) && !strings.Contains(strings.ToLower(t.Desc), q) {
			continue
		}
		out = append(out, t)
	}
	return out
}
