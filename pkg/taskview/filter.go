// Package taskview filters and summarizes task lists for presentation.
// Everything here is pure: functions take slices in and hand results
// back without touching the network or any shared state.
package taskview

import (
	"strings"
	"time"

	"github.com/example/task-planner/pkg/taskclient"
)

// Filter selects which tasks are visible. Zero values are inactive:
// an empty Status (or "all") matches every status, an empty Search
// matches everything, and a nil Date disables date filtering.
type Filter struct {
	Status string
	Search string
	Date   *time.Time
}

// Summary holds task counts over a full, unfiltered list.
type Summary struct {
	Total     int
	Pending   int
	Completed int
}

// Visible returns the tasks matching every active filter criterion.
// The input order is preserved and the input slice is not modified.
func Visible(tasks []taskclient.Task, f Filter) []taskclient.Task {
	out := make([]taskclient.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// Count summarizes a task list by status. Callers pass the unfiltered
// list so the totals stay stable while filters change.
func Count(tasks []taskclient.Task) Summary {
	s := Summary{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case "completed":
			s.Completed++
		default:
			s.Pending++
		}
	}
	return s
}

func matches(t taskclient.Task, f Filter) bool {
	if f.Status != "" && f.Status != "all" && t.Status != f.Status {
		return false
	}

	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		title := strings.ToLower(t.Title)
		desc := strings.ToLower(t.Description)
		if !strings.Contains(title, needle) && !strings.Contains(desc, needle) {
			return false
		}
	}

	if f.Date != nil {
		y1, m1, d1 := t.CreatedAt.Date()
		y2, m2, d2 := f.Date.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	}

	return true
}
