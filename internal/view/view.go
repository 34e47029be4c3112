// Package view derives the read-only projection a renderer draws.
package view

import (
	"fmt"
	"slices"

	"todosync/internal/service"
	"todosync/internal/tasklist"
)

// View is an immutable snapshot of what a renderer should display.
type View struct {
	Filter tasklist.Filter

	// Tasks holds the tasks matching Filter, in collection order.
	Tasks []service.Task

	// ActiveCount and CompletedCount are computed over the whole collection,
	// not over Tasks.
	ActiveCount    int
	CompletedCount int
	Total          int

	// Version increases with every state change of the engine that produced the view.
	Version uint64
}

// Project builds the View for a collection under a filter.
func Project(l tasklist.List, f tasklist.Filter, version uint64) View {
	tasks := slices.Collect(l.Filter(f))
	if tasks == nil {
		tasks = []service.Task{}
	}
	active := l.CountActive()
	return View{
		Filter:         f,
		Tasks:          tasks,
		ActiveCount:    active,
		CompletedCount: l.Len() - active,
		Total:          l.Len(),
		Version:        version,
	}
}

// ItemsLeft returns the active-count label, e.g. "1 item left".
func (v View) ItemsLeft() string {
	if v.ActiveCount == 1 {
		return "1 item left"
	}
	return fmt.Sprintf("%d items left", v.ActiveCount)
}

// At returns the task at 1-based position n in the view.
func (v View) At(n int) (service.Task, bool) {
	if n < 1 || n > len(v.Tasks) {
		return service.Task{}, false
	}
	return v.Tasks[n-1], true
}
