// Package tasklist implements the ordered, immutable task collection.
//
// Every operation returns a new List and leaves the receiver untouched, so a
// caller can keep the previous value as a snapshot and restore it by
// assignment.
package tasklist

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"todosync/internal/service"
)

// ErrDuplicateID is returned when a task id is already present.
var ErrDuplicateID = errors.New("duplicate task id")

// List is an ordered collection of tasks with unique ids.
// The zero value is an empty list.
type List struct {
	tasks []service.Task
}

// New builds a List from tasks in order.
func New(tasks ...service.Task) (List, error) {
	var l List
	for _, t := range tasks {
		var err error
		if l, err = l.Add(t); err != nil {
			return List{}, err
		}
	}
	return l, nil
}

// Len returns the number of tasks.
func (l List) Len() int { return len(l.tasks) }

// Tasks returns a copy of the tasks in order.
func (l List) Tasks() []service.Task { return slices.Clone(l.tasks) }

// All iterates every task in order.
func (l List) All() iter.Seq[service.Task] {
	return l.Filter(All)
}

// Get returns the task with the given id.
func (l List) Get(id string) (service.Task, bool) {
	if i := l.index(id); i >= 0 {
		return l.tasks[i], true
	}
	return service.Task{}, false
}

// Contains reports whether a task with the given id exists.
func (l List) Contains(id string) bool { return l.index(id) >= 0 }

// Add appends a task. It fails if the id is already present.
func (l List) Add(t service.Task) (List, error) {
	if l.Contains(t.ID) {
		return l, fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	next := make([]service.Task, len(l.tasks), len(l.tasks)+1)
	copy(next, l.tasks)
	return List{tasks: append(next, t)}, nil
}

// Toggle flips the completed flag of the task with the given id.
// An absent id returns the list unchanged.
func (l List) Toggle(id string) List {
	i := l.index(id)
	if i < 0 {
		return l
	}
	next := slices.Clone(l.tasks)
	next[i].Completed = !next[i].Completed
	return List{tasks: next}
}

// Remove returns the list without the task with the given id.
func (l List) Remove(id string) List {
	i := l.index(id)
	if i < 0 {
		return l
	}
	next := make([]service.Task, 0, len(l.tasks)-1)
	next = append(next, l.tasks[:i]...)
	next = append(next, l.tasks[i+1:]...)
	return List{tasks: next}
}

// RemoveCompleted returns the list without completed tasks, and the removed tasks in order.
func (l List) RemoveCompleted() (List, []service.Task) {
	var kept, removed []service.Task
	for _, t := range l.tasks {
		if t.Completed {
			removed = append(removed, t)
		} else {
			kept = append(kept, t)
		}
	}
	if len(removed) == 0 {
		return l, nil
	}
	return List{tasks: kept}, removed
}

// Filter lazily yields the tasks matching f, in order. The sequence can be
// ranged over any number of times.
func (l List) Filter(f Filter) iter.Seq[service.Task] {
	tasks := l.tasks
	return func(yield func(service.Task) bool) {
		for _, t := range tasks {
			if !f.Match(t.Completed) {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// CountActive returns the number of tasks not yet completed.
func (l List) CountActive() int {
	n := 0
	for _, t := range l.tasks {
		if !t.Completed {
			n++
		}
	}
	return n
}

func (l List) index(id string) int {
	return slices.IndexFunc(l.tasks, func(t service.Task) bool { return t.ID == id })
}
