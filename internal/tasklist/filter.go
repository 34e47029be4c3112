package tasklist

import (
	"fmt"
	"strings"
)

// Filter selects which tasks a view shows.
type Filter int

const (
	All Filter = iota
	Active
	Completed
)

var filterNames = [...]string{
	All:       "all",
	Active:    "active",
	Completed: "completed",
}

func (f Filter) String() string {
	if f < All || f > Completed {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f]
}

// Match reports whether a task with the given completed flag passes the filter.
func (f Filter) Match(completed bool) bool {
	switch f {
	case Active:
		return !completed
	case Completed:
		return completed
	default:
		return true
	}
}

// ParseFilter parses a filter name (case-insensitive, trimmed).
// The empty string selects All.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return All, nil
	}
	for i, name := range filterNames {
		if name == s {
			return Filter(i), nil
		}
	}
	return All, fmt.Errorf("invalid filter: %s", s)
}
