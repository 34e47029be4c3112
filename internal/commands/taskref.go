package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"todosync/internal/engine"
	"todosync/internal/service"
	"todosync/internal/tasklist"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a 1-based task number from args.
// Only the first argument is considered; extra arguments are an error.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	if !isAllDigits(args[0]) {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	return num, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// lookupTask resolves a task number against the engine's view under filter.
func lookupTask(eng *engine.Engine, filter tasklist.Filter, num int) (service.Task, error) {
	eng.SetFilter(filter)
	task, ok := eng.Snapshot().At(num)
	if !ok {
		return service.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	return task, nil
}

// filterFlag is a flag.Value holding a tasklist.Filter.
type filterFlag struct {
	f *tasklist.Filter
}

func (v filterFlag) String() string {
	if v.f == nil {
		return tasklist.All.String()
	}
	return v.f.String()
}

func (v filterFlag) Set(s string) error {
	f, err := tasklist.ParseFilter(s)
	if err != nil {
		return err
	}
	*v.f = f
	return nil
}
