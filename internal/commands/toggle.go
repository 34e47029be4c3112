package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todosync/internal/config"
	"todosync/internal/engine"
	"todosync/internal/exitcode"
	"todosync/internal/tasklist"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct {
	filter tasklist.Filter
}

// SetFilter sets the filter the task number refers to (for testing).
func (c *ToggleCmd) SetFilter(f tasklist.Filter) {
	c.filter = f
}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Flip a task between open and completed" }
func (c *ToggleCmd) Usage() string     { return "todosync toggle [--filter <mode>] <n>" }
func (c *ToggleCmd) NeedsStore() bool  { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filter = tasklist.All
	fs.Var(filterFlag{&c.filter}, "filter", "")
}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, eng *engine.Engine, args []string, out, errOut io.Writer) int {
	return runOnTask(ctx, cfg, eng, c.filter, args, out, errOut, eng.ToggleTask)
}

// runOnTask resolves the task number in args and applies mutate to it.
func runOnTask(ctx context.Context, cfg *config.Config, eng *engine.Engine, filter tasklist.Filter, args []string, out, errOut io.Writer, mutate func(id string) *engine.Operation) int {
	num, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := lookupTask(eng, filter, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	op := mutate(task.ID)
	if op == nil {
		fmt.Fprintf(errOut, "error: task not found: %s\n", task.ID)
		return exitcode.UserError
	}
	return awaitOperation(ctx, cfg, op, out, errOut)
}
