package commands

import (
	"context"
	"flag"
	"io"

	"todosync/internal/config"
	"todosync/internal/engine"
	"todosync/internal/tasklist"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	filter tasklist.Filter
}

// SetFilter sets the filter the task number refers to (for testing).
func (c *RmCmd) SetFilter(f tasklist.Filter) {
	c.filter = f
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "todosync rm [--filter <mode>] <n>" }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filter = tasklist.All
	fs.Var(filterFlag{&c.filter}, "filter", "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, eng *engine.Engine, args []string, out, errOut io.Writer) int {
	return runOnTask(ctx, cfg, eng, c.filter, args, out, errOut, eng.DeleteTask)
}
