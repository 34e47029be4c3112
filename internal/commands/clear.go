package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todosync/internal/config"
	"todosync/internal/engine"
	"todosync/internal/exitcode"
)

func init() {
	Register(&ClearCmd{})
}

// ClearCmd implements the clear command.
// Remote delete failures are logged by the engine and do not change the exit code.
type ClearCmd struct{}

func (c *ClearCmd) Name() string      { return "clear" }
func (c *ClearCmd) Aliases() []string { return nil }
func (c *ClearCmd) Synopsis() string  { return "Delete all completed tasks" }
func (c *ClearCmd) Usage() string     { return "todosync clear" }
func (c *ClearCmd) NeedsStore() bool  { return true }

func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ClearCmd) Run(ctx context.Context, cfg *config.Config, eng *engine.Engine, args []string, out, errOut io.Writer) int {
	ops := eng.ClearCompleted()
	if len(ops) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "nothing to clear")
		}
		return exitcode.Success
	}

	if err := eng.Wait(ctx); err != nil {
		fmt.Fprintf(errOut, "error: interrupted before clear settled\n")
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "cleared %d\n", len(ops))
	}
	return exitcode.Success
}
