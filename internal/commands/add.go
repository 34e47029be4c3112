package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todosync/internal/config"
	"todosync/internal/engine"
	"todosync/internal/exitcode"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "todosync add <text...>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, eng *engine.Engine, args []string, out, errOut io.Writer) int {
	text := strings.Join(args, " ")
	op := eng.SubmitNewTask(text)
	if op == nil {
		fmt.Fprintln(errOut, "error: task text required")
		return exitcode.UserError
	}
	return awaitOperation(ctx, cfg, op, out, errOut)
}

// awaitOperation blocks until op settles and reports the outcome.
// A rolled back change is a backend error.
func awaitOperation(ctx context.Context, cfg *config.Config, op *engine.Operation, out, errOut io.Writer) int {
	if err := op.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Fprintf(errOut, "error: interrupted before %s settled\n", op.Kind)
			return exitcode.BackendError
		}
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
