package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"

	"todosync/internal/config"
	"todosync/internal/engine"
	"todosync/internal/exitcode"
	"todosync/internal/output"
	"todosync/internal/tasklist"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the shell command: a line-oriented session that
// re-renders the task list after every change, including rollbacks.
type ShellCmd struct {
	in io.Reader
}

// SetInput sets the command source (for testing). Defaults to stdin.
func (c *ShellCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return nil }
func (c *ShellCmd) Synopsis() string  { return "Interactive session" }
func (c *ShellCmd) Usage() string     { return "todosync shell" }
func (c *ShellCmd) NeedsStore() bool  { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, eng *engine.Engine, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	s := &shell{eng: eng, out: out, errOut: errOut, interactive: isTerminal(in)}

	unsubscribe := eng.Subscribe(s.render)
	defer unsubscribe()
	s.render()

	scanner := bufio.NewScanner(in)
	for {
		s.prompt()
		if !scanner.Scan() {
			break
		}
		if quit := s.exec(ctx, scanner.Text()); quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		s.errorf("read input: %v", err)
	}

	// Let in-flight writes settle so their rollbacks are rendered before exit.
	if err := eng.Wait(ctx); err != nil {
		s.errorf("interrupted with %d pending changes", eng.Pending())
		return exitcode.BackendError
	}
	return exitcode.Success
}

// shell serializes all writes; renders can arrive from settlement goroutines.
type shell struct {
	eng         *engine.Engine
	out, errOut io.Writer
	interactive bool

	mu sync.Mutex
}

// render prints the current view. The snapshot is taken under s.mu so the
// last frame written is never older than the last state change.
func (s *shell) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	output.FormatView(s.out, s.eng.Snapshot())
}

func (s *shell) prompt() {
	if !s.interactive {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "> ")
}

func (s *shell) errorf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.errOut, "error: "+format+"\n", args...)
}

// exec runs one input line. It returns true when the session should end.
func (s *shell) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case "add", "a":
		if s.eng.SubmitNewTask(rest) == nil {
			s.errorf("task text required")
		}
	case "toggle", "t", "done":
		s.onTask(rest, s.eng.ToggleTask)
	case "rm", "d", "delete":
		s.onTask(rest, s.eng.DeleteTask)
	case "clear", "c":
		if len(s.eng.ClearCompleted()) == 0 {
			s.errorf("nothing to clear")
		}
	case "filter", "f":
		f, err := tasklist.ParseFilter(rest)
		if err != nil {
			s.errorf("%v", err)
			return false
		}
		s.eng.SetFilter(f)
	case "list", "ls":
		s.render()
	case "wait", "w":
		if err := s.eng.Wait(ctx); err != nil {
			s.errorf("%v", err)
		}
	case "help", "?":
		s.mu.Lock()
		fmt.Fprint(s.out, shellHelp)
		s.mu.Unlock()
	case "quit", "exit", "q":
		return true
	default:
		s.errorf("unknown command: %s", name)
	}
	return false
}

func (s *shell) onTask(arg string, mutate func(id string) *engine.Operation) {
	num, err := strconv.Atoi(arg)
	if err != nil {
		s.errorf("invalid task reference: %s", arg)
		return
	}
	task, ok := s.eng.Snapshot().At(num)
	if !ok {
		s.errorf("task number out of range: %d", num)
		return
	}
	mutate(task.ID)
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

const shellHelp = `Commands:
  add <text>        Create a task
  toggle <n>        Flip task n between open and completed
  rm <n>            Delete task n
  clear             Delete all completed tasks
  filter <mode>     Show all, active or completed tasks
  list              Print the task list
  wait              Wait for pending changes to settle
  quit              Leave the shell
`
