// Package tui is the full-screen terminal interface. It renders engine
// snapshots and turns key presses into engine operations; every change,
// including a rollback, reaches it as a state change notification.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todosync/internal/engine"
	"todosync/internal/tasklist"
	"todosync/internal/view"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("141"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	completedStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	tabStyle       = lipgloss.NewStyle().Faint(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// stateChangedMsg tells the model to pull a fresh snapshot.
type stateChangedMsg struct{}

// settledMsg carries operations that have all settled.
type settledMsg struct {
	ops []*engine.Operation
}

// Model is the bubbletea model.
type Model struct {
	eng    *engine.Engine
	view   view.View
	cursor int

	adding bool
	input  textinput.Model

	status string
	keys   keyMap
	help   help.Model
}

// New creates a Model showing the engine's current state.
func New(eng *engine.Engine) Model {
	input := textinput.New()
	input.Placeholder = "What needs to be done?"
	input.Prompt = "+ "
	input.CharLimit = 500

	return Model{
		eng:   eng,
		view:  eng.Snapshot(),
		input: input,
		keys:  defaultKeyMap(),
		help:  help.New(),
	}
}

// Run starts the interface and blocks until the user quits or ctx is done.
func Run(ctx context.Context, eng *engine.Engine, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(New(eng), opts...)

	// Listeners may fire inside Update; Send must not block the event loop.
	unsubscribe := eng.Subscribe(func() {
		go p.Send(stateChangedMsg{})
	})
	defer unsubscribe()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateChangedMsg:
		m.refresh()
		return m, nil

	case settledMsg:
		m.refresh()
		m.reportSettled(msg.ops)
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			return m.updateAdding(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m Model) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		op := m.eng.SubmitNewTask(m.input.Value())
		m.input.Reset()
		m.input.Blur()
		m.adding = false
		m.refresh()
		return m, watch(op)
	case tea.KeyEsc:
		m.input.Reset()
		m.input.Blur()
		m.adding = false
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.view.Tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.status = ""
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		return m.onSelected(m.eng.ToggleTask)
	case key.Matches(msg, m.keys.Delete):
		return m.onSelected(m.eng.DeleteTask)
	case key.Matches(msg, m.keys.Clear):
		ops := m.eng.ClearCompleted()
		m.refresh()
		return m, watch(ops...)
	case key.Matches(msg, m.keys.Filter):
		m.setFilter(nextFilter(m.view.Filter))
	case key.Matches(msg, m.keys.All):
		m.setFilter(tasklist.All)
	case key.Matches(msg, m.keys.Active):
		m.setFilter(tasklist.Active)
	case key.Matches(msg, m.keys.Completed):
		m.setFilter(tasklist.Completed)
	}
	return m, nil
}

func (m Model) onSelected(mutate func(id string) *engine.Operation) (tea.Model, tea.Cmd) {
	if m.cursor >= len(m.view.Tasks) {
		return m, nil
	}
	op := mutate(m.view.Tasks[m.cursor].ID)
	m.refresh()
	return m, watch(op)
}

func (m *Model) setFilter(f tasklist.Filter) {
	m.eng.SetFilter(f)
	m.cursor = 0
	m.refresh()
}

func (m *Model) refresh() {
	m.view = m.eng.Snapshot()
	if m.cursor >= len(m.view.Tasks) {
		m.cursor = max(len(m.view.Tasks)-1, 0)
	}
}

// reportSettled sets the status line from failed operations.
func (m *Model) reportSettled(ops []*engine.Operation) {
	var failed []*engine.Operation
	for _, op := range ops {
		if s := op.State(); s == engine.RolledBack || s == engine.Failed {
			failed = append(failed, op)
		}
	}
	switch {
	case len(failed) == 0:
	case len(ops) > 1:
		m.status = fmt.Sprintf("clear: %d of %d deletes failed: %v", len(failed), len(ops), failed[0].Err())
	case failed[0].State() == engine.RolledBack:
		m.status = fmt.Sprintf("%s failed, change undone: %v", failed[0].Kind, failed[0].Err())
	default:
		m.status = fmt.Sprintf("%s of %s failed: %v", failed[0].Kind, failed[0].TaskID, failed[0].Err())
	}
}

// watch waits in a command goroutine until every op has settled.
func watch(ops ...*engine.Operation) tea.Cmd {
	ops = slices.DeleteFunc(ops, func(op *engine.Operation) bool { return op == nil })
	if len(ops) == 0 {
		return nil
	}
	return func() tea.Msg {
		for _, op := range ops {
			<-op.Done()
		}
		return settledMsg{ops: ops}
	}
}

func nextFilter(f tasklist.Filter) tasklist.Filter {
	switch f {
	case tasklist.All:
		return tasklist.Active
	case tasklist.Active:
		return tasklist.Completed
	default:
		return tasklist.All
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("todos"))
	b.WriteString("\n\n")

	if m.adding {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
	}

	if len(m.view.Tasks) == 0 {
		b.WriteString(footerStyle.Render("  nothing here"))
		b.WriteString("\n")
	}
	for i, task := range m.view.Tasks {
		prefix := "  "
		if i == m.cursor && !m.adding {
			prefix = cursorStyle.Render("> ")
		}
		box, text := "[ ]", task.Text
		if task.Completed {
			box, text = "[x]", completedStyle.Render(task.Text)
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, box, text)
	}

	b.WriteString("\n")
	b.WriteString(footerStyle.Render(m.view.ItemsLeft()))
	b.WriteString("  ")
	for _, f := range []tasklist.Filter{tasklist.All, tasklist.Active, tasklist.Completed} {
		style := tabStyle
		if f == m.view.Filter {
			style = activeTabStyle
		}
		b.WriteString(style.Render(f.String()))
		b.WriteString(" ")
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}
