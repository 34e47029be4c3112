// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todosync/internal/service"
	"todosync/internal/view"
)

// NoTasks is printed when a view has nothing to show.
const NoTasks = "no tasks found"

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TEXT}\n" (4-wide right-aligned number, two spaces, checkbox, text)
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(task.Completed), normalizeText(task.Text))
}

// FormatView writes every task of the view followed by a footer line.
// Format of the footer: "{N} item(s) left ({filter})".
func FormatView(w io.Writer, v view.View) {
	if len(v.Tasks) == 0 {
		fmt.Fprintln(w, NoTasks)
	}
	for i, task := range v.Tasks {
		FormatTask(w, i+1, task)
	}
	FormatFooter(w, v)
}

// FormatFooter writes the active-count line of a view.
func FormatFooter(w io.Writer, v view.View) {
	fmt.Fprintf(w, "%s (%s)\n", v.ItemsLeft(), v.Filter)
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// normalizeText normalizes task text for display.
// - Empty or whitespace-only text becomes "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
