// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, task number out of range).
	UserError = 1

	// ConfigError indicates a config or credentials error.
	ConfigError = 2

	// BackendError indicates a remote store failure or a rolled back change.
	BackendError = 3
)
