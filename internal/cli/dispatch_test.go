package cli_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todosync/internal/cli"
	"todosync/internal/commands"
	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/service"
	"todosync/internal/testutil"
)

// testFactory creates a store factory that returns the given FakeStore.
func testFactory(store *testutil.FakeStore) cli.StoreFactory {
	return func(ctx context.Context, cfg *config.Config) (service.Store, error) {
		return store, nil
	}
}

func sampleStore() *testutil.FakeStore {
	return testutil.NewFakeStore(
		service.Task{ID: "1", Text: "delectus aut autem"},
		service.Task{ID: "2", Text: "quis ut nam facilis", Completed: true},
		service.Task{ID: "3", Text: "fugiat veniam minus"},
	)
}

// testEnv runs the dispatcher against an isolated config directory.
type testEnv struct {
	t       *testing.T
	dir     string
	factory cli.StoreFactory
}

func newEnv(t *testing.T, factory cli.StoreFactory) *testEnv {
	t.Setenv(config.EndpointEnv, "")
	return &testEnv{t: t, dir: t.TempDir(), factory: factory}
}

func (e *testEnv) writeConfig(body string) {
	e.t.Helper()
	if err := os.WriteFile(filepath.Join(e.dir, config.ConfigFile), []byte(body), 0o600); err != nil {
		e.t.Fatalf("write config: %v", err)
	}
}

func (e *testEnv) run(args ...string) (stdout, stderr string, code int) {
	e.t.Helper()
	var outBuf, errBuf bytes.Buffer
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, e.factory)
	if len(args) > 0 {
		args = append([]string{args[0], "--config", e.dir}, args[1:]...)
	}
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := newEnv(t, testFactory(sampleStore())).run("unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(sampleStore()))
	code := dispatcher.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := newEnv(t, nil).run("help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, _, code := newEnv(t, nil).run("version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "todosync "+commands.Version+"\n" {
		t.Errorf("unexpected version output %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	_, stderr, code := newEnv(t, nil).run("help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_InvalidFilter(t *testing.T) {
	_, stderr, code := newEnv(t, testFactory(sampleStore())).run("list", "--filter", "bogus")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasSuffix(stderr, "invalid filter: bogus\n") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_NoArgsLists(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(config.EndpointEnv, "")

	var stdout, stderr bytes.Buffer
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(sampleStore()))
	code := dispatcher.Run(context.Background(), nil, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d: %s", exitcode.Success, code, stderr.String())
	}
	if !strings.HasSuffix(stdout.String(), "2 items left (all)\n") {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
}

func TestDispatcher_FilterDoesNotLeakBetweenRuns(t *testing.T) {
	store := sampleStore()

	env := newEnv(t, testFactory(store))
	stdout, _, _ := env.run("list", "--filter", "completed")
	if strings.Count(stdout, "\n") != 2 {
		t.Errorf("expected one task and a footer, got %q", stdout)
	}

	stdout, _, _ = env.run("ls")
	if !strings.HasSuffix(stdout, "(all)\n") {
		t.Errorf("expected default filter, got %q", stdout)
	}
}

func TestDispatcher_InitialLimitFromConfig(t *testing.T) {
	env := newEnv(t, testFactory(sampleStore()))
	env.writeConfig("initial_limit: 2\n")

	stdout, stderr, code := env.run("list")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d: %s", exitcode.Success, code, stderr)
	}
	if strings.Contains(stdout, "fugiat") {
		t.Errorf("expected third task to be cut off, got %q", stdout)
	}
}

func TestDispatcher_ConfigError(t *testing.T) {
	env := newEnv(t, testFactory(sampleStore()))
	env.writeConfig("backend: carrier-pigeon\n")

	_, stderr, code := env.run("list")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	expected := "error: config error: unknown backend: carrier-pigeon\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config) (service.Store, error) {
		return nil, errors.New("failed to read token.json")
	}

	_, stderr, code := newEnv(t, factory).run("list")

	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if stderr != "error: config error: failed to read token.json\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_LoadError(t *testing.T) {
	store := sampleStore()
	store.ListErr = testutil.HTTPError("list", http.StatusInternalServerError)

	_, stderr, code := newEnv(t, testFactory(store)).run("list")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: backend error: load tasks: list: HTTP 500: Internal Server Error\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_EndpointFlag(t *testing.T) {
	var got string
	factory := func(ctx context.Context, cfg *config.Config) (service.Store, error) {
		got = cfg.Endpoint
		return sampleStore(), nil
	}

	_, _, code := newEnv(t, factory).run("list", "--endpoint", "http://localhost:3000")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if got != "http://localhost:3000" {
		t.Errorf("expected endpoint override, got %q", got)
	}
}

func TestDispatcher_RollbackIsLogged(t *testing.T) {
	store := sampleStore()
	store.CreateErr = testutil.HTTPError("create", http.StatusInternalServerError)

	_, stderr, code := newEnv(t, testFactory(store)).run("add", "buy", "milk")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if !strings.Contains(stderr, "level=WARN") || !strings.Contains(stderr, "rolled back") {
		t.Errorf("expected a rollback warning, got %q", stderr)
	}
	if !strings.HasSuffix(stderr, "error: backend error: create: HTTP 500: Internal Server Error\n") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_QuietSuppressesWarnings(t *testing.T) {
	store := sampleStore()
	store.CreateErr = testutil.HTTPError("create", http.StatusInternalServerError)

	stdout, stderr, code := newEnv(t, testFactory(store)).run("add", "--quiet", "buy", "milk")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	expected := "error: backend error: create: HTTP 500: Internal Server Error\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_ToggleFiltered(t *testing.T) {
	store := sampleStore()

	stdout, stderr, code := newEnv(t, testFactory(store)).run("done", "--filter", "completed", "1")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d: %s", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if store.Tasks()[1].Completed {
		t.Error("expected task 2 reopened remotely")
	}
}
