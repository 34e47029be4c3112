// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"slices"
	"sync"

	"todosync/internal/service"
)

// Call records one request received by FakeStore.
type Call struct {
	Op    string // "list", "create", "update" or "delete"
	ID    string
	Task  service.Task
	Patch service.Patch
}

// FakeStore is an in-memory implementation of service.Store for testing.
// It is safe for concurrent use.
type FakeStore struct {
	mu    sync.Mutex
	tasks []service.Task
	calls []Call
	gate  chan struct{}

	// Error injection for testing
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
	failIDs   map[string]error // task id -> error for any write on it
}

// NewFakeStore creates a FakeStore holding the given remote tasks.
func NewFakeStore(tasks ...service.Task) *FakeStore {
	return &FakeStore{
		tasks:   slices.Clone(tasks),
		failIDs: make(map[string]error),
	}
}

// HTTPError returns an HTTPFailure with the given status for op.
func HTTPError(op string, status int) error {
	return &service.HTTPFailure{Op: op, StatusCode: status, Body: http.StatusText(status)}
}

// FailID makes every write that targets id fail with err.
func (f *FakeStore) FailID(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failIDs[id] = err
}

// Hold makes subsequent write calls block until Release is called.
func (f *FakeStore) Hold() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate == nil {
		f.gate = make(chan struct{})
	}
}

// Release unblocks every write call waiting on Hold.
func (f *FakeStore) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gate != nil {
		close(f.gate)
		f.gate = nil
	}
}

// Calls returns the recorded calls in arrival order.
func (f *FakeStore) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount returns the number of recorded calls for op.
func (f *FakeStore) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Tasks returns the remote tasks as the fake currently holds them.
func (f *FakeStore) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks)
}

// List implements service.Store.
func (f *FakeStore) List(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: "list"})
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return slices.Clone(f.tasks), nil
}

// Create implements service.Store.
func (f *FakeStore) Create(ctx context.Context, task service.Task) error {
	if err := f.begin(ctx, Call{Op: "create", ID: task.ID, Task: task}, f.CreateErr); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return nil
}

// Update implements service.Store.
func (f *FakeStore) Update(ctx context.Context, id string, patch service.Patch) error {
	if err := f.begin(ctx, Call{Op: "update", ID: id, Patch: patch}, f.UpdateErr); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := slices.IndexFunc(f.tasks, func(t service.Task) bool { return t.ID == id })
	if i < 0 {
		return HTTPError("update", http.StatusNotFound)
	}
	if patch.Completed != nil {
		f.tasks[i].Completed = *patch.Completed
	}
	return nil
}

// Delete implements service.Store.
func (f *FakeStore) Delete(ctx context.Context, id string) error {
	if err := f.begin(ctx, Call{Op: "delete", ID: id}, f.DeleteErr); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = slices.DeleteFunc(f.tasks, func(t service.Task) bool { return t.ID == id })
	return nil
}

// begin records a write call, waits on the gate, and returns the injected error.
func (f *FakeStore) begin(ctx context.Context, c Call, opErr error) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return &service.NetworkFailure{Op: c.Op, Err: ctx.Err()}
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failIDs[c.ID]; ok {
		return err
	}
	return opErr
}
