// Package engine implements the optimistic synchronization engine.
//
// Every mutation runs the same protocol: the new collection is computed and
// made current immediately, the matching remote write is dispatched on its
// own goroutine, and when the write settles the engine either keeps the change
// (Ack) or applies the inverse delta (failure). Callers never block on the
// network; they observe state through Snapshot and Subscribe.
//
// Settlements may complete in any order. Two in-flight mutations on the same
// task are not serialized, so a rollback can undo a later optimistic change
// to that task.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"todosync/internal/service"
	"todosync/internal/tasklist"
	"todosync/internal/view"
)

// DefaultInitialLimit is the number of remote records kept by Load.
const DefaultInitialLimit = 5

// Listener is called after every state change. Listeners run on the goroutine
// that caused the change, which may be a settlement goroutine, and must pull
// the new state with Snapshot.
type Listener func()

// Options configures an Engine.
type Options struct {
	// Logger receives dispatch, confirm and rollback events. Defaults to a
	// discarding logger.
	Logger *slog.Logger

	// NewID generates ids for created tasks. Defaults to NewULID.
	NewID func() string

	// InitialLimit caps the number of remote records read by Load. Zero
	// selects DefaultInitialLimit; a negative value reads everything.
	// Duplicates within the read records are dropped, so fewer tasks may load.
	InitialLimit int

	// OnSettle, if set, is called once per operation after it settles.
	OnSettle func(*Operation)
}

// NewULID returns a fresh ULID string. ULIDs are monotonic within the process
// and never collide with the numeric ids used by the remote collection.
func NewULID() string {
	return ulid.Make().String()
}

type subscription struct {
	id uint64
	fn Listener
}

// Engine owns the task collection and the filter, and mediates every change.
type Engine struct {
	store    service.Store
	log      *slog.Logger
	newID    func() string
	limit    int
	onSettle func(*Operation)

	// ctx is detached from cancellation: a dispatched call always runs to settlement.
	ctx context.Context

	mu        sync.Mutex
	tasks     tasklist.List
	filter    tasklist.Filter
	version   uint64
	seq       uint64
	inflight  int
	waiters   []chan struct{}
	listeners []subscription
	nextSub   uint64
}

// New creates an Engine with an empty collection. Values carried by ctx are
// passed to every remote call.
func New(ctx context.Context, store service.Store, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	newID := opts.NewID
	if newID == nil {
		newID = NewULID
	}
	limit := opts.InitialLimit
	if limit == 0 {
		limit = DefaultInitialLimit
	}
	return &Engine{
		store:    store,
		log:      logger,
		newID:    newID,
		limit:    limit,
		onSettle: opts.OnSettle,
		ctx:      context.WithoutCancel(ctx),
	}
}

// Load replaces the collection with the first records of the remote list.
// Records whose id repeats an earlier one are skipped.
func (e *Engine) Load(ctx context.Context) error {
	remote, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	read := remote
	if e.limit > 0 && len(read) > e.limit {
		read = read[:e.limit]
	}

	var l tasklist.List
	for _, t := range read {
		next, err := l.Add(t)
		if err != nil {
			e.log.Warn("skipping remote task", "task_id", t.ID, "err", err)
			continue
		}
		l = next
	}

	e.mu.Lock()
	e.tasks = l
	e.version++
	e.mu.Unlock()

	e.log.Debug("loaded tasks", "kept", l.Len(), "remote", len(remote))
	e.notify()
	return nil
}

// SubmitNewTask appends a task with the trimmed text and creates it remotely.
// Empty or whitespace-only text is ignored and returns nil.
func (e *Engine) SubmitNewTask(text string) *Operation {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	task := service.Task{ID: e.newID(), Text: text}

	e.mu.Lock()
	next, err := e.tasks.Add(task)
	if err != nil {
		e.mu.Unlock()
		e.log.Error("generated task id already in use", "task_id", task.ID, "err", err)
		return nil
	}
	op := e.apply(KindCreate, task.ID, next)
	e.mu.Unlock()

	e.notify()
	e.dispatch(op, func(ctx context.Context) error {
		return e.store.Create(ctx, task)
	}, func(l tasklist.List) tasklist.List {
		return l.Remove(task.ID)
	})
	return op
}

// ToggleTask flips the completed flag of a task and patches it remotely.
// It returns nil when no task has the id.
func (e *Engine) ToggleTask(id string) *Operation {
	e.mu.Lock()
	task, ok := e.tasks.Get(id)
	if !ok {
		e.mu.Unlock()
		return nil
	}
	op := e.apply(KindToggle, id, e.tasks.Toggle(id))
	e.mu.Unlock()

	completed := !task.Completed
	e.notify()
	e.dispatch(op, func(ctx context.Context) error {
		return e.store.Update(ctx, id, service.CompletedPatch(completed))
	}, func(l tasklist.List) tasklist.List {
		return l.Toggle(id)
	})
	return op
}

// DeleteTask removes a task and deletes it remotely. On failure the removed
// record is appended again; its original position is not restored.
// It returns nil when no task has the id.
func (e *Engine) DeleteTask(id string) *Operation {
	e.mu.Lock()
	removed, ok := e.tasks.Get(id)
	if !ok {
		e.mu.Unlock()
		return nil
	}
	op := e.apply(KindDelete, id, e.tasks.Remove(id))
	e.mu.Unlock()

	e.notify()
	e.dispatch(op, func(ctx context.Context) error {
		return e.store.Delete(ctx, id)
	}, func(l tasklist.List) tasklist.List {
		if next, err := l.Add(removed); err == nil {
			return next
		}
		return l
	})
	return op
}

// ClearCompleted removes every completed task and issues one delete per task
// in parallel. Failed deletes are logged; the removal is never rolled back.
func (e *Engine) ClearCompleted() []*Operation {
	e.mu.Lock()
	next, removed := e.tasks.RemoveCompleted()
	if len(removed) == 0 {
		e.mu.Unlock()
		return nil
	}
	e.tasks = next
	e.version++
	ops := make([]*Operation, len(removed))
	for i, t := range removed {
		ops[i] = e.newOp(KindClear, t.ID)
	}
	e.mu.Unlock()

	e.notify()
	for _, op := range ops {
		id := op.TaskID
		e.dispatch(op, func(ctx context.Context) error {
			return e.store.Delete(ctx, id)
		}, nil)
	}
	return ops
}

// SetFilter changes the filter used by Snapshot.
func (e *Engine) SetFilter(f tasklist.Filter) {
	e.mu.Lock()
	if e.filter == f {
		e.mu.Unlock()
		return
	}
	e.filter = f
	e.version++
	e.mu.Unlock()

	e.notify()
}

// Filter returns the current filter.
func (e *Engine) Filter() tasklist.Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

// Snapshot returns the current view.
func (e *Engine) Snapshot() view.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return view.Project(e.tasks, e.filter, e.version)
}

// Tasks returns the current collection value.
func (e *Engine) Tasks() tasklist.List {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks
}

// Subscribe registers l to be called after every state change and returns a
// function that removes it.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	e.mu.Lock()
	e.nextSub++
	id := e.nextSub
	e.listeners = append(e.listeners, subscription{id: id, fn: l})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			for i, s := range e.listeners {
				if s.id == id {
					e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Pending returns the number of operations that have not settled yet.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.inflight
}

// Wait blocks until every operation dispatched so far has settled, or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	if e.inflight == 0 {
		e.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	e.waiters = append(e.waiters, ch)
	e.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// apply makes next current and opens an operation for it. Caller holds e.mu.
func (e *Engine) apply(kind Kind, taskID string, next tasklist.List) *Operation {
	e.tasks = next
	e.version++
	return e.newOp(kind, taskID)
}

// newOp allocates an in-flight operation. Caller holds e.mu.
func (e *Engine) newOp(kind Kind, taskID string) *Operation {
	e.seq++
	e.inflight++
	return newOperation(e.seq, kind, taskID)
}

// dispatch runs call on its own goroutine and settles op with the result.
// A nil inverse means the change has no rollback path.
func (e *Engine) dispatch(op *Operation, call func(context.Context) error, inverse func(tasklist.List) tasklist.List) {
	e.log.Debug("dispatching", "op", op.Kind.String(), "seq", op.Seq, "task_id", op.TaskID)
	go func() {
		err := call(e.ctx)
		e.settle(op, err, inverse)
	}()
}

func (e *Engine) settle(op *Operation, err error, inverse func(tasklist.List) tasklist.List) {
	attrs := []any{"op", op.Kind.String(), "seq", op.Seq, "task_id", op.TaskID}

	switch {
	case err == nil:
		op.settle(Confirmed, nil)
		e.log.Debug("confirmed", attrs...)
	case inverse == nil:
		op.settle(Failed, err)
		e.log.Warn("remote write failed, local change kept", append(attrs, "status", service.StatusOf(err), "err", err)...)
	default:
		e.mu.Lock()
		e.tasks = inverse(e.tasks)
		e.version++
		e.mu.Unlock()
		op.settle(RolledBack, err)
		e.log.Warn("remote write failed, rolled back", append(attrs, "status", service.StatusOf(err), "err", err)...)
		e.notify()
	}

	if e.onSettle != nil {
		e.onSettle(op)
	}

	e.mu.Lock()
	e.inflight--
	var waiters []chan struct{}
	if e.inflight == 0 {
		waiters, e.waiters = e.waiters, nil
	}
	e.mu.Unlock()

	close(op.done)
	for _, ch := range waiters {
		close(ch)
	}
}

func (e *Engine) notify() {
	e.mu.Lock()
	subs := make([]Listener, len(e.listeners))
	for i, s := range e.listeners {
		subs[i] = s.fn
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
