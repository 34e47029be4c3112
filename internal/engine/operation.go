package engine

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Kind identifies the mutation an Operation carries.
type Kind int

const (
	KindCreate Kind = iota
	KindToggle
	KindDelete
	// KindClear is one delete issued by ClearCompleted. It has no rollback path.
	KindClear
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindToggle:
		return "toggle"
	case KindDelete:
		return "delete"
	case KindClear:
		return "clear"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// State is the lifecycle position of one Operation.
//
//	Applied -> Confirmed | RolledBack | Failed
//
// Confirmed, RolledBack and Failed are terminal.
type State int32

const (
	// Applied means the optimistic change is live and the remote call is in flight.
	Applied State = iota + 1
	// Confirmed means the remote acknowledged the write.
	Confirmed
	// RolledBack means the remote call failed and the inverse delta was applied.
	RolledBack
	// Failed means the remote call failed and the local change was kept.
	Failed
)

func (s State) String() string {
	switch s {
	case Applied:
		return "applied"
	case Confirmed:
		return "confirmed"
	case RolledBack:
		return "rolled-back"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Operation tracks one optimistic mutation from apply to settlement.
type Operation struct {
	Seq    uint64
	Kind   Kind
	TaskID string

	state atomic.Int32
	err   error
	done  chan struct{}
}

func newOperation(seq uint64, kind Kind, taskID string) *Operation {
	op := &Operation{Seq: seq, Kind: kind, TaskID: taskID, done: make(chan struct{})}
	op.state.Store(int32(Applied))
	return op
}

// State returns the current lifecycle state.
func (o *Operation) State() State { return State(o.state.Load()) }

// Done is closed once the operation has settled.
func (o *Operation) Done() <-chan struct{} { return o.done }

// Err returns the remote failure, or nil. Only meaningful after Done is closed.
func (o *Operation) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait blocks until the operation settles or ctx is done. It returns nil when
// the remote acknowledged the write and the remote failure otherwise.
func (o *Operation) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Operation) settle(state State, err error) {
	o.err = err
	o.state.Store(int32(state))
}

func (o *Operation) String() string {
	return fmt.Sprintf("%s#%d(%s) %s", o.Kind, o.Seq, o.TaskID, o.State())
}
