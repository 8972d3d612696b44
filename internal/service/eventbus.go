package service

import "context"

// EventBus is the narrow synchronous publish surface used for pre-commit
// extension hooks. All subscribers for a name run before Publish returns;
// the order between subscribers is unspecified. A true return value means
// some subscriber vetoed the operation, which aborts it with no error and
// no side effect.
type EventBus interface {
	Publish(ctx context.Context, name string, payload any) (cancelled bool)
}

// TaskQueue hands persistence work to the async worker pool so storage I/O
// never blocks the mutation-serialization path. Enqueue reports whether the
// task was accepted; a full queue drops the task and the caller decides how
// to reconcile.
type TaskQueue interface {
	Enqueue(name string, run func(ctx context.Context) error) bool
}
