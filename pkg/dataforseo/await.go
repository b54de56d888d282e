package dataforseo

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Fixed waits between submitting a task and fetching its result. The provider
// usually finishes keyword tasks within ~2s and SERP tasks within ~5s.
const (
	DefaultKeywordWait = 2 * time.Second
	DefaultSerpWait    = 5 * time.Second
)

// TaskState is a stage of the submit/wait/fetch sequence.
type TaskState string

const (
	TaskSubmitted TaskState = "submitted"
	TaskAwaiting  TaskState = "awaiting"
	TaskResolved  TaskState = "resolved"
	TaskFailed    TaskState = "failed"
)

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Task records the progress of one submitted task.
type Task[T any] struct {
	ID     string
	State  TaskState
	Wait   time.Duration
	Result T
	Err    error
}

// Await submits a task, waits once for wait, then fetches the result exactly
// once. There is no retry loop: a result that is not ready after the wait
// fails the task with an error matching ErrResultNotReady.
func Await[T any](
	ctx context.Context,
	wait time.Duration,
	sleep Sleeper,
	submit func(ctx context.Context) (string, error),
	fetch func(ctx context.Context, id string) (T, error),
) (*Task[T], error) {
	if sleep == nil {
		sleep = SleepContext
	}
	t := &Task[T]{Wait: wait}

	id, err := submit(ctx)
	if err != nil {
		t.State = TaskFailed
		t.Err = err
		return t, err
	}
	t.ID = id
	t.State = TaskSubmitted

	t.State = TaskAwaiting
	if err := sleep(ctx, wait); err != nil {
		t.State = TaskFailed
		t.Err = eris.Wrapf(err, "dataforseo: wait for task %s", id)
		return t, t.Err
	}

	res, err := fetch(ctx, id)
	if err != nil {
		t.State = TaskFailed
		t.Err = err
		return t, err
	}
	t.Result = res
	t.State = TaskResolved
	return t, nil
}
