package system

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoInput struct {
	Message string
}

type alarmInput struct {
	Zone string
}

func newEchoSystem() *Func[echoInput, string] {
	return NewFunc("echo", func(_ context.Context, in echoInput) (string, error) {
		return in.Message, nil
	})
}

func waitForStatus(t *testing.T, x *Executor, id uint64, want Status) Invocation {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if rec, ok := x.Status(id); ok && rec.Status == want {
			return rec
		}
		time.Sleep(time.Millisecond)
	}
	rec, _ := x.Status(id)
	t.Fatalf("execution %d never reached %s (last: %s)", id, want, rec.Status)
	return Invocation{}
}

// -------------------- Execution Tests --------------------

func TestExecute_Success(t *testing.T) {
	x := NewExecutor()
	Register(x, newEchoSystem())

	h, err := Execute[echoInput, string](context.Background(), x, echoInput{Message: "ping"})
	require.NoError(t, err)

	out, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ping", out)
	assert.Equal(t, "echo", h.System())

	rec := waitForStatus(t, x, h.ID(), StatusCompleted)
	assert.Equal(t, "echo", rec.System)
}

func TestExecute_NotFound(t *testing.T) {
	x := NewExecutor()

	_, err := Execute[echoInput, string](context.Background(), x, echoInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecute_OutputTypeMismatch(t *testing.T) {
	x := NewExecutor()
	Register(x, newEchoSystem())

	_, err := Execute[echoInput, int](context.Background(), x, echoInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExecute_FailureWrapsExecutionError(t *testing.T) {
	x := NewExecutor()
	Register(x, NewFunc("alarm", func(_ context.Context, in alarmInput) (struct{}, error) {
		return struct{}{}, errors.New("siren jammed")
	}))

	h, err := Execute[alarmInput, struct{}](context.Background(), x, alarmInput{Zone: "roof"})
	require.NoError(t, err)

	_, err = h.Wait(context.Background())

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "alarm", execErr.System)
	assert.Equal(t, h.ID(), execErr.ExecutionID)
	assert.ErrorContains(t, execErr, "siren jammed")

	rec := waitForStatus(t, x, h.ID(), StatusFailed)
	assert.Equal(t, "siren jammed", rec.Reason)
}

func TestExecute_PassesThroughRunning(t *testing.T) {
	x := NewExecutor()

	release := make(chan struct{})
	Register(x, NewFunc("slow", func(_ context.Context, in echoInput) (string, error) {
		<-release
		return in.Message, nil
	}))

	h, err := Execute[echoInput, string](context.Background(), x, echoInput{Message: "later"})
	require.NoError(t, err)

	// The record is visible immediately and must pass through Running
	// before the body resolves.
	rec, ok := x.Status(h.ID())
	require.True(t, ok)
	assert.Contains(t, []Status{StatusPending, StatusRunning}, rec.Status)

	waitForStatus(t, x, h.ID(), StatusRunning)
	close(release)

	out, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "later", out)
	waitForStatus(t, x, h.ID(), StatusCompleted)
}

func TestSubmit_DynamicInput(t *testing.T) {
	x := NewExecutor()
	Register(x, newEchoSystem())

	h, err := x.Submit(context.Background(), echoInput{Message: "dyn"})
	require.NoError(t, err)

	out, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dyn", out)
}

func TestSubmit_NotFound(t *testing.T) {
	x := NewExecutor()

	_, err := x.Submit(context.Background(), alarmInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

// -------------------- Tracking Tests --------------------

func TestExecutionIDs_StrictlyIncreasing(t *testing.T) {
	x := NewExecutor(func(o *Options) { o.HistorySize = 2 })
	Register(x, newEchoSystem())

	var ids []uint64
	for i := 0; i < 5; i++ {
		h, err := Execute[echoInput, string](context.Background(), x, echoInput{Message: "x"})
		require.NoError(t, err)
		_, err = h.Wait(context.Background())
		require.NoError(t, err)
		ids = append(ids, h.ID())
	}

	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}

	// Only the two newest records survive eviction.
	require.NoError(t, x.Drain(context.Background()))
	history := x.History()
	require.Len(t, history, 2)
	assert.Equal(t, ids[3], history[0].ID)
	assert.Equal(t, ids[4], history[1].ID)

	// Evicted IDs are gone, not recycled.
	_, ok := x.Status(ids[0])
	assert.False(t, ok)
}

func TestCancel_MarksFailedWithoutPreempting(t *testing.T) {
	x := NewExecutor()

	release := make(chan struct{})
	bodyFinished := make(chan struct{})
	Register(x, NewFunc("slow", func(_ context.Context, in echoInput) (string, error) {
		<-release
		close(bodyFinished)
		return in.Message, nil
	}))

	h, err := Execute[echoInput, string](context.Background(), x, echoInput{Message: "nope"})
	require.NoError(t, err)
	waitForStatus(t, x, h.ID(), StatusRunning)

	require.NoError(t, x.Cancel(h.ID()))

	rec, ok := x.Status(h.ID())
	require.True(t, ok)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "cancelled", rec.Reason)

	// The body keeps running and its later resolution does not overwrite
	// the terminal state.
	close(release)
	<-bodyFinished
	require.NoError(t, x.Drain(context.Background()))

	rec, ok = x.Status(h.ID())
	require.True(t, ok)
	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "cancelled", rec.Reason)
}

func TestCancel_UnknownID(t *testing.T) {
	x := NewExecutor()
	assert.ErrorIs(t, x.Cancel(42), ErrNotFound)
}

func TestCancel_TerminalIsNoOp(t *testing.T) {
	x := NewExecutor()
	Register(x, newEchoSystem())

	h, err := Execute[echoInput, string](context.Background(), x, echoInput{Message: "done"})
	require.NoError(t, err)
	_, err = h.Wait(context.Background())
	require.NoError(t, err)
	waitForStatus(t, x, h.ID(), StatusCompleted)

	require.NoError(t, x.Cancel(h.ID()))

	rec, _ := x.Status(h.ID())
	assert.Equal(t, StatusCompleted, rec.Status)
}

func TestClear_KeepsIDCounter(t *testing.T) {
	x := NewExecutor()
	Register(x, newEchoSystem())

	h1, err := Execute[echoInput, string](context.Background(), x, echoInput{})
	require.NoError(t, err)
	_, _ = h1.Wait(context.Background())

	x.Clear()
	assert.Empty(t, x.History())

	h2, err := Execute[echoInput, string](context.Background(), x, echoInput{})
	require.NoError(t, err)
	_, _ = h2.Wait(context.Background())

	assert.Greater(t, h2.ID(), h1.ID())
}

// -------------------- Metrics & Drain Tests --------------------

func TestMetrics(t *testing.T) {
	x := NewExecutor()
	Register(x, newEchoSystem())
	Register(x, NewFunc("alarm", func(_ context.Context, in alarmInput) (struct{}, error) {
		return struct{}{}, errors.New("fail")
	}))

	h1, err := Execute[echoInput, string](context.Background(), x, echoInput{})
	require.NoError(t, err)
	_, err = h1.Wait(context.Background())
	require.NoError(t, err)

	h2, err := Execute[alarmInput, struct{}](context.Background(), x, alarmInput{})
	require.NoError(t, err)
	_, err = h2.Wait(context.Background())
	require.Error(t, err)

	require.NoError(t, x.Drain(context.Background()))

	m := x.Metrics()
	assert.Equal(t, uint64(2), m.Executions)
	assert.Equal(t, uint64(1), m.Succeeded)
	assert.Equal(t, uint64(1), m.Failed)
	assert.Equal(t, uint64(1), m.PerSystem["echo"].Succeeded)
	assert.Equal(t, uint64(1), m.PerSystem["alarm"].Failed)
}

func TestDrain_Timeout(t *testing.T) {
	x := NewExecutor()

	release := make(chan struct{})
	defer close(release)
	Register(x, NewFunc("slow", func(_ context.Context, in echoInput) (string, error) {
		<-release
		return "", nil
	}))

	_, err := Execute[echoInput, string](context.Background(), x, echoInput{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, x.Drain(ctx), ErrTimeout)
}

func TestHandle_WaitTimeout(t *testing.T) {
	x := NewExecutor()

	release := make(chan struct{})
	defer close(release)
	Register(x, NewFunc("slow", func(_ context.Context, in echoInput) (string, error) {
		<-release
		return "", nil
	}))

	h, err := Execute[echoInput, string](context.Background(), x, echoInput{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = h.Wait(ctx)
	assert.ErrorIs(t, err, ErrTimeout)
}
