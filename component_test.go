package lactoserv

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *Logger {
	t.Helper()
	l, err := NewLogger(LoggerConfig{Enabled: false})
	require.NoError(t, err)
	return l
}

func TestComponentNameValidation(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)

	_, err := NewRoot(ctx, "", logger, Hooks{})
	assert.Error(t, err)

	_, err = NewRoot(ctx, "-bad", logger, Hooks{})
	assert.Error(t, err)

	_, err = NewRoot(ctx, "bad-", logger, Hooks{})
	assert.Error(t, err)

	root, err := NewRoot(ctx, "root", logger, Hooks{})
	require.NoError(t, err)
	assert.Equal(t, "/root", root.Path())
	assert.Equal(t, StateStopped, root.State())
}

func TestComponentInitRunsOnce(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)

	calls := 0
	root, err := NewRoot(ctx, "root", logger, Hooks{
		Init: func(context.Context) error {
			calls++
			return nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateStopped, root.State())
}

func TestComponentStartStopTree(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)

	var started, stopped []string

	root, err := NewRoot(ctx, "root", logger, Hooks{
		Start: func(context.Context) error {
			started = append(started, "root")
			return nil
		},
		Stop: func(context.Context, bool) error {
			stopped = append(stopped, "root")
			return nil
		},
	})
	require.NoError(t, err)

	child, err := AddChild(ctx, root, "child", Hooks{
		Start: func(context.Context) error {
			started = append(started, "child")
			return nil
		},
		Stop: func(context.Context, bool) error {
			stopped = append(stopped, "child")
			return nil
		},
	})
	require.NoError(t, err)

	require.NoError(t, root.Start(ctx))
	assert.Equal(t, StateRunning, root.State())
	assert.Equal(t, StateRunning, child.State())
	assert.ElementsMatch(t, []string{"root", "child"}, started)

	require.NoError(t, root.Stop(ctx, false))
	assert.Equal(t, StateStopped, root.State())
	assert.Equal(t, StateStopped, child.State())
	assert.ElementsMatch(t, []string{"root", "child"}, stopped)
}

func TestComponentStartAbortsOnChildFailure(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)

	root, err := NewRoot(ctx, "root", logger, Hooks{})
	require.NoError(t, err)

	var goodStopped bool
	_, err = AddChild(ctx, root, "good", Hooks{
		Stop: func(context.Context, bool) error {
			goodStopped = true
			return nil
		},
	})
	require.NoError(t, err)

	wantErr := errors.New("boom")
	_, err = AddChild(ctx, root, "bad", Hooks{
		Start: func(context.Context) error { return wantErr },
	})
	require.NoError(t, err)

	err = root.Start(ctx)
	require.Error(t, err)
	assert.Equal(t, StateStopped, root.State())
	assert.True(t, goodStopped, "already-started sibling should be stopped on abort")
}

func TestComponentStopAggregatesErrors(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)

	root, err := NewRoot(ctx, "root", logger, Hooks{})
	require.NoError(t, err)

	_, err = AddChild(ctx, root, "a", Hooks{
		Stop: func(context.Context, bool) error { return errors.New("a failed") },
	})
	require.NoError(t, err)

	_, err = AddChild(ctx, root, "b", Hooks{
		Stop: func(context.Context, bool) error { return errors.New("b failed") },
	})
	require.NoError(t, err)

	require.NoError(t, root.Start(ctx))

	err = root.Stop(ctx, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a failed")
	assert.Contains(t, err.Error(), "b failed")
	assert.Equal(t, StateStopped, root.State())
}

func TestComponentGetComponent(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)

	root, err := NewRoot(ctx, "root", logger, Hooks{})
	require.NoError(t, err)

	child, err := AddChild(ctx, root, "svc", Hooks{})
	require.NoError(t, err)

	got, err := GetComponent(root, "/root/svc")
	require.NoError(t, err)
	assert.Same(t, child, got)

	_, err = GetComponent(root, "/root/missing")
	assert.Error(t, err)
}

func TestComponentWaitForState(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)

	root, err := NewRoot(ctx, "root", logger, Hooks{})
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = root.Start(ctx)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, root.WaitForState(waitCtx, StateRunning))
}

func TestComponentAddChildRejectsAfterStartStopCycle(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)

	root, err := NewRoot(ctx, "root", logger, Hooks{})
	require.NoError(t, err)

	_, err = AddChild(ctx, root, "early", Hooks{})
	require.NoError(t, err)

	require.NoError(t, root.Start(ctx))
	require.NoError(t, root.Stop(ctx, false))

	assert.Equal(t, StateStopped, root.State())
	_, err = AddChild(ctx, root, "late", Hooks{})
	assert.Error(t, err)
}

func TestComponentDuplicateChildName(t *testing.T) {
	ctx := context.Background()
	logger := testLogger(t)

	root, err := NewRoot(ctx, "root", logger, Hooks{})
	require.NoError(t, err)

	_, err = AddChild(ctx, root, "dup", Hooks{})
	require.NoError(t, err)

	_, err = AddChild(ctx, root, "dup", Hooks{})
	assert.Error(t, err)
}
