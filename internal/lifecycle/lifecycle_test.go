package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/lifecycle"
)

func TestRun_ClosesInReverseOrder(t *testing.T) {
	lc := lifecycle.New(zaptest.NewLogger(t))
	var order []string
	for _, name := range []string{"growth", "database", "console"} {
		name := name
		lc.Add(name, lifecycle.CloseFunc(func() error {
			order = append(order, name)
			return nil
		}))
	}

	ran := false
	err := lc.Run(context.Background(), func(context.Context) error {
		ran = true
		assert.Empty(t, order, "resources stay open while the task runs")
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, []string{"console", "database", "growth"}, order)
}

func TestRun_JoinsTaskAndCloseErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	lc := lifecycle.New(zap.New(core))
	closeErr := errors.New("disk gone")
	taskErr := errors.New("boom")
	lc.Add("growth", lifecycle.CloseFunc(func() error { return closeErr }))

	err := lc.Run(context.Background(), func(context.Context) error { return taskErr })
	assert.ErrorIs(t, err, taskErr)
	assert.ErrorIs(t, err, closeErr)
	assert.Equal(t, 1, logs.FilterMessage("task failed, shutting down").Len())
	assert.Equal(t, 1, logs.FilterMessage("closing resource failed").Len())
}

func TestRun_CancelledParentReachesTask(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	lc := lifecycle.New(zap.New(core))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := lc.Run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, logs.FilterMessage("task interrupted, shutting down").Len())
}

func TestClose_IsIdempotent(t *testing.T) {
	lc := lifecycle.New(zaptest.NewLogger(t))
	n := 0
	lc.Add("db", lifecycle.CloseFunc(func() error { n++; return nil }))
	require.NoError(t, lc.Close())
	require.NoError(t, lc.Close())
	assert.Equal(t, 1, n)
}

func TestPropertyRun_ClosesEveryResourceOnce(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(0, 20).Draw(rt, "count")
		lc := lifecycle.New(zap.NewNop())
		closed := make([]int, count)
		for i := 0; i < count; i++ {
			i := i
			lc.Add("r", lifecycle.CloseFunc(func() error { closed[i]++; return nil }))
		}
		if err := lc.Run(context.Background(), func(context.Context) error { return nil }); err != nil {
			rt.Fatalf("Run: %v", err)
		}
		for i, n := range closed {
			if n != 1 {
				rt.Fatalf("resource %d closed %d times", i, n)
			}
		}
	})
}
