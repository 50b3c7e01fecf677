package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReloadSpec(t *testing.T) {
	assert.Equal(t, "", reloadSpec("", 0))
	assert.Equal(t, "@every 1m30s", reloadSpec("", 90*time.Second))
	assert.Equal(t, "*/5 * * * *", reloadSpec(" */5 * * * * ", time.Minute))
}

func TestRunScheduled_RunsImmediatelyThenOnSchedule(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- runScheduled(ctx, "@every 1s", "", func(context.Context) { runs.Add(1) })
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 500*time.Millisecond, 10*time.Millisecond)
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runScheduled did not stop after cancel")
	}
}

func TestRunScheduled_RejectsInvalidSchedule(t *testing.T) {
	var runs atomic.Int32

	err := runScheduled(context.Background(), "every so often", "", func(context.Context) { runs.Add(1) })

	assert.ErrorContains(t, err, "invalid schedule")
	assert.Zero(t, runs.Load())
}

func TestRunScheduled_RejectsInvalidTimezone(t *testing.T) {
	err := runScheduled(context.Background(), "@every 1m", "Nowhere/Special", func(context.Context) {})

	assert.ErrorContains(t, err, "invalid timezone")
}
