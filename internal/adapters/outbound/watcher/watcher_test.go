package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/policyguard/policyguard/internal/adapters/outbound/watcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := watcher.NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := watcher.NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestFileWatcher_ReportsWatchedFileOnly(t *testing.T) {
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.pdf")
	dataset := filepath.Join(dir, "employees.csv")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{policy, dataset, other} {
		require.NoError(t, os.WriteFile(p, []byte("v1"), 0644))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []string
	)
	done := make(chan error, 1)
	fw := watcher.New(30*time.Millisecond, nil)
	go func() {
		done <- fw.Watch(ctx, []string{policy, dataset}, func(path string) {
			mu.Lock()
			seen = append(seen, path)
			mu.Unlock()
		})
	}()

	// Give the watcher time to register its directories.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("v2"), 0644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(dataset, []byte("v2"), 0644))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, []string{dataset}, seen)
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope", "policy.pdf")
	err := watcher.New(time.Millisecond, nil).Watch(context.Background(), []string{missing}, func(string) {})
	assert.Error(t, err)
}
