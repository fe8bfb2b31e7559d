package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRunDebouncesBursts(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	target := filepath.Join(dir, "app.js")
	other := filepath.Join(dir, "other.js")
	require.NoError(t, os.WriteFile(target, []byte("function a() {}\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	fired := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, target, Options{Debounce: 200 * time.Millisecond}, func(context.Context) error {
			calls.Add(1)
			fired <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("function b() {}\n"), 0o644))
	}

	select {
	case <-fired:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
	// A quiet period must not produce another call.
	time.Sleep(400 * time.Millisecond)
	require.Equal(t, int32(1), calls.Load())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestRunMissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)
	err := Run(context.Background(), filepath.Join(t.TempDir(), "no", "such", "file.js"), Options{}, func(context.Context) error { return nil })
	require.Error(t, err)
}
