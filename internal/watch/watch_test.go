package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunInvokesActionImmediately(t *testing.T) {
	dir := t.TempDir()

	var calls int32
	l := &Loop{
		Dirs: []string{dir},
		Action: func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_ = l.Run(ctx)

	if atomic.LoadInt32(&calls) < 1 {
		t.Fatalf("expected at least one action invocation, got %d", calls)
	}
}

func TestRunReactsToFileChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "watched.txt")
	if err := os.WriteFile(target, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls int32
	l := &Loop{
		Dirs: []string{dir},
		Action: func(ctx context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = l.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if err := os.WriteFile(target, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	cancel()
	<-done

	if atomic.LoadInt32(&calls) < 2 {
		t.Fatalf("expected the write to trigger a second action, got %d calls", calls)
	}
}
