// Package watch implements the Watch Loop of SPEC_FULL.md §4.5: run an
// action once immediately, then once more per debounced filesystem change,
// indefinitely. It generalizes flapc's filewatcher_other.go debounce-map-
// of-timers to a real fsnotify.Watcher instead of a stat-polling ticker.
package watch

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 100 * time.Millisecond

// Loop watches a set of directories and invokes action once immediately,
// then again after each debounced burst of filesystem events, until ctx is
// canceled or a SIGINT/SIGTERM arrives.
type Loop struct {
	Dirs   []string
	Action func(ctx context.Context) error
	Logf   func(format string, args ...any)
}

// Run implements SPEC_FULL.md §4.5 and §5: single in-flight action
// invocation, 100ms debounce, graceful shutdown on SIGINT/SIGTERM.
func (l *Loop) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range l.Dirs {
		if err := addRecursive(watcher, dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	l.logf("running initial action")
	if err := l.runAction(ctx); err != nil {
		l.logf("action failed: %v", err)
	}

	var mu sync.Mutex
	var timer *time.Timer
	trigger := make(chan struct{}, 1)

	debounce := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceWindow, func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				debounce()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logf("watch error: %v", err)
		case <-trigger:
			l.logf("change detected, re-running action")
			if err := l.runAction(ctx); err != nil {
				l.logf("action failed: %v", err)
			}
		}
	}
}

func (l *Loop) runAction(ctx context.Context) error {
	return l.Action(ctx)
}

func (l *Loop) logf(format string, args ...any) {
	if l.Logf != nil {
		l.Logf(format, args...)
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
