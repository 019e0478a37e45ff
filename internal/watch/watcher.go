// Package watch re-runs analysis whenever a submission changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ferlint/internal/analyzer"
	"ferlint/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Analyzer is the subset of *analyzer.Analyzer the watcher needs.
type Analyzer interface {
	Analyze(ctx context.Context, path string) analyzer.Result
}

// SubmissionWatcher watches a submission file, or every .py file in a
// submission directory, and analyzes it once changes settle.
// The parent directory is watched so editors that save by rename are seen.
type SubmissionWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	analyzer    Analyzer
	path        string // what gets analyzed
	dir         string // what gets watched
	file        string // base name filter; empty matches any .py file
	debounceDur time.Duration
	pendingAt   time.Time
	onResult    func(analyzer.Result)
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats Stats
}

// Stats tracks watcher activity.
type Stats struct {
	Events    int
	Analyses  int
	Errors    int
	LastEvent time.Time
}

// New creates a watcher for path. onResult receives every analysis result
// and is called from the watcher goroutine.
func New(path string, a Analyzer, debounce time.Duration, onResult func(analyzer.Result)) (*SubmissionWatcher, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", path, err)
	}

	sw := &SubmissionWatcher{
		analyzer:    a,
		path:        path,
		debounceDur: debounce,
		onResult:    onResult,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	if info.IsDir() {
		sw.dir = path
	} else {
		sw.dir = filepath.Dir(path)
		sw.file = filepath.Base(path)
	}
	if sw.debounceDur <= 0 {
		sw.debounceDur = 500 * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	sw.watcher = watcher
	return sw, nil
}

// Start begins watching. It is non-blocking.
func (sw *SubmissionWatcher) Start(ctx context.Context) error {
	sw.mu.Lock()
	if sw.running {
		sw.mu.Unlock()
		return nil
	}
	sw.running = true
	sw.mu.Unlock()

	if err := sw.watcher.Add(sw.dir); err != nil {
		sw.mu.Lock()
		sw.running = false
		sw.mu.Unlock()
		_ = sw.watcher.Close()
		close(sw.doneCh)
		return fmt.Errorf("failed to watch %s: %w", sw.dir, err)
	}
	logging.Watch("watching %s for changes", sw.dir)

	go sw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (sw *SubmissionWatcher) Stop() {
	sw.mu.Lock()
	if !sw.running {
		sw.mu.Unlock()
		return
	}
	sw.running = false
	sw.mu.Unlock()

	close(sw.stopCh)
	<-sw.doneCh
}

// Done is closed once the event loop has exited.
func (sw *SubmissionWatcher) Done() <-chan struct{} {
	return sw.doneCh
}

// Stats returns a snapshot of watcher activity.
func (sw *SubmissionWatcher) Stats() Stats {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.stats
}

func (sw *SubmissionWatcher) run(ctx context.Context) {
	defer close(sw.doneCh)
	defer func() {
		if err := sw.watcher.Close(); err != nil {
			logging.Get(logging.CategoryWatch).Errorf("error closing watcher: %v", err)
		}
	}()

	tick := sw.debounceDur / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("context cancelled")
			return

		case <-sw.stopCh:
			logging.WatchDebug("stop signal received")
			return

		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)

		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryWatch).Errorf("watcher error: %v", err)
			sw.mu.Lock()
			sw.stats.Errors++
			sw.mu.Unlock()

		case <-ticker.C:
			sw.processSettled(ctx)
		}
	}
}

func (sw *SubmissionWatcher) matches(name string) bool {
	base := filepath.Base(name)
	if sw.file != "" {
		return base == sw.file
	}
	return strings.HasSuffix(base, ".py")
}

func (sw *SubmissionWatcher) handleEvent(event fsnotify.Event) {
	if !sw.matches(event.Name) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return // chmod
	}

	logging.WatchDebug("%s event for %s", event.Op, event.Name)

	sw.mu.Lock()
	now := time.Now()
	sw.stats.Events++
	sw.stats.LastEvent = now
	sw.pendingAt = now
	sw.mu.Unlock()
}

// processSettled analyzes once no event has arrived for the debounce window.
func (sw *SubmissionWatcher) processSettled(ctx context.Context) {
	sw.mu.Lock()
	if sw.pendingAt.IsZero() || time.Since(sw.pendingAt) < sw.debounceDur {
		sw.mu.Unlock()
		return
	}
	sw.pendingAt = time.Time{}
	sw.stats.Analyses++
	sw.mu.Unlock()

	logging.Watch("re-analyzing %s", sw.path)
	result := sw.analyzer.Analyze(ctx, sw.path)
	if sw.onResult != nil {
		sw.onResult(result)
	}
}
