package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventSnapshotChanged indicates the snapshot file was rewritten, possibly
	// by another process.
	EventSnapshotChanged EventType = iota

	// EventSnapshotRemoved indicates the snapshot file was deleted.
	EventSnapshotRemoved
)

// Event is emitted by Persistence.Watch when the snapshot file changes.
type Event struct {
	Type EventType
	Path string
}

// watchDelay batches the create/write/rename burst of a single atomic write.
const watchDelay = 100 * time.Millisecond

// Watch streams change events for the snapshot file until ctx is cancelled.
// The parent directory is watched because atomic writes replace the file.
// The returned channel is closed once ctx is done or the watcher fails.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("store: persistence base path unknown")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			_ = watcher.Close()
		})
	}

	if err := watcher.Add(p.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", p.basePath, err)
	}

	target := filepath.Clean(p.Path())
	events := make(chan Event, 16)

	go func() {
		// The throttle timer may fire while the loop is shutting down.
		var sendMu sync.Mutex
		closed := false
		defer func() {
			sendMu.Lock()
			closed = true
			close(events)
			sendMu.Unlock()
		}()
		defer closeWatcher()

		send := func(ev Event) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if closed {
				return
			}
			select {
			case events <- ev:
			default:
				// Consumer is behind; it will reread the whole file anyway.
			}
		}

		throttle := newEventThrottle(watchDelay)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Treat watcher errors as a change so callers resync.
				throttle.Enqueue(Event{Type: EventSnapshotChanged, Path: target}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(evt.Name) != target {
					continue
				}
				switch {
				case evt.Op&fsnotify.Remove == fsnotify.Remove:
					throttle.Enqueue(Event{Type: EventSnapshotRemoved, Path: target}, send)
				case evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0:
					throttle.Enqueue(Event{Type: EventSnapshotChanged, Path: target}, send)
				}
			}
		}
	}()

	return events, nil
}

// eventThrottle coalesces rapid change notifications so consumers reload once
// per burst of filesystem activity instead of on every single write. Only the
// most recent event type survives a burst.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending *Event
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{delay: delay}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	t.pending = &ev
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.timer = nil
	t.mu.Unlock()

	if pending != nil {
		send(*pending)
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.pending = nil
	t.mu.Unlock()
}
