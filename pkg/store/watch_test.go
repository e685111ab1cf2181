package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestPersistenceWatchEmitsSnapshotChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	p, err := Load(path)
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe before writing.
	time.Sleep(50 * time.Millisecond)

	if err := p.Write([]byte(`{"version":1}`)); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type != EventSnapshotChanged {
				t.Fatalf("expected change event, got %v", evt.Type)
			}
			if evt.Path != p.Path() {
				t.Fatalf("expected path %q, got %q", p.Path(), evt.Path)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for snapshot change event")
		}
	}
}

func TestPersistenceWatchClosesOnCancel(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("watch channel not closed after cancel")
		}
	}
}

func TestEventThrottleCoalescesBursts(t *testing.T) {
	th := newEventThrottle(20 * time.Millisecond)
	defer th.Stop()

	got := make(chan Event, 8)
	send := func(ev Event) { got <- ev }
	for i := 0; i < 5; i++ {
		th.Enqueue(Event{Type: EventSnapshotChanged, Path: "a"}, send)
	}
	th.Enqueue(Event{Type: EventSnapshotRemoved, Path: "a"}, send)

	select {
	case ev := <-got:
		if ev.Type != EventSnapshotRemoved {
			t.Fatalf("expected last event type to win, got %v", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("throttle never flushed")
	}
	select {
	case ev := <-got:
		t.Fatalf("expected a single flush, got extra %v", ev)
	case <-time.After(60 * time.Millisecond):
	}
}
