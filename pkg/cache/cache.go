// Package cache holds the single authoritative snapshot of synchronized
// records. Readers obtain an immutable *Snapshot with a lock-free atomic load;
// writers build a modified copy and swap it in, so a reader never observes a
// partially replaced category.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/store"
)

// Persister stores the serialized snapshot. store.Persistence satisfies it.
type Persister interface {
	Read() ([]byte, error)
	Write(data []byte) error
}

// EventKind describes why the cache published a new snapshot.
type EventKind int

const (
	// EventMerged follows a successful Merge.
	EventMerged EventKind = iota
	// EventFailed follows RecordError.
	EventFailed
	// EventReloaded follows a Reload that adopted newer data from disk.
	EventReloaded
)

func (k EventKind) String() string {
	switch k {
	case EventMerged:
		return "merged"
	case EventFailed:
		return "failed"
	case EventReloaded:
		return "reloaded"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event notifies subscribers that a category changed.
type Event struct {
	Kind     EventKind
	Category record.Category
	Revision uint64
}

// Store owns the current snapshot. It supports a single writer at a time and
// any number of concurrent readers.
type Store struct {
	log *zap.Logger
	p   Persister

	mu       sync.Mutex // serializes writers
	revision uint64
	current  atomic.Pointer[Snapshot]

	eventCh chan Event
}

// New creates a store holding an empty snapshot. p may be nil, in which case
// Load yields an empty snapshot and Persist is a no-op.
func New(p Persister, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		log:     log.Named("cache"),
		p:       p,
		eventCh: make(chan Event, 64),
	}
	s.current.Store(Empty())
	return s
}

// Events exposes change notifications. Delivery is best effort: events are
// dropped when nobody drains the channel.
func (s *Store) Events() <-chan Event {
	return s.eventCh
}

// Read returns the latest published snapshot without blocking.
func (s *Store) Read() *Snapshot {
	return s.current.Load()
}

// Load replaces the current snapshot with the persisted copy. It never fails:
// a missing, empty or unreadable file yields an empty snapshot.
func (s *Store) Load() *Snapshot {
	snap := s.readPersisted()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(snap)
	return snap
}

// Merge atomically replaces the batch's category, stamps its sync time and
// clears any recorded error. Other categories are carried over untouched.
func (s *Store) Merge(b record.Batch, syncedAt time.Time) *Snapshot {
	if !known(b.Category) {
		s.log.Warn("ignoring batch for unknown category", zap.String("category", string(b.Category)))
		return s.Read()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current.Load().clone()
	next.replace(b)
	next.SyncedAt[b.Category] = syncedAt
	delete(next.Errors, b.Category)
	s.publishLocked(next)
	s.emit(Event{Kind: EventMerged, Category: b.Category, Revision: next.Revision})
	return next
}

// RecordError marks the category's last attempt as failed. Its records are
// left exactly as they were.
func (s *Store) RecordError(c record.Category, err error) *Snapshot {
	if !known(c) {
		return s.Read()
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.current.Load().clone()
	next.Errors[c] = msg
	s.publishLocked(next)
	s.emit(Event{Kind: EventFailed, Category: c, Revision: next.Revision})
	return next
}

// Persist writes the current snapshot through the persister. Failures are
// logged and returned; the in-memory snapshot is unaffected.
func (s *Store) Persist() error {
	if s.p == nil {
		return nil
	}
	snap := s.Read()
	data, err := json.Marshal(snap)
	if err != nil {
		s.log.Warn("encode snapshot", zap.Error(err))
		return fmt.Errorf("cache: encode snapshot: %w", err)
	}
	if err := s.p.Write(data); err != nil {
		s.log.Warn("persist snapshot", zap.Error(err))
		return fmt.Errorf("cache: persist snapshot: %w", err)
	}
	s.log.Debug("persisted snapshot", zap.Uint64("revision", snap.Revision), zap.Int("bytes", len(data)))
	return nil
}

// Reload reads the persisted snapshot and adopts every category that was
// synced more recently on disk than in memory, which happens when another
// process refreshed the same cache file. It returns the adopted categories.
func (s *Store) Reload() []record.Category {
	disk := s.readPersisted()
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.current.Load()
	var adopted []record.Category
	next := cur.clone()
	for _, c := range record.Categories() {
		at, ok := disk.SyncedAt[c]
		if !ok || !at.After(cur.SyncedAt[c]) {
			continue
		}
		next.replace(disk.batch(c))
		next.SyncedAt[c] = at
		delete(next.Errors, c)
		adopted = append(adopted, c)
	}
	if len(adopted) == 0 {
		return nil
	}
	s.publishLocked(next)
	for _, c := range adopted {
		s.emit(Event{Kind: EventReloaded, Category: c, Revision: next.Revision})
	}
	s.log.Info("adopted snapshot from disk", zap.Int("categories", len(adopted)))
	return adopted
}

// Status reports the sync status of one category in the current snapshot.
func (s *Store) Status(c record.Category) Status {
	return s.Read().Status(c)
}

func (s *Store) readPersisted() *Snapshot {
	if s.p == nil {
		return Empty()
	}
	data, err := s.p.Read()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Debug("no persisted snapshot, starting cold")
		} else {
			s.log.Warn("read persisted snapshot", zap.Error(err))
		}
		return Empty()
	}
	snap, err := Decode(data)
	if err != nil {
		s.log.Warn("discarding unreadable snapshot", zap.Error(err))
		return Empty()
	}
	if snap.Version > SchemaVersion {
		s.log.Warn("snapshot written by a newer version",
			zap.Int("version", snap.Version), zap.Int("supported", SchemaVersion))
	}
	return snap
}

// Decode parses a persisted snapshot. Unknown fields are ignored and missing
// ones default. Empty input decodes to an empty snapshot.
func Decode(data []byte) (*Snapshot, error) {
	snap := &Snapshot{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, snap); err != nil {
			return nil, fmt.Errorf("cache: decode snapshot: %w", err)
		}
	}
	snap.Errors = nil
	snap.normalize()
	return snap, nil
}

func (s *Store) publishLocked(next *Snapshot) {
	s.revision++
	next.Revision = s.revision
	s.current.Store(next)
}

func (s *Store) emit(ev Event) {
	select {
	case s.eventCh <- ev:
	default:
	}
}

func known(c record.Category) bool {
	for _, k := range record.Categories() {
		if k == c {
			return true
		}
	}
	return false
}
