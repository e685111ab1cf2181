// Package syncer drives fetch cycles against the remote service and publishes
// the results into the cache. Each category is fetched independently, so a
// failure in one never delays or invalidates another.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/record"
)

// DefaultFetchTimeout bounds a single category fetch.
const DefaultFetchTimeout = 30 * time.Second

// Fetcher retrieves every record of one category.
type Fetcher interface {
	Fetch(ctx context.Context, c record.Category) (record.Batch, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, c record.Category) (record.Batch, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, c record.Category) (record.Batch, error) {
	return f(ctx, c)
}

// Sink receives fetch results. *cache.Store satisfies it.
type Sink interface {
	Merge(b record.Batch, syncedAt time.Time) *cache.Snapshot
	RecordError(c record.Category, err error) *cache.Snapshot
	Persist() error
}

// EventKind identifies coordinator progress notifications.
type EventKind int

const (
	// CycleStarted is sent before any category is fetched.
	CycleStarted EventKind = iota
	// CategorySynced is sent after a category was merged.
	CategorySynced
	// CategoryFailed is sent after a category fetch failed.
	CategoryFailed
	// CycleFinished is sent once every category of the cycle has settled.
	CycleFinished
)

func (k EventKind) String() string {
	switch k {
	case CycleStarted:
		return "cycle-started"
	case CategorySynced:
		return "category-synced"
	case CategoryFailed:
		return "category-failed"
	case CycleFinished:
		return "cycle-finished"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event reports coordinator progress. Category is empty for cycle events.
type Event struct {
	Kind     EventKind
	Category record.Category
	Err      error
	At       time.Time
}

// Options tune a Coordinator.
type Options struct {
	// Interval enables periodic refresh when positive.
	Interval time.Duration
	// FetchTimeout bounds each category fetch; DefaultFetchTimeout when zero.
	FetchTimeout time.Duration
	// Categories overrides the categories fetched per cycle.
	Categories []record.Category
	Logger     *zap.Logger
	// Now is the clock used for sync timestamps.
	Now func() time.Time
}

// Coordinator runs at most one sync cycle at a time. Triggers that arrive
// while a cycle is running collapse into a single follow-up cycle.
type Coordinator struct {
	fetcher Fetcher
	sink    Sink
	opts    Options
	log     *zap.Logger

	trigger chan struct{}
	// ticks replaces the interval ticker when set.
	ticks   <-chan time.Time
	events  chan Event
	syncing atomic.Bool
	running atomic.Bool
}

// New builds a coordinator. Run must be called to start it.
func New(f Fetcher, sink Sink, opts Options) *Coordinator {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if len(opts.Categories) == 0 {
		opts.Categories = record.Categories()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		fetcher: f,
		sink:    sink,
		opts:    opts,
		log:     log.Named("syncer"),
		trigger: make(chan struct{}, 1),
		events:  make(chan Event, 16),
	}
}

// Events streams progress notifications. The channel is closed when Run
// returns.
func (c *Coordinator) Events() <-chan Event {
	return c.events
}

// Syncing reports whether a cycle is in flight.
func (c *Coordinator) Syncing() bool {
	return c.syncing.Load()
}

// Trigger requests a refresh cycle. It never blocks: if a request is already
// pending the new one is absorbed into it.
func (c *Coordinator) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// ErrAlreadyRunning is returned when Run is called twice.
var ErrAlreadyRunning = errors.New("syncer: already running")

// Run performs one cycle immediately, then waits for triggers and ticks until
// ctx is done. It returns ctx.Err() on shutdown.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(c.events)

	tick := c.ticks
	if tick == nil && c.opts.Interval > 0 {
		ticker := time.NewTicker(c.opts.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	c.Trigger()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.trigger:
		case <-tick:
		}
		// A tick and a trigger that piled up during the last cycle share
		// one follow-up.
		select {
		case <-c.trigger:
		default:
		}
		select {
		case <-tick:
		default:
		}
		c.cycle(ctx)
	}
}

// RunOnce performs a single synchronous cycle and returns the per-category
// failures joined together, or nil when every category merged. It must not be
// used concurrently with Run.
func (c *Coordinator) RunOnce(ctx context.Context) error {
	results := c.cycle(ctx)
	var errs []error
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.category, r.err))
		}
	}
	return errors.Join(errs...)
}

type result struct {
	category record.Category
	batch    record.Batch
	err      error
}

// cycle fetches every category concurrently and applies each result as it
// settles. Results that arrive after ctx is done are dropped.
func (c *Coordinator) cycle(ctx context.Context) []result {
	c.syncing.Store(true)
	defer c.syncing.Store(false)

	started := c.opts.Now()
	c.log.Debug("sync cycle started", zap.Int("categories", len(c.opts.Categories)))
	c.send(ctx, Event{Kind: CycleStarted, At: started})

	settled := make(chan result, len(c.opts.Categories))
	var g errgroup.Group
	for _, cat := range c.opts.Categories {
		g.Go(func() error {
			settled <- c.fetch(ctx, cat)
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(settled)
	}()

	var (
		results []result
		merged  int
	)
collect:
	for {
		var r result
		select {
		case <-ctx.Done():
			// Abandon in-flight fetches; settled is buffered so they finish
			// without blocking and their results are never applied.
			c.log.Debug("sync cycle abandoned", zap.Error(ctx.Err()))
			return results
		case res, ok := <-settled:
			if !ok {
				break collect
			}
			r = res
		}
		if ctx.Err() != nil {
			continue
		}
		results = append(results, r)
		at := c.opts.Now()
		if r.err != nil {
			c.log.Warn("category sync failed", zap.String("category", string(r.category)), zap.Error(r.err))
			c.sink.RecordError(r.category, r.err)
			c.send(ctx, Event{Kind: CategoryFailed, Category: r.category, Err: r.err, At: at})
			continue
		}
		c.sink.Merge(r.batch, at)
		merged++
		c.log.Debug("category synced", zap.String("category", string(r.category)), zap.Int("records", r.batch.Len()))
		c.send(ctx, Event{Kind: CategorySynced, Category: r.category, At: at})
	}

	if ctx.Err() != nil {
		return results
	}
	if merged > 0 {
		// Failures are logged by the sink and never fatal.
		_ = c.sink.Persist()
	}
	finished := c.opts.Now()
	c.log.Info("sync cycle finished",
		zap.Int("merged", merged),
		zap.Int("failed", len(results)-merged),
		zap.Duration("took", finished.Sub(started)))
	c.send(ctx, Event{Kind: CycleFinished, At: finished})
	return results
}

func (c *Coordinator) fetch(ctx context.Context, cat record.Category) result {
	fctx, cancel := context.WithTimeout(ctx, c.opts.FetchTimeout)
	defer cancel()
	b, err := c.fetcher.Fetch(fctx, cat)
	if err != nil {
		return result{category: cat, err: err}
	}
	if b.Category == "" {
		b.Category = cat
	}
	if b.Category != cat {
		return result{category: cat, err: fmt.Errorf("syncer: fetcher returned %s records for %s", b.Category, cat)}
	}
	return result{category: cat, batch: b}
}

// send delivers an event unless ctx is done first. Only the coordinator's own
// goroutine blocks here.
func (c *Coordinator) send(ctx context.Context, ev Event) {
	if !c.running.Load() {
		// RunOnce without Run: nobody is listening.
		return
	}
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}
