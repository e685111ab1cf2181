// Package tui hosts the Bubble Tea program. The model owns the interaction
// state, reads the cache once per message and never waits on the network:
// sync progress and cache changes arrive as messages from commands that
// block on their channels.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"go.uber.org/zap"

	"tableflip.dev/coursework/pkg/cache"
	"tableflip.dev/coursework/pkg/record"
	"tableflip.dev/coursework/pkg/state"
	"tableflip.dev/coursework/pkg/store"
	"tableflip.dev/coursework/pkg/syncer"
	"tableflip.dev/coursework/pkg/timeutil"
	"tableflip.dev/coursework/pkg/view"
)

// clockInterval refreshes countdowns and "synced ago" labels.
const clockInterval = 30 * time.Second

// Source is the cache as seen by the UI. *cache.Store satisfies it.
type Source interface {
	Read() *cache.Snapshot
	Events() <-chan cache.Event
	Reload() []record.Category
}

// Syncer is the background coordinator as seen by the UI.
// *syncer.Coordinator satisfies it.
type Syncer interface {
	Trigger()
	Syncing() bool
	Events() <-chan syncer.Event
}

// Options wires the model to its collaborators. Source is required.
type Options struct {
	Source Source
	Syncer Syncer
	// Watch reports changes written to the cache file by other processes.
	Watch  <-chan store.Event
	Logger *zap.Logger
	Now    func() time.Time
	Theme  *Theme
}

type (
	cacheEventMsg   struct{ event cache.Event }
	cacheClosedMsg  struct{}
	syncEventMsg    struct{ event syncer.Event }
	syncStoppedMsg  struct{}
	watchEventMsg   struct{ event store.Event }
	watchStoppedMsg struct{}
	clockMsg        time.Time
)

// Model contains UI state.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
	now    func() time.Time

	src     Source
	sync    Syncer
	watchCh <-chan store.Event
	cacheCh <-chan cache.Event
	syncCh  <-chan syncer.Event

	st      state.State
	snap    *cache.Snapshot
	clock   time.Time
	syncing bool

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	theme    Theme
	showHelp bool
	// monthView shows the month grid beside the Calendar list.
	monthView bool

	// detail scrolls the selected row's detail pane; detailFor is the row
	// it currently shows.
	detail    viewport.Model
	detailFor record.ID

	status    string
	statusErr bool

	width  int
	height int
}

// New builds the model. The returned model's context is cancelled when the
// user quits.
func New(ctx context.Context, opts Options) *Model {
	ctx, cancel := context.WithCancel(ctx)
	m := &Model{
		ctx:     ctx,
		cancel:  cancel,
		log:     opts.Logger,
		now:     opts.Now,
		src:     opts.Source,
		sync:    opts.Syncer,
		watchCh: opts.Watch,
		st:      state.New(),
		keys:    defaultKeyMap(),
		help:    help.New(),
		theme:   Default(),
		detail:  viewport.New(viewport.WithWidth(1), viewport.WithHeight(1)),
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	m.log = m.log.Named("tui")
	if m.now == nil {
		m.now = time.Now
	}
	if opts.Theme != nil {
		m.theme = *opts.Theme
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(m.theme.Footer.Spinner))
	m.cacheCh = m.src.Events()
	if m.sync != nil {
		m.syncCh = m.sync.Events()
		m.syncing = m.sync.Syncing()
	}
	m.clock = m.now()
	m.snap = m.src.Read()
	m.st = state.Clamp(m.st, m.projector())
	return m
}

// Init starts the channel listeners and the clock.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForCache(),
		m.waitForSync(),
		m.waitForWatch(),
		m.spinner.Tick,
		clockTick(),
	)
}

// State exposes the interaction state.
func (m *Model) State() state.State { return m.st }

// Frame is what the next View call renders.
func (m *Model) Frame() view.Frame {
	return view.Render(m.snap, m.st, m.clock, m.syncing)
}

func (m *Model) projector() view.Projector {
	return view.Projector{Snap: m.snap, Now: m.clock}
}

// Update handles one message.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyPressMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case cacheEventMsg:
		m.handleCacheEvent(msg.event)
		cmds = append(cmds, m.waitForCache())
	case cacheClosedMsg:
		m.cacheCh = nil
	case syncEventMsg:
		m.handleSyncEvent(msg.event)
		cmds = append(cmds, m.waitForSync())
	case syncStoppedMsg:
		m.syncCh = nil
		m.syncing = false
	case watchEventMsg:
		if cats := m.src.Reload(); len(cats) > 0 {
			m.log.Debug("adopted external cache update", zap.Int("categories", len(cats)))
		}
		cmds = append(cmds, m.waitForWatch())
	case watchStoppedMsg:
		m.watchCh = nil
	case clockMsg:
		m.clock = time.Time(msg)
		m.st = state.Clamp(m.st, m.projector())
		cmds = append(cmds, clockTick())
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if !m.st.Popup.Open {
		switch {
		case msg.String() == "?":
			m.showHelp = !m.showHelp
			return nil
		case m.st.Tab == state.TabCalendar && key.Matches(msg, m.keys.Month):
			m.monthView = !m.monthView
			return nil
		case key.Matches(msg, m.keys.PageUp, m.keys.PageDown):
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return cmd
		}
	}
	ev, ok := m.keys.event(msg, m.st)
	if !ok {
		return nil
	}
	return m.apply(ev)
}

// apply feeds one event through the state machine and carries out its effect.
func (m *Model) apply(ev state.Event) tea.Cmd {
	next, effect := state.Apply(m.st, ev, m.projector())
	m.st = next
	switch effect {
	case state.EffectRefresh:
		if m.sync == nil {
			m.setStatus("Offline: no sync configured", true)
			return nil
		}
		m.sync.Trigger()
		if !m.syncing {
			m.setStatus("Refreshing…", false)
		}
	case state.EffectQuit:
		m.cancel()
		return tea.Quit
	}
	return nil
}

func (m *Model) handleCacheEvent(ev cache.Event) {
	m.snap = m.src.Read()
	m.clock = m.now()
	m.st, _ = state.Apply(m.st, state.SyncCompleted{Category: ev.Category}, m.projector())
	if ev.Kind == cache.EventReloaded {
		m.setStatus(fmt.Sprintf("%s updated from disk", ev.Category.Title()), false)
	}
}

func (m *Model) handleSyncEvent(ev syncer.Event) {
	switch ev.Kind {
	case syncer.CycleStarted:
		m.syncing = true
		m.setStatus("Syncing…", false)
	case syncer.CategoryFailed:
		m.setStatus(fmt.Sprintf("%s: %v", ev.Category.Title(), ev.Err), true)
	case syncer.CycleFinished:
		m.syncing = false
		// Cache events travel on their own channel and may not have landed
		// yet, so count failures from the store itself.
		if failed := failedCount(m.src.Read()); failed > 0 {
			m.setStatus(fmt.Sprintf("Synced with %d failed", failed), true)
			return
		}
		m.setStatus("Synced "+timeutil.Ago(ev.At, m.now()), false)
	}
}

func failedCount(snap *cache.Snapshot) int {
	n := 0
	for _, st := range snap.Statuses() {
		if st.Failed() {
			n++
		}
	}
	return n
}

func (m *Model) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *Model) waitForCache() tea.Cmd {
	if m.cacheCh == nil {
		return nil
	}
	ch, ctx := m.cacheCh, m.ctx
	return func() tea.Msg {
		select {
		case ev, ok := <-ch:
			if ok {
				return cacheEventMsg{event: ev}
			}
		case <-ctx.Done():
		}
		return cacheClosedMsg{}
	}
}

func (m *Model) waitForSync() tea.Cmd {
	if m.syncCh == nil {
		return nil
	}
	ch := m.syncCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return syncEventMsg{event: ev}
		}
		return syncStoppedMsg{}
	}
}

func (m *Model) waitForWatch() tea.Cmd {
	if m.watchCh == nil {
		return nil
	}
	ch := m.watchCh
	return func() tea.Msg {
		if ev, ok := <-ch; ok {
			return watchEventMsg{event: ev}
		}
		return watchStoppedMsg{}
	}
}

func clockTick() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg { return clockMsg(t) })
}

// Run launches the interactive program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := New(ctx, opts)
	defer m.cancel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
