// Package monitor is the consumer side of cliplog. One goroutine owns the
// history store: it drains the change queue on a ticker and runs user
// actions, one at a time, so a drained detection can never interleave with an
// edit of the same entry.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/hub"
	"go.klb.dev/cliplog/internal/poller"
	"go.klb.dev/cliplog/internal/queue"
)

// DefaultDrainInterval is how often queued detections are moved into the store.
const DefaultDrainInterval = time.Second

// ErrStopped is returned by operations submitted after Run has returned.
var ErrStopped = errors.New("monitor stopped")

// Config wires a Monitor to its collaborators. Hub and Poller are optional.
type Config struct {
	Store         *history.Store
	Queue         *queue.Queue
	Hub           *hub.Hub
	Clipboard     clip.Backend
	Poller        *poller.Poller
	DrainInterval time.Duration
}

// Status describes a running monitor.
type Status struct {
	Backend   string
	StartedAt time.Time
	Entries   int
	Favorites int
	Pending   int
	Watchers  int
	Dirty     bool
	SaveError string
}

// Monitor serializes all access to the store onto the goroutine running Run.
type Monitor struct {
	store    *history.Store
	q        *queue.Queue
	hub      *hub.Hub
	clip     clip.Backend
	poller   *poller.Poller
	interval time.Duration

	actions   chan func()
	stopped   chan struct{}
	running   atomic.Bool
	startedAt time.Time
}

// New returns a Monitor. Call Run to start it.
func New(cfg Config) *Monitor {
	interval := cfg.DrainInterval
	if interval <= 0 {
		interval = DefaultDrainInterval
	}
	return &Monitor{
		store:     cfg.Store,
		q:         cfg.Queue,
		hub:       cfg.Hub,
		clip:      cfg.Clipboard,
		poller:    cfg.Poller,
		interval:  interval,
		actions:   make(chan func()),
		stopped:   make(chan struct{}),
		startedAt: time.Now().UTC(),
	}
}

// Run drains the queue and executes actions until ctx is cancelled. On the
// way out it drains once more and flushes any save that failed earlier. Run
// must be called only once.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return errors.New("monitor: Run called twice")
	}
	defer close(m.stopped)

	t := time.NewTicker(m.interval)
	defer t.Stop()

	slog.Debug("monitor started", "drain_interval", m.interval)
	for {
		select {
		case <-ctx.Done():
			m.drain()
			if err := m.store.Flush(); err != nil {
				slog.Error("final history flush failed", "err", err)
				return fmt.Errorf("flush history: %w", err)
			}
			slog.Debug("monitor stopped")
			return nil
		case <-t.C:
			m.drain()
		case a := <-m.actions:
			a()
		}
	}
}

// Done is closed when Run has returned.
func (m *Monitor) Done() <-chan struct{} { return m.stopped }

// do runs fn on the Run goroutine and waits for it. Once handed over, fn
// always completes, so results it writes are safe to read afterwards.
func (m *Monitor) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	a := func() {
		defer close(done)
		fn()
	}
	select {
	case m.actions <- a:
	case <-m.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// Drain moves queued detections into the store now and returns how many new
// entries were created.
func (m *Monitor) Drain(ctx context.Context) (int, error) {
	var n int
	err := m.do(ctx, func() { n = m.drain() })
	return n, err
}

// Snapshot returns a copy of the history including any queued detections.
func (m *Monitor) Snapshot(ctx context.Context) (history.Snapshot, error) {
	var snap history.Snapshot
	err := m.do(ctx, func() {
		m.drain()
		snap = m.store.Snapshot()
	})
	return snap, err
}

// Search runs history.Search, optionally keeping favorites only.
func (m *Monitor) Search(ctx context.Context, term string, favoritesOnly bool) ([]history.Entry, error) {
	snap, err := m.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if favoritesOnly {
		return history.Favorites(history.Search(snap, term)), nil
	}
	return history.Search(snap, term), nil
}

// Recopy puts content back on the clipboard and counts the copy. Nothing is
// counted if the entry is gone or the clipboard write fails.
func (m *Monitor) Recopy(ctx context.Context, content string) (history.Entry, error) {
	var (
		e   history.Entry
		err error
	)
	if derr := m.do(ctx, func() {
		if _, ok := m.store.Get(content); !ok {
			err = history.ErrNotFound
			return
		}
		if werr := m.clip.WriteText(content); werr != nil {
			err = fmt.Errorf("write clipboard: %w", werr)
			return
		}
		if m.poller != nil {
			m.poller.Observe(content)
		}
		e, err = m.store.Recopy(content)
		if err == nil {
			m.publish(hub.KindUpdated, e)
		}
	}); derr != nil {
		return history.Entry{}, derr
	}
	return e, err
}

// SetFavorite marks or unmarks content.
func (m *Monitor) SetFavorite(ctx context.Context, content string, v bool) (history.Entry, error) {
	return m.update(ctx, func() (history.Entry, error) { return m.store.SetFavorite(content, v) })
}

// SetName names content.
func (m *Monitor) SetName(ctx context.Context, content, v string) (history.Entry, error) {
	return m.update(ctx, func() (history.Entry, error) { return m.store.SetName(content, v) })
}

// SetNote annotates content.
func (m *Monitor) SetNote(ctx context.Context, content, v string) (history.Entry, error) {
	return m.update(ctx, func() (history.Entry, error) { return m.store.SetNote(content, v) })
}

// Delete removes content and reports whether it existed.
func (m *Monitor) Delete(ctx context.Context, content string) (bool, error) {
	var removed bool
	err := m.do(ctx, func() {
		e, ok := m.store.Get(content)
		removed = m.store.Delete(content)
		if ok && removed {
			m.publish(hub.KindDeleted, e)
		}
	})
	return removed, err
}

// Status reports counters without draining, so Pending is meaningful.
func (m *Monitor) Status(ctx context.Context) (Status, error) {
	var st Status
	err := m.do(ctx, func() {
		snap := m.store.Snapshot()
		dirty, saveErr := m.store.Dirty()
		st = Status{
			Backend:   m.clip.Name(),
			StartedAt: m.startedAt,
			Entries:   len(snap),
			Favorites: len(history.FilterFavorites(snap)),
			Pending:   m.q.Len(),
			Dirty:     dirty,
		}
		if saveErr != nil {
			st.SaveError = saveErr.Error()
		}
		if m.hub != nil {
			st.Watchers = len(m.hub.Peers())
		}
	})
	return st, err
}

func (m *Monitor) update(ctx context.Context, fn func() (history.Entry, error)) (history.Entry, error) {
	var (
		e   history.Entry
		err error
	)
	if derr := m.do(ctx, func() {
		e, err = fn()
		if err == nil {
			m.publish(hub.KindUpdated, e)
		}
	}); derr != nil {
		return history.Entry{}, derr
	}
	return e, err
}

// drain must run on the Run goroutine.
func (m *Monitor) drain() int {
	n := 0
	for _, v := range m.q.DrainAll() {
		e, created := m.store.AddIfAbsent(v)
		if !created {
			continue
		}
		n++
		hub.LogEntry("clipboard captured", e)
		m.publish(hub.KindAdded, e)
	}
	return n
}

func (m *Monitor) publish(kind hub.Kind, e history.Entry) {
	if m.hub == nil {
		return
	}
	m.hub.Publish(hub.Event{Kind: kind, Entry: e})
}
