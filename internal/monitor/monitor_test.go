package monitor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/hub"
	"go.klb.dev/cliplog/internal/persist"
	"go.klb.dev/cliplog/internal/poller"
	"go.klb.dev/cliplog/internal/queue"
)

const historyPath = "/cliplog/history.json"

type fixture struct {
	fs     afero.Fs
	cb     *clip.Memory
	q      *queue.Queue
	h      *hub.Hub
	p      *poller.Poller
	store  *history.Store
	mon    *Monitor
	cancel context.CancelFunc
	runErr chan error
}

func startMonitor(t *testing.T, backend clip.Backend) *fixture {
	t.Helper()
	f := &fixture{
		fs: afero.NewMemMapFs(),
		q:  queue.New(),
		h:  hub.New(),
	}
	if backend == nil {
		f.cb = clip.NewMemory("")
		backend = f.cb
	}
	f.p = poller.New(backend, f.q, time.Hour)
	f.store = history.Open(persist.NewFileFs(f.fs, historyPath))
	f.mon = New(Config{
		Store:         f.store,
		Queue:         f.q,
		Hub:           f.h,
		Clipboard:     backend,
		Poller:        f.p,
		DrainInterval: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.runErr = make(chan error, 1)
	go func() { f.runErr <- f.mon.Run(ctx) }()
	t.Cleanup(func() { f.stop(t) })
	return f
}

func (f *fixture) stop(t *testing.T) {
	t.Helper()
	f.cancel()
	select {
	case <-f.mon.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop")
	}
}

func (f *fixture) persisted(t *testing.T) history.Snapshot {
	t.Helper()
	snap, err := persist.NewFileFs(f.fs, historyPath).Load()
	require.NoError(t, err)
	return snap
}

// copyText simulates the user copying text in another application and the
// poller noticing it.
func (f *fixture) copyText(text string) {
	f.cb.Set(text)
	f.p.Sample()
}

func TestMonitor_Scenario(t *testing.T) {
	f := startMonitor(t, nil)
	ctx := context.Background()

	f.copyText("alpha")
	n, err := f.mon.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	snap := f.persisted(t)
	require.Len(t, snap, 1)
	require.Equal(t, 0, snap["alpha"].CopyCount)

	// Copying the same value again through the poller adds nothing.
	f.copyText("alpha")
	f.q.Push("alpha")
	n, err = f.mon.Drain(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Len(t, f.persisted(t), 1)

	e, err := f.mon.Recopy(ctx, "alpha")
	require.NoError(t, err)
	require.Equal(t, 1, e.CopyCount)
	require.Equal(t, []string{"alpha"}, f.cb.Writes())
	require.Equal(t, 1, f.persisted(t)["alpha"].CopyCount)

	// The poller must not count or re-queue its own echo.
	require.False(t, f.p.Sample())
	_, err = f.mon.Drain(ctx)
	require.NoError(t, err)
	snap, err = f.mon.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, snap["alpha"].CopyCount)

	removed, err := f.mon.Delete(ctx, "alpha")
	require.NoError(t, err)
	require.True(t, removed)
	require.Empty(t, f.persisted(t))

	removed, err = f.mon.Delete(ctx, "alpha")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestMonitor_BlankNeverStored(t *testing.T) {
	f := startMonitor(t, nil)
	ctx := context.Background()

	f.q.Push("")
	f.q.Push("  \n")
	f.copyText("\t")

	n, err := f.mon.Drain(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	snap, err := f.mon.Snapshot(ctx)
	require.NoError(t, err)
	require.Empty(t, snap)
}

func TestMonitor_NotFound(t *testing.T) {
	f := startMonitor(t, nil)
	ctx := context.Background()

	_, err := f.mon.Recopy(ctx, "ghost")
	require.ErrorIs(t, err, history.ErrNotFound)
	require.Empty(t, f.cb.Writes(), "nothing is written for a missing entry")

	_, err = f.mon.SetFavorite(ctx, "ghost", true)
	require.ErrorIs(t, err, history.ErrNotFound)
	_, err = f.mon.SetName(ctx, "ghost", "x")
	require.ErrorIs(t, err, history.ErrNotFound)
	_, err = f.mon.SetNote(ctx, "ghost", "x")
	require.ErrorIs(t, err, history.ErrNotFound)
}

type failingWriter struct{ *clip.Memory }

func (failingWriter) WriteText(string) error {
	return fmt.Errorf("%w: busy", clip.ErrAccess)
}

func TestMonitor_RecopyWriteFailureCountsNothing(t *testing.T) {
	f := startMonitor(t, failingWriter{clip.NewMemory("")})
	ctx := context.Background()

	f.q.Push("delta")
	_, err := f.mon.Drain(ctx)
	require.NoError(t, err)

	_, err = f.mon.Recopy(ctx, "delta")
	require.ErrorIs(t, err, clip.ErrAccess)

	e, ok := f.store.Get("delta")
	require.True(t, ok)
	require.Zero(t, e.CopyCount)
}

func TestMonitor_SearchAndFavorites(t *testing.T) {
	f := startMonitor(t, nil)
	ctx := context.Background()

	for _, v := range []string{"a foo b", "bar", "Food"} {
		f.q.Push(v)
	}
	all, err := f.mon.Search(ctx, "", false)
	require.NoError(t, err)
	require.Len(t, all, 3, "search drains pending detections first")

	got, err := f.mon.Search(ctx, "FOO", false)
	require.NoError(t, err)
	require.Len(t, got, 2)

	_, err = f.mon.SetFavorite(ctx, "Food", true)
	require.NoError(t, err)
	favs, err := f.mon.Search(ctx, "foo", true)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	require.Equal(t, "Food", favs[0].Content)

	_, err = f.mon.SetFavorite(ctx, "Food", false)
	require.NoError(t, err)
	favs, err = f.mon.Search(ctx, "", true)
	require.NoError(t, err)
	require.Empty(t, favs)
}

type chanPeer struct{ ch chan hub.Event }

func (p chanPeer) ID() string { return "test" }

func (p chanPeer) Send(ev hub.Event) {
	select {
	case p.ch <- ev:
	default:
	}
}

func TestMonitor_PublishesEvents(t *testing.T) {
	f := startMonitor(t, nil)
	ctx := context.Background()
	peer := chanPeer{ch: make(chan hub.Event, 8)}
	f.h.Register(peer)

	f.q.Push("epsilon")
	_, err := f.mon.Drain(ctx)
	require.NoError(t, err)
	_, err = f.mon.SetName(ctx, "epsilon", "e")
	require.NoError(t, err)
	_, err = f.mon.Delete(ctx, "epsilon")
	require.NoError(t, err)

	var kinds []hub.Kind
	for range 3 {
		ev := <-peer.ch
		require.Equal(t, "epsilon", ev.Entry.Content)
		kinds = append(kinds, ev.Kind)
	}
	require.Equal(t, []hub.Kind{hub.KindAdded, hub.KindUpdated, hub.KindDeleted}, kinds)
}

func TestMonitor_Status(t *testing.T) {
	f := startMonitor(t, nil)
	ctx := context.Background()

	f.q.Push("one")
	_, err := f.mon.Drain(ctx)
	require.NoError(t, err)
	_, err = f.mon.SetFavorite(ctx, "one", true)
	require.NoError(t, err)
	f.q.Push("two")

	st, err := f.mon.Status(ctx)
	require.NoError(t, err)
	require.Equal(t, "memory", st.Backend)
	require.Equal(t, 1, st.Entries)
	require.Equal(t, 1, st.Favorites)
	require.Equal(t, 1, st.Pending)
	require.False(t, st.Dirty)
	require.False(t, st.StartedAt.IsZero())
}

func TestMonitor_StopDrainsAndRejects(t *testing.T) {
	f := startMonitor(t, nil)

	f.q.Push("last words")
	f.stop(t)
	require.NoError(t, <-f.runErr)
	require.Contains(t, f.persisted(t), "last words")

	_, err := f.mon.Snapshot(context.Background())
	require.ErrorIs(t, err, ErrStopped)
	require.Error(t, f.mon.Run(context.Background()))
}

func TestMonitor_TickerDrains(t *testing.T) {
	fs := afero.NewMemMapFs()
	q := queue.New()
	store := history.Open(persist.NewFileFs(fs, historyPath))
	mon := New(Config{Store: store, Queue: q, Clipboard: clip.NewMemory(""), DrainInterval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = mon.Run(ctx) }()

	q.Push("ticked")
	require.Eventually(t, func() bool {
		_, ok := store.Get("ticked")
		return ok
	}, time.Second, time.Millisecond)
}

func TestMonitor_ConcurrentActionsAndDetections(t *testing.T) {
	f := startMonitor(t, nil)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := range n {
			f.q.Push(fmt.Sprintf("item-%d", i))
			if i%10 == 0 {
				_, _ = f.mon.Drain(ctx)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := range n {
			content := fmt.Sprintf("item-%d", i)
			_, _ = f.mon.SetFavorite(ctx, content, true)
			_, _ = f.mon.Delete(ctx, content)
		}
	}()
	wg.Wait()

	_, err := f.mon.Drain(ctx)
	require.NoError(t, err)
	snap, err := f.mon.Snapshot(ctx)
	require.NoError(t, err)
	for content, e := range snap {
		require.Equal(t, content, e.Content)
		require.Zero(t, e.CopyCount)
	}
	persisted := f.persisted(t)
	require.Len(t, persisted, len(snap), "persisted state matches memory")
	for content, e := range snap {
		require.Equal(t, e.Favorite, persisted[content].Favorite)
	}
}
