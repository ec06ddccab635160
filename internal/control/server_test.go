package control

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/message"
)

func serve(t *testing.T, e *env) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "c.sock")
	ln, err := ipc.Listen(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(e.h, e.hub).Serve(ctx, ln) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return NewClient(path)
}

func TestServer_RequestResponse(t *testing.T) {
	e := newEnv(t, "over the wire", "caf\xe9")
	c := serve(t, e)

	resp, err := c.Do(&message.Message{Type: message.TypeList})
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"over the wire", "caf\xe9"}, texts(t, resp))

	_, err = c.Do(&message.Message{Type: message.TypeRecopy, Ref: "0000000000000000"})
	require.ErrorIs(t, err, history.ErrNotFound)
	var re *RemoteError
	require.True(t, errors.As(err, &re))
	require.Equal(t, message.CodeNotFound, re.Code)
}

func TestServer_Watch(t *testing.T) {
	e := newEnv(t)
	c := serve(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan *message.Message, 8)
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- c.Watch(ctx, func(m *message.Message) error {
			events <- m
			return nil
		})
	}()

	require.Eventually(t, func() bool { return len(e.hub.Peers()) == 1 }, 2*time.Second, 5*time.Millisecond)

	e.q.Push("streamed")
	_, err := e.mon.Drain(context.Background())
	require.NoError(t, err)
	_, err = e.mon.SetFavorite(context.Background(), "streamed", true)
	require.NoError(t, err)

	for _, want := range []string{"added", "updated"} {
		select {
		case m := <-events:
			require.Equal(t, want, m.Event)
			text, err := m.Entry.Text()
			require.NoError(t, err)
			require.Equal(t, "streamed", text)
		case <-time.After(2 * time.Second):
			t.Fatalf("no %s event", want)
		}
	}

	cancel()
	require.NoError(t, <-watchErr)
	require.Eventually(t, func() bool { return len(e.hub.Peers()) == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestClient_NoDaemon(t *testing.T) {
	c := NewClient(filepath.Join(t.TempDir(), "missing.sock"))
	_, err := c.Do(&message.Message{Type: message.TypeStatus})
	require.Error(t, err)
}

func TestClient_RefusesDaemonForOtherHistory(t *testing.T) {
	e := newEnv(t, "alpha")
	c := serve(t, e)
	ref := history.Ref("alpha")

	_, err := c.ForHistory("/elsewhere/history.json").Do(&message.Message{Type: message.TypeFavorite, Ref: ref, Favorite: true})
	require.ErrorIs(t, err, ErrWrongDaemon)

	err = c.ForHistory("/elsewhere/history.json").Watch(context.Background(), func(*message.Message) error { return nil })
	require.ErrorIs(t, err, ErrWrongDaemon)

	snap, err := e.mon.Snapshot(context.Background())
	require.NoError(t, err)
	require.False(t, snap["alpha"].Favorite, "nothing changed through the wrong daemon")

	resp, err := c.ForHistory("/h.json").Do(&message.Message{Type: message.TypeFavorite, Ref: ref, Favorite: true})
	require.NoError(t, err)
	require.True(t, resp.Entry.Favorite)
}
