package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/guard"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/message"
	"go.klb.dev/cliplog/internal/monitor"
	"go.klb.dev/cliplog/internal/persist"
	"go.klb.dev/cliplog/internal/queue"
)

// ErrNoDaemon is returned for requests only a running daemon can answer.
var ErrNoDaemon = errors.New("cliplog daemon is not running")

// Local answers requests without a daemon by opening the history file in this
// process. Mutations take the single-instance guard first, so they never race
// a daemon or another offline edit. Reads proceed without it: saves are
// atomic renames, so the file is always a complete snapshot.
type Local struct {
	HistoryPath string
	LockPath    string

	// Clipboard opens the clipboard for RECOPY. Nil means headless.
	Clipboard func() clip.Backend
}

// Do runs req and returns the response. An ERROR response is returned as a
// *RemoteError, as with Client.Do.
func (l Local) Do(ctx context.Context, req *message.Message) (*message.Message, error) {
	switch req.Type {
	case message.TypeWatch, message.TypeStatus:
		return nil, ErrNoDaemon
	}

	g, err := guard.Acquire(l.LockPath)
	switch {
	case err == nil:
		defer func() {
			if err := g.Release(); err != nil {
				slog.Warn("release lock failed", "path", l.LockPath, "err", err)
			}
		}()
	case errors.Is(err, guard.ErrAlreadyRunning) && !req.Type.Mutating():
		slog.Debug("history locked by another process, reading anyway", "path", l.HistoryPath)
	default:
		return nil, err
	}

	backend := clip.NewHeadless()
	if req.Type == message.TypeRecopy && l.Clipboard != nil {
		backend = l.Clipboard()
	}
	defer backend.Close()

	mon := monitor.New(monitor.Config{
		Store:     history.Open(persist.NewFile(l.HistoryPath)),
		Queue:     queue.New(),
		Clipboard: backend,
	})
	runCtx, cancel := context.WithCancel(ctx)
	runErr := make(chan error, 1)
	go func() { runErr <- mon.Run(runCtx) }()

	resp := NewHandler(mon, l.HistoryPath).Handle(runCtx, req)
	cancel()
	if err := <-runErr; err != nil {
		return nil, fmt.Errorf("offline %s: %w", req.Type, err)
	}
	if err := responseError(resp); err != nil {
		return nil, err
	}
	return resp, nil
}
