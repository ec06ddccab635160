package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"go.klb.dev/cliplog/internal/hub"
	"go.klb.dev/cliplog/internal/message"
	"go.klb.dev/cliplog/internal/wire"
)

const requestTimeout = 10 * time.Second

// Server accepts IPC connections. Each connection carries one request; WATCH
// keeps the connection open and streams EVENT messages.
type Server struct {
	h   *Handler
	hub *hub.Hub
}

// NewServer returns a Server answering with h and streaming events from hb.
func NewServer(h *Handler, hb *hub.Hub) *Server {
	return &Server{h: h, hub: hb}
}

// Serve accepts connections on ln until ctx is cancelled or ln fails. It
// closes ln on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	defer ln.Close()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("ipc accept: %w", err)
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	wc := wire.New(conn)
	defer wc.Close()

	wc.SetReadDeadline(requestTimeout)
	req, err := wc.ReadMsg()
	if err != nil {
		slog.Debug("ipc read failed", "err", err)
		return
	}
	wc.SetReadDeadline(0)
	slog.Debug("ipc request", "type", req.Type)

	if req.Type == message.TypeWatch {
		s.watch(ctx, wc)
		return
	}

	if err := wc.WriteMsg(s.h.Handle(ctx, req)); err != nil {
		slog.Warn("ipc write failed", "type", req.Type, "err", err)
	}
}

func (s *Server) watch(ctx context.Context, wc *wire.Conn) {
	if s.hub == nil {
		_ = wc.WriteMsg(message.Errorf(message.CodeUnavailable, "watch is not available"))
		return
	}
	p := newWatchPeer()
	s.hub.Register(p)
	defer s.hub.Unregister(p)

	if err := wc.WriteMsg(&message.Message{Type: message.TypeOK}); err != nil {
		return
	}

	// The client sends nothing more; a read returning means it hung up.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, err := wc.ReadMsg(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-gone:
			return
		case ev := <-p.sendCh:
			m := ToMessage(ev.Entry)
			if err := wc.WriteMsg(&message.Message{
				Type:  message.TypeEvent,
				Event: string(ev.Kind),
				Entry: &m,
			}); err != nil {
				slog.Debug("watcher write failed", "peer", p.ID(), "err", err)
				return
			}
		}
	}
}
