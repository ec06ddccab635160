package control

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/message"
	"go.klb.dev/cliplog/internal/monitor"
	"go.klb.dev/cliplog/internal/wire"
)

// RemoteError is an ERROR response. It unwraps to the matching sentinel so
// callers can use errors.Is whether the request ran in a daemon or locally.
type RemoteError struct {
	Code message.Code
	Msg  string
}

func (e *RemoteError) Error() string { return e.Msg }

func (e *RemoteError) Unwrap() error {
	switch e.Code {
	case message.CodeNotFound:
		return history.ErrNotFound
	case message.CodeAmbiguous:
		return history.ErrAmbiguous
	case message.CodeClipboard:
		return clip.ErrAccess
	case message.CodeUnavailable:
		return monitor.ErrStopped
	case message.CodeBadRequest:
		return errBadRequest
	}
	return nil
}

func responseError(resp *message.Message) error {
	if resp.Type != message.TypeError {
		return nil
	}
	return &RemoteError{Code: resp.Code, Msg: resp.Error}
}

// ErrWrongDaemon means the daemon answering on the socket serves a different
// history file than the one the caller resolved.
var ErrWrongDaemon = errors.New("daemon on socket serves a different history")

// Client sends requests to a daemon's IPC socket.
type Client struct {
	path    string
	history string
}

// NewClient returns a Client for the socket at path.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// ForHistory returns a copy of c that refuses to talk to a daemon serving any
// history file other than historyPath.
func (c *Client) ForHistory(historyPath string) *Client {
	cc := *c
	cc.history = historyPath
	return &cc
}

// Do sends req and waits for the reply. An ERROR reply is returned as a
// *RemoteError.
func (c *Client) Do(req *message.Message) (*message.Message, error) {
	if err := c.checkHistory(); err != nil {
		return nil, err
	}
	return c.roundTrip(req)
}

func (c *Client) roundTrip(req *message.Message) (*message.Message, error) {
	conn, err := ipc.Dial(c.path)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}
	wc := wire.New(conn)
	defer wc.Close()

	if err := wc.WriteMsg(req); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	wc.SetReadDeadline(requestTimeout)
	resp, err := wc.ReadMsg()
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := responseError(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// checkHistory asks the daemon which history it serves. Without an expected
// history it does nothing.
func (c *Client) checkHistory() error {
	if c.history == "" {
		return nil
	}
	resp, err := c.roundTrip(&message.Message{Type: message.TypeStatus})
	if err != nil {
		return err
	}
	if resp.Status == nil || !samePath(resp.Status.HistoryPath, c.history) {
		served := ""
		if resp.Status != nil {
			served = resp.Status.HistoryPath
		}
		return fmt.Errorf("%w: %s serves %q, want %q", ErrWrongDaemon, c.path, served, c.history)
	}
	return nil
}

func samePath(a, b string) bool {
	if abs, err := filepath.Abs(a); err == nil {
		a = abs
	}
	if abs, err := filepath.Abs(b); err == nil {
		b = abs
	}
	return filepath.Clean(a) == filepath.Clean(b)
}

// Watch subscribes to history events and calls fn for each one until ctx is
// cancelled, the daemon goes away, or fn returns an error.
func (c *Client) Watch(ctx context.Context, fn func(*message.Message) error) error {
	if err := c.checkHistory(); err != nil {
		return err
	}
	conn, err := ipc.Dial(c.path)
	if err != nil {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	wc := wire.New(conn)
	defer wc.Close()

	if err := wc.WriteMsg(&message.Message{Type: message.TypeWatch}); err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	wc.SetReadDeadline(requestTimeout)
	ack, err := wc.ReadMsg()
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := responseError(ack); err != nil {
		return err
	}
	wc.SetReadDeadline(0)

	stop := context.AfterFunc(ctx, func() { _ = wc.Close() })
	defer stop()

	for {
		msg, err := wc.ReadMsg()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
		if msg.Type != message.TypeEvent {
			continue
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}
