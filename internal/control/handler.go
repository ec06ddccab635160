// Package control exposes a monitor over the local IPC socket and lets the
// CLI reach it, either through a running daemon or, when none is running, by
// opening the history file in-process.
package control

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/message"
	"go.klb.dev/cliplog/internal/monitor"
)

var errBadRequest = errors.New("bad request")

// Handler answers one-shot requests against a monitor.
type Handler struct {
	mon         *monitor.Monitor
	historyPath string
	pid         int
}

// NewHandler returns a Handler for mon. historyPath is reported by STATUS.
func NewHandler(mon *monitor.Monitor, historyPath string) *Handler {
	return &Handler{mon: mon, historyPath: historyPath, pid: os.Getpid()}
}

// Handle executes req and returns the response. Failures come back as ERROR
// messages, never as Go errors.
func (h *Handler) Handle(ctx context.Context, req *message.Message) *message.Message {
	switch req.Type {
	case message.TypeList:
		return entriesResponse(h.mon.Search(ctx, "", req.Favorites))

	case message.TypeSearch:
		return entriesResponse(h.mon.Search(ctx, req.Term, req.Favorites))

	case message.TypeGet:
		return h.get(ctx, req.Refs)

	case message.TypeRecopy:
		return h.withTarget(ctx, req, func(content string) (history.Entry, error) {
			return h.mon.Recopy(ctx, content)
		})

	case message.TypeFavorite:
		return h.withTarget(ctx, req, func(content string) (history.Entry, error) {
			return h.mon.SetFavorite(ctx, content, req.Favorite)
		})

	case message.TypeName:
		return h.withTarget(ctx, req, func(content string) (history.Entry, error) {
			return h.mon.SetName(ctx, content, req.Value)
		})

	case message.TypeNote:
		return h.withTarget(ctx, req, func(content string) (history.Entry, error) {
			return h.mon.SetNote(ctx, content, req.Value)
		})

	case message.TypeDelete:
		return h.delete(ctx, req)

	case message.TypeStatus:
		return h.status(ctx)

	case message.TypeWatch:
		return errorResponse(fmt.Errorf("%w: watch needs a streaming connection", errBadRequest))
	}
	return errorResponse(fmt.Errorf("%w: unsupported request type %q", errBadRequest, req.Type))
}

// target resolves the entry a request points at: exact content when given,
// otherwise a ref prefix.
func (h *Handler) target(ctx context.Context, req *message.Message) (string, error) {
	if req.Content != "" {
		content, err := message.DecodeText(req.Content)
		if err != nil {
			return "", fmt.Errorf("%w: %w", errBadRequest, err)
		}
		return content, nil
	}
	if req.Ref == "" {
		return "", fmt.Errorf("%w: %s needs a ref or content", errBadRequest, req.Type)
	}
	snap, err := h.mon.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return history.Resolve(snap, req.Ref)
}

func (h *Handler) withTarget(ctx context.Context, req *message.Message, fn func(string) (history.Entry, error)) *message.Message {
	content, err := h.target(ctx, req)
	if err != nil {
		return errorResponse(err)
	}
	e, err := fn(content)
	if err != nil {
		return errorResponse(err)
	}
	m := ToMessage(e)
	return &message.Message{Type: message.TypeEntry, Entry: &m}
}

func (h *Handler) get(ctx context.Context, refs []string) *message.Message {
	if len(refs) == 0 {
		return errorResponse(fmt.Errorf("%w: get needs at least one ref", errBadRequest))
	}
	snap, err := h.mon.Snapshot(ctx)
	if err != nil {
		return errorResponse(err)
	}
	out := make([]message.Entry, 0, len(refs))
	for _, ref := range refs {
		content, err := history.Resolve(snap, ref)
		if err != nil {
			return errorResponse(err)
		}
		out = append(out, ToMessage(snap[content]))
	}
	return &message.Message{Type: message.TypeEntries, Entries: out}
}

// delete treats an unknown target as already deleted.
func (h *Handler) delete(ctx context.Context, req *message.Message) *message.Message {
	content, err := h.target(ctx, req)
	if errors.Is(err, history.ErrNotFound) {
		return &message.Message{Type: message.TypeOK}
	}
	if err != nil {
		return errorResponse(err)
	}
	removed, err := h.mon.Delete(ctx, content)
	if err != nil {
		return errorResponse(err)
	}
	return &message.Message{Type: message.TypeOK, Removed: removed}
}

func (h *Handler) status(ctx context.Context) *message.Message {
	st, err := h.mon.Status(ctx)
	if err != nil {
		return errorResponse(err)
	}
	return &message.Message{
		Type: message.TypeStatusResponse,
		Status: &message.Status{
			PID:         h.pid,
			Backend:     st.Backend,
			HistoryPath: h.historyPath,
			StartedAt:   st.StartedAt,
			Entries:     st.Entries,
			Favorites:   st.Favorites,
			Pending:     st.Pending,
			Watchers:    st.Watchers,
			Dirty:       st.Dirty,
			SaveError:   st.SaveError,
		},
	}
}

func entriesResponse(es []history.Entry, err error) *message.Message {
	if err != nil {
		return errorResponse(err)
	}
	return &message.Message{Type: message.TypeEntries, Entries: toMessages(es)}
}

func errorResponse(err error) *message.Message {
	code := message.CodeInternal
	switch {
	case errors.Is(err, errBadRequest):
		code = message.CodeBadRequest
	case errors.Is(err, history.ErrNotFound):
		code = message.CodeNotFound
	case errors.Is(err, history.ErrAmbiguous):
		code = message.CodeAmbiguous
	case errors.Is(err, clip.ErrAccess):
		code = message.CodeClipboard
	case errors.Is(err, monitor.ErrStopped),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		code = message.CodeUnavailable
	}
	return &message.Message{Type: message.TypeError, Code: code, Error: err.Error()}
}
