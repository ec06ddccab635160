package control

import (
	"log/slog"

	"github.com/google/uuid"

	"go.klb.dev/cliplog/internal/hub"
)

// watchPeer is the hub.Peer behind one `cliplog watch` connection.
type watchPeer struct {
	id     string
	sendCh chan hub.Event
}

func newWatchPeer() *watchPeer {
	return &watchPeer{
		id:     "watch-" + uuid.NewString(),
		sendCh: make(chan hub.Event, 64),
	}
}

func (p *watchPeer) ID() string { return p.id }

// Send implements hub.Peer. A slow watcher loses events rather than stalling
// the monitor.
func (p *watchPeer) Send(ev hub.Event) {
	select {
	case p.sendCh <- ev:
	default:
		slog.Warn("watcher send channel full, dropping", "peer", p.id, "event", ev.Kind)
	}
}
