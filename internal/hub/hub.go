// Package hub fans history changes out to live subscribers (cliplog watch).
// It is transport-agnostic: subscribers register, receive events through
// Send, and unregister when their connection goes away.
package hub

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.klb.dev/cliplog/internal/history"
)

// Kind names what happened to an entry.
type Kind string

const (
	KindAdded   Kind = "added"
	KindUpdated Kind = "updated"
	KindDeleted Kind = "deleted"
)

// Event is a history change delivered to a peer.
type Event struct {
	Kind  Kind
	Entry history.Entry
	At    time.Time
}

// Peer is anything that can receive history events from the hub.
type Peer interface {
	ID() string
	// Send delivers an event to the peer. Must be non-blocking.
	Send(Event)
}

// Hub routes history events to all registered peers.
type Hub struct {
	mu    sync.RWMutex
	peers map[string]Peer
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{peers: make(map[string]Peer)}
}

// Register adds a peer.
func (h *Hub) Register(p Peer) {
	h.mu.Lock()
	h.peers[p.ID()] = p
	total := len(h.peers)
	h.mu.Unlock()

	slog.Info("watcher registered", "peer", p.ID(), "total", total)
}

// Unregister removes a peer.
func (h *Hub) Unregister(p Peer) {
	h.mu.Lock()
	delete(h.peers, p.ID())
	total := len(h.peers)
	h.mu.Unlock()

	slog.Info("watcher unregistered", "peer", p.ID(), "total", total)
}

// Publish delivers ev to every registered peer.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	h.mu.RLock()
	targets := make([]Peer, 0, len(h.peers))
	for _, p := range h.peers {
		targets = append(targets, p)
	}
	h.mu.RUnlock()

	for _, p := range targets {
		p.Send(ev)
	}
}

// Peers returns the IDs of the registered peers, sorted.
func (h *Hub) Peers() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.peers))
	for id := range h.peers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
