// Package poller samples the system clipboard on a fixed interval and queues
// every new non-blank text it sees. It never touches the history itself.
package poller

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/queue"
)

// DefaultInterval is how often the clipboard is sampled.
const DefaultInterval = time.Second

// Poller watches one clipboard backend.
type Poller struct {
	backend  clip.Backend
	q        *queue.Queue
	interval time.Duration

	mu       sync.Mutex
	lastSeen string
}

// New creates a Poller. interval <= 0 selects DefaultInterval.
func New(backend clip.Backend, q *queue.Queue, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{backend: backend, q: q, interval: interval}
}

// Run samples until ctx is cancelled. It samples once immediately so text
// already on the clipboard at startup is captured.
func (p *Poller) Run(ctx context.Context) {
	slog.Info("clipboard poller started", "backend", p.backend.Name(), "interval", p.interval)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	p.Sample()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Sample()
		}
	}
}

// Sample reads the clipboard once and reports whether a value was queued.
// Read failures are transient (another application holding the clipboard)
// and are dropped; the next tick tries again.
func (p *Poller) Sample() bool {
	text, err := p.backend.ReadText()
	if err != nil {
		slog.Debug("clipboard read failed, retrying next tick", "err", err)
		return false
	}

	p.mu.Lock()
	if text == p.lastSeen {
		p.mu.Unlock()
		return false
	}
	p.lastSeen = text
	p.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		return false
	}
	p.q.Push(text)
	return true
}

// Observe records text as already seen, so a value the application itself
// wrote to the clipboard is not queued again.
func (p *Poller) Observe(text string) {
	p.mu.Lock()
	p.lastSeen = text
	p.mu.Unlock()
}
