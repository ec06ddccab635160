package history

import (
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Persister stores whole snapshots. Save receives a copy the Store no longer
// touches.
type Persister interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for new timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the authoritative history. Every mutation that changes something
// is saved through the Persister before the method returns. A failed save is
// logged and leaves the Store dirty; the in-memory state stays authoritative
// and the next save (or Flush) repairs durability.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry
	p       Persister
	now     func() time.Time

	dirty   bool
	saveErr error
}

// Open loads the history from p. A load failure is logged and the Store
// starts empty rather than failing startup.
func Open(p Persister, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]Entry),
		p:       p,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}

	snap, err := p.Load()
	if err != nil {
		slog.Error("history load failed, starting empty", "err", err)
		return s
	}
	for k, v := range snap {
		s.entries[k] = v
	}
	slog.Debug("history loaded", "entries", len(s.entries))
	return s
}

// AddIfAbsent records content the first time it is seen. It reports whether
// a new entry was created; existing entries and blank content are left alone.
func (s *Store) AddIfAbsent(content string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[content]; ok {
		return e, false
	}
	if strings.TrimSpace(content) == "" {
		return Entry{}, false
	}
	now := s.now()
	e := Entry{
		Content:      content,
		FirstSeenAt:  now,
		LastCopiedAt: now,
	}
	s.entries[content] = e
	s.saveLocked()
	return e, true
}

// Recopy counts an explicit re-copy of content by the user.
func (s *Store) Recopy(content string) (Entry, error) {
	return s.update(content, func(e *Entry) {
		e.LastCopiedAt = s.now()
		e.CopyCount++
	})
}

// SetFavorite marks or unmarks content as a favorite.
func (s *Store) SetFavorite(content string, v bool) (Entry, error) {
	return s.update(content, func(e *Entry) { e.Favorite = v })
}

// SetName sets the free-text name of content.
func (s *Store) SetName(content, v string) (Entry, error) {
	return s.update(content, func(e *Entry) { e.Name = v })
}

// SetNote sets the free-text note of content.
func (s *Store) SetNote(content, v string) (Entry, error) {
	return s.update(content, func(e *Entry) { e.Note = v })
}

// Delete removes content and reports whether it was present. Deleting an
// absent entry is not an error.
func (s *Store) Delete(content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[content]; !ok {
		return false
	}
	delete(s.entries, content)
	s.saveLocked()
	return true
}

// Get returns the entry for content.
func (s *Store) Get(content string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[content]
	return e, ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns a copy of the whole history.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot(s.entries).Clone()
}

// Dirty reports whether the last save failed, along with its error.
func (s *Store) Dirty() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty, s.saveErr
}

// Flush retries the save if the last one failed. It returns the save error,
// if any, so shutdown can report it.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	s.saveLocked()
	return s.saveErr
}

func (s *Store) update(content string, fn func(*Entry)) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[content]
	if !ok {
		return Entry{}, ErrNotFound
	}
	fn(&e)
	s.entries[content] = e
	s.saveLocked()
	return e, nil
}

// saveLocked writes the current state. Must be called with s.mu held.
func (s *Store) saveLocked() {
	err := s.p.Save(Snapshot(s.entries).Clone())
	if err != nil {
		if !s.dirty {
			slog.Error("history save failed, keeping changes in memory", "err", err)
		} else {
			slog.Warn("history save still failing", "err", err)
		}
		s.dirty = true
		s.saveErr = err
		return
	}
	if s.dirty {
		slog.Info("history save recovered", "entries", len(s.entries))
	}
	s.dirty = false
	s.saveErr = nil
}
