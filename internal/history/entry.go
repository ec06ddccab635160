// Package history owns the clipboard history: the Entry model, the
// write-through Store that is the only thing allowed to mutate it, and the
// pure queries run over its snapshots.
package history

import (
	"errors"
	"time"
)

var (
	// ErrNotFound means the targeted content is not in the history. The
	// caller's view is stale and should be refreshed.
	ErrNotFound = errors.New("entry not found")

	// ErrAmbiguous means a ref prefix matched more than one entry.
	ErrAmbiguous = errors.New("ambiguous entry ref")
)

// Entry is one captured clipboard text and its metadata. Content is the key
// and is compared byte for byte.
type Entry struct {
	Content      string
	FirstSeenAt  time.Time
	LastCopiedAt time.Time
	CopyCount    int
	Favorite     bool
	Name         string
	Note         string
}

// Ref returns the short identifier of the entry.
func (e Entry) Ref() string { return Ref(e.Content) }

// Snapshot is a point-in-time copy of the history keyed by content. Entries
// are values, so mutating a Snapshot never reaches the Store.
type Snapshot map[string]Entry

// Clone returns an independent copy of s.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
