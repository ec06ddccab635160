// Package persist stores a history snapshot as a single versioned JSON file.
//
// File layout:
//
//	{"version":1,"saved_at":"…","entries":[{"content":"…",…},…]}
//
// Every save replaces the whole file through a temp file in the same
// directory followed by a rename, so readers see either the old or the new
// snapshot and never a truncated one. Entries are self-describing records:
// unknown fields are ignored and missing ones take zero values, which keeps
// older and newer files readable.
package persist

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/afero"

	"go.klb.dev/cliplog/internal/history"
)

// FormatVersion is the version written by Save.
const FormatVersion = 1

var (
	// ErrLoad wraps every failure to read or decode an existing snapshot.
	ErrLoad = errors.New("history load failed")

	// ErrSave wraps every failure to write a snapshot.
	ErrSave = errors.New("history save failed")
)

type fileSnapshot struct {
	Version int       `json:"version"`
	SavedAt time.Time `json:"saved_at"`
	Entries []record  `json:"entries"`
}

// record is one entry on disk. Content that is not valid UTF-8 would be
// rewritten by encoding/json, so it travels base64-encoded instead.
type record struct {
	Content      string    `json:"content,omitempty"`
	ContentB64   string    `json:"content_b64,omitempty"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastCopiedAt time.Time `json:"last_copied_at"`
	CopyCount    int       `json:"copy_count"`
	Favorite     bool      `json:"favorite"`
	Name         string    `json:"name,omitempty"`
	Note         string    `json:"note,omitempty"`
}

// File is a history.Persister backed by one file.
type File struct {
	fs   afero.Fs
	path string
	now  func() time.Time
}

// NewFile returns a File at path on the OS file system.
func NewFile(path string) *File {
	return NewFileFs(afero.NewOsFs(), path)
}

// NewFileFs returns a File at path on fs.
func NewFileFs(fs afero.Fs, path string) *File {
	return &File{fs: fs, path: path, now: time.Now}
}

// Path returns the snapshot location.
func (f *File) Path() string { return f.path }

// Load reads the snapshot. A missing file is a first run and yields an
// empty snapshot with no error. Anything unreadable yields an empty snapshot
// and an error wrapping ErrLoad.
func (f *File) Load() (history.Snapshot, error) {
	empty := history.Snapshot{}

	fh, err := f.fs.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return empty, nil
		}
		return empty, fmt.Errorf("%w: open %s: %w", ErrLoad, f.path, err)
	}
	defer fh.Close()

	raw, err := io.ReadAll(fh)
	if err != nil {
		return empty, fmt.Errorf("%w: read %s: %w", ErrLoad, f.path, err)
	}
	return f.decode(raw)
}

func (f *File) decode(raw []byte) (history.Snapshot, error) {
	empty := history.Snapshot{}

	var doc fileSnapshot
	if err := json.Unmarshal(raw, &doc); err != nil {
		return empty, fmt.Errorf("%w: decode %s: %w", ErrLoad, f.path, err)
	}
	if doc.Version <= 0 {
		return empty, fmt.Errorf("%w: %s: missing format version", ErrLoad, f.path)
	}
	if doc.Version > FormatVersion {
		slog.Warn("history file written by a newer version, reading known fields",
			"path", f.path,
			"version", doc.Version,
			"supported", FormatVersion,
		)
	}

	snap := make(history.Snapshot, len(doc.Entries))
	for i, r := range doc.Entries {
		content, err := r.content()
		if err != nil {
			return empty, fmt.Errorf("%w: %s: entry %d: %w", ErrLoad, f.path, i, err)
		}
		if strings.TrimSpace(content) == "" {
			slog.Warn("skipping blank history entry", "path", f.path, "index", i)
			continue
		}
		if _, dup := snap[content]; dup {
			slog.Warn("skipping duplicate history entry", "path", f.path, "index", i, "ref", history.Ref(content))
			continue
		}
		snap[content] = history.Entry{
			Content:      content,
			FirstSeenAt:  r.FirstSeenAt,
			LastCopiedAt: r.LastCopiedAt,
			CopyCount:    r.CopyCount,
			Favorite:     r.Favorite,
			Name:         r.Name,
			Note:         r.Note,
		}
	}
	return snap, nil
}

// Save replaces the snapshot file with snap.
func (f *File) Save(snap history.Snapshot) error {
	raw, err := encode(snap, f.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrSave, err)
	}

	dir := filepath.Dir(f.path)
	if err := f.fs.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", ErrSave, dir, err)
	}

	tmp, err := afero.TempFile(f.fs, dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: temp file: %w", ErrSave, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("%w: write %s: %w", ErrSave, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("%w: sync %s: %w", ErrSave, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("%w: close %s: %w", ErrSave, tmpName, err)
	}
	if err := f.fs.Rename(tmpName, f.path); err != nil {
		_ = f.fs.Remove(tmpName)
		return fmt.Errorf("%w: rename to %s: %w", ErrSave, f.path, err)
	}
	return nil
}

func encode(snap history.Snapshot, savedAt time.Time) ([]byte, error) {
	doc := fileSnapshot{
		Version: FormatVersion,
		SavedAt: savedAt,
		Entries: make([]record, 0, len(snap)),
	}
	for content, e := range snap {
		r := record{
			FirstSeenAt:  e.FirstSeenAt,
			LastCopiedAt: e.LastCopiedAt,
			CopyCount:    e.CopyCount,
			Favorite:     e.Favorite,
			Name:         e.Name,
			Note:         e.Note,
		}
		if utf8.ValidString(content) {
			r.Content = content
		} else {
			r.ContentB64 = base64.StdEncoding.EncodeToString([]byte(content))
		}
		doc.Entries = append(doc.Entries, r)
	}
	sort.Slice(doc.Entries, func(i, j int) bool {
		return doc.Entries[i].key() < doc.Entries[j].key()
	})
	return json.MarshalIndent(doc, "", "  ")
}

func (r record) key() string {
	if r.ContentB64 != "" {
		return "\x00" + r.ContentB64
	}
	return r.Content
}

func (r record) content() (string, error) {
	if r.ContentB64 == "" {
		return r.Content, nil
	}
	b, err := base64.StdEncoding.DecodeString(r.ContentB64)
	if err != nil {
		return "", fmt.Errorf("content_b64: %w", err)
	}
	return string(b), nil
}
