package history

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// MinRefLen is the shortest prefix Resolve accepts.
const MinRefLen = 4

// Ref derives the 16 hex digit identifier the CLI uses for an entry.
func Ref(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// Resolve finds the content whose Ref starts with prefix.
func Resolve(snap Snapshot, prefix string) (string, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) < MinRefLen {
		return "", fmt.Errorf("ref %q: need at least %d characters: %w", prefix, MinRefLen, ErrNotFound)
	}
	var (
		found string
		n     int
	)
	for content := range snap {
		if strings.HasPrefix(Ref(content), prefix) {
			found = content
			n++
		}
	}
	switch n {
	case 0:
		return "", fmt.Errorf("ref %q: %w", prefix, ErrNotFound)
	case 1:
		return found, nil
	default:
		return "", fmt.Errorf("ref %q matches %d entries: %w", prefix, n, ErrAmbiguous)
	}
}
