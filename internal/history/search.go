package history

import (
	"sort"
	"strings"
)

// Search returns the entries whose content contains term, ignoring case.
// Surrounding whitespace in term is ignored and a blank term matches
// everything.
func Search(snap Snapshot, term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return Sorted(snap)
	}
	var out []Entry
	for content, e := range snap {
		if strings.Contains(strings.ToLower(content), term) {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out
}

// FilterFavorites returns the favorite entries only.
func FilterFavorites(snap Snapshot) []Entry {
	var out []Entry
	for _, e := range snap {
		if e.Favorite {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out
}

// Sorted returns every entry, newest first.
func Sorted(snap Snapshot) []Entry {
	out := make([]Entry, 0, len(snap))
	for _, e := range snap {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

// Favorites keeps the favorite entries of es, preserving order.
func Favorites(es []Entry) []Entry {
	var out []Entry
	for _, e := range es {
		if e.Favorite {
			out = append(out, e)
		}
	}
	return out
}

func sortEntries(es []Entry) {
	sort.Slice(es, func(i, j int) bool {
		if !es[i].FirstSeenAt.Equal(es[j].FirstSeenAt) {
			return es[i].FirstSeenAt.After(es[j].FirstSeenAt)
		}
		return es[i].Content < es[j].Content
	})
}
