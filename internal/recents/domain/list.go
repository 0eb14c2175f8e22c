package domain

// Capacity is the maximum number of entries a List holds.
const Capacity = 10

// List is an MRU-ordered registry of entries. Index 0 is the most recently
// used. The zero value is an empty list. Lists are values: every operation
// returns a new List and leaves the receiver untouched.
type List struct {
	entries []Entry
}

// NewList builds a List from entries in MRU order, dropping later duplicates
// of a path and anything past Capacity.
func NewList(entries ...Entry) List {
	out := make([]Entry, 0, min(len(entries), Capacity))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if len(out) == Capacity {
			break
		}
		if _, dup := seen[e.Path]; dup {
			continue
		}
		seen[e.Path] = struct{}{}
		out = append(out, e.clone())
	}
	return List{entries: out}
}

// Len returns the number of entries.
func (l List) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the entries, MRU first.
func (l List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.clone()
	}
	return out
}

// Paths returns the entry paths, MRU first.
func (l List) Paths() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Path
	}
	return out
}

// Index returns the position of path, or -1.
func (l List) Index(path string) int {
	for i, e := range l.entries {
		if e.Path == path {
			return i
		}
	}
	return -1
}

// Contains reports whether path is in the list.
func (l List) Contains(path string) bool {
	return l.Index(path) >= 0
}

// Touch places e at the front. Any existing entry with the same path is
// dropped first, and the oldest entries are evicted past Capacity.
func (l List) Touch(e Entry) List {
	out := make([]Entry, 0, min(len(l.entries)+1, Capacity))
	out = append(out, e.clone())
	for _, existing := range l.entries {
		if len(out) == Capacity {
			break
		}
		if existing.Path == e.Path {
			continue
		}
		out = append(out, existing.clone())
	}
	return List{entries: out}
}

// Remove drops the entry with path. Removing an absent path returns an
// equal list.
func (l List) Remove(path string) List {
	kept, _ := l.Retain(func(e Entry) bool { return e.Path != path })
	return kept
}

// Retain keeps the entries for which keep returns true, preserving order,
// and returns the dropped entries separately.
func (l List) Retain(keep func(Entry) bool) (List, []Entry) {
	out := make([]Entry, 0, len(l.entries))
	var dropped []Entry
	for _, e := range l.entries {
		if keep(e) {
			out = append(out, e.clone())
		} else {
			dropped = append(dropped, e.clone())
		}
	}
	return List{entries: out}, dropped
}
