package domain

import (
	"path/filepath"
	"time"
)

// unknownName is used when a path has no usable final component.
const unknownName = "Unknown"

// Entry is one tracked file reference.
type Entry struct {
	// Name is the display name, taken from the final path component when
	// the entry was created. It is not re-derived later.
	Name string
	// Path is the natural key. Two entries are the same file iff their
	// Path strings are equal.
	Path string
	// LastModified is the file's modification time captured at insertion.
	LastModified time.Time
	// Preview is optional caller-supplied text. Nil means "no preview",
	// which is distinct from an empty preview.
	Preview *string
}

// NewEntry builds an Entry for path, deriving Name from the final path
// component.
func NewEntry(path string, modTime time.Time, preview *string) Entry {
	return Entry{
		Name:         DisplayName(path),
		Path:         path,
		LastModified: modTime.UTC(),
		Preview:      clonePreview(preview),
	}
}

// DisplayName returns the final component of path, or "Unknown" when there
// is none.
func DisplayName(path string) string {
	if path == "" {
		return unknownName
	}
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return unknownName
	}
	return base
}

// HasPreview reports whether a preview was supplied.
func (e Entry) HasPreview() bool {
	return e.Preview != nil
}

// PreviewText returns the preview or "" when none was supplied.
func (e Entry) PreviewText() string {
	if e.Preview == nil {
		return ""
	}
	return *e.Preview
}

// clone returns a copy that shares no pointers with e.
func (e Entry) clone() Entry {
	e.Preview = clonePreview(e.Preview)
	return e
}

func clonePreview(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}

// Preview returns a pointer to s, for building entries with a preview.
func Preview(s string) *string {
	return &s
}
