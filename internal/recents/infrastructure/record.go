package infrastructure

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zjrosen/recents/internal/recents/domain"
)

// recordFile is the on-disk layout of recent_files.json.
type recordFile struct {
	Files *[]recordEntry `json:"files"`
}

type recordEntry struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	LastModified time.Time `json:"last_modified"`
	Preview      *string   `json:"preview"`
}

var errMissingFiles = errors.New(`missing "files" list`)

// encodeRecord renders l as indented JSON with a trailing newline.
func encodeRecord(l domain.List) ([]byte, error) {
	entries := l.Entries()
	files := make([]recordEntry, len(entries))
	for i, e := range entries {
		files[i] = recordEntry{
			Name:         e.Name,
			Path:         e.Path,
			LastModified: e.LastModified.UTC(),
			Preview:      e.Preview,
		}
	}

	data, err := json.MarshalIndent(recordFile{Files: &files}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	return append(data, '\n'), nil
}

// decodeRecord parses data into a List. The "files" key is required; an
// empty document is an error, not an empty registry.
func decodeRecord(data []byte) (domain.List, error) {
	var rec recordFile
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.List{}, err
	}
	if rec.Files == nil {
		return domain.List{}, errMissingFiles
	}

	entries := make([]domain.Entry, 0, len(*rec.Files))
	for i, f := range *rec.Files {
		if f.Path == "" {
			return domain.List{}, fmt.Errorf("entry %d: empty path", i)
		}
		entries = append(entries, domain.Entry{
			Name:         f.Name,
			Path:         f.Path,
			LastModified: f.LastModified,
			Preview:      f.Preview,
		})
	}
	return domain.NewList(entries...), nil
}
