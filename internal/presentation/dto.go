package presentation

import (
	"time"

	"github.com/zjrosen/recents/internal/recents/domain"
)

// EntryDTO is a registry entry as printed by the CLI.
type EntryDTO struct {
	Name         string    `json:"name" yaml:"name"`
	Path         string    `json:"path" yaml:"path"`
	LastModified time.Time `json:"last_modified" yaml:"last_modified"`
	Preview      *string   `json:"preview" yaml:"preview"`
}

// FromDomainEntry converts a domain entry to a DTO.
func FromDomainEntry(e domain.Entry) EntryDTO {
	return EntryDTO{
		Name:         e.Name,
		Path:         e.Path,
		LastModified: e.LastModified,
		Preview:      e.Preview,
	}
}

// FromDomainEntries converts entries in order. The result is never nil so
// an empty registry encodes as [] rather than null.
func FromDomainEntries(entries []domain.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromDomainEntry(e))
	}
	return out
}
