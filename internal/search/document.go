// Package search provides full-text search over deadlines using Bleve.
// Queries match the tracked book's title and author with fuzzy and prefix
// matching, and every query is scoped to a single user.
package search

import (
	"github.com/bookdueapp/bookdue-server/internal/domain"
)

// SearchDocument is the document structure for the Bleve index. One document
// per deadline; book metadata is denormalized from the deadline so a single
// query covers it all.
type SearchDocument struct {
	// Identity
	ID     string `json:"id"`      // Deadline ID (dl_xxx)
	UserID string `json:"user_id"` // Owner - every query filters on this

	// Searchable text
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`

	// Keyword fields for exact filtering
	Format string `json:"format"`
	Source string `json:"source,omitempty"`

	// Numeric fields for range queries and sorting
	DeadlineDate int64 `json:"deadline_date"` // Unix millis
	CreatedAt    int64 `json:"created_at"`    // Unix millis
	UpdatedAt    int64 `json:"updated_at"`    // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":            d.ID,
		"user_id":       d.UserID,
		"title":         d.Title,
		"format":        d.Format,
		"deadline_date": d.DeadlineDate,
		"created_at":    d.CreatedAt,
		"updated_at":    d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Source != "" {
		m["source"] = d.Source
	}

	return m
}

// DeadlineToSearchDocument converts a domain Deadline to a SearchDocument.
func DeadlineToSearchDocument(d *domain.Deadline) *SearchDocument {
	doc := &SearchDocument{
		ID:           d.ID,
		UserID:       d.UserID,
		Title:        d.BookTitle,
		Format:       string(d.Format),
		Source:       d.Source,
		DeadlineDate: d.DeadlineDate.UnixMilli(),
		CreatedAt:    d.CreatedAt.UnixMilli(),
		UpdatedAt:    d.UpdatedAt.UnixMilli(),
	}
	if d.Author != nil {
		doc.Author = *d.Author
	}
	return doc
}
