// Package models defines core data structures for embedding records, content
// listings, and recommendation requests and responses.
package models

import "time"

// CategoryUnknown is the sentinel category used when an article's category
// cannot be resolved from the news service.
const CategoryUnknown = "UNKNOWN"

// EmbeddingRecord is one stored article embedding. A record exists iff the
// article has been indexed; news_id is unique across all records.
type EmbeddingRecord struct {
	ID        int64     `json:"id" db:"id"`
	NewsID    int64     `json:"news_id" db:"news_id"`
	Category  string    `json:"category" db:"category"`
	Title     string    `json:"title" db:"title"`
	Embedding []float32 `json:"-" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ContentItem is one lightweight article listing from the news service,
// as returned by the paginated AI list endpoints.
type ContentItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ContentPage is one page of article listings.
type ContentPage struct {
	Items      []ContentItem `json:"content"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

// EmbeddingText returns the text to embed for an article: title concatenated
// with the description when present, else the title alone.
func EmbeddingText(title, description string) string {
	if description == "" {
		return title
	}
	return title + " " + description
}
