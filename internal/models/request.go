package models

import "fmt"

// SimilarRequest asks for articles similar to a source article.
type SimilarRequest struct {
	NewsID         int64  `json:"news_id"`
	Limit          int    `json:"limit,omitempty"`
	CategoryFilter string `json:"category_filter,omitempty"`
}

// Validate checks the request and normalizes the limit.
// maxLimit caps the number of results a caller may request.
func (r *SimilarRequest) Validate(defaultLimit, maxLimit int) error {
	if r.NewsID <= 0 {
		return fmt.Errorf("news_id must be positive")
	}
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	if r.Limit > maxLimit {
		r.Limit = maxLimit
	}
	return nil
}

// IndexRequest asks for a single article to be indexed.
type IndexRequest struct {
	NewsID int64 `json:"news_id"`
}

// Validate checks the request.
func (r *IndexRequest) Validate() error {
	if r.NewsID <= 0 {
		return fmt.Errorf("news_id must be positive")
	}
	return nil
}

// IndexBatchRequest asks for one page of articles to be indexed.
type IndexBatchRequest struct {
	Page     int    `json:"page"`
	Size     int    `json:"size,omitempty"`
	Category string `json:"category,omitempty"`
}

// Validate checks the request and normalizes the page size.
func (r *IndexBatchRequest) Validate(defaultSize, maxSize int) error {
	if r.Page < 0 {
		return fmt.Errorf("page must not be negative")
	}
	if r.Size <= 0 {
		r.Size = defaultSize
	}
	if r.Size > maxSize {
		r.Size = maxSize
	}
	return nil
}
