package models

// RecommendedItem is a single ranked similarity hit.
type RecommendedItem struct {
	NewsID   int64   `json:"news_id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Score    float64 `json:"similarity_score"`
}

// SimilarResponse is the response for a similarity request.
type SimilarResponse struct {
	Success         bool              `json:"success"`
	SourceNewsID    int64             `json:"source_news_id"`
	Recommendations []RecommendedItem `json:"recommendations"`
	Cached          bool              `json:"cached"`
	Message         string            `json:"message,omitempty"`
}

// IndexResponse is the response for single and batch index requests.
type IndexResponse struct {
	Success      bool   `json:"success"`
	IndexedCount int    `json:"indexed_count"`
	SkippedCount int    `json:"skipped_count"`
	Message      string `json:"message,omitempty"`
}

// StatsResponse reports embedding index statistics.
type StatsResponse struct {
	TotalEmbeddings int64            `json:"total_embeddings"`
	ByCategory      map[string]int64 `json:"by_category"`
}
