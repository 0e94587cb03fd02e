// Package recommend implements the content-based similarity engine:
// indexing article embeddings and ranking stored embeddings by cosine
// similarity to a source article.
package recommend

import (
	"math"
	"sort"

	"github.com/intellinews/newsrec/internal/models"
)

// Cosine returns the cosine similarity between two vectors:
// dot(a,b) / (||a|| * ||b||). Defined as 0 when either norm is 0 or the
// lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank scores candidates against the source vector and returns the ordered
// top results. Candidates are sorted by similarity descending with ascending
// news_id as the deterministic tie-break, truncated to limit, and any
// candidate whose raw similarity is below minScore is dropped, so the result
// may be shorter than limit. Scores in the output are rounded to 4 decimal
// digits.
func Rank(source []float32, candidates []*models.EmbeddingRecord, limit int, minScore float64) []models.RecommendedItem {
	if limit <= 0 || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		rec   *models.EmbeddingRecord
		score float64
	}
	scores := make([]scored, len(candidates))
	for i, rec := range candidates {
		scores[i] = scored{rec: rec, score: Cosine(source, rec.Embedding)}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].rec.NewsID < scores[j].rec.NewsID
	})

	if limit > len(scores) {
		limit = len(scores)
	}
	results := make([]models.RecommendedItem, 0, limit)
	for _, s := range scores[:limit] {
		if s.score < minScore {
			continue
		}
		results = append(results, models.RecommendedItem{
			NewsID:   s.rec.NewsID,
			Title:    s.rec.Title,
			Category: s.rec.Category,
			Score:    roundScore(s.score),
		})
	}
	return results
}

// roundScore rounds to 4 decimal digits for output.
func roundScore(s float64) float64 {
	return math.Round(s*10000) / 10000
}
