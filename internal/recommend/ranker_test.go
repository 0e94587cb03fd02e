package recommend

import (
	"math"
	"testing"

	"github.com/intellinews/newsrec/internal/models"
)

func rec(newsID int64, vec []float32) *models.EmbeddingRecord {
	return &models.EmbeddingRecord{NewsID: newsID, Title: "t", Category: "c", Embedding: vec}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero norm a", []float32{0, 0}, []float32{1, 0}, 0},
		{"zero norm b", []float32{1, 0}, []float32{0, 0}, 0},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
		{"scaled", []float32{2, 0}, []float32{5, 0}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestRank_OrderAndLimit(t *testing.T) {
	source := []float32{1, 0, 0}
	candidates := []*models.EmbeddingRecord{
		rec(2, []float32{0.5, 0.5, 0}),  // ~0.7071
		rec(3, []float32{1, 0, 0}),      // 1.0
		rec(4, []float32{0.9, 0.1, 0}),  // ~0.9939
		rec(5, []float32{0.2, 0.98, 0}), // ~0.2
	}

	results := Rank(source, candidates, 3, 0.10)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	wantOrder := []int64{3, 4, 2}
	for i, want := range wantOrder {
		if results[i].NewsID != want {
			t.Errorf("position %d: got news_id %d, want %d", i, results[i].NewsID, want)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Error("results must be sorted by descending score")
		}
	}
}

func TestRank_Deterministic(t *testing.T) {
	source := []float32{1, 0.5, 0.25}
	candidates := []*models.EmbeddingRecord{
		rec(10, []float32{0.3, 0.7, 0.1}),
		rec(11, []float32{0.8, 0.1, 0.4}),
		rec(12, []float32{0.5, 0.5, 0.5}),
	}
	first := Rank(source, candidates, 3, 0.10)
	for i := 0; i < 10; i++ {
		again := Rank(source, candidates, 3, 0.10)
		if len(again) != len(first) {
			t.Fatal("result length changed between runs")
		}
		for j := range first {
			if again[j] != first[j] {
				t.Fatalf("run %d differs at position %d: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestRank_TieBreakAscendingNewsID(t *testing.T) {
	source := []float32{1, 0}
	// All candidates identical to the source: every score ties at 1.0.
	candidates := []*models.EmbeddingRecord{
		rec(30, []float32{1, 0}),
		rec(10, []float32{1, 0}),
		rec(20, []float32{2, 0}), // scaled copy, still cosine 1.0
	}
	results := Rank(source, candidates, 3, 0.10)
	wantOrder := []int64{10, 20, 30}
	for i, want := range wantOrder {
		if results[i].NewsID != want {
			t.Errorf("position %d: got news_id %d, want %d (equal scores order by ascending news_id)", i, results[i].NewsID, want)
		}
	}
}

func TestRank_FloorSuppressesLowScores(t *testing.T) {
	source := []float32{1, 0}
	candidates := []*models.EmbeddingRecord{
		rec(1, []float32{1, 0}),     // 1.0
		rec(2, []float32{0, 1}),     // 0.0
		rec(3, []float32{-1, 0}),    // -1.0
		rec(4, []float32{0.05, 1}),  // ~0.05
	}
	results := Rank(source, candidates, 10, 0.10)
	if len(results) != 1 {
		t.Fatalf("expected low-similarity candidates suppressed, got %d results", len(results))
	}
	for _, r := range results {
		if r.Score < 0.10 {
			t.Errorf("returned score %f below floor", r.Score)
		}
	}
}

// The floor is applied after top-K truncation: a below-floor candidate
// inside the top K shrinks the result rather than being replaced by the
// next-best candidate.
func TestRank_FloorAppliedAfterTruncation(t *testing.T) {
	source := []float32{1, 0}
	candidates := []*models.EmbeddingRecord{
		rec(1, []float32{1, 0}),       // 1.0
		rec(2, []float32{0.05, 1}),    // ~0.05, in top 2 but below floor
		rec(3, []float32{0.04, 1}),    // ~0.04
	}
	results := Rank(source, candidates, 2, 0.10)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].NewsID != 1 {
		t.Errorf("expected news_id 1, got %d", results[0].NewsID)
	}
}

func TestRank_ScoreRounding(t *testing.T) {
	source := []float32{1, 1, 0}
	candidates := []*models.EmbeddingRecord{rec(1, []float32{1, 0, 0})}
	results := Rank(source, candidates, 1, 0.10)
	if len(results) != 1 {
		t.Fatal("expected 1 result")
	}
	// cos = 1/sqrt(2) = 0.70710678... rounds to 0.7071
	if results[0].Score != 0.7071 {
		t.Errorf("expected 0.7071, got %v", results[0].Score)
	}
}

func TestRank_Empty(t *testing.T) {
	if got := Rank([]float32{1, 0}, nil, 5, 0.10); got != nil {
		t.Errorf("expected nil for no candidates, got %v", got)
	}
	if got := Rank([]float32{1, 0}, []*models.EmbeddingRecord{rec(1, []float32{1, 0})}, 0, 0.10); got != nil {
		t.Errorf("expected nil for zero limit, got %v", got)
	}
}
