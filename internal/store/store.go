// Package store defines the persistence contract for article embeddings.
package store

import (
	"context"
	"errors"

	"github.com/intellinews/newsrec/internal/models"
)

// ErrNotFound is returned when no record exists for the requested news_id.
var ErrNotFound = errors.New("embedding record not found")

// ErrDuplicate is returned by Put when a record for the news_id already
// exists. A concurrent indexer losing the insert race must treat this as
// "already indexed", not as a failure.
var ErrDuplicate = errors.New("embedding record already exists")

// ErrDimension is returned when a record's embedding length does not match
// the store's configured dimension. Such records are never written.
var ErrDimension = errors.New("embedding dimension mismatch")

// VectorStore persists article embedding records keyed by news_id.
// The news_id uniqueness constraint is the system of record for "is this
// article indexed"; application-level existence checks are only an
// optimization.
type VectorStore interface {
	Exists(ctx context.Context, newsID int64) (bool, error)
	// ExistsBatch returns the subset of newsIDs that already have records.
	ExistsBatch(ctx context.Context, newsIDs []int64) (map[int64]bool, error)
	Get(ctx context.Context, newsID int64) (*models.EmbeddingRecord, error)
	Put(ctx context.Context, rec *models.EmbeddingRecord) error
	// PutBatch inserts all records in one transaction; on any failure the
	// whole batch rolls back and nothing is committed.
	PutBatch(ctx context.Context, recs []*models.EmbeddingRecord) error
	// Scan returns all records except excludeNewsID, optionally filtered by
	// category. No ordering is guaranteed.
	Scan(ctx context.Context, excludeNewsID int64, categoryFilter string) ([]*models.EmbeddingRecord, error)
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
	Close() error
}
