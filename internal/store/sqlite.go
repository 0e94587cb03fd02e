// Package store provides the SQLite implementation of the VectorStore interface.
package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/intellinews/newsrec/internal/models"
)

// SQLiteStore implements VectorStore using SQLite. Embeddings are stored as
// little-endian float32 blobs of exactly dimensions*4 bytes.
type SQLiteStore struct {
	db         *sql.DB
	dimensions int
}

// NewSQLiteStore opens or creates a SQLite database at dbPath and initializes
// the schema. Parent directories are created if they do not exist.
// dimensions is the fixed embedding length enforced on every write.
func NewSQLiteStore(dbPath string, dimensions int) (*SQLiteStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// Busy timeout so concurrent writers wait for the lock instead of
	// failing with SQLITE_BUSY; the UNIQUE constraint stays the only
	// visible outcome of an insert race.
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dimensions: dimensions}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS news_embeddings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		news_id INTEGER NOT NULL UNIQUE,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_news_embeddings_category ON news_embeddings(category);
	`
	_, err := db.Exec(schema)
	return err
}

// Dimensions returns the fixed embedding length enforced by the store.
func (s *SQLiteStore) Dimensions() int {
	return s.dimensions
}

// Exists reports whether a record exists for newsID.
func (s *SQLiteStore) Exists(ctx context.Context, newsID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM news_embeddings WHERE news_id = ?`, newsID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExistsBatch returns the subset of newsIDs that already have records.
func (s *SQLiteStore) ExistsBatch(ctx context.Context, newsIDs []int64) (map[int64]bool, error) {
	existing := make(map[int64]bool, len(newsIDs))
	if len(newsIDs) == 0 {
		return existing, nil
	}
	placeholders := strings.Repeat("?,", len(newsIDs)-1) + "?"
	args := make([]interface{}, len(newsIDs))
	for i, id := range newsIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT news_id FROM news_embeddings WHERE news_id IN (`+placeholders+`)`, args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// Get returns the record for newsID, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, newsID int64) (*models.EmbeddingRecord, error) {
	var rec models.EmbeddingRecord
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, news_id, category, title, embedding, created_at, updated_at
		 FROM news_embeddings WHERE news_id = ?`, newsID,
	).Scan(&rec.ID, &rec.NewsID, &rec.Category, &rec.Title, &blob, &rec.CreatedAt, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("news_id %d: %w", newsID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	rec.Embedding, err = s.decodeVector(blob)
	if err != nil {
		return nil, fmt.Errorf("news_id %d: %w", newsID, err)
	}
	return &rec, nil
}

// Put inserts a new record. Returns ErrDuplicate if a record for the news_id
// already exists and ErrDimension if the embedding has the wrong length.
func (s *SQLiteStore) Put(ctx context.Context, rec *models.EmbeddingRecord) error {
	blob, err := s.encodeVector(rec.Embedding)
	if err != nil {
		return fmt.Errorf("news_id %d: %w", rec.NewsID, err)
	}
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO news_embeddings (news_id, category, title, embedding, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.NewsID, rec.Category, rec.Title, blob, rec.CreatedAt, rec.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("news_id %d: %w", rec.NewsID, ErrDuplicate)
	}
	return err
}

// PutBatch inserts all records in one transaction. Any invalid record or
// constraint violation rolls back the whole batch.
func (s *SQLiteStore) PutBatch(ctx context.Context, recs []*models.EmbeddingRecord) error {
	if len(recs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO news_embeddings (news_id, category, title, embedding, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, rec := range recs {
		blob, err := s.encodeVector(rec.Embedding)
		if err != nil {
			return fmt.Errorf("news_id %d: %w", rec.NewsID, err)
		}
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if _, err := stmt.ExecContext(ctx, rec.NewsID, rec.Category, rec.Title, blob, rec.CreatedAt, rec.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("news_id %d: %w", rec.NewsID, ErrDuplicate)
			}
			return err
		}
	}
	return tx.Commit()
}

// Scan returns all records except excludeNewsID, optionally filtered by category.
func (s *SQLiteStore) Scan(ctx context.Context, excludeNewsID int64, categoryFilter string) ([]*models.EmbeddingRecord, error) {
	query := `SELECT id, news_id, category, title, embedding, created_at, updated_at
		 FROM news_embeddings WHERE news_id != ?`
	args := []interface{}{excludeNewsID}
	if categoryFilter != "" {
		query += ` AND category = ?`
		args = append(args, categoryFilter)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.EmbeddingRecord
	for rows.Next() {
		var rec models.EmbeddingRecord
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.NewsID, &rec.Category, &rec.Title, &blob, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Embedding, err = s.decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("news_id %d: %w", rec.NewsID, err)
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// Count returns the total number of records.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news_embeddings`).Scan(&count)
	return count, err
}

// CountByCategory returns per-category record counts.
func (s *SQLiteStore) CountByCategory(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM news_embeddings GROUP BY category`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var category string
		var count int64
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// encodeVector serializes a vector as little-endian float32 bytes after
// validating its length against the store dimension.
func (s *SQLiteStore) encodeVector(vec []float32) ([]byte, error) {
	if len(vec) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrDimension, len(vec), s.dimensions)
	}
	const size = 4
	out := make([]byte, len(vec)*size)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out, nil
}

func (s *SQLiteStore) decodeVector(b []byte) ([]float32, error) {
	const size = 4
	if len(b) != s.dimensions*size {
		return nil, fmt.Errorf("%w: stored blob has %d bytes, expected %d", ErrDimension, len(b), s.dimensions*size)
	}
	out := make([]float32, s.dimensions)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out, nil
}
