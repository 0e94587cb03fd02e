package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/intellinews/newsrec/internal/cache"
	"github.com/intellinews/newsrec/internal/config"
	"github.com/intellinews/newsrec/internal/content"
	"github.com/intellinews/newsrec/internal/embedding"
	"github.com/intellinews/newsrec/internal/models"
	"github.com/intellinews/newsrec/internal/store"
)

// Service orchestrates indexing and similarity queries over the vector
// store, the embedding provider, the news service, and the result cache.
type Service struct {
	store      store.VectorStore
	embedder   embedding.Embedder
	content    *content.Client
	categories *content.CategoryFinder
	cache      cache.ResultCache
	cfg        *config.RecommendConfig
	logger     *zap.Logger
}

// NewService creates a recommendation service with the given dependencies.
// logger may be nil.
func NewService(
	st store.VectorStore,
	embedder embedding.Embedder,
	client *content.Client,
	categories *content.CategoryFinder,
	resultCache cache.ResultCache,
	cfg *config.RecommendConfig,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:      st,
		embedder:   embedder,
		content:    client,
		categories: categories,
		cache:      resultCache,
		cfg:        cfg,
		logger:     logger,
	}
}

// IndexOne generates and stores the embedding for a single article. Returns
// true when a new record was written, false when the article was skipped
// (already indexed, or has no title). Losing an insert race to a concurrent
// indexer also counts as skipped: the store's uniqueness constraint, not the
// existence check, is what guarantees one record per article.
func (s *Service) IndexOne(ctx context.Context, newsID int64) (bool, error) {
	// Cheap existence check first to skip the embedding work. Not a
	// correctness mechanism; two racing calls can both pass it.
	exists, err := s.store.Exists(ctx, newsID)
	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	if exists {
		s.logger.Debug("article already indexed, skipping", zap.Int64("news_id", newsID))
		return false, nil
	}

	c, err := s.content.GetContent(ctx, newsID,
		[]string{content.FieldTitle, content.FieldDescription, content.FieldCategory})
	if err != nil {
		return false, fmt.Errorf("fetch content for news_id %d: %w", newsID, err)
	}
	if c.Title == "" {
		s.logger.Warn("article has no title, skipping", zap.Int64("news_id", newsID))
		return false, nil
	}

	vector, err := s.embedder.Embed(ctx, models.EmbeddingText(c.Title, c.Description))
	if err != nil {
		return false, fmt.Errorf("embed news_id %d: %w", newsID, err)
	}

	category := c.Category
	if category == "" {
		category = s.resolveCategory(ctx, newsID)
	}

	rec := &models.EmbeddingRecord{
		NewsID:    newsID,
		Category:  category,
		Title:     c.Title,
		Embedding: vector,
	}
	if err := s.store.Put(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// A concurrent indexer won the race; same outcome as "already indexed".
			s.logger.Debug("lost index race, skipping", zap.Int64("news_id", newsID))
			return false, nil
		}
		return false, fmt.Errorf("store embedding for news_id %d: %w", newsID, err)
	}

	s.cache.InvalidateAll(ctx)
	s.logger.Info("article indexed",
		zap.Int64("news_id", newsID),
		zap.String("category", category),
	)
	return true, nil
}

// resolveCategory consults the bounded listing scan and falls back to the
// UNKNOWN sentinel. Lookup failures degrade to UNKNOWN rather than failing
// the index operation.
func (s *Service) resolveCategory(ctx context.Context, newsID int64) string {
	category, err := s.categories.Find(ctx, newsID)
	if err != nil {
		s.logger.Warn("category lookup failed",
			zap.Int64("news_id", newsID), zap.Error(err))
		return models.CategoryUnknown
	}
	if category == "" {
		return models.CategoryUnknown
	}
	return category
}

// IndexBatch indexes one page of article listings. All new records for the
// page are committed in a single transaction; on failure the page is
// reported as a whole with zero indexed. Skipped counts both already-indexed
// and titleless articles. The cache is invalidated once per page that
// indexed anything.
func (s *Service) IndexBatch(ctx context.Context, page, size int, category string) (indexed, skipped int, err error) {
	var listing *models.ContentPage
	if category != "" {
		listing, err = s.content.ListByCategory(ctx, category, page, size)
	} else {
		listing, err = s.content.List(ctx, page, size)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("list page %d: %w", page, err)
	}
	if len(listing.Items) == 0 {
		s.logger.Info("no articles to index", zap.Int("page", page))
		return 0, 0, nil
	}

	ids := make([]int64, len(listing.Items))
	for i, item := range listing.Items {
		ids[i] = item.ID
	}
	existing, err := s.store.ExistsBatch(ctx, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("batch existence check: %w", err)
	}

	var recs []*models.EmbeddingRecord
	for _, item := range listing.Items {
		if existing[item.ID] {
			skipped++
			continue
		}
		if item.Title == "" {
			skipped++
			continue
		}
		vector, err := s.embedder.Embed(ctx, models.EmbeddingText(item.Title, item.Description))
		if err != nil {
			return 0, 0, fmt.Errorf("embed news_id %d: %w", item.ID, err)
		}
		itemCategory := item.Category
		if itemCategory == "" {
			itemCategory = models.CategoryUnknown
		}
		recs = append(recs, &models.EmbeddingRecord{
			NewsID:    item.ID,
			Category:  itemCategory,
			Title:     item.Title,
			Embedding: vector,
		})
	}

	if err := s.store.PutBatch(ctx, recs); err != nil {
		return 0, 0, fmt.Errorf("commit page %d: %w", page, err)
	}
	indexed = len(recs)

	if indexed > 0 {
		s.cache.InvalidateAll(ctx)
	}
	s.logger.Info("batch indexing complete",
		zap.Int("page", page),
		zap.Int("indexed", indexed),
		zap.Int("skipped", skipped),
	)
	return indexed, skipped, nil
}

// GetSimilar returns the top articles most similar to newsID, optionally
// filtered by category, and whether the result was served from cache. An
// unindexed source yields an empty result, not an error.
func (s *Service) GetSimilar(ctx context.Context, newsID int64, limit int, categoryFilter string) ([]models.RecommendedItem, bool, error) {
	key := cache.Key(newsID, limit, categoryFilter)
	if items, ok := s.cache.Get(ctx, key); ok {
		s.logger.Debug("cache hit", zap.String("key", key))
		return items, true, nil
	}

	source, err := s.store.Get(ctx, newsID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.logger.Debug("no embedding for source article", zap.Int64("news_id", newsID))
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load source embedding: %w", err)
	}

	candidates, err := s.store.Scan(ctx, newsID, categoryFilter)
	if err != nil {
		return nil, false, fmt.Errorf("load candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}

	items := Rank(source.Embedding, candidates, limit, s.cfg.MinScore)
	s.cache.Set(ctx, key, items)

	s.logger.Debug("ranking computed",
		zap.Int64("news_id", newsID),
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(items)),
	)
	return items, false, nil
}

// Stats reports embedding index statistics.
func (s *Service) Stats(ctx context.Context) (*models.StatsResponse, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count embeddings: %w", err)
	}
	byCategory, err := s.store.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	return &models.StatsResponse{TotalEmbeddings: total, ByCategory: byCategory}, nil
}
