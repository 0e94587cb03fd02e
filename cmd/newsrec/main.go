// Package main is the newsrec CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/intellinews/newsrec/internal/cache"
	"github.com/intellinews/newsrec/internal/config"
	"github.com/intellinews/newsrec/internal/content"
	"github.com/intellinews/newsrec/internal/embedding"
	"github.com/intellinews/newsrec/internal/models"
	"github.com/intellinews/newsrec/internal/recommend"
	"github.com/intellinews/newsrec/internal/server"
	"github.com/intellinews/newsrec/internal/store"
	"github.com/intellinews/newsrec/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/newsrec/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "newsrec server" from the project dir uses the
// project's config (including debug).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "similar":
		runSimilar()
	case "index":
		runIndex()
	case "batch":
		runBatch()
	case "stats":
		runStats()
	case "version", "--version", "-v":
		fmt.Printf("newsrec version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (cache hits, ranking details, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Service, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runSimilar() {
	fs := flag.NewFlagSet("similar", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8090", "server URL")
	limit := fs.Int("limit", 0, "number of recommendations (0 = server default)")
	category := fs.String("category", "", "restrict results to one category")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: newsrec similar [flags] <news-id>")
		os.Exit(1)
	}
	var newsID int64
	if _, err := fmt.Sscanf(fs.Arg(0), "%d", &newsID); err != nil || newsID <= 0 {
		fmt.Printf("Invalid news id: %s\n", fs.Arg(0))
		os.Exit(1)
	}

	req := &models.SimilarRequest{NewsID: newsID, Limit: *limit, CategoryFilter: *category}
	var resp models.SimilarResponse
	if err := postViaHTTP(*serverURL+"/api/v1/recommendation/similar", req, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Similarity query failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		if len(resp.Recommendations) == 0 {
			fmt.Printf("No similar articles for %d\n", newsID)
			return
		}
		source := "computed"
		if resp.Cached {
			source = "cached"
		}
		fmt.Printf("Similar to %d (%s):\n", resp.SourceNewsID, source)
		for i, item := range resp.Recommendations {
			fmt.Printf("%2d. [%.4f] %d  %s  (%s)\n", i+1, item.Score, item.NewsID, item.Title, item.Category)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func runIndex() {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8090", "server URL")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: newsrec index [flags] <news-id>")
		os.Exit(1)
	}
	var newsID int64
	if _, err := fmt.Sscanf(fs.Arg(0), "%d", &newsID); err != nil || newsID <= 0 {
		fmt.Printf("Invalid news id: %s\n", fs.Arg(0))
		os.Exit(1)
	}

	var resp models.IndexResponse
	err := postViaHTTP(*serverURL+"/api/v1/recommendation/index", &models.IndexRequest{NewsID: newsID}, &resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Indexing failed: %v\n", err)
		os.Exit(1)
	}
	if resp.IndexedCount > 0 {
		fmt.Printf("Article indexed: %d\n", newsID)
	} else {
		fmt.Printf("Article skipped: %d (%s)\n", newsID, resp.Message)
	}
}

func runBatch() {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8090", "server URL")
	page := fs.Int("page", 0, "listing page to index")
	size := fs.Int("size", 0, "page size (0 = server default)")
	category := fs.String("category", "", "index only articles in this category")
	_ = fs.Parse(os.Args[2:])

	req := &models.IndexBatchRequest{Page: *page, Size: *size, Category: *category}
	var resp models.IndexResponse
	if err := postViaHTTP(*serverURL+"/api/v1/recommendation/index/batch", req, &resp); err != nil {
		fmt.Fprintf(os.Stderr, "Batch indexing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Page %d: indexed %d, skipped %d\n", *page, resp.IndexedCount, resp.SkippedCount)
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8090", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/recommendation/stats")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var stats models.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("total_embeddings:  %d\n", stats.TotalEmbeddings)
		if len(stats.ByCategory) > 0 {
			fmt.Println()
			fmt.Println("# by category")
			for category, count := range stats.ByCategory {
				fmt.Printf("%-20s %d\n", category+":", count)
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func postViaHTTP(url string, req, out interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Store    store.VectorStore
	Embedder embedding.Embedder
	Cache    cache.ResultCache
	Service  *recommend.Service
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if rc, ok := c.Cache.(*cache.RedisCache); ok {
		_ = rc.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath, cfg.Embedding.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	// The ONNX runtime is loaded on first use so the server starts fast and
	// a missing model only affects embedding calls.
	var embedder embedding.Embedder
	if cfg.Embedding.ModelPath == "" {
		logger.Warn("no model path configured, using mock embeddings")
		embedder = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		modelPath := cfg.Embedding.ModelPath
		dims := cfg.Embedding.Dimensions
		maxTokens := cfg.Embedding.MaxTokens
		cacheSize := cfg.Embedding.CacheSize
		embedder = embedding.NewLazyEmbedder(dims, func() (embedding.Embedder, error) {
			return embedding.NewONNXEmbedder(modelPath, dims, maxTokens, cacheSize)
		})
	}

	var resultCache cache.ResultCache
	if cfg.Cache.RedisAddr != "" {
		resultCache = cache.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword,
			cfg.Cache.RedisDB, cfg.Cache.TTL(), logger)
	} else {
		logger.Info("no redis address configured, using in-memory result cache")
		resultCache = cache.NewMemoryCache(cfg.Cache.TTL())
	}

	client := content.NewClient(cfg.Content.BaseURL, cfg.Content.Timeout())
	finder := content.NewCategoryFinder(client,
		cfg.Content.CategoryScanPageSize, cfg.Content.CategoryScanMaxPages)

	svc := recommend.NewService(st, embedder, client, finder, resultCache, &cfg.Recommend, logger)
	return &Components{
		Store:    st,
		Embedder: embedder,
		Cache:    resultCache,
		Service:  svc,
	}, nil
}

func printUsage() {
	fmt.Println(`newsrec - Content-based news recommendation service

Usage:
  newsrec server [flags]             Start the HTTP server
  newsrec similar [flags] <news-id>  Show articles similar to one article
  newsrec index [flags] <news-id>    Index one article's embedding
  newsrec batch [flags]              Index one page of article listings
  newsrec stats [flags]              Show embedding index statistics
  newsrec version                    Show version
  newsrec help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/newsrec/config.yaml)
  --debug            Enable debug logging (cache hits, ranking details, etc.)

Similar Flags:
  --server string    Server URL (default: http://localhost:8090)
  --limit int        Number of recommendations (default: server default)
  --category string  Restrict results to one category
  --output string    Output format: text or json (default: text)

Index Flags:
  --server string    Server URL (default: http://localhost:8090)

Batch Flags:
  --server string    Server URL (default: http://localhost:8090)
  --page int         Listing page to index (default: 0)
  --size int         Page size (default: server default)
  --category string  Index only articles in this category

Stats Flags:
  --server string    Server URL (default: http://localhost:8090)
  --output string    Output format: text or json (default: text)

Examples:
  newsrec server
  newsrec similar 12345
  newsrec similar --limit 5 --category sports 12345
  newsrec index 12345
  newsrec batch --page 0 --size 100
  newsrec stats --output json`)
}
