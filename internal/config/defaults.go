package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8090
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/newsrec/data/embeddings.db"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Content.BaseURL == "" {
		cfg.Content.BaseURL = "http://localhost:8080"
	}
	if cfg.Content.TimeoutSeconds == 0 {
		cfg.Content.TimeoutSeconds = 10
	}
	if cfg.Content.CategoryScanPageSize == 0 {
		cfg.Content.CategoryScanPageSize = 200
	}
	if cfg.Content.CategoryScanMaxPages == 0 {
		cfg.Content.CategoryScanMaxPages = 3
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 3600
	}
	if cfg.Recommend.DefaultLimit == 0 {
		cfg.Recommend.DefaultLimit = 10
	}
	if cfg.Recommend.MaxLimit == 0 {
		cfg.Recommend.MaxLimit = 50
	}
	if cfg.Recommend.MinScore == 0 {
		cfg.Recommend.MinScore = 0.10
	}
	if cfg.Recommend.DefaultBatchSize == 0 {
		cfg.Recommend.DefaultBatchSize = 50
	}
	if cfg.Recommend.MaxBatchSize == 0 {
		cfg.Recommend.MaxBatchSize = 200
	}
}
