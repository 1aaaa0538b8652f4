package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/textcraft/internal/domain/extract"
	"github.com/yanqian/textcraft/internal/domain/generation"
	"github.com/yanqian/textcraft/internal/domain/textcraft"
	"github.com/yanqian/textcraft/internal/infra/archive"
	"github.com/yanqian/textcraft/internal/infra/config"
	"github.com/yanqian/textcraft/internal/infra/history"
	"github.com/yanqian/textcraft/internal/infra/inference"
	"github.com/yanqian/textcraft/internal/infra/resultcache"
)

const (
	memoryCacheEntries = 1024
	memoryHistoryRuns  = 500
	valkeyCachePrefix  = "textcraft:summary"
)

func provideServiceConfig(cfg *config.Config) textcraft.Config {
	return textcraft.Config{MaxTextChars: cfg.Limits.MaxTextChars}
}

func provideExtractor(cfg *config.Config, logger *slog.Logger) *extract.Extractor {
	return extract.NewExtractor(extract.Config{
		MaxFileBytes: cfg.Limits.MaxFileBytes,
		MaxPDFPages:  cfg.Limits.MaxPDFPages,
	}, logger)
}

// The truncation point stays fixed even when limits.maxTextChars is raised.
func providePolicy() *generation.Policy {
	return generation.NewPolicy(generation.DefaultMaxInputChars)
}

func provideResolver(cfg *config.Config, logger *slog.Logger) *generation.Resolver {
	return generation.NewResolver(generation.ModelsConfig{
		TrainedModelPath:     cfg.Models.TrainedModelPath,
		TrainedTokenizerPath: cfg.Models.TrainedTokenizerPath,
		SummaryBaseModel:     cfg.Models.SummaryBaseModel,
		ParaphraseModel:      cfg.Models.ParaphraseModel,
	}, logger)
}

func provideLoader(cfg *config.Config, logger *slog.Logger) (generation.Loader, error) {
	if strings.TrimSpace(cfg.Inference.BaseURL) == "" {
		logger.Warn("inference base url not set, using lead engine")
		return inference.NewLeadEngine(logger), nil
	}
	client, err := inference.NewClient(cfg.Inference.BaseURL, cfg.Inference.APIKey, cfg.Models.CacheDir, cfg.Inference.Timeout, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("remote inference enabled", "base_url", cfg.Inference.BaseURL)
	return client, nil
}

func provideResultCache(cfg *config.Config, logger *slog.Logger) (textcraft.ResultCache, func()) {
	noop := func() {}
	if !cfg.ResultCache.Enabled {
		logger.Info("result cache disabled")
		return nil, noop
	}
	fallback := resultcache.NewMemoryCache(cfg.ResultCache.TTL, memoryCacheEntries)
	if !cfg.ResultCache.Valkey.Enabled {
		return fallback, noop
	}

	opt, err := buildValkeyOptions(cfg.ResultCache.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory cache", "error", err)
		return fallback, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory cache", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory cache", "error", err)
		client.Close()
		return fallback, noop
	}
	logger.Info("valkey result cache enabled", "addr", cfg.ResultCache.Valkey.Addr)
	return resultcache.NewValkeyCache(client, valkeyCachePrefix, cfg.ResultCache.TTL), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideHistory(cfg *config.Config, logger *slog.Logger) (textcraft.HistoryRepository, func()) {
	noop := func() {}
	fallback := history.NewMemoryRepository(memoryHistoryRuns)
	dsn := strings.TrimSpace(cfg.History.Postgres.DSN)
	if dsn == "" {
		logger.Info("history postgres dsn not set, using memory repository")
		return fallback, noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback, noop
	}
	if cfg.History.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.History.Postgres.MaxConns
	}
	if cfg.History.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.History.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	repo := history.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("history schema migration failed, using memory repository", "error", err)
		pool.Close()
		return fallback, noop
	}
	logger.Info("history postgres repository enabled")
	return repo, pool.Close
}

func provideArchive(cfg *config.Config, logger *slog.Logger) (textcraft.UploadArchive, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	store, err := archive.NewR2Archive(
		cfg.Archive.Endpoint,
		cfg.Archive.AccessKey,
		cfg.Archive.SecretKey,
		cfg.Archive.Bucket,
		cfg.Archive.Region,
		logger,
	)
	if err != nil {
		return nil, err
	}
	logger.Info("upload archive enabled", "bucket", cfg.Archive.Bucket)
	return store, nil
}
