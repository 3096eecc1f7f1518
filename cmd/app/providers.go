package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-tripplanner/internal/domain/export"
	"github.com/yanqian/ai-tripplanner/internal/domain/intent"
	"github.com/yanqian/ai-tripplanner/internal/domain/itinerary"
	"github.com/yanqian/ai-tripplanner/internal/domain/session"
	"github.com/yanqian/ai-tripplanner/internal/domain/trip"
	"github.com/yanqian/ai-tripplanner/internal/infra/archive"
	"github.com/yanqian/ai-tripplanner/internal/infra/config"
	"github.com/yanqian/ai-tripplanner/internal/infra/httpx"
	"github.com/yanqian/ai-tripplanner/internal/infra/llm/chatgpt"
	"github.com/yanqian/ai-tripplanner/internal/infra/openmeteo"
	"github.com/yanqian/ai-tripplanner/internal/infra/overpass"
	"github.com/yanqian/ai-tripplanner/internal/infra/poicache"
	"github.com/yanqian/ai-tripplanner/internal/infra/triprepo"
	"github.com/yanqian/ai-tripplanner/internal/infra/webhook"
)

func provideRetryPolicy(cfg *config.Config) httpx.RetryPolicy {
	return httpx.RetryPolicy{MaxAttempts: cfg.Outbound.MaxAttempts, BaseBackoff: cfg.Outbound.BaseBackoff}
}

func provideOverpassClient(cfg *config.Config, retry httpx.RetryPolicy) *overpass.Client {
	return overpass.NewClient(cfg.POI.OverpassURL, cfg.POI.Areas, cfg.POI.Timeout, retry)
}

func providePOIProvider(cfg *config.Config, client *overpass.Client, store poicache.Store, logger *slog.Logger) trip.POIProvider {
	if cfg.POI.CacheTTL <= 0 {
		logger.Info("poi cache disabled")
		return client
	}
	return poicache.NewCachedProvider(client, store, cfg.POI.CacheTTL, logger)
}

func provideCandidateStore(cfg *config.Config, logger *slog.Logger) (poicache.Store, func()) {
	noop := func() {}
	if !cfg.Cache.Valkey.Enabled {
		return poicache.NewMemoryStore(), noop
	}
	opt, err := buildValkeyOptions(cfg.Cache.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
		return poicache.NewMemoryStore(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory store", "error", err)
		return poicache.NewMemoryStore(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory store", "error", err)
		client.Close()
		return poicache.NewMemoryStore(), noop
	}
	logger.Info("poi valkey cache enabled", "addr", cfg.Cache.Valkey.Addr)
	return poicache.NewValkeyStore(client, "poi"), client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideWeatherProvider(cfg *config.Config, retry httpx.RetryPolicy) trip.WeatherProvider {
	cities := make(map[string]itinerary.Coordinates, len(cfg.Weather.Cities))
	for name, p := range cfg.Weather.Cities {
		cities[name] = itinerary.Coordinates{Lat: p.Lat, Lon: p.Lon}
	}
	return openmeteo.NewClient(cfg.Weather.BaseURL, cities, cfg.Weather.MaxDays, cfg.Weather.Timeout, retry)
}

func provideTripRepository(cfg *config.Config, logger *slog.Logger) (trip.Repository, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory trip repository")
		return triprepo.NewMemoryRepository(), noop
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory trip repository", "error", err)
		return triprepo.NewMemoryRepository(), noop
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory trip repository", "error", err)
		return triprepo.NewMemoryRepository(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory trip repository", "error", err)
		pool.Close()
		return triprepo.NewMemoryRepository(), noop
	}
	if err := triprepo.Migrate(ctx, pool); err != nil {
		logger.Error("trip schema migration failed, using memory trip repository", "error", err)
		pool.Close()
		return triprepo.NewMemoryRepository(), noop
	}
	logger.Info("postgres trip repository enabled")
	return triprepo.NewPostgresRepository(pool), pool.Close
}

func provideSessionManager(cfg *config.Config, logger *slog.Logger) (session.Manager, error) {
	if !cfg.Session.Enabled {
		logger.Warn("trip handles disabled, mutating routes are unauthenticated")
		return nil, nil
	}
	return session.NewManager(session.Config{Secret: cfg.Session.Secret, TTL: cfg.Session.TTL})
}

func provideChatClient(cfg *config.Config, logger *slog.Logger) (intent.ChatClient, error) {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Info("llm api key not set, voice commands disabled")
		return nil, nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func provideClassifierConfig(cfg *config.Config) intent.Config {
	return intent.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		DefaultCity: cfg.Planner.DefaultCity,
	}
}

func provideWebhook(cfg *config.Config, retry httpx.RetryPolicy, logger *slog.Logger) (export.Webhook, error) {
	if strings.TrimSpace(cfg.Export.WebhookURL) == "" {
		logger.Info("export webhook not configured, exports disabled")
		return nil, nil
	}
	client, err := webhook.NewClient(cfg.Export.WebhookURL, cfg.Export.Timeout, retry)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func provideArchive(cfg *config.Config, logger *slog.Logger) export.Archive {
	a := cfg.Export.Archive
	if !a.Enabled {
		return nil
	}
	store, err := archive.NewS3Store(archive.S3Config{
		Endpoint:  a.Endpoint,
		AccessKey: a.AccessKey,
		SecretKey: a.SecretKey,
		Bucket:    a.Bucket,
		Region:    a.Region,
	}, logger)
	if err != nil {
		logger.Error("failed to init archive store, using memory archive", "error", err)
		return archive.NewMemoryStore()
	}
	logger.Info("trip archive enabled", "bucket", a.Bucket)
	return store
}
