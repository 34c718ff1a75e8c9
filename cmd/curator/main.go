package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"

	"newscurator/internal/classifier"
	"newscurator/internal/config"
	"newscurator/internal/generator"
	"newscurator/internal/llm"
	"newscurator/internal/operation"
	"newscurator/internal/pipeline"
	"newscurator/internal/review"
	"newscurator/internal/router"
	"newscurator/internal/scheduler"
	"newscurator/internal/scraper"
	"newscurator/internal/server"
	"newscurator/internal/storage/es"
	"newscurator/internal/storage/pg"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.DatabaseURL})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	db := pool.GetConn()

	articles := pg.NewArticleStore(db)
	categories := pg.NewCategoryStore(db)
	sources := pg.NewSourceStore(db)
	settings := pg.NewSettingsStore(db)
	editorials := pg.NewEditorialStore(db)

	llmClient := llm.NewClient(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		Model:   cfg.LLMModel,
		APIKey:  cfg.LLMAPIKey,
	})

	var (
		clsIndexer classifier.Indexer
		revIndexer review.Indexer
		searcher   router.Searcher
	)
	if cfg.SearchEnabled() {
		esCfg := es.ClientConfig{
			Addresses: cfg.ESAddresses,
			IndexName: cfg.ESIndexName,
			Username:  cfg.ESUsername,
			Password:  cfg.ESPassword,
		}

		indexer, err := es.NewIndexer(ctx, esCfg)
		if err != nil {
			slog.Error("Failed to create search indexer", "error", err)
			os.Exit(1)
		}
		esSearcher, err := es.NewSearcher(esCfg)
		if err != nil {
			slog.Error("Failed to create searcher", "error", err)
			os.Exit(1)
		}

		clsIndexer = indexer
		revIndexer = indexer
		searcher = esSearcher
	} else {
		slog.Info("Elasticsearch not configured, full-text search disabled")
	}

	scr := scraper.New(sources, articles, logger)
	cls := classifier.New(llmClient, articles, categories, clsIndexer, logger)
	gen := generator.New(llmClient, articles, categories, settings, logger)
	editorial := generator.NewEditorialWriter(llmClient, articles, editorials, logger)
	rev := review.NewService(articles, settings, revIndexer, logger)

	pl := pipeline.New(operation.NewCoordinator(), scr, cls, gen, editorial, rev, settings, logger)

	if cfg.SchedulerInterval > 0 {
		go scheduler.New(pl, cfg.SchedulerInterval, logger).Run(ctx)
	} else {
		slog.Info("Scheduler disabled, pipeline runs on admin triggers only")
	}

	srv := server.New(server.Config{
		Port:        cfg.Port,
		CorsOrigins: cfg.CorsOrigins,
	}, &dbHealthChecker{pool: pool})

	srv.Echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "News Curator API is running")
	})

	router.NewPublicRouter(srv.Echo, articles, categories, editorials, searcher).Bind()
	router.NewAdminRouter(srv.Echo, cfg.AdminAPIKey, pl, articles, rev, settings).Bind()

	if err := srv.Start(); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

type dbHealthChecker struct {
	pool *pg.ConnectionPool
}

func (h *dbHealthChecker) Healthy(ctx context.Context) bool {
	return h.pool.Ping(ctx) == nil
}
