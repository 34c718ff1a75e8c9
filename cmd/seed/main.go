// Command seed loads the starter categories and RSS sources from db/seed.yaml.
// It is idempotent: rows are upserted by slug and feed URL.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"newscurator/internal/config"
	"newscurator/internal/domain"
	"newscurator/internal/storage/pg"
)

type seedFile struct {
	Categories []struct {
		Name        string `yaml:"name"`
		Slug        string `yaml:"slug"`
		Description string `yaml:"description"`
	} `yaml:"categories"`
	Sources []struct {
		Name     string `yaml:"name"`
		FeedURL  string `yaml:"feedUrl"`
		Language string `yaml:"language"`
	} `yaml:"sources"`
}

func main() {
	path := flag.String("file", "db/seed.yaml", "seed data file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*path)
	if err != nil {
		slog.Error("Failed to read seed file", "path", *path, "error", err)
		os.Exit(1)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		slog.Error("Failed to parse seed file", "path", *path, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.DatabaseURL})
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	categories := pg.NewCategoryStore(pool.GetConn())
	for _, c := range seed.Categories {
		id, err := categories.Create(ctx, domain.Category{
			Name:        c.Name,
			Slug:        c.Slug,
			Description: c.Description,
		})
		if err != nil {
			slog.Error("Failed to seed category", "slug", c.Slug, "error", err)
			os.Exit(1)
		}
		slog.Info("Seeded category", "id", id, "slug", c.Slug)
	}

	sources := pg.NewSourceStore(pool.GetConn())
	for _, s := range seed.Sources {
		id, err := sources.Create(ctx, domain.Source{
			Name:     s.Name,
			FeedURL:  s.FeedURL,
			Language: s.Language,
			Active:   true,
		})
		if err != nil {
			slog.Error("Failed to seed source", "name", s.Name, "error", err)
			os.Exit(1)
		}
		slog.Info("Seeded source", "id", id, "name", s.Name)
	}

	slog.Info("Seeding complete",
		"categories", len(seed.Categories),
		"sources", len(seed.Sources))
}
