package pg

import (
	"context"
	"fmt"
	"time"

	"newscurator/internal/domain"
)

type SourceStore struct {
	db DB
}

func NewSourceStore(db DB) *SourceStore {
	return &SourceStore{db: db}
}

func (s *SourceStore) ListActive(ctx context.Context) ([]domain.Source, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, feed_url, language, active, last_scraped_at
        FROM sources
        WHERE active
        ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var src domain.Source
		if err := rows.Scan(&src.ID, &src.Name, &src.FeedURL, &src.Language, &src.Active, &src.LastScrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// TouchLastScraped records a scrape attempt, regardless of outcome.
func (s *SourceStore) TouchLastScraped(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.Exec(ctx, `UPDATE sources SET last_scraped_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to touch source %d: %w", id, err)
	}
	return nil
}

func (s *SourceStore) Create(ctx context.Context, src domain.Source) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
        INSERT INTO sources (name, feed_url, language, active) VALUES ($1, $2, $3, $4)
        ON CONFLICT (feed_url) DO UPDATE SET name = EXCLUDED.name, language = EXCLUDED.language
        RETURNING id`,
		src.Name, src.FeedURL, src.Language, src.Active).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create source: %w", err)
	}
	return id, nil
}

// Deactivate flags a source inactive. Sources are never deleted by the
// pipeline.
func (s *SourceStore) Deactivate(ctx context.Context, id int64) error {
	_, err := s.db.Exec(ctx, `UPDATE sources SET active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate source %d: %w", id, err)
	}
	return nil
}
