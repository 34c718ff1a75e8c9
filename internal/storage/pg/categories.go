package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"newscurator/internal/domain"
)

var ErrNoCategories = errors.New("no categories exist")

type CategoryStore struct {
	db DB
}

func NewCategoryStore(db DB) *CategoryStore {
	return &CategoryStore{db: db}
}

func (s *CategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, slug, description FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Default returns the fallback category used when slug resolution fails:
// the lowest-ID category.
func (s *CategoryStore) Default(ctx context.Context) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRow(ctx,
		`SELECT id, name, slug, description FROM categories ORDER BY id LIMIT 1`).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoCategories
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get default category: %w", err)
	}
	return &c, nil
}

// ListByNeed returns all categories ordered by ascending approved-article
// count since the given time, so the least-served categories come first.
func (s *CategoryStore) ListByNeed(ctx context.Context, since time.Time) ([]domain.CategoryNeed, error) {
	rows, err := s.db.Query(ctx, `
        SELECT c.id, c.name, c.slug, c.description, COUNT(a.id) AS recent_count
        FROM categories c
        LEFT JOIN articles a ON a.category_id = c.id
            AND a.status = $1
            AND a.scraped_at >= $2
        GROUP BY c.id
        ORDER BY recent_count ASC, c.id ASC`,
		domain.StatusApproved, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories by need: %w", err)
	}
	defer rows.Close()

	var needs []domain.CategoryNeed
	for rows.Next() {
		var n domain.CategoryNeed
		if err := rows.Scan(&n.ID, &n.Name, &n.Slug, &n.Description, &n.RecentCount); err != nil {
			return nil, fmt.Errorf("failed to scan category need: %w", err)
		}
		needs = append(needs, n)
	}
	return needs, rows.Err()
}

func (s *CategoryStore) Create(ctx context.Context, c domain.Category) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
        INSERT INTO categories (name, slug, description) VALUES ($1, $2, $3)
        ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
        RETURNING id`,
		c.Name, c.Slug, c.Description).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create category: %w", err)
	}
	return id, nil
}
