package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrNoEditorial = errors.New("no editorial exists")

// Editorial is a weekly LLM-written opinion piece synthesized from the
// week's approved articles.
type Editorial struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	WeekStart time.Time `json:"weekStart"`
	CreatedAt time.Time `json:"createdAt"`
}

type EditorialStore struct {
	db DB
}

func NewEditorialStore(db DB) *EditorialStore {
	return &EditorialStore{db: db}
}

func (s *EditorialStore) Insert(ctx context.Context, e Editorial) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `
        INSERT INTO editorials (title, content, week_start, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id`,
		e.Title, e.Content, e.WeekStart).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert editorial: %w", err)
	}
	return id, nil
}

func (s *EditorialStore) Latest(ctx context.Context) (*Editorial, error) {
	var e Editorial
	err := s.db.QueryRow(ctx, `
        SELECT id, title, content, week_start, created_at
        FROM editorials ORDER BY created_at DESC LIMIT 1`).
		Scan(&e.ID, &e.Title, &e.Content, &e.WeekStart, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoEditorial
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest editorial: %w", err)
	}
	return &e, nil
}
