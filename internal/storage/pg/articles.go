package pg

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"newscurator/internal/domain"
)

// ErrDuplicateURL reports an insert that collided with an existing article
// URL. Callers treat it as "already exists", not a failure.
var ErrDuplicateURL = errors.New("article url already exists")

var ErrArticleNotFound = errors.New("article not found")

const articleColumns = `id, title, url, source, author, content, summary, language, status,
		is_ai_generated, relevance_score, category_id, difficulty, published_date, scraped_at,
		view_count, helpful_count, not_helpful_count`

type ArticleStore struct {
	db DB
}

func NewArticleStore(db DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// Insert creates a pending or review article. The URL uniqueness constraint
// is the dedup mechanism: a conflicting insert returns ErrDuplicateURL.
func (s *ArticleStore) Insert(ctx context.Context, a domain.Article) (int64, error) {
	if a.Language == "" {
		a.Language = domain.ArticleDefaultLanguage
	}
	if a.Status == "" {
		a.Status = domain.StatusPending
	}
	if a.ScrapedAt.IsZero() {
		a.ScrapedAt = time.Now()
	}

	cmd := `
        INSERT INTO articles (title, url, source, author, content, summary, language, status,
            is_ai_generated, relevance_score, category_id, difficulty, published_date, scraped_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        ON CONFLICT (url) DO NOTHING
        RETURNING id;
    `
	var id int64
	err := s.db.QueryRow(
		ctx,
		cmd,
		a.Title,
		a.URL,
		a.Source,
		a.Author,
		a.Content,
		a.Summary,
		a.Language,
		a.Status,
		a.IsAIGenerated,
		a.RelevanceScore,
		a.CategoryID,
		string(a.Difficulty),
		nullableTime(a.PublishedDate),
		a.ScrapedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrDuplicateURL
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert article: %w", err)
	}

	return id, nil
}

func (s *ArticleStore) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	row := s.db.QueryRow(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)

	a, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article %d: %w", id, err)
	}
	return a, nil
}

// ListPending returns the oldest unclassified articles, bounded by limit.
func (s *ArticleStore) ListPending(ctx context.Context, limit int) ([]domain.Article, error) {
	rows, err := s.db.Query(ctx, `
        SELECT `+articleColumns+`
        FROM articles
        WHERE status = $1
        ORDER BY scraped_at ASC
        LIMIT $2`, domain.StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

type ListFilter struct {
	Status     domain.Status
	Category   string
	Difficulty domain.Difficulty
	Language   string
	Page       int
	Limit      int
}

// List returns articles matching the filter, newest first. Category filters
// by slug through the categories table.
func (s *ArticleStore) List(ctx context.Context, f ListFilter) ([]domain.Article, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Page <= 0 {
		f.Page = 1
	}

	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	if f.Status != "" {
		add("a.status = ?", f.Status)
	}
	if f.Category != "" {
		add("c.slug = ?", f.Category)
	}
	if f.Difficulty != "" {
		add("a.difficulty = ?", string(f.Difficulty))
	}
	if f.Language != "" {
		add("a.language = ?", f.Language)
	}

	sql := `SELECT ` + prefixColumns("a") + ` FROM articles a LEFT JOIN categories c ON a.category_id = c.id`
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	sql += fmt.Sprintf(" ORDER BY a.published_date DESC NULLS LAST, a.scraped_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	defer rows.Close()

	return collectArticles(rows)
}

// Classification is the outcome of the AI processing step applied to one
// article. Tags are attached in the same transaction as the status change.
type Classification struct {
	RelevanceScore int
	CategoryID     *int64
	Summary        string
	Difficulty     domain.Difficulty
	Status         domain.Status
	Tags           []string
}

// ApplyClassification updates the article row and its tag associations
// atomically.
func (s *ArticleStore) ApplyClassification(ctx context.Context, articleID int64, c Classification) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin classification tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
        UPDATE articles
        SET relevance_score = $1, category_id = $2, summary = $3, difficulty = $4, status = $5
        WHERE id = $6`,
		c.RelevanceScore, c.CategoryID, c.Summary, string(c.Difficulty), c.Status, articleID)
	if err != nil {
		return fmt.Errorf("failed to update article %d: %w", articleID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	if err := attachTags(ctx, tx, articleID, c.Tags); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit classification tx: %w", err)
	}
	return nil
}

// InsertGenerated persists an AI-authored article in review status together
// with its tags, in one transaction.
func (s *ArticleStore) InsertGenerated(ctx context.Context, a domain.Article, tags []string) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin insert tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if a.ScrapedAt.IsZero() {
		a.ScrapedAt = time.Now()
	}

	var id int64
	err = tx.QueryRow(ctx, `
        INSERT INTO articles (title, url, source, author, content, summary, language, status,
            is_ai_generated, relevance_score, category_id, difficulty, published_date, scraped_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $10, $11, $12, $13)
        RETURNING id`,
		a.Title, a.URL, a.Source, a.Author, a.Content, a.Summary, a.Language, domain.StatusReview,
		a.RelevanceScore, a.CategoryID, string(a.Difficulty), nullableTime(a.PublishedDate), a.ScrapedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert generated article: %w", err)
	}

	if err := attachTags(ctx, tx, id, tags); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit insert tx: %w", err)
	}
	return id, nil
}

// BulkUpdateStatus sets status for every existing ID in the list and returns
// the number of rows actually changed. Unknown IDs are skipped, not errors.
func (s *ArticleStore) BulkUpdateStatus(ctx context.Context, ids []int64, status domain.Status) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE articles SET status = $1 WHERE id = ANY($2)`, status, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to bulk update status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountToday splits today's articles by provenance: approved scraped articles
// vs AI-authored articles of any status created today.
func (s *ArticleStore) CountToday(ctx context.Context, now time.Time) (domain.DailyCounts, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var counts domain.DailyCounts
	err := s.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM articles
        WHERE status = $1 AND NOT is_ai_generated AND scraped_at >= $2 AND scraped_at < $3`,
		domain.StatusApproved, dayStart, dayEnd).Scan(&counts.Scraped)
	if err != nil {
		return counts, fmt.Errorf("failed to count scraped articles: %w", err)
	}

	err = s.db.QueryRow(ctx, `
        SELECT COUNT(*) FROM articles
        WHERE is_ai_generated AND scraped_at >= $1 AND scraped_at < $2`,
		dayStart, dayEnd).Scan(&counts.AIGenerated)
	if err != nil {
		return counts, fmt.Errorf("failed to count ai articles: %w", err)
	}

	return counts, nil
}

// AutoPublishStale promotes AI-authored review articles created before the
// cutoff to approved and returns the promoted IDs.
func (s *ArticleStore) AutoPublishStale(ctx context.Context, cutoff time.Time) ([]int64, error) {
	rows, err := s.db.Query(ctx, `
        UPDATE articles SET status = $1
        WHERE status = $2 AND is_ai_generated AND scraped_at < $3
        RETURNING id`,
		domain.StatusApproved, domain.StatusReview, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to auto-publish review articles: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan auto-published id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ArticleStore) GetTags(ctx context.Context, articleID int64) ([]domain.Tag, error) {
	rows, err := s.db.Query(ctx, `
        SELECT t.id, t.name FROM tags t
        JOIN article_tags at ON t.id = at.tag_id
        WHERE at.article_id = $1
        ORDER BY t.name`, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get article tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *ArticleStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM article_tags WHERE article_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete article tags: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}
	return tx.Commit(ctx)
}

func attachTags(ctx context.Context, tx pgx.Tx, articleID int64, tags []string) error {
	for _, name := range tags {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		var tagID int64
		err := tx.QueryRow(ctx, `
            INSERT INTO tags (name) VALUES ($1)
            ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
            RETURNING id`, name).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("failed to upsert tag %q: %w", name, err)
		}
		if _, err := tx.Exec(ctx, `
            INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2)
            ON CONFLICT DO NOTHING`, articleID, tagID); err != nil {
			return fmt.Errorf("failed to attach tag %q: %w", name, err)
		}
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func prefixColumns(alias string) string {
	cols := strings.Split(articleColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func scanArticle(row pgx.Row) (*domain.Article, error) {
	var (
		a          domain.Article
		difficulty string
		published  *time.Time
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.URL, &a.Source, &a.Author, &a.Content, &a.Summary, &a.Language,
		&a.Status, &a.IsAIGenerated, &a.RelevanceScore, &a.CategoryID, &difficulty, &published,
		&a.ScrapedAt, &a.ViewCount, &a.HelpfulCount, &a.NotHelpfulCount,
	)
	if err != nil {
		return nil, err
	}
	a.Difficulty = domain.Difficulty(difficulty)
	if published != nil {
		a.PublishedDate = *published
	}
	return &a, nil
}

func collectArticles(rows pgx.Rows) ([]domain.Article, error) {
	var articles []domain.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		articles = append(articles, *a)
	}
	return articles, rows.Err()
}
