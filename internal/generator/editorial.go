package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"newscurator/internal/domain"
	"newscurator/internal/storage/pg"
)

const (
	editorialMaxTokens = 2500

	// minEditorialArticles is the smallest week worth editorializing.
	minEditorialArticles = 3

	editorialArticleLimit = 50
)

type ArticleLister interface {
	List(ctx context.Context, f pg.ListFilter) ([]domain.Article, error)
}

type EditorialStore interface {
	Insert(ctx context.Context, e pg.Editorial) (int64, error)
	Latest(ctx context.Context) (*pg.Editorial, error)
}

// EditorialWriter produces the weekly editorial from the week's published
// articles.
type EditorialWriter struct {
	llm        LLM
	articles   ArticleLister
	editorials EditorialStore
	logger     *slog.Logger
	now        func() time.Time
}

func NewEditorialWriter(l LLM, articles ArticleLister, editorials EditorialStore, logger *slog.Logger) *EditorialWriter {
	return &EditorialWriter{
		llm:        l,
		articles:   articles,
		editorials: editorials,
		logger:     logger,
		now:        time.Now,
	}
}

type editorialDraft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// WriteWeekly generates the editorial for the week that just ended. It is a
// no-op when one already exists for that week or when too few articles ran.
func (w *EditorialWriter) WriteWeekly(ctx context.Context) (*pg.Editorial, error) {
	now := w.now()
	weekStart := previousMonday(now)
	weekEnd := weekStart.AddDate(0, 0, 6)

	latest, err := w.editorials.Latest(ctx)
	if err != nil && !errors.Is(err, pg.ErrNoEditorial) {
		return nil, fmt.Errorf("check latest editorial: %w", err)
	}
	if latest != nil && sameDay(latest.WeekStart, weekStart) {
		w.logger.Info("editorial already exists for week", "weekStart", weekStart.Format(time.DateOnly))
		return latest, nil
	}

	articles, err := w.articles.List(ctx, pg.ListFilter{
		Status: domain.StatusApproved,
		Limit:  editorialArticleLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("list approved articles: %w", err)
	}

	weekCutoff := weekStart.AddDate(0, 0, 7)

	var headlines []string
	for _, a := range articles {
		published := a.PublishedDate
		if published.IsZero() {
			published = a.ScrapedAt
		}
		if published.Before(weekStart) || !published.Before(weekCutoff) {
			continue
		}
		headlines = append(headlines, fmt.Sprintf("- %s (%s)", a.Title, a.Source))
	}

	if len(headlines) < minEditorialArticles {
		w.logger.Info("not enough articles for an editorial",
			"count", len(headlines), "minimum", minEditorialArticles)
		return nil, nil
	}

	var draft editorialDraft
	prompt := editorialPrompt(headlines,
		weekStart.Format(time.DateOnly), weekEnd.Format(time.DateOnly))
	if err := w.llm.CompleteJSON(ctx, prompt, editorialMaxTokens, &draft); err != nil {
		return nil, fmt.Errorf("write editorial: %w", err)
	}
	if draft.Title == "" || draft.Content == "" {
		return nil, errors.New("editorial draft is missing title or content")
	}

	editorial := pg.Editorial{
		Title:     draft.Title,
		Content:   draft.Content,
		WeekStart: weekStart,
	}
	id, err := w.editorials.Insert(ctx, editorial)
	if err != nil {
		return nil, fmt.Errorf("save editorial: %w", err)
	}
	editorial.ID = id

	w.logger.Info("editorial created", "id", id, "title", editorial.Title)
	return &editorial, nil
}

// previousMonday returns the Monday of the completed week before now.
func previousMonday(now time.Time) time.Time {
	day := now.Weekday()
	diff := int(day - time.Monday)
	if diff < 0 {
		diff += 7
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -diff)
	return monday.AddDate(0, 0, -7)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
