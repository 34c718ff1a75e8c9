package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"newscurator/internal/domain"
	"newscurator/internal/llm"
	"newscurator/internal/operation"
)

const (
	researchMaxTokens = 2000
	writingMaxTokens  = 3000

	generatedSource = "AI Credit News"
	generatedAuthor = "AI Credit News Editorial Team"

	recentWindow = 7 * 24 * time.Hour
)

type LLM interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	CompleteJSON(ctx context.Context, prompt string, maxTokens int, v any) error
}

type ArticleStore interface {
	CountToday(ctx context.Context, now time.Time) (domain.DailyCounts, error)
	InsertGenerated(ctx context.Context, a domain.Article, tags []string) (int64, error)
}

type CategoryStore interface {
	ListByNeed(ctx context.Context, since time.Time) ([]domain.CategoryNeed, error)
}

type SettingsStore interface {
	ContentSettings(ctx context.Context) (domain.ContentSettings, error)
}

// Generator supplements scraped coverage with original AI-authored articles,
// within the daily admission-control limits.
type Generator struct {
	llm        LLM
	articles   ArticleStore
	categories CategoryStore
	settings   SettingsStore
	logger     *slog.Logger

	// Delay between generations keeps the upstream API happy. Zero in tests.
	Delay time.Duration

	now  func() time.Time
	rand *rand.Rand
}

func New(l LLM, articles ArticleStore, categories CategoryStore, settings SettingsStore, logger *slog.Logger) *Generator {
	return &Generator{
		llm:        l,
		articles:   articles,
		categories: categories,
		settings:   settings,
		logger:     logger,
		Delay:      2 * time.Second,
		now:        time.Now,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type GeneratedRef struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

type SupplementResult struct {
	Plan      Plan           `json:"plan"`
	Generated []GeneratedRef `json:"generated"`
	Errors    []string       `json:"errors,omitempty"`
}

// Supplement runs one admission-control pass: count today's output, plan how
// many AI articles are allowed, and generate them for the categories with the
// least recent coverage. A failure for one category is recorded and the pass
// continues with the next.
func (g *Generator) Supplement(ctx context.Context, tracker *operation.Tracker) (SupplementResult, error) {
	settings, err := g.settings.ContentSettings(ctx)
	if err != nil {
		return SupplementResult{}, fmt.Errorf("load content settings: %w", err)
	}

	now := g.now()
	counts, err := g.articles.CountToday(ctx, now)
	if err != nil {
		return SupplementResult{}, fmt.Errorf("count today's articles: %w", err)
	}

	plan := PlanSupplement(counts, settings)
	res := SupplementResult{Plan: plan}

	g.logger.Info("supplement plan",
		"scraped", counts.Scraped,
		"aiGenerated", counts.AIGenerated,
		"toGenerate", plan.ToGenerate,
		"reason", plan.Reason)

	if tracker != nil {
		tracker.UpdateGeneration(func(s *operation.GenerationStats) {
			s.ToGenerate = plan.ToGenerate
			s.Reason = plan.Reason
		})
		if plan.ToGenerate > 0 {
			tracker.Log("Will generate %d AI article(s)", plan.ToGenerate)
		} else {
			tracker.Log("No AI articles to generate (%s)", plan.Reason)
		}
	}

	if plan.ToGenerate == 0 {
		return res, nil
	}

	needs, err := g.categories.ListByNeed(ctx, now.Add(-recentWindow))
	if err != nil {
		return res, fmt.Errorf("list categories by need: %w", err)
	}

	for i := 0; i < plan.ToGenerate && i < len(needs); i++ {
		need := needs[i]

		if tracker != nil {
			if err := tracker.Checkpoint(ctx); err != nil {
				return res, err
			}
			tracker.UpdateGeneration(func(s *operation.GenerationStats) {
				s.CurrentCategory = need.Name
			})
			tracker.Log("Generating article for: %s", need.Name)
		} else if err := ctx.Err(); err != nil {
			return res, err
		}

		ref, err := g.GenerateForCategory(ctx, need.Category)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return res, err
			}
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", need.Slug, err))
			g.logger.Error("article generation failed", "category", need.Slug, "error", err)
			if tracker != nil {
				tracker.UpdateGeneration(func(s *operation.GenerationStats) { s.Errors++ })
				tracker.Log("Error generating for %s: %v", need.Name, err)
			}
			continue
		}

		res.Generated = append(res.Generated, ref)
		if tracker != nil {
			tracker.UpdateGeneration(func(s *operation.GenerationStats) {
				s.Generated = len(res.Generated)
			})
			tracker.Log("Generated: %s", ref.Title)
		}

		if g.Delay > 0 && i < plan.ToGenerate-1 {
			select {
			case <-time.After(g.Delay):
			case <-ctx.Done():
				return res, ctx.Err()
			}
		}
	}

	g.logger.Info("supplement pass finished",
		"generated", len(res.Generated),
		"errors", len(res.Errors))

	return res, nil
}

// GenerateForCategory runs the research-then-write sequence and saves the
// result in review status for human sign-off.
func (g *Generator) GenerateForCategory(ctx context.Context, category domain.Category) (GeneratedRef, error) {
	focus := focusFor(category)
	articleType := articleTypes[g.rand.Intn(len(articleTypes))]
	topic := focus.Topics[g.rand.Intn(len(focus.Topics))]

	g.logger.Info("generating article",
		"category", category.Slug,
		"type", articleType.Name,
		"topic", topic)

	notes, err := g.llm.Complete(ctx, researchPrompt(focus, topic, articleType), researchMaxTokens)
	if err != nil {
		return GeneratedRef{}, fmt.Errorf("research: %w", err)
	}

	var draft llm.GeneratedArticle
	if err := g.llm.CompleteJSON(ctx, writingPrompt(focus, topic, articleType, notes), writingMaxTokens, &draft); err != nil {
		return GeneratedRef{}, fmt.Errorf("write: %w", err)
	}
	if err := draft.Validate(); err != nil {
		return GeneratedRef{}, fmt.Errorf("write: %w", err)
	}

	difficulty := domain.Difficulty(draft.DifficultyLevel)
	if !difficulty.Valid() {
		difficulty = domain.DifficultyIntermediate
	}

	now := g.now()
	article := domain.Article{
		Title:         draft.Title,
		URL:           fmt.Sprintf("ai-generated-%d", now.UnixNano()),
		Source:        generatedSource,
		Author:        generatedAuthor,
		Content:       draft.Content,
		Summary:       draft.Summary,
		Status:        domain.StatusReview,
		IsAIGenerated: true,
		CategoryID:    &category.ID,
		Difficulty:    difficulty,
		PublishedDate: now,
		ScrapedAt:     now,
	}

	id, err := g.articles.InsertGenerated(ctx, article, draft.Tags)
	if err != nil {
		return GeneratedRef{}, fmt.Errorf("save generated article: %w", err)
	}

	return GeneratedRef{ID: id, Title: draft.Title, Category: category.Slug}, nil
}
