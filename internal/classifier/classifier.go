package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newscurator/internal/apperr"
	"newscurator/internal/domain"
	"newscurator/internal/llm"
	"newscurator/internal/operation"
	"newscurator/internal/storage/pg"
)

// ApprovalThreshold is the minimum relevance score for approval. The model's
// is_relevant flag alone is not enough.
const ApprovalThreshold = 6

// prefilterRejectScore is recorded for articles the cheap screening call
// turns away before full analysis.
const prefilterRejectScore = 1

const (
	prefilterMaxTokens = 10
	analysisMaxTokens  = 1000
)

type LLM interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
	CompleteJSON(ctx context.Context, prompt string, maxTokens int, v any) error
}

type ArticleStore interface {
	ListPending(ctx context.Context, limit int) ([]domain.Article, error)
	ApplyClassification(ctx context.Context, articleID int64, c pg.Classification) error
}

type CategoryStore interface {
	List(ctx context.Context) ([]domain.Category, error)
	Default(ctx context.Context) (*domain.Category, error)
}

// Indexer mirrors the search index after approval. Index failures are logged,
// never fatal; Postgres stays the source of truth.
type Indexer interface {
	IndexArticle(ctx context.Context, a domain.Article) error
}

type Classifier struct {
	llm        LLM
	articles   ArticleStore
	categories CategoryStore
	indexer    Indexer
	logger     *slog.Logger

	// Delay between articles keeps the upstream API happy. Zero in tests.
	Delay time.Duration
}

func New(llm LLM, articles ArticleStore, categories CategoryStore, indexer Indexer, logger *slog.Logger) *Classifier {
	return &Classifier{
		llm:        llm,
		articles:   articles,
		categories: categories,
		indexer:    indexer,
		logger:     logger,
		Delay:      2 * time.Second,
	}
}

type Summary struct {
	Processed int `json:"processed"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Errors    int `json:"errors"`
}

// ProcessPending classifies up to limit pending articles. Approved articles
// move to target (approved for the direct pipeline, queued for human review).
// A failure on one article is counted and skipped; the batch continues.
func (c *Classifier) ProcessPending(ctx context.Context, limit int, target domain.Status, tracker *operation.Tracker) (Summary, error) {
	if target != domain.StatusApproved && target != domain.StatusQueued {
		return Summary{}, apperr.NewValidation(fmt.Sprintf("invalid processing target status: %s", target))
	}

	cats, err := c.categories.List(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load categories: %w", err)
	}
	fallback, err := c.categories.Default(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load default category: %w", err)
	}

	pending, err := c.articles.ListPending(ctx, limit)
	if err != nil {
		return Summary{}, fmt.Errorf("list pending articles: %w", err)
	}

	if tracker != nil {
		tracker.UpdateProcessing(func(s *operation.ProcessingStats) {
			s.ToProcess = len(pending)
		})
		tracker.Log("Processing %d pending articles", len(pending))
	}

	var sum Summary
	for i, article := range pending {
		if tracker != nil {
			if err := tracker.Checkpoint(ctx); err != nil {
				return sum, err
			}
			tracker.UpdateProcessing(func(s *operation.ProcessingStats) {
				s.CurrentArticle = article.Title
			})
		} else if err := ctx.Err(); err != nil {
			return sum, err
		}

		verdict, err := c.Classify(ctx, article, cats, *fallback)
		if err != nil {
			sum.Errors++
			c.logger.Error("classification failed",
				"articleId", article.ID, "title", article.Title, "error", err)
			if tracker != nil {
				tracker.UpdateProcessing(func(s *operation.ProcessingStats) { s.Errors++ })
				tracker.Log("Error classifying %q: %v", article.Title, err)
			}
			continue
		}

		cls := verdict.Classification
		if cls.Status != domain.StatusRejected {
			cls.Status = target
		}

		if err := c.articles.ApplyClassification(ctx, article.ID, cls); err != nil {
			sum.Errors++
			c.logger.Error("apply classification failed", "articleId", article.ID, "error", err)
			if tracker != nil {
				tracker.UpdateProcessing(func(s *operation.ProcessingStats) { s.Errors++ })
			}
			continue
		}

		sum.Processed++
		if cls.Status == domain.StatusRejected {
			sum.Rejected++
		} else {
			sum.Approved++
			if cls.Status == domain.StatusApproved && c.indexer != nil {
				indexed := article
				indexed.Status = cls.Status
				indexed.Summary = cls.Summary
				indexed.CategoryID = cls.CategoryID
				indexed.Difficulty = cls.Difficulty
				score := cls.RelevanceScore
				indexed.RelevanceScore = &score
				if err := c.indexer.IndexArticle(ctx, indexed); err != nil {
					c.logger.Warn("search index update failed", "articleId", article.ID, "error", err)
				}
			}
		}

		if tracker != nil {
			tracker.UpdateProcessing(func(s *operation.ProcessingStats) {
				s.Processed = sum.Processed
				s.Approved = sum.Approved
				s.Rejected = sum.Rejected
			})
		}

		c.logger.Info("article classified",
			"articleId", article.ID,
			"status", cls.Status,
			"score", cls.RelevanceScore)

		if c.Delay > 0 && i < len(pending)-1 {
			select {
			case <-time.After(c.Delay):
			case <-ctx.Done():
				return sum, ctx.Err()
			}
		}
	}

	return sum, nil
}

type Verdict struct {
	Classification pg.Classification
	Resolution     Resolution
	PreFiltered    bool
}

// Classify runs the two-stage pipeline for one article: a cheap yes/no
// screening call, then the full structured analysis.
func (c *Classifier) Classify(ctx context.Context, article domain.Article, cats []domain.Category, fallback domain.Category) (Verdict, error) {
	answer, err := c.llm.Complete(ctx, prefilterPrompt(article), prefilterMaxTokens)
	if err != nil {
		return Verdict{}, fmt.Errorf("pre-filter: %w", err)
	}

	if !strings.HasPrefix(strings.ToLower(answer), "yes") {
		return Verdict{
			PreFiltered: true,
			Classification: pg.Classification{
				RelevanceScore: prefilterRejectScore,
				Summary:        article.Summary,
				Status:         domain.StatusRejected,
			},
		}, nil
	}

	var analysis llm.Analysis
	if err := c.llm.CompleteJSON(ctx, analysisPrompt(article, cats, fallback.Slug), analysisMaxTokens, &analysis); err != nil {
		return Verdict{}, fmt.Errorf("full analysis: %w", err)
	}
	if err := analysis.Validate(); err != nil {
		return Verdict{}, fmt.Errorf("full analysis: %w", err)
	}

	res := ResolveCategory(analysis.PrimaryCategory, cats, fallback)
	if res.Kind == MatchDefault {
		c.logger.Warn("category slug did not match any live category",
			"articleId", article.ID,
			"slug", analysis.PrimaryCategory,
			"fallback", fallback.Slug)
	}

	categoryID := res.Category.ID
	difficulty := domain.Difficulty(analysis.DifficultyLevel)
	if !difficulty.Valid() {
		difficulty = domain.DifficultyIntermediate
	}

	summary := analysis.Summary
	if summary == "" {
		summary = article.Summary
	}

	cls := pg.Classification{
		RelevanceScore: analysis.RelevanceScore,
		CategoryID:     &categoryID,
		Summary:        summary,
		Difficulty:     difficulty,
		Status:         domain.StatusRejected,
	}

	if analysis.IsRelevant && analysis.RelevanceScore >= ApprovalThreshold {
		cls.Status = domain.StatusApproved
		cls.Tags = analysis.SuggestedTags
	}

	return Verdict{Classification: cls, Resolution: res}, nil
}
