package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newscurator/internal/apperr"
	"newscurator/internal/domain"
)

type ArticleStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Article, error)
	BulkUpdateStatus(ctx context.Context, ids []int64, status domain.Status) (int64, error)
	AutoPublishStale(ctx context.Context, cutoff time.Time) ([]int64, error)
	Delete(ctx context.Context, id int64) error
}

type SettingsStore interface {
	ContentSettings(ctx context.Context) (domain.ContentSettings, error)
}

type Indexer interface {
	IndexArticle(ctx context.Context, a domain.Article) error
	RemoveArticle(ctx context.Context, id int64) error
}

// Service covers the human side of the workflow: bulk review decisions, the
// auto-publish sweep for unreviewed AI articles, and admin deletes.
type Service struct {
	articles ArticleStore
	settings SettingsStore
	indexer  Indexer
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(articles ArticleStore, settings SettingsStore, indexer Indexer, logger *slog.Logger) *Service {
	return &Service{
		articles: articles,
		settings: settings,
		indexer:  indexer,
		logger:   logger,
		now:      time.Now,
	}
}

// BulkSetStatus moves a set of articles to the given status and returns how
// many rows actually changed. Unknown IDs are ignored, not errors.
func (s *Service) BulkSetStatus(ctx context.Context, ids []int64, status domain.Status) (int64, error) {
	if !status.Valid() {
		return 0, apperr.NewValidation(fmt.Sprintf("invalid article status: %s", status))
	}
	if len(ids) == 0 {
		return 0, apperr.NewValidation("no article ids given")
	}

	updated, err := s.articles.BulkUpdateStatus(ctx, ids, status)
	if err != nil {
		return 0, fmt.Errorf("bulk update status: %w", err)
	}

	s.logger.Info("bulk status update",
		"requested", len(ids), "updated", updated, "status", status)

	switch status {
	case domain.StatusApproved:
		s.syncIndex(ctx, ids)
	case domain.StatusRejected:
		s.dropFromIndex(ctx, ids)
	}

	return updated, nil
}

// Reprocess sends articles back to pending so the next processing run
// classifies them again.
func (s *Service) Reprocess(ctx context.Context, ids []int64) (int64, error) {
	return s.BulkSetStatus(ctx, ids, domain.StatusPending)
}

// AutoPublishStale approves AI-authored articles that sat in review longer
// than the configured threshold without a human decision.
func (s *Service) AutoPublishStale(ctx context.Context) ([]int64, error) {
	settings, err := s.settings.ContentSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load content settings: %w", err)
	}

	cutoff := s.now().Add(-time.Duration(settings.AutoPublishHours) * time.Hour)
	ids, err := s.articles.AutoPublishStale(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("auto-publish sweep: %w", err)
	}

	if len(ids) > 0 {
		s.logger.Info("auto-published stale review articles",
			"count", len(ids), "thresholdHours", settings.AutoPublishHours)
		s.syncIndex(ctx, ids)
	}

	return ids, nil
}

// Delete removes an article and its search document.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	if s.indexer != nil {
		if err := s.indexer.RemoveArticle(ctx, id); err != nil {
			s.logger.Warn("search index delete failed", "articleId", id, "error", err)
		}
	}
	return nil
}

// syncIndex mirrors freshly approved articles into the search index. Best
// effort; index drift is repaired on the next approval of the same article.
func (s *Service) syncIndex(ctx context.Context, ids []int64) {
	if s.indexer == nil {
		return
	}
	for _, id := range ids {
		article, err := s.articles.GetByID(ctx, id)
		if err != nil {
			s.logger.Warn("could not load article for indexing", "articleId", id, "error", err)
			continue
		}
		if article.Status != domain.StatusApproved {
			continue
		}
		if err := s.indexer.IndexArticle(ctx, *article); err != nil {
			s.logger.Warn("search index update failed", "articleId", id, "error", err)
		}
	}
}

func (s *Service) dropFromIndex(ctx context.Context, ids []int64) {
	if s.indexer == nil {
		return
	}
	for _, id := range ids {
		if err := s.indexer.RemoveArticle(ctx, id); err != nil {
			s.logger.Warn("search index delete failed", "articleId", id, "error", err)
		}
	}
}
