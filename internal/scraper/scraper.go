package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"newscurator/internal/domain"
	"newscurator/internal/operation"
	"newscurator/internal/storage/pg"
)

const (
	userAgent = "NewsCuratorBot/1.0 (Educational News Aggregator)"

	// maxItemsPerSource bounds one pass so a misbehaving feed cannot flood
	// the pending queue.
	maxItemsPerSource = 20

	fetchTimeout = 10 * time.Second
)

type SourceStore interface {
	ListActive(ctx context.Context) ([]domain.Source, error)
	TouchLastScraped(ctx context.Context, id int64, at time.Time) error
}

type ArticleStore interface {
	Insert(ctx context.Context, a domain.Article) (int64, error)
}

// Options narrow which feed items one pass accepts.
type Options struct {
	// MaxAgeHours drops items older than this many hours. Zero disables.
	MaxAgeHours int
	// MaxAgeMonths drops items older than this many 30-day months. Zero
	// disables. Used by full-refresh runs that backfill history.
	MaxAgeMonths int
}

type Result struct {
	SourcesScraped int `json:"sourcesScraped"`
	Found          int `json:"found"`
	Added          int `json:"added"`
	Skipped        int `json:"skipped"`
	SourceErrors   int `json:"sourceErrors"`
}

type Scraper struct {
	sources    SourceStore
	articles   ArticleStore
	parser     *gofeed.Parser
	httpClient *http.Client
	limiter    *HostRateLimiter
	logger     *slog.Logger
	now        func() time.Time
}

func New(sources SourceStore, articles ArticleStore, logger *slog.Logger) *Scraper {
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent

	return &Scraper{
		sources:  sources,
		articles: articles,
		parser:   parser,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
		limiter: NewHostRateLimiter(time.Second),
		logger:  logger,
		now:     time.Now,
	}
}

// ScrapeAll fetches every active source. A source that fails to fetch or
// parse is counted and skipped; the pass continues. The source's
// last-scraped timestamp is touched even when its feed fails, so a
// permanently broken feed does not look permanently fresh.
func (s *Scraper) ScrapeAll(ctx context.Context, opts Options, tracker *operation.Tracker) (Result, error) {
	sources, err := s.sources.ListActive(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list active sources: %w", err)
	}

	if tracker != nil {
		tracker.UpdateScraping(func(st *operation.ScrapingStats) {
			st.TotalSources = len(sources)
		})
		tracker.Log("Found %d active RSS sources", len(sources))
	}

	var res Result
	for _, source := range sources {
		if tracker != nil {
			if err := tracker.Checkpoint(ctx); err != nil {
				return res, err
			}
			tracker.UpdateScraping(func(st *operation.ScrapingStats) {
				st.CurrentSource = source.Name
			})
			tracker.Log("Scraping: %s", source.Name)
		} else if err := ctx.Err(); err != nil {
			return res, err
		}

		if source.FeedURL == "" {
			s.logger.Warn("source has no feed URL configured", "source", source.Name)
			continue
		}

		added, skipped, found, err := s.scrapeSource(ctx, source, opts)
		res.Found += found
		res.Added += added
		res.Skipped += skipped
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return res, err
			}
			res.SourceErrors++
			s.logger.Error("source scrape failed", "source", source.Name, "error", err)
			if tracker != nil {
				tracker.UpdateScraping(func(st *operation.ScrapingStats) { st.SourceErrors++ })
				tracker.Log("Error scraping %s: %v", source.Name, err)
			}
		}
		res.SourcesScraped++

		if err := s.sources.TouchLastScraped(ctx, source.ID, s.now()); err != nil {
			s.logger.Error("failed to update last-scraped timestamp", "source", source.Name, "error", err)
		}

		if tracker != nil {
			tracker.UpdateScraping(func(st *operation.ScrapingStats) {
				st.SourcesProcessed = res.SourcesScraped
				st.ArticlesFound = res.Found
				st.ArticlesAdded = res.Added
				st.ArticlesSkipped = res.Skipped
			})
		}
	}

	s.logger.Info("scrape pass finished",
		"sources", res.SourcesScraped,
		"found", res.Found,
		"added", res.Added,
		"skipped", res.Skipped,
		"errors", res.SourceErrors)

	return res, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, source domain.Source, opts Options) (added, skipped, found int, err error) {
	if err := s.limiter.WaitForHost(ctx, source.FeedURL); err != nil {
		return 0, 0, 0, err
	}

	feed, err := s.parser.ParseURLWithContext(source.FeedURL, ctx)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("fetch feed: %w", err)
	}

	items := feed.Items
	found = len(items)
	if len(items) > maxItemsPerSource {
		items = items[:maxItemsPerSource]
	}

	for _, item := range items {
		ok, err := s.processItem(ctx, item, source, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return added, skipped, found, err
			}
			s.logger.Error("failed to save feed item", "source", source.Name, "error", err)
			skipped++
			continue
		}
		if ok {
			added++
		} else {
			skipped++
		}
	}

	return added, skipped, found, nil
}

// processItem turns one feed item into a pending article. Returns false when
// the item is skipped (no link, too old, or a duplicate URL).
func (s *Scraper) processItem(ctx context.Context, item *gofeed.Item, source domain.Source, opts Options) (bool, error) {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if itemURL == "" {
		return false, nil
	}

	now := s.now()
	published := now
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	if tooOld(now, published, opts) {
		return false, nil
	}

	content := item.Content
	if content == "" {
		content = item.Description
	}

	if len(content) < minExtractedLength {
		if err := s.limiter.WaitForHost(ctx, itemURL); err != nil {
			return false, err
		}
		fetched, err := s.FetchArticleContent(ctx, itemURL)
		if err != nil {
			s.logger.Warn("content backfill failed", "url", itemURL, "error", err)
		} else if len(fetched) > len(content) {
			content = fetched
		}
	}
	if len(content) > maxContentLength {
		content = content[:maxContentLength]
	}

	summary := item.Description
	if summary == "" && len(content) > 0 {
		if len(content) > 300 {
			summary = content[:300]
		} else {
			summary = content
		}
	}

	title := item.Title
	if title == "" {
		title = "Untitled"
	}

	var author string
	if item.Author != nil {
		author = item.Author.Name
	}

	article := domain.Article{
		Title:         title,
		URL:           itemURL,
		Source:        source.Name,
		Author:        author,
		Content:       content,
		Summary:       summary,
		Language:      source.Language,
		Status:        domain.StatusPending,
		PublishedDate: published,
		ScrapedAt:     now,
	}

	_, err := s.articles.Insert(ctx, article)
	if errors.Is(err, pg.ErrDuplicateURL) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func tooOld(now, published time.Time, opts Options) bool {
	age := now.Sub(published)
	if opts.MaxAgeHours > 0 && age > time.Duration(opts.MaxAgeHours)*time.Hour {
		return true
	}
	if opts.MaxAgeMonths > 0 && age > time.Duration(opts.MaxAgeMonths)*30*24*time.Hour {
		return true
	}
	return false
}
