package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"newscurator/internal/classifier"
	"newscurator/internal/domain"
	"newscurator/internal/generator"
	"newscurator/internal/operation"
	"newscurator/internal/review"
	"newscurator/internal/scraper"
)

// DefaultProcessLimit bounds one processing run when the caller does not ask
// for a specific batch size.
const DefaultProcessLimit = 50

// fullRefreshMaxAgeMonths is the history window for a full-refresh scrape,
// which backfills instead of taking only the last day's items.
const fullRefreshMaxAgeMonths = 3

type SettingsStore interface {
	ContentSettings(ctx context.Context) (domain.ContentSettings, error)
}

// Pipeline wires the stages together and runs them under the coordinator.
// Triggered operations run in the background; RunDaily runs synchronously
// for the scheduler.
type Pipeline struct {
	coordinator *operation.Coordinator
	scraper     *scraper.Scraper
	classifier  *classifier.Classifier
	generator   *generator.Generator
	editorial   *generator.EditorialWriter
	review      *review.Service
	settings    SettingsStore
	logger      *slog.Logger
}

func New(
	coordinator *operation.Coordinator,
	scr *scraper.Scraper,
	cls *classifier.Classifier,
	gen *generator.Generator,
	editorial *generator.EditorialWriter,
	rev *review.Service,
	settings SettingsStore,
	logger *slog.Logger,
) *Pipeline {
	return &Pipeline{
		coordinator: coordinator,
		scraper:     scr,
		classifier:  cls,
		generator:   gen,
		editorial:   editorial,
		review:      rev,
		settings:    settings,
		logger:      logger,
	}
}

func (p *Pipeline) Status() (operation.Snapshot, bool) {
	return p.coordinator.Snapshot()
}

func (p *Pipeline) Pause()  { p.coordinator.Pause() }
func (p *Pipeline) Resume() { p.coordinator.Resume() }
func (p *Pipeline) Cancel() { p.coordinator.Cancel() }

// TriggerScrape starts a scrape operation in the background. It returns a
// ConflictError if another operation is running.
func (p *Pipeline) TriggerScrape(ctx context.Context) (operation.Snapshot, error) {
	return p.trigger(ctx, operation.TypeScrape, func(runCtx context.Context, tracker *operation.Tracker) error {
		return p.runScrape(runCtx, tracker, false)
	})
}

// TriggerProcess starts a classification run. target selects where approved
// articles land: the published pool or the review queue.
func (p *Pipeline) TriggerProcess(ctx context.Context, limit int, target domain.Status) (operation.Snapshot, error) {
	if limit <= 0 {
		limit = DefaultProcessLimit
	}
	return p.trigger(ctx, operation.TypeProcess, func(runCtx context.Context, tracker *operation.Tracker) error {
		_, err := p.classifier.ProcessPending(runCtx, limit, target, tracker)
		return err
	})
}

// TriggerSupplement starts an admission-control generation pass.
func (p *Pipeline) TriggerSupplement(ctx context.Context) (operation.Snapshot, error) {
	return p.trigger(ctx, operation.TypeSupplement, func(runCtx context.Context, tracker *operation.Tracker) error {
		_, err := p.generator.Supplement(runCtx, tracker)
		return err
	})
}

// TriggerFullRefresh runs scrape, process, and supplement as one multi-step
// operation, with the scrape reaching months back instead of hours.
func (p *Pipeline) TriggerFullRefresh(ctx context.Context) (operation.Snapshot, error) {
	return p.trigger(ctx, operation.TypeFullRefresh, func(runCtx context.Context, tracker *operation.Tracker) error {
		tracker.Step(1, "scrape")
		if err := p.runScrape(runCtx, tracker, true); err != nil {
			return err
		}

		tracker.Step(2, "process")
		if _, err := p.classifier.ProcessPending(runCtx, DefaultProcessLimit, domain.StatusApproved, tracker); err != nil {
			return err
		}

		tracker.Step(3, "supplement")
		_, err := p.generator.Supplement(runCtx, tracker)
		return err
	})
}

func (p *Pipeline) trigger(ctx context.Context, t operation.Type, run func(context.Context, *operation.Tracker) error) (operation.Snapshot, error) {
	// The run outlives the HTTP request that triggered it.
	tracker, runCtx, err := p.coordinator.Begin(context.WithoutCancel(ctx), t)
	if err != nil {
		return operation.Snapshot{}, err
	}

	snap, _ := p.coordinator.Snapshot()

	go func() {
		err := run(runCtx, tracker)
		if err != nil {
			p.logger.Error("operation finished with error", "type", t, "error", err)
		}
		tracker.Finish(err)
	}()

	return snap, nil
}

func (p *Pipeline) runScrape(ctx context.Context, tracker *operation.Tracker, fullRefresh bool) error {
	settings, err := p.settings.ContentSettings(ctx)
	if err != nil {
		return fmt.Errorf("load content settings: %w", err)
	}

	opts := scraper.Options{MaxAgeHours: settings.ScrapeMaxAgeHours}
	if fullRefresh {
		opts = scraper.Options{MaxAgeMonths: fullRefreshMaxAgeMonths}
	}

	_, err = p.scraper.ScrapeAll(ctx, opts, tracker)
	return err
}

// RunDaily is the scheduler entrypoint: scrape, classify, sweep stale review
// articles, supplement, and try the weekly editorial. Steps run under one
// operation so an admin trigger cannot overlap.
func (p *Pipeline) RunDaily(ctx context.Context) error {
	tracker, runCtx, err := p.coordinator.Begin(ctx, operation.TypeFullRefresh)
	if err != nil {
		return err
	}

	runErr := func() error {
		tracker.Step(1, "scrape")
		if err := p.runScrape(runCtx, tracker, false); err != nil {
			return err
		}

		tracker.Step(2, "process")
		if _, err := p.classifier.ProcessPending(runCtx, DefaultProcessLimit, domain.StatusApproved, tracker); err != nil {
			return err
		}

		if published, err := p.review.AutoPublishStale(runCtx); err != nil {
			p.logger.Error("auto-publish sweep failed", "error", err)
		} else if len(published) > 0 {
			tracker.Log("Auto-published %d stale review articles", len(published))
		}

		tracker.Step(3, "supplement")
		if _, err := p.generator.Supplement(runCtx, tracker); err != nil {
			return err
		}

		if _, err := p.editorial.WriteWeekly(runCtx); err != nil {
			p.logger.Error("weekly editorial failed", "error", err)
		}
		return nil
	}()

	tracker.Finish(runErr)
	return runErr
}
