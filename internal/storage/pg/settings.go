package pg

import (
	"context"
	"encoding/json"
	"fmt"

	"newscurator/internal/domain"
)

// Setting keys. Values are stored as JSON; anything absent falls back to the
// baked-in defaults.
const (
	SettingDailyMinArticles     = "daily_min_articles"
	SettingDailyMaxArticles     = "daily_max_articles"
	SettingDailyMaxAIArticles   = "daily_max_ai_articles"
	SettingWeeklyMinPerCategory = "weekly_min_per_category"
	SettingScrapeMaxAgeHours    = "scrape_max_age_hours"
	SettingArticlesPerScrape    = "articles_per_scrape"
	SettingAutoPublishHours     = "auto_publish_hours"
)

type SettingsStore struct {
	db DB
}

func NewSettingsStore(db DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %q: %w", key, err)
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, raw)
	if err != nil {
		return fmt.Errorf("failed to set setting %q: %w", key, err)
	}
	return nil
}

// ContentSettings loads the pipeline parameters, overlaying stored values on
// the defaults. Unknown keys and unparseable values are ignored.
func (s *SettingsStore) ContentSettings(ctx context.Context) (domain.ContentSettings, error) {
	settings := domain.DefaultContentSettings()

	rows, err := s.db.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, fmt.Errorf("failed to load settings: %w", err)
	}
	defer rows.Close()

	targets := map[string]*int{
		SettingDailyMinArticles:     &settings.DailyMinArticles,
		SettingDailyMaxArticles:     &settings.DailyMaxArticles,
		SettingDailyMaxAIArticles:   &settings.DailyMaxAIArticles,
		SettingWeeklyMinPerCategory: &settings.WeeklyMinPerCategory,
		SettingScrapeMaxAgeHours:    &settings.ScrapeMaxAgeHours,
		SettingArticlesPerScrape:    &settings.ArticlesPerScrape,
		SettingAutoPublishHours:     &settings.AutoPublishHours,
	}

	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return settings, fmt.Errorf("failed to scan setting: %w", err)
		}
		target, ok := targets[key]
		if !ok {
			continue
		}
		var v int
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		*target = v
	}
	return settings, rows.Err()
}

// UpdateContent persists the recognized keys from the given map.
func (s *SettingsStore) UpdateContent(ctx context.Context, values map[string]int) error {
	known := map[string]bool{
		SettingDailyMinArticles:     true,
		SettingDailyMaxArticles:     true,
		SettingDailyMaxAIArticles:   true,
		SettingWeeklyMinPerCategory: true,
		SettingScrapeMaxAgeHours:    true,
		SettingArticlesPerScrape:    true,
		SettingAutoPublishHours:     true,
	}
	for key, v := range values {
		if !known[key] {
			continue
		}
		if err := s.Set(ctx, key, v); err != nil {
			return err
		}
	}
	return nil
}
