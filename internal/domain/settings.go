package domain

// ContentSettings are the admin-tunable pipeline parameters. Values come from
// the settings store; anything unset falls back to these defaults.
type ContentSettings struct {
	DailyMinArticles     int `json:"dailyMinArticles"`
	DailyMaxArticles     int `json:"dailyMaxArticles"`
	DailyMaxAIArticles   int `json:"dailyMaxAiArticles"`
	WeeklyMinPerCategory int `json:"weeklyMinPerCategory"`
	ScrapeMaxAgeHours    int `json:"scrapeMaxAgeHours"`
	ArticlesPerScrape    int `json:"articlesPerScrape"`
	AutoPublishHours     int `json:"autoPublishHours"`
}

func DefaultContentSettings() ContentSettings {
	return ContentSettings{
		DailyMinArticles:     5,
		DailyMaxArticles:     10,
		DailyMaxAIArticles:   3,
		WeeklyMinPerCategory: 5,
		ScrapeMaxAgeHours:    24,
		ArticlesPerScrape:    5,
		AutoPublishHours:     48,
	}
}

// DailyCounts is today's approved-scraped vs AI-authored split. It is
// recomputed from storage on every planner invocation, never cached, so
// concurrent invocations can race (a documented gap, not guarded here).
type DailyCounts struct {
	Scraped     int `json:"scraped"`
	AIGenerated int `json:"aiGenerated"`
}
