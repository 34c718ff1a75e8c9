package domain

import "time"

// Source is an RSS feed endpoint. Sources are deactivated, never deleted,
// by the pipeline.
type Source struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	FeedURL       string     `json:"feedUrl"`
	Language      string     `json:"language,omitempty"`
	Active        bool       `json:"active"`
	LastScrapedAt *time.Time `json:"lastScrapedAt,omitempty"`
}
