package domain

import (
	"time"
)

const ArticleDefaultLanguage = "en"

// Status is the workflow state of an article.
//
// pending  - scraped, not yet classified
// queued   - classifier-approved via the bulk path, awaiting human sign-off
// review   - AI-authored, awaiting human sign-off or auto-publish
// approved - published
// rejected - dropped by the classifier or a reviewer
type Status string

const (
	StatusPending  Status = "pending"
	StatusQueued   Status = "queued"
	StatusReview   Status = "review"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusQueued, StatusReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type Article struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Source        string     `json:"source"`
	Author        string     `json:"author,omitempty"`
	Content       string     `json:"content,omitempty"`
	Summary       string     `json:"summary,omitempty"`
	Language      string     `json:"language,omitempty"`
	Status        Status     `json:"status"`
	IsAIGenerated bool       `json:"isAiGenerated"`

	RelevanceScore *int       `json:"relevanceScore,omitempty"`
	CategoryID     *int64     `json:"categoryId,omitempty"`
	Difficulty     Difficulty `json:"difficulty,omitempty"`

	PublishedDate time.Time `json:"publishedDate,omitempty"`
	ScrapedAt     time.Time `json:"scrapedAt"`

	// Denormalized counters owned by the publication layer. The pipeline
	// reads them for listings and never writes them.
	ViewCount       int `json:"viewCount"`
	HelpfulCount    int `json:"helpfulCount"`
	NotHelpfulCount int `json:"notHelpfulCount"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
