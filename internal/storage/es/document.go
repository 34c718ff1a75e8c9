package es

import (
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8/typedapi/types"

	"newscurator/internal/domain"
)

// ArticleDocument is the index shape for a published article. Only approved
// articles are indexed; the relational store remains the source of truth.
type ArticleDocument struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Summary        string    `json:"summary"`
	Content        string    `json:"content"`
	Source         string    `json:"source"`
	Author         string    `json:"author"`
	URL            string    `json:"url"`
	Language       string    `json:"language"`
	CategorySlug   string    `json:"category_slug"`
	Difficulty     string    `json:"difficulty"`
	Tags           []string  `json:"tags"`
	IsAIGenerated  bool      `json:"is_ai_generated"`
	RelevanceScore int       `json:"relevance_score"`
	PublishedDate  time.Time `json:"published_date"`
	IndexedAt      time.Time `json:"indexed_at"`
}

func mapToDocument(a domain.Article, categorySlug string, tags []string) ArticleDocument {
	language := a.Language
	if language == "" {
		language = domain.ArticleDefaultLanguage
	}

	score := 0
	if a.RelevanceScore != nil {
		score = *a.RelevanceScore
	}

	return ArticleDocument{
		ID:             strconv.FormatInt(a.ID, 10),
		Title:          a.Title,
		Summary:        a.Summary,
		Content:        a.Content,
		Source:         a.Source,
		Author:         a.Author,
		URL:            a.URL,
		Language:       language,
		CategorySlug:   categorySlug,
		Difficulty:     string(a.Difficulty),
		Tags:           tags,
		IsAIGenerated:  a.IsAIGenerated,
		RelevanceScore: score,
		PublishedDate:  a.PublishedDate,
		IndexedAt:      time.Now(),
	}
}

func buildMapping() types.TypeMapping {
	return types.TypeMapping{
		Properties: map[string]types.Property{
			"id":              types.NewKeywordProperty(),
			"title":           types.NewTextProperty(),
			"summary":         types.NewTextProperty(),
			"content":         types.NewTextProperty(),
			"source":          types.NewKeywordProperty(),
			"author":          types.NewKeywordProperty(),
			"url":             types.NewKeywordProperty(),
			"language":        types.NewKeywordProperty(),
			"category_slug":   types.NewKeywordProperty(),
			"difficulty":      types.NewKeywordProperty(),
			"tags":            types.NewKeywordProperty(),
			"is_ai_generated": types.NewBooleanProperty(),
			"relevance_score": types.NewIntegerNumberProperty(),
			"published_date":  types.NewDateProperty(),
			"indexed_at":      types.NewDateProperty(),
		},
	}
}
