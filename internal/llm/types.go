package llm

import (
	"fmt"
)

// Analysis is the structured verdict of the full-analysis call.
type Analysis struct {
	RelevanceScore  int      `json:"relevance_score"`
	IsRelevant      bool     `json:"is_relevant"`
	PrimaryCategory string   `json:"primary_category"`
	SuggestedTags   []string `json:"suggested_tags"`
	Summary         string   `json:"summary"`
	DifficultyLevel string   `json:"difficulty_level"`
	Reasoning       string   `json:"reasoning"`
}

func (a *Analysis) Validate() error {
	if a.RelevanceScore < 0 || a.RelevanceScore > 10 {
		return fmt.Errorf("relevance_score %d out of range [0,10]", a.RelevanceScore)
	}
	if a.PrimaryCategory == "" {
		return fmt.Errorf("primary_category is empty")
	}
	return nil
}

// GeneratedArticle is the structured output of the article-writing call.
type GeneratedArticle struct {
	Title           string   `json:"title"`
	Summary         string   `json:"summary"`
	Content         string   `json:"content"`
	DifficultyLevel string   `json:"difficulty_level"`
	Tags            []string `json:"tags"`
}

func (g *GeneratedArticle) Validate() error {
	if g.Title == "" {
		return fmt.Errorf("generated article has no title")
	}
	if g.Content == "" {
		return fmt.Errorf("generated article has no content")
	}
	return nil
}
