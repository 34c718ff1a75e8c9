package classifier

import (
	"fmt"
	"strings"

	"newscurator/internal/domain"
)

const contentExcerptLimit = 3000

func prefilterPrompt(a domain.Article) string {
	return fmt.Sprintf(`You screen articles for a news site about AI applications in credit scoring, lending, and banking.

Title: %s
Source: %s

Could this article plausibly be about AI or machine learning in credit, lending, banking, or financial services? Answer with a single word: yes or no.`,
		a.Title, a.Source)
}

func analysisPrompt(a domain.Article, categories []domain.Category, fallbackSlug string) string {
	excerpt := a.Content
	if excerpt == "" {
		excerpt = a.Summary
	}
	if len(excerpt) > contentExcerptLimit {
		excerpt = excerpt[:contentExcerptLimit]
	}

	var list strings.Builder
	for i, c := range categories {
		fmt.Fprintf(&list, "%d. %s - %s\n", i+1, c.Slug, c.Description)
	}

	return fmt.Sprintf(`Analyze this article and determine its relevance to AI applications in credit scoring and banking.

Title: %s
Source: %s
Content: %s

IMPORTANT: We are looking for articles specifically about the INTERSECTION of:
- Artificial Intelligence / Machine Learning AND
- Credit scoring, lending, banking, financial services, fintech

Articles that are ONLY about general AI (without finance focus) should score low.
Articles that are ONLY about banking (without AI focus) should score low.
Articles about AI IN banking/credit/finance should score high.

Return ONLY valid JSON (no markdown, no code blocks) with this exact structure:
{
  "relevance_score": <number 0-10>,
  "is_relevant": <boolean>,
  "primary_category": "<category-slug from list>",
  "suggested_tags": ["tag1", "tag2", "tag3"],
  "summary": "<2-3 sentence summary, accessible to technical and non-technical readers>",
  "difficulty_level": "<beginner|intermediate|advanced>",
  "reasoning": "<brief 1-2 sentence explanation>"
}

Categories to choose from:
%s
If the article is not relevant to AI in credit/banking, use "%s" as the category and set is_relevant to false.`,
		a.Title, a.Source, excerpt, list.String(), fallbackSlug)
}
