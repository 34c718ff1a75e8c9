package generator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscurator/internal/domain"
	"newscurator/internal/llm"
)

type fakeLLM struct {
	researchNotes string
	draft         llm.GeneratedArticle
	failWriteFor  string
	lastPrompt    string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string, _ int) (string, error) {
	f.lastPrompt = prompt
	return f.researchNotes, nil
}

func (f *fakeLLM) CompleteJSON(_ context.Context, prompt string, _ int, v any) error {
	if f.failWriteFor != "" && strings.Contains(prompt, f.failWriteFor) {
		return errors.New("model unavailable")
	}
	raw, _ := json.Marshal(f.draft)
	return json.Unmarshal(raw, v)
}

type fakeArticles struct {
	counts   domain.DailyCounts
	inserted []domain.Article
	tags     [][]string
}

func (f *fakeArticles) CountToday(_ context.Context, _ time.Time) (domain.DailyCounts, error) {
	return f.counts, nil
}

func (f *fakeArticles) InsertGenerated(_ context.Context, a domain.Article, tags []string) (int64, error) {
	f.inserted = append(f.inserted, a)
	f.tags = append(f.tags, tags)
	return int64(len(f.inserted)), nil
}

type fakeCategories struct {
	needs []domain.CategoryNeed
}

func (f *fakeCategories) ListByNeed(_ context.Context, _ time.Time) ([]domain.CategoryNeed, error) {
	return f.needs, nil
}

type fakeSettings struct {
	settings domain.ContentSettings
}

func (f *fakeSettings) ContentSettings(_ context.Context) (domain.ContentSettings, error) {
	return f.settings, nil
}

func validDraft() llm.GeneratedArticle {
	return llm.GeneratedArticle{
		Title:           "AI Underwriting Reshapes Small Business Lending",
		Summary:         "A short preview.",
		Content:         "Body text.\n\nMore body text.",
		DifficultyLevel: "intermediate",
		Tags:            []string{"underwriting", "lending"},
	}
}

func needsFor(slugs ...string) []domain.CategoryNeed {
	needs := make([]domain.CategoryNeed, len(slugs))
	for i, slug := range slugs {
		needs[i] = domain.CategoryNeed{
			Category:    domain.Category{ID: int64(i + 1), Name: slug, Slug: slug},
			RecentCount: i,
		}
	}
	return needs
}

func newTestGenerator(l LLM, a *fakeArticles, needs []domain.CategoryNeed) *Generator {
	g := New(l, a, &fakeCategories{needs: needs}, &fakeSettings{settings: domain.DefaultContentSettings()},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	g.Delay = 0
	return g
}

func TestSupplement_GeneratesForNeediestCategories(t *testing.T) {
	fl := &fakeLLM{researchNotes: "notes", draft: validDraft()}
	articles := &fakeArticles{counts: domain.DailyCounts{Scraped: 3, AIGenerated: 0}}
	g := newTestGenerator(fl, articles, needsFor("fraud-detection", "credit-scoring", "lending-automation"))

	res, err := g.Supplement(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Plan.ToGenerate)
	require.Len(t, res.Generated, 2)
	assert.Equal(t, "fraud-detection", res.Generated[0].Category)
	assert.Equal(t, "credit-scoring", res.Generated[1].Category)

	for _, a := range articles.inserted {
		assert.Equal(t, domain.StatusReview, a.Status, "generated articles require review")
		assert.True(t, a.IsAIGenerated)
		assert.True(t, strings.HasPrefix(a.URL, "ai-generated-"))
	}
}

func TestSupplement_StopsAtBalanceLimit(t *testing.T) {
	fl := &fakeLLM{researchNotes: "notes", draft: validDraft()}
	articles := &fakeArticles{counts: domain.DailyCounts{Scraped: 0, AIGenerated: 0}}
	g := newTestGenerator(fl, articles, needsFor("fraud-detection"))

	res, err := g.Supplement(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, ReasonAIBalanceLimit, res.Plan.Reason)
	assert.Empty(t, res.Generated)
	assert.Empty(t, articles.inserted)
}

func TestSupplement_FewerCategoriesThanSlots(t *testing.T) {
	fl := &fakeLLM{researchNotes: "notes", draft: validDraft()}
	articles := &fakeArticles{counts: domain.DailyCounts{Scraped: 3, AIGenerated: 0}}
	g := newTestGenerator(fl, articles, needsFor("fraud-detection"))

	res, err := g.Supplement(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 2, res.Plan.ToGenerate)
	assert.Len(t, res.Generated, 1)
}

func TestSupplement_ContinuesPastCategoryFailure(t *testing.T) {
	fl := &fakeLLM{
		researchNotes: "notes",
		draft:         validDraft(),
		failWriteFor:  "Fraud Detection",
	}
	articles := &fakeArticles{counts: domain.DailyCounts{Scraped: 3, AIGenerated: 0}}
	g := newTestGenerator(fl, articles, needsFor("fraud-detection", "credit-scoring"))

	res, err := g.Supplement(context.Background(), nil)

	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "fraud-detection")
	require.Len(t, res.Generated, 1)
	assert.Equal(t, "credit-scoring", res.Generated[0].Category)
}

func TestGenerateForCategory_UnknownSlugUsesGenericFocus(t *testing.T) {
	fl := &fakeLLM{researchNotes: "notes", draft: validDraft()}
	articles := &fakeArticles{}
	g := newTestGenerator(fl, articles, nil)

	ref, err := g.GenerateForCategory(context.Background(), domain.Category{
		ID: 9, Name: "Open Banking", Slug: "open-banking", Description: "Data sharing in retail banking",
	})

	require.NoError(t, err)
	assert.Equal(t, "open-banking", ref.Category)
	assert.Contains(t, fl.lastPrompt, "Open Banking")
	require.Len(t, articles.inserted, 1)
	require.NotNil(t, articles.inserted[0].CategoryID)
	assert.Equal(t, int64(9), *articles.inserted[0].CategoryID)
	assert.Equal(t, []string{"underwriting", "lending"}, articles.tags[0])
}

func TestGenerateForCategory_RejectsEmptyDraft(t *testing.T) {
	fl := &fakeLLM{researchNotes: "notes", draft: llm.GeneratedArticle{Summary: "only a summary"}}
	g := newTestGenerator(fl, &fakeArticles{}, nil)

	_, err := g.GenerateForCategory(context.Background(), domain.Category{ID: 1, Slug: "fraud-detection"})

	assert.Error(t, err)
}
