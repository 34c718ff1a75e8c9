package generator

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscurator/internal/domain"
	"newscurator/internal/llm"
	"newscurator/internal/storage/pg"
)

type fakeLister struct {
	articles []domain.Article
}

func (f *fakeLister) List(_ context.Context, _ pg.ListFilter) ([]domain.Article, error) {
	return f.articles, nil
}

type fakeEditorials struct {
	latest   *pg.Editorial
	inserted []pg.Editorial
}

func (f *fakeEditorials) Insert(_ context.Context, e pg.Editorial) (int64, error) {
	f.inserted = append(f.inserted, e)
	return int64(len(f.inserted)), nil
}

func (f *fakeEditorials) Latest(_ context.Context) (*pg.Editorial, error) {
	if f.latest == nil {
		return nil, pg.ErrNoEditorial
	}
	return f.latest, nil
}

// wednesday is a fixed reference point; the completed week before it starts
// on Monday the 17th.
var wednesday = time.Date(2026, time.August, 26, 15, 0, 0, 0, time.UTC)

func articleOn(day int, title string) domain.Article {
	return domain.Article{
		Title:         title,
		Source:        "Example Wire",
		Status:        domain.StatusApproved,
		PublishedDate: time.Date(2026, time.August, day, 9, 0, 0, 0, time.UTC),
	}
}

func newTestEditorialWriter(l LLM, lister *fakeLister, store *fakeEditorials) *EditorialWriter {
	w := NewEditorialWriter(l, lister, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.now = func() time.Time { return wednesday }
	return w
}

func TestWriteWeekly_CreatesEditorial(t *testing.T) {
	fl := &fakeLLM{draft: llm.GeneratedArticle{
		Title:   "The Week Credit Models Grew Up",
		Content: "Three stories this week pointed the same direction.",
	}}
	lister := &fakeLister{articles: []domain.Article{
		articleOn(18, "Banks adopt new scoring"),
		articleOn(19, "Regulator opens AI inquiry"),
		articleOn(21, "Fraud platform raises round"),
	}}
	store := &fakeEditorials{}

	got, err := newTestEditorialWriter(fl, lister, store).WriteWeekly(context.Background())

	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, "The Week Credit Models Grew Up", store.inserted[0].Title)
	assert.Equal(t, time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC), store.inserted[0].WeekStart)
}

func TestWriteWeekly_SkipsWhenWeekAlreadyCovered(t *testing.T) {
	existing := &pg.Editorial{
		ID:        4,
		Title:     "Already written",
		WeekStart: time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC),
	}
	store := &fakeEditorials{latest: existing}
	lister := &fakeLister{articles: []domain.Article{
		articleOn(18, "a"), articleOn(19, "b"), articleOn(20, "c"),
	}}

	got, err := newTestEditorialWriter(&fakeLLM{}, lister, store).WriteWeekly(context.Background())

	require.NoError(t, err)
	assert.Equal(t, existing, got)
	assert.Empty(t, store.inserted)
}

func TestWriteWeekly_TooFewArticles(t *testing.T) {
	lister := &fakeLister{articles: []domain.Article{
		articleOn(18, "in week"),
		articleOn(20, "also in week"),
		articleOn(26, "current week, excluded"),
		articleOn(10, "older week, excluded"),
	}}
	store := &fakeEditorials{}

	got, err := newTestEditorialWriter(&fakeLLM{}, lister, store).WriteWeekly(context.Background())

	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, store.inserted)
}

func TestPreviousMonday(t *testing.T) {
	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "midweek",
			now:  wednesday,
			want: time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "on a monday",
			now:  time.Date(2026, time.August, 24, 8, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.August, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "on a sunday",
			now:  time.Date(2026, time.August, 23, 23, 0, 0, 0, time.UTC),
			want: time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, previousMonday(tc.now))
		})
	}
}
