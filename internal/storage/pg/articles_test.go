package pg

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscurator/internal/domain"
)

func TestArticleStore_Insert_NewURL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewArticleStore(mock)

	rows := pgxmock.NewRows([]string{"id"}).AddRow(int64(42))
	mock.ExpectQuery("INSERT INTO articles").
		WithArgs("Some title", "https://example.com/a", "Example", "", "body", "sum",
			"en", domain.StatusPending, false, pgxmock.AnyArg(), pgxmock.AnyArg(), "",
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(rows)

	id, err := store.Insert(context.Background(), domain.Article{
		Title:   "Some title",
		URL:     "https://example.com/a",
		Source:  "Example",
		Content: "body",
		Summary: "sum",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleStore_Insert_DuplicateURLIsNotAnError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewArticleStore(mock)

	// ON CONFLICT DO NOTHING yields no RETURNING row for a duplicate.
	mock.ExpectQuery("INSERT INTO articles").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err = store.Insert(context.Background(), domain.Article{
		Title:  "Dup",
		URL:    "https://example.com/a",
		Source: "Example",
	})

	assert.ErrorIs(t, err, ErrDuplicateURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleStore_ApplyClassification_UpdatesAndTagsInOneTx(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewArticleStore(mock)
	catID := int64(3)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE articles").
		WithArgs(8, &catID, "short summary", "intermediate", domain.StatusApproved, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery("INSERT INTO tags").
		WithArgs("credit-scoring").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectExec("INSERT INTO article_tags").
		WithArgs(int64(7), int64(11)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err = store.ApplyClassification(context.Background(), 7, Classification{
		RelevanceScore: 8,
		CategoryID:     &catID,
		Summary:        "short summary",
		Difficulty:     domain.DifficultyIntermediate,
		Status:         domain.StatusApproved,
		Tags:           []string{"Credit-Scoring"},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleStore_ApplyClassification_MissingArticle(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewArticleStore(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE articles").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	err = store.ApplyClassification(context.Background(), 999, Classification{
		Status: domain.StatusRejected,
	})

	assert.ErrorIs(t, err, ErrArticleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleStore_BulkUpdateStatus_ReportsChangedRowsOnly(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewArticleStore(mock)

	// Three requested IDs, one of which does not exist.
	mock.ExpectExec("UPDATE articles SET status").
		WithArgs(domain.StatusApproved, []int64{1, 2, 999}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	changed, err := store.BulkUpdateStatus(context.Background(), []int64{1, 2, 999}, domain.StatusApproved)

	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleStore_BulkUpdateStatus_EmptyList(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewArticleStore(mock)

	changed, err := store.BulkUpdateStatus(context.Background(), nil, domain.StatusApproved)

	require.NoError(t, err)
	assert.Zero(t, changed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleStore_CountToday(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewArticleStore(mock)
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	dayStart := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(domain.StatusApproved, dayStart, dayEnd).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(dayStart, dayEnd).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	counts, err := store.CountToday(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, domain.DailyCounts{Scraped: 4, AIGenerated: 1}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestArticleStore_AutoPublishStale(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewArticleStore(mock)
	cutoff := time.Date(2025, 6, 8, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("UPDATE articles SET status").
		WithArgs(domain.StatusApproved, domain.StatusReview, cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)).AddRow(int64(9)))

	ids, err := store.AutoPublishStale(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, []int64{5, 9}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
