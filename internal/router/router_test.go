package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newscurator/internal/apperr"
	"newscurator/internal/domain"
	"newscurator/internal/storage/es"
	"newscurator/internal/storage/pg"
)

type fakeArticles struct {
	byID   map[int64]*domain.Article
	listed []domain.Article
	filter pg.ListFilter
}

func (f *fakeArticles) GetByID(_ context.Context, id int64) (*domain.Article, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, pg.ErrArticleNotFound
	}
	return a, nil
}

func (f *fakeArticles) List(_ context.Context, filter pg.ListFilter) ([]domain.Article, error) {
	f.filter = filter
	return f.listed, nil
}

func (f *fakeArticles) GetTags(_ context.Context, _ int64) ([]domain.Tag, error) {
	return []domain.Tag{{ID: 1, Name: "fraud"}}, nil
}

type fakeCategories struct{}

func (f *fakeCategories) List(_ context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, Name: "Fraud Detection", Slug: "fraud-detection"}}, nil
}

type fakeEditorials struct {
	latest *pg.Editorial
}

func (f *fakeEditorials) Latest(_ context.Context) (*pg.Editorial, error) {
	if f.latest == nil {
		return nil, pg.ErrNoEditorial
	}
	return f.latest, nil
}

type fakeSearcher struct {
	lastQuery string
	lastOpts  es.SearchOptions
}

func (f *fakeSearcher) Search(_ context.Context, query string, opts es.SearchOptions) (*es.SearchResult, error) {
	f.lastQuery = query
	f.lastOpts = opts
	return &es.SearchResult{TotalMatches: 1, Hits: []es.SearchHit{{Score: 1.5}}}, nil
}

func newPublicEcho(articles *fakeArticles, searcher Searcher) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewPublicRouter(e, articles, &fakeCategories{}, &fakeEditorials{}, searcher).Bind()
	return e
}

func TestPublic_ListArticles_ForcesApprovedStatus(t *testing.T) {
	articles := &fakeArticles{listed: []domain.Article{{ID: 1, Status: domain.StatusApproved}}}
	e := newPublicEcho(articles, nil)

	req := httptest.NewRequest(http.MethodGet, "/articles?category=fraud-detection&status=pending", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.StatusApproved, articles.filter.Status,
		"public listing ignores status overrides")
	assert.Equal(t, "fraud-detection", articles.filter.Category)
}

func TestPublic_GetArticle_HidesUnapproved(t *testing.T) {
	articles := &fakeArticles{byID: map[int64]*domain.Article{
		1: {ID: 1, Status: domain.StatusApproved},
		2: {ID: 2, Status: domain.StatusReview},
	}}
	e := newPublicEcho(articles, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/1", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublic_Search(t *testing.T) {
	searcher := &fakeSearcher{}
	e := newPublicEcho(&fakeArticles{}, searcher)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/search?q=fraud&page=2&limit=10", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fraud", searcher.lastQuery)
	assert.Equal(t, 10, searcher.lastOpts.From)
	assert.Equal(t, 10, searcher.lastOpts.Size)
}

func TestPublic_Search_RequiresQuery(t *testing.T) {
	e := newPublicEcho(&fakeArticles{}, &fakeSearcher{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/search", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublic_Search_NotConfigured(t *testing.T) {
	e := newPublicEcho(&fakeArticles{}, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/articles/search?q=x", nil))

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

type fakeReview struct {
	lastIDs    []int64
	lastStatus domain.Status
	deleted    []int64
}

func (f *fakeReview) BulkSetStatus(_ context.Context, ids []int64, status domain.Status) (int64, error) {
	f.lastIDs = ids
	f.lastStatus = status
	return int64(len(ids)), nil
}

func (f *fakeReview) Reprocess(_ context.Context, ids []int64) (int64, error) {
	return f.BulkSetStatus(context.Background(), ids, domain.StatusPending)
}

func (f *fakeReview) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSettingsAdmin struct {
	updated map[string]int
}

func (f *fakeSettingsAdmin) ContentSettings(_ context.Context) (domain.ContentSettings, error) {
	return domain.DefaultContentSettings(), nil
}

func (f *fakeSettingsAdmin) UpdateContent(_ context.Context, values map[string]int) error {
	f.updated = values
	return nil
}

func newAdminEcho(review ReviewService, settings SettingsAdmin) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewAdminRouter(e, "test-key", nil, &fakeArticles{}, review, settings).Bind()
	return e
}

func adminRequest(method, path, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(AdminKeyHeader, "test-key")
	return req
}

func TestAdmin_RequiresAPIKey(t *testing.T) {
	e := newAdminEcho(&fakeReview{}, &fakeSettingsAdmin{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/settings", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	req.Header.Set(AdminKeyHeader, "wrong")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, adminRequest(http.MethodGet, "/admin/settings", ""))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmin_BulkStatus(t *testing.T) {
	review := &fakeReview{}
	e := newAdminEcho(review, &fakeSettingsAdmin{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, adminRequest(http.MethodPut, "/admin/articles/bulk-status",
		`{"ids":[1,2,3],"status":"approved"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{1, 2, 3}, review.lastIDs)
	assert.Equal(t, domain.StatusApproved, review.lastStatus)
	assert.JSONEq(t, `{"updated":3}`, rec.Body.String())
}

func TestAdmin_Reprocess(t *testing.T) {
	review := &fakeReview{}
	e := newAdminEcho(review, &fakeSettingsAdmin{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, adminRequest(http.MethodPost, "/admin/articles/7/reprocess", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{7}, review.lastIDs)
	assert.Equal(t, domain.StatusPending, review.lastStatus)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, adminRequest(http.MethodPost, "/admin/articles/abc/reprocess", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_DeleteArticle(t *testing.T) {
	review := &fakeReview{}
	e := newAdminEcho(review, &fakeSettingsAdmin{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, adminRequest(http.MethodDelete, "/admin/articles/42", ""))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{42}, review.deleted)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, adminRequest(http.MethodDelete, "/admin/articles/nope", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_UpdateSettings(t *testing.T) {
	settings := &fakeSettingsAdmin{}
	e := newAdminEcho(&fakeReview{}, settings)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, adminRequest(http.MethodPut, "/admin/settings",
		`{"daily_max_articles":12}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int{"daily_max_articles": 12}, settings.updated)
}

func TestAdmin_UpdateSettings_RejectsNegative(t *testing.T) {
	e := newAdminEcho(&fakeReview{}, &fakeSettingsAdmin{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, adminRequest(http.MethodPut, "/admin/settings",
		`{"daily_max_articles":-1}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_ListArticles_RejectsInvalidStatus(t *testing.T) {
	e := newAdminEcho(&fakeReview{}, &fakeSettingsAdmin{})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, adminRequest(http.MethodGet, "/admin/articles?status=published", ""))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
