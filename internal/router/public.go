package router

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"newscurator/internal/apperr"
	"newscurator/internal/domain"
	"newscurator/internal/storage/es"
	"newscurator/internal/storage/pg"
)

type ArticleReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Article, error)
	List(ctx context.Context, f pg.ListFilter) ([]domain.Article, error)
	GetTags(ctx context.Context, articleID int64) ([]domain.Tag, error)
}

type CategoryReader interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type EditorialReader interface {
	Latest(ctx context.Context) (*pg.Editorial, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, opts es.SearchOptions) (*es.SearchResult, error)
}

// PublicRouter serves the read-only publication surface. Only approved
// articles are visible here.
type PublicRouter struct {
	e          *echo.Echo
	articles   ArticleReader
	categories CategoryReader
	editorials EditorialReader
	searcher   Searcher
}

func NewPublicRouter(e *echo.Echo, articles ArticleReader, categories CategoryReader, editorials EditorialReader, searcher Searcher) *PublicRouter {
	return &PublicRouter{
		e:          e,
		articles:   articles,
		categories: categories,
		editorials: editorials,
		searcher:   searcher,
	}
}

func (r *PublicRouter) Bind() {
	r.e.GET("/articles", r.listArticles)
	r.e.GET("/articles/search", r.searchArticles)
	r.e.GET("/articles/:id", r.getArticle)
	r.e.GET("/categories", r.listCategories)
	r.e.GET("/editorials/latest", r.latestEditorial)
}

func (r *PublicRouter) listArticles(c echo.Context) error {
	filter := pg.ListFilter{
		Status:     domain.StatusApproved,
		Category:   c.QueryParam("category"),
		Difficulty: domain.Difficulty(c.QueryParam("difficulty")),
		Language:   c.QueryParam("language"),
		Page:       intParam(c, "page", 1),
		Limit:      intParam(c, "limit", 20),
	}
	if filter.Difficulty != "" && !filter.Difficulty.Valid() {
		return apperr.NewValidation("invalid difficulty: " + string(filter.Difficulty))
	}

	articles, err := r.articles.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"articles": articles,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

func (r *PublicRouter) searchArticles(c echo.Context) error {
	if r.searcher == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "search is not configured")
	}

	query := c.QueryParam("q")
	if query == "" {
		return apperr.NewValidation("q parameter is required")
	}

	page := intParam(c, "page", 1)
	size := intParam(c, "limit", 20)

	result, err := r.searcher.Search(c.Request().Context(), query, es.SearchOptions{
		CategorySlug: c.QueryParam("category"),
		From:         (page - 1) * size,
		Size:         size,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (r *PublicRouter) getArticle(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperr.NewValidation("invalid article id")
	}

	article, err := r.articles.GetByID(c.Request().Context(), id)
	if errors.Is(err, pg.ErrArticleNotFound) {
		return apperr.NewNotFound("article not found")
	}
	if err != nil {
		return err
	}
	if article.Status != domain.StatusApproved {
		return apperr.NewNotFound("article not found")
	}

	tags, err := r.articles.GetTags(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"article": article,
		"tags":    tags,
	})
}

func (r *PublicRouter) listCategories(c echo.Context) error {
	categories, err := r.categories.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categories)
}

func (r *PublicRouter) latestEditorial(c echo.Context) error {
	editorial, err := r.editorials.Latest(c.Request().Context())
	if errors.Is(err, pg.ErrNoEditorial) {
		return apperr.NewNotFound("no editorial published yet")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, editorial)
}

func intParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
