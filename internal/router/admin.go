package router

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"newscurator/internal/apperr"
	"newscurator/internal/domain"
	"newscurator/internal/pipeline"
	"newscurator/internal/storage/pg"
)

// AdminKeyHeader carries the shared secret for the admin surface.
const AdminKeyHeader = "X-Admin-Key"

type ReviewService interface {
	BulkSetStatus(ctx context.Context, ids []int64, status domain.Status) (int64, error)
	Reprocess(ctx context.Context, ids []int64) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type SettingsAdmin interface {
	ContentSettings(ctx context.Context) (domain.ContentSettings, error)
	UpdateContent(ctx context.Context, values map[string]int) error
}

type AdminRouter struct {
	e        *echo.Echo
	apiKey   string
	pipeline *pipeline.Pipeline
	articles ArticleReader
	review   ReviewService
	settings SettingsAdmin
}

func NewAdminRouter(e *echo.Echo, apiKey string, pl *pipeline.Pipeline, articles ArticleReader, review ReviewService, settings SettingsAdmin) *AdminRouter {
	return &AdminRouter{
		e:        e,
		apiKey:   apiKey,
		pipeline: pl,
		articles: articles,
		review:   review,
		settings: settings,
	}
}

func (r *AdminRouter) Bind() {
	g := r.e.Group("/admin", r.requireAPIKey)

	g.POST("/operations/scrape", r.triggerScrape)
	g.POST("/operations/process", r.triggerProcess)
	g.POST("/operations/supplement", r.triggerSupplement)
	g.POST("/operations/full-refresh", r.triggerFullRefresh)
	g.GET("/operations/current", r.operationStatus)
	g.POST("/operations/pause", r.pauseOperation)
	g.POST("/operations/resume", r.resumeOperation)
	g.POST("/operations/cancel", r.cancelOperation)

	g.GET("/articles", r.listArticles)
	g.PUT("/articles/bulk-status", r.bulkStatus)
	g.POST("/articles/:id/reprocess", r.reprocess)
	g.DELETE("/articles/:id", r.deleteArticle)

	g.GET("/settings", r.getSettings)
	g.PUT("/settings", r.updateSettings)
}

func (r *AdminRouter) requireAPIKey(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get(AdminKeyHeader)
		if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(r.apiKey)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid admin key")
		}
		return next(c)
	}
}

func (r *AdminRouter) triggerScrape(c echo.Context) error {
	snap, err := r.pipeline.TriggerScrape(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, snap)
}

func (r *AdminRouter) triggerProcess(c echo.Context) error {
	limit := intParam(c, "limit", pipeline.DefaultProcessLimit)

	target := domain.StatusApproved
	if t := c.QueryParam("target"); t != "" {
		target = domain.Status(t)
		if target != domain.StatusApproved && target != domain.StatusQueued {
			return apperr.NewValidation("target must be approved or queued")
		}
	}

	snap, err := r.pipeline.TriggerProcess(c.Request().Context(), limit, target)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, snap)
}

func (r *AdminRouter) triggerSupplement(c echo.Context) error {
	snap, err := r.pipeline.TriggerSupplement(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, snap)
}

func (r *AdminRouter) triggerFullRefresh(c echo.Context) error {
	snap, err := r.pipeline.TriggerFullRefresh(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, snap)
}

func (r *AdminRouter) operationStatus(c echo.Context) error {
	snap, ok := r.pipeline.Status()
	if !ok {
		return apperr.NewNotFound("no operation has run yet")
	}
	return c.JSON(http.StatusOK, snap)
}

func (r *AdminRouter) pauseOperation(c echo.Context) error {
	r.pipeline.Pause()
	return r.operationStatus(c)
}

func (r *AdminRouter) resumeOperation(c echo.Context) error {
	r.pipeline.Resume()
	return r.operationStatus(c)
}

func (r *AdminRouter) cancelOperation(c echo.Context) error {
	r.pipeline.Cancel()
	return r.operationStatus(c)
}

// listArticles is the admin view: any status, review queue included.
func (r *AdminRouter) listArticles(c echo.Context) error {
	status := domain.Status(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return apperr.NewValidation("invalid status: " + string(status))
	}

	articles, err := r.articles.List(c.Request().Context(), pg.ListFilter{
		Status:   status,
		Category: c.QueryParam("category"),
		Page:     intParam(c, "page", 1),
		Limit:    intParam(c, "limit", 50),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articles)
}

type bulkStatusRequest struct {
	IDs    []int64       `json:"ids"`
	Status domain.Status `json:"status"`
}

func (r *AdminRouter) bulkStatus(c echo.Context) error {
	var req bulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}

	updated, err := r.review.BulkSetStatus(c.Request().Context(), req.IDs, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

// reprocess sends one article back through classification.
func (r *AdminRouter) reprocess(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperr.NewValidation("invalid article id")
	}

	updated, err := r.review.Reprocess(c.Request().Context(), []int64{id})
	if err != nil {
		return err
	}
	if updated == 0 {
		return apperr.NewNotFound("article not found")
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}

func (r *AdminRouter) deleteArticle(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apperr.NewValidation("invalid article id")
	}
	if err := r.review.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *AdminRouter) getSettings(c echo.Context) error {
	settings, err := r.settings.ContentSettings(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, settings)
}

func (r *AdminRouter) updateSettings(c echo.Context) error {
	var values map[string]int
	if err := c.Bind(&values); err != nil {
		return apperr.NewValidationWrap("invalid request body", err)
	}
	if len(values) == 0 {
		return apperr.NewValidation("no settings given")
	}
	for _, v := range values {
		if v < 0 {
			return apperr.NewValidation("settings values must not be negative")
		}
	}

	if err := r.settings.UpdateContent(c.Request().Context(), values); err != nil {
		return err
	}
	return r.getSettings(c)
}
