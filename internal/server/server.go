package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"newscurator/internal/apperr"
	mw "newscurator/pkg/middleware"
	pkgserver "newscurator/pkg/server"
)

const GracefulShutdownTimeout = 10 * time.Second

type Config struct {
	Port        string
	CorsOrigins []string
}

type Server struct {
	Echo *echo.Echo

	cfg     Config
	checker pkgserver.HealthChecker
}

func New(cfg Config, checker pkgserver.HealthChecker) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()

	s := &Server{
		Echo:    e,
		cfg:     cfg,
		checker: checker,
	}

	s.setupMiddlewares()
	s.setupHealthChecks()

	return s
}

func (s *Server) setupMiddlewares() {
	s.Echo.Use(mw.Logger())
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.cfg.CorsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete},
	}))
}

func (s *Server) setupHealthChecks() {
	s.Echo.GET("/healthz", func(c echo.Context) error {
		if !s.checker.Healthy(c.Request().Context()) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := s.Echo.Start(":" + s.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Echo.Logger.Fatal("shutting down the server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := s.Echo.Shutdown(shutdownCtx); err != nil {
		s.Echo.Logger.Fatal(err)
		return err
	}
	return nil
}
