package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/koweyli/vantage-console/internal/api/middleware"
	"github.com/koweyli/vantage-console/internal/api/routes"
	"github.com/koweyli/vantage-console/internal/services"
)

// Server wraps the HTTP engine and shared dependencies for easier testing.
type Server struct {
	Engine     *gin.Engine
	DataCenter *services.DataCenterService
	deps       routes.Deps
}

// New wires up the HTTP router and registers the API routes.
func New(deps routes.Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	if deps.Cfg.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(deps.Cfg.Environment == "development"),
	)

	dc := routes.Register(router, deps)

	router.Static("/uploads", deps.Cfg.UploadsDir)
	router.Static("/downloads", deps.Cfg.DownloadsDir)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "route not found",
			})
			return
		}
		c.Status(http.StatusNotFound)
	})

	return &Server{Engine: router, DataCenter: dc, deps: deps}
}

// Run starts the HTTP server with proper shutdown semantics.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.deps.Cfg.HTTPPort),
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
