// Package api serves stored runs over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/ingest"
	"github.com/newhook/playlog/internal/logging"
)

const (
	listCacheKey = "logs"
	shutdownWait = 10 * time.Second
)

//go:generate moq -stub -out ../testutil/api_store_mock.go -pkg testutil . Store:APIStoreMock

// Store is the read side of the run database.
type Store interface {
	GetLog(ctx context.Context, id string) (*db.Log, error)
	ListLogs(ctx context.Context) ([]db.LogSummary, error)
	ListHosts(ctx context.Context, logID string) ([]db.HostRecord, error)
	ListTasks(ctx context.Context, logID string) ([]db.TaskRecord, error)
	DeleteLog(ctx context.Context, id string) error
}

// Server exposes logs, hosts and tasks as JSON.
type Server struct {
	store    Store
	importer ingest.Importer
	cache    *cache.Cache
	cacheTTL time.Duration
	metrics  *metrics
}

// New creates a server. A zero cacheTTL disables response caching.
func New(store Store, importer ingest.Importer, cacheTTL time.Duration) *Server {
	s := &Server{
		store:    store,
		importer: importer,
		cacheTTL: cacheTTL,
		metrics:  newMetrics(),
	}
	if cacheTTL > 0 {
		s.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger())
	router.Use(s.metrics.middleware())
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "playlog"})
	})
	router.GET("/metrics", s.metrics.handler())

	logs := router.Group("/api/logs")
	logs.GET("/", s.listLogs)
	logs.POST("/", s.createLog)
	logs.GET("/:id/", s.getLog)
	logs.DELETE("/:id/", s.deleteLog)
	logs.GET("/:id/hosts/", s.listHosts)
	logs.GET("/:id/tasks/", s.listTasks)

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Component("api").Info("starting HTTP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Component("api").Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Component("api").Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) cached(key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Server) remember(key string, v any) {
	if s.cache != nil {
		s.cache.SetDefault(key, v)
	}
}

func (s *Server) forget(keys ...string) {
	if s.cache == nil {
		return
	}
	for _, k := range keys {
		s.cache.Delete(k)
	}
}

func logCacheKey(id string) string {
	return "log:" + id
}
