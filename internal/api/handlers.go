package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/newhook/playlog/internal/db"
	"github.com/newhook/playlog/internal/ingest"
	"github.com/newhook/playlog/internal/logging"
)

type createLogRequest struct {
	Title      string `json:"title" binding:"required"`
	RawContent string `json:"raw_content"`
}

// parseErrorBody is returned with 500 when a transcript cannot be parsed.
type parseErrorBody struct {
	Error             string `json:"error"`
	Detail            string `json:"detail"`
	RawContentPreview string `json:"raw_content_preview"`
	ParserType        string `json:"parser_type"`
	Traceback         string `json:"traceback,omitempty"`
}

func (s *Server) listLogs(c *gin.Context) {
	if v, ok := s.cached(listCacheKey); ok {
		c.JSON(http.StatusOK, v)
		return
	}

	logs, err := s.store.ListLogs(c.Request.Context())
	if err != nil {
		s.internalError(c, "failed to list logs", err)
		return
	}
	if logs == nil {
		logs = []db.LogSummary{}
	}
	s.remember(listCacheKey, logs)
	c.JSON(http.StatusOK, logs)
}

func (s *Server) createLog(c *gin.Context) {
	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.metrics.importsTotal.WithLabelValues(importInvalid).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log, err := s.importer.Import(c.Request.Context(), req.Title, req.RawContent)
	var parseErr *ingest.ParseError
	switch {
	case errors.Is(err, db.ErrInvalidTitle):
		s.metrics.importsTotal.WithLabelValues(importInvalid).Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "title", "detail": err.Error()})
		return
	case errors.As(err, &parseErr):
		f := parseErr.Result.Failure
		s.metrics.importsTotal.WithLabelValues(importParseFailed).Inc()
		s.metrics.parseFailures.WithLabelValues(string(f.Kind)).Inc()
		c.JSON(http.StatusInternalServerError, parseErrorBody{
			Error:             string(f.Kind),
			Detail:            f.Detail,
			RawContentPreview: f.Preview,
			ParserType:        string(parseErr.Result.Format),
			Traceback:         f.Trace,
		})
		return
	case err != nil:
		s.metrics.importsTotal.WithLabelValues(importError).Inc()
		s.internalError(c, "failed to import log", err)
		return
	}

	s.metrics.importsTotal.WithLabelValues(importStored).Inc()
	s.forget(listCacheKey)
	c.JSON(http.StatusCreated, log)
}

func (s *Server) getLog(c *gin.Context) {
	id := c.Param("id")
	key := logCacheKey(id)
	if v, ok := s.cached(key); ok {
		c.JSON(http.StatusOK, v)
		return
	}

	log, err := s.store.GetLog(c.Request.Context(), id)
	if s.handleLookupError(c, err) {
		return
	}
	s.remember(key, log)
	c.JSON(http.StatusOK, log)
}

func (s *Server) deleteLog(c *gin.Context) {
	id := c.Param("id")
	err := s.store.DeleteLog(c.Request.Context(), id)
	if s.handleLookupError(c, err) {
		return
	}
	s.forget(logCacheKey(id), listCacheKey)
	c.Status(http.StatusNoContent)
}

func (s *Server) listHosts(c *gin.Context) {
	hosts, err := s.store.ListHosts(c.Request.Context(), c.Param("id"))
	if s.handleLookupError(c, err) {
		return
	}
	c.JSON(http.StatusOK, hosts)
}

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context(), c.Param("id"))
	if s.handleLookupError(c, err) {
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// handleLookupError writes the response for a failed lookup and reports whether it did.
func (s *Server) handleLookupError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Log not found"})
	default:
		s.internalError(c, "lookup failed", err)
	}
	return true
}

func (s *Server) internalError(c *gin.Context, msg string, err error) {
	logging.ErrorContext(c.Request.Context(), msg, "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
