// Package server exposes the comparison engine over HTTP: a gin router
// with the comparison, model catalog, and health endpoints, plus
// Prometheus metrics exposition.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/ports"
)

// Version is the service version reported by the root and health
// endpoints.
const Version = "0.2.0"

const serviceName = "arbiter"

// Comparer is the engine surface the HTTP layer needs.
type Comparer interface {
	Compare(ctx context.Context, req domain.ComparisonRequest, sourceA, sourceB domain.AnswerSource) domain.ComparisonResult
	CompareBatch(ctx context.Context, reqs []domain.ComparisonRequest) ([]domain.BatchResult, domain.BatchStats, error)
}

// Server holds the handler dependencies.
type Server struct {
	engine  Comparer
	catalog ports.ModelCatalog
	logger  *slog.Logger
	started time.Time
}

// New creates a Server. A nil logger defaults to slog.Default().
func New(engine Comparer, catalog ports.ModelCatalog, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		engine:  engine,
		catalog: catalog,
		logger:  logger,
		started: time.Now(),
	}
}

// handleCompare runs a single comparison of two pre-generated answers.
// Timeouts map to 408 so clients can distinguish them from judged
// outcomes; everything else the engine produces is a 200 with the
// verdict in the body.
func (s *Server) handleCompare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	result := s.engine.Compare(c.Request.Context(), req.toDomain(),
		domain.SuppliedAnswer(req.ResponseA), domain.SuppliedAnswer(req.ResponseB))

	status := http.StatusOK
	if result.Verdict.Kind == domain.VerdictTimeout {
		status = http.StatusRequestTimeout
	}
	c.JSON(status, newComparisonResponse(result))
}

// handleCompareBatch runs 2 to 5 comparisons under one deadline. The
// response is always 200 once the batch is structurally valid;
// individual failures appear as error entries in the results.
func (s *Server) handleCompareBatch(c *gin.Context) {
	var req BatchCompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	reqs := make([]domain.ComparisonRequest, len(req.Comparisons))
	for i, item := range req.Comparisons {
		reqs[i] = item.toDomain()
	}

	start := time.Now()
	results, stats, err := s.engine.CompareBatch(c.Request.Context(), reqs)
	if err != nil {
		if errors.Is(err, domain.ErrBatchSize) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
			return
		}
		s.logger.Error("batch comparison failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "batch comparison failed"})
		return
	}

	c.JSON(http.StatusOK, newBatchComparisonResponse(results, stats, time.Since(start).Seconds()))
}

// handleListModels lists the active model identifiers.
func (s *Server) handleListModels(c *gin.Context) {
	models := s.catalog.ActiveModels()
	c.JSON(http.StatusOK, gin.H{
		"available_models": models,
		"default_model":    s.catalog.DefaultModel(),
		"total_count":      len(models),
	})
}

// handleModelInfo returns the descriptor for one model.
func (s *Server) handleModelInfo(c *gin.Context) {
	id := c.Param("id")
	descriptor, ok := s.catalog.Model(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error":            "model not found",
			"available_models": s.catalog.ActiveModels(),
		})
		return
	}
	c.JSON(http.StatusOK, descriptor)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   serviceName,
		"version":   Version,
	})
}

// handleHealthDetailed adds the catalog condition and process uptime to
// the basic health payload. A degraded catalog still reports 200: the
// fallback descriptor set keeps the service usable.
func (s *Server) handleHealthDetailed(c *gin.Context) {
	health := s.catalog.Health()
	c.JSON(http.StatusOK, gin.H{
		"status":         health.Status,
		"timestamp":      time.Now().UTC(),
		"service":        serviceName,
		"version":        Version,
		"uptime_seconds": time.Since(s.started).Seconds(),
		"checks": gin.H{
			"api":     "healthy",
			"catalog": health,
		},
	})
}

// handleRoot describes the service and its endpoints.
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "LLM as Judge comparison service",
		"service": serviceName,
		"version": Version,
		"endpoints": gin.H{
			"compare": gin.H{
				"individual": "/api/v1/compare",
				"batch":      "/api/v1/compare/batch",
			},
			"models": gin.H{
				"list": "/api/v1/models",
				"info": "/api/v1/models/{id}",
			},
			"health":  "/api/v1/health",
			"metrics": "/metrics",
		},
	})
}
