package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with all routes and middleware
// registered.
func NewRouter(s *Server) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(s.logger), recovery(s.logger))
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		ExposeHeaders:   []string{"X-Request-ID", "X-Response-Time"},
		MaxAge:          10 * time.Minute,
	}))

	router.GET("/", s.handleRoot)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/compare", s.handleCompare)
		v1.POST("/compare/batch", s.handleCompareBatch)

		v1.GET("/models", s.handleListModels)
		v1.GET("/models/:id", s.handleModelInfo)

		v1.GET("/health", s.handleHealth)
		v1.GET("/health/detailed", s.handleHealthDetailed)
	}

	return router
}

// requestLogger logs one line per request with method, path, status,
// and duration.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// recovery converts handler panics into 500 responses instead of
// killing the process.
func recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("handler panicked",
					"path", c.Request.URL.Path,
					"panic", r,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					ErrorResponse{Error: "internal server error"})
			}
		}()
		c.Next()
	}
}
