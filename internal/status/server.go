package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProgressReporter exposes the live counters of a dispatch run.
type ProgressReporter interface {
	Progress() (completed, skipped, seeded, pending int)
}

// Server is an optional HTTP endpoint serving run health and progress
// while the dispatcher is working. It is observability only and never
// part of the functional contract.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer configures the Gin router and wraps it in an HTTP server.
func NewServer(port int, appName string, reporter ProgressReporter, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": appName,
		})
	})

	// Live run progress
	r.GET("/progress", func(c *gin.Context) {
		completed, skipped, seeded, pending := reporter.Progress()
		c.JSON(http.StatusOK, gin.H{
			"completed": completed,
			"skipped":   skipped,
			"seeded":    seeded,
			"pending":   pending,
		})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		},
		logger: logger,
	}
}

// Start serves in a background goroutine until Shutdown is called.
func (s *Server) Start() {
	go func() {
		s.logger.Info("Status server listening",
			slog.String("addr", s.httpServer.Addr),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Status server error",
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
