// Package rest HTTP-интерфейс SmartSpray на gin.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"smart-spray/config"
	app "smart-spray/internal/application"
	"smart-spray/internal/domain/entity"
	"smart-spray/internal/infrastructure/observability"
)

// SprayService операции конвейера решений, нужные HTTP-слою
type SprayService interface {
	HandleDetection(ctx context.Context, source string, image []byte) (*app.DetectionOutput, error)
	HandleCapture(ctx context.Context) (*app.DetectionOutput, error)
	HandleOverride(ctx context.Context, req app.OverrideRequest) (*app.OverrideOutput, error)
	Poll() entity.Command
	Logs(ctx context.Context, last int) ([]entity.LogEntry, error)
}

// Server объединяет роутер и зависимости HTTP API.
type Server struct {
	cfg     config.Config
	spray   SprayService
	metrics *observability.Metrics
	engine  *gin.Engine
}

// New собирает сервер с маршрутами и middleware; metrics может быть nil.
func New(cfg config.Config, spray SprayService, metrics *observability.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())
	if metrics != nil {
		engine.Use(metrics.Middleware())
	}

	server := &Server{cfg: cfg, spray: spray, metrics: metrics, engine: engine}
	server.registerRoutes()
	return server
}

// Engine отдаёт gin-движок (для тестов).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run запускает HTTP-сервер и блокируется до отмены контекста.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "SmartSpray server running"})
	})
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.engine.POST("/detect", s.handleDetect)
	s.engine.GET("/capture", s.handleCapture)
	s.engine.GET("/command", s.handleCommand)
	s.engine.GET("/logs", s.handleLogs)

	if s.cfg.BearerToken != "" {
		s.engine.POST("/override", bearerAuthMiddleware(s.cfg.BearerToken), s.handleOverride)
	} else {
		s.engine.POST("/override", s.handleOverride)
	}

	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
