// Package api exposes the symptom intake service over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/symptom-intake-server/internal/config"
	"github.com/symptom-intake-server/internal/domain"
	"github.com/symptom-intake-server/internal/middleware"
)

// Server is the HTTP front end over the classification engine and the
// intake/corpus stores.
type Server struct {
	config  config.ServerConfig
	logger  *logrus.Logger
	engine  domain.Classifier
	corpus  domain.CorpusStore
	records domain.IntakeRepository
	router  *gin.Engine
	server  *http.Server
}

// NewServer wires handlers, middleware and routes.
func NewServer(
	cfg config.ServerConfig,
	logger *logrus.Logger,
	engine domain.Classifier,
	corpus domain.CorpusStore,
	records domain.IntakeRepository,
) *Server {
	if logger.GetLevel() != logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateBurst))
	router.Use(middleware.RequestLogger(logger))

	s := &Server{
		config:  cfg,
		logger:  logger,
		engine:  engine,
		corpus:  corpus,
		records: records,
		router:  router,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/predict", s.handlePredict)

		v1.POST("/records", s.handleCreateRecord)
		v1.GET("/records", s.handleListRecords)
		v1.DELETE("/records/:id", s.handleDeleteRecord)

		v1.POST("/train", s.handleTrain)
		v1.GET("/training-data", s.handleListTrainingData)
		v1.DELETE("/training-data", s.handleClearTrainingData)

		v1.GET("/export", s.handleExport)
		v1.POST("/import", s.handleImport)

		v1.GET("/model", s.handleModelInfo)
	}
}

// Handler returns the underlying HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}
