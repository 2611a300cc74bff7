// Package server exposes the extraction pipeline over HTTP: upload a PDF,
// poll the job, download the tabular outputs.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"invoice-extractor/internal/config"
	"invoice-extractor/internal/export"
	"invoice-extractor/internal/jobs"
	"invoice-extractor/internal/pipeline"
)

type invoiceParser interface {
	Parse(ctx context.Context, pdfPath string) (*pipeline.Result, error)
}

// Server wires the HTTP surface to the parsing pipeline and job store.
type Server struct {
	cfg    *config.Config
	parser invoiceParser
	store  *jobs.Store
	writer *export.Writer
	logger *zap.Logger
	srv    *http.Server

	// parserFor builds a parser for requests that carry their own LLM
	// provider and key.
	parserFor func(opts pipeline.Options) (invoiceParser, error)
}

func New(cfg *config.Config, parser invoiceParser, store *jobs.Store, writer *export.Writer, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		parser: parser,
		store:  store,
		writer: writer,
		logger: logger,
	}
	s.parserFor = func(opts pipeline.Options) (invoiceParser, error) {
		p, err := pipeline.NewParser(opts, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return s
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	if s.cfg.Logger.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(s.logger))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-API-Key")
	router.Use(cors.New(corsCfg))

	router.GET("/health", s.handleHealth)

	api := router.Group("/api/v1")
	api.Use(s.authMiddleware())
	{
		api.POST("/parse", s.handleParse)
		api.POST("/bulk-parse", s.handleBulkParse)
		api.GET("/jobs", s.handleListJobs)
		api.GET("/jobs/:id", s.handleGetJob)
		api.GET("/download/:name", s.handleDownload)
	}
	return router
}

// Start listens until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// authMiddleware enforces the configured API key. An empty configured key
// leaves the API open, which is the expected mode for local use.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.Server.APIKey == "" {
			c.Next()
			return
		}
		key := c.GetHeader("X-API-Key")
		if key == "" {
			key = c.Query("api_key")
		}
		if key != s.cfg.Server.APIKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			return
		}
		c.Next()
	}
}
