package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/tripserve/pkg/fallback"
	"github.com/bastiangx/tripserve/pkg/model"
	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	shutdownTimeout = 5 * time.Second
)

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	Addr           string
	AllowedOrigins []string
	Version        string
	// GinMode is passed to gin.SetMode when set.
	GinMode string
	// Fallback is called for queries no rule matches. Nil or disabled
	// clients leave the fallback_required response as is.
	Fallback        *fallback.Client
	FallbackTimeout time.Duration
}

// HTTPServer serves the engine over HTTP.
type HTTPServer struct {
	engine   Backend
	opts     HTTPOptions
	router   *gin.Engine
	fallback *fallback.Client
}

// NewHTTPServer builds the router.
func NewHTTPServer(engine Backend, opts HTTPOptions) *HTTPServer {
	if opts.GinMode != "" {
		gin.SetMode(opts.GinMode)
	}
	if opts.FallbackTimeout <= 0 {
		opts.FallbackTimeout = fallback.DefaultTimeout
	}
	s := &HTTPServer{engine: engine, opts: opts, fallback: opts.Fallback}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/health", s.health)
	router.GET("/version", s.version)
	router.GET("/stats", s.stats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/suggest", s.suggest)
	router.POST("/clear-cache", s.clearCache)

	s.router = router
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	return cfg
}

// requestID tags every request with an id, reusing one sent by the client.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
			"id", c.GetString(requestIDKey))
	}
}

// Handler returns the router, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *HTTPServer) suggest(c *gin.Context) {
	var req model.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if utf8.RuneCountInString(req.Query) > MaxQueryLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query too long"})
		return
	}

	resp := s.engine.Handle(c.Request.Context(), req)
	if resp.Source == model.SourceFallbackRequired && s.fallback.Enabled() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.FallbackTimeout)
		defer cancel()
		fr, err := s.fallback.Suggest(ctx, req)
		if err != nil {
			log.Warn("fallback failed", "err", err, "id", c.GetString(requestIDKey))
		} else {
			resp = fr
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tripserve",
		"version": s.opts.Version,
		"places":  s.engine.Places().Len(),
	})
}

func (s *HTTPServer) version(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": s.opts.Version})
}

func (s *HTTPServer) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cache":  s.engine.CacheStats(),
		"places": s.engine.Places().Len(),
		"limit":  s.engine.Limit(),
	})
}

func (s *HTTPServer) clearCache(c *gin.Context) {
	s.engine.ClearCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
