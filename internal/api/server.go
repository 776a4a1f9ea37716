package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/factlens/internal/model"
	"github.com/ppiankov/factlens/internal/pipeline"
	"github.com/ppiankov/factlens/internal/reputation"
	"github.com/ppiankov/factlens/internal/store"
)

// UserHeader carries the caller's user id. Authentication happens upstream.
const UserHeader = "X-User-ID"

// Analyzer runs one submission through the analysis pipeline
type Analyzer interface {
	Run(ctx context.Context, sub model.Submission) (*pipeline.Outcome, error)
}

// Server is the HTTP boundary over the analyzer and the record store
type Server struct {
	analyzer Analyzer
	store    store.Store
	table    *reputation.Table
	alerts   http.Handler // websocket endpoint, may be nil
	logger   *zap.Logger
}

// NewServer creates a new server
func NewServer(analyzer Analyzer, s store.Store, table *reputation.Table, alerts http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if table == nil {
		table = reputation.NewTable(nil)
	}
	return &Server{
		analyzer: analyzer,
		store:    s,
		table:    table,
		alerts:   alerts,
		logger:   logger,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.POST("/analyze", s.analyze)
	api.GET("/analyses", s.listAnalyses) // ?q=&limit=
	api.GET("/analyses/:id", s.getAnalysis)

	api.GET("/bookmarks", s.requireUser, s.listBookmarks)
	api.POST("/bookmarks", s.requireUser, s.addBookmark)
	api.DELETE("/bookmarks/:analysisId", s.requireUser, s.removeBookmark)

	api.GET("/alerts", s.requireUser, s.listAlerts)
	api.POST("/alerts", s.requireUser, s.createAlert)
	api.PUT("/alerts/:id", s.requireUser, s.updateAlert)
	api.DELETE("/alerts/:id", s.requireUser, s.deleteAlert)

	api.GET("/triggered-alerts", s.requireUser, s.listTriggered) // ?unread=true
	api.POST("/triggered-alerts/:id/read", s.requireUser, s.markRead)

	api.GET("/stats", s.dashboard)
	api.GET("/reports", s.requireUser, s.listReports)
	api.POST("/reports", s.requireUser, s.createReport)

	api.GET("/profile", s.requireUser, s.getProfile)
	api.PUT("/profile", s.requireUser, s.upsertProfile)
	api.GET("/profile/stats", s.requireUser, s.profileStats)

	api.GET("/publishers/:domain", s.publisher)

	if s.alerts != nil {
		r.GET("/ws/alerts", gin.WrapH(s.alerts))
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", zap.String("address", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down api")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func userID(c *gin.Context) string {
	if id := c.GetHeader(UserHeader); id != "" {
		return id
	}
	return c.Query("user_id")
}

func (s *Server) requireUser(c *gin.Context) {
	if userID(c) == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserHeader + " header"})
		return
	}
	c.Next()
}

// fail maps typed errors to status codes
func (s *Server) fail(c *gin.Context, err error) {
	var invalid *model.InvalidInputError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	default:
		s.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
