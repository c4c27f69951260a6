package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/pprof"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MattLee479/UpdatedWebsite2/internal/aggregator"
	"github.com/MattLee479/UpdatedWebsite2/internal/chat"
	"github.com/MattLee479/UpdatedWebsite2/internal/dashboard"
	"github.com/MattLee479/UpdatedWebsite2/internal/hub"
	"github.com/MattLee479/UpdatedWebsite2/internal/logstore"
	"github.com/MattLee479/UpdatedWebsite2/internal/model"
	"github.com/MattLee479/UpdatedWebsite2/internal/pkg/logger"
	"github.com/MattLee479/UpdatedWebsite2/internal/query"
)

//go:embed all:web
var webFS embed.FS

// Deps are the collaborators the server reads from. Hub, Chat and Feedback
// are optional.
type Deps struct {
	Store    *logstore.Store
	Feedback *logstore.Store
	Cache    *aggregator.Cache
	Hub      *hub.Hub
	Chat     *chat.Service
	Logger   *logger.Logger
	Now      func() time.Time
}

// Server holds the Gin engine and dependencies for the dashboard.
type Server struct {
	engine *gin.Engine
	deps   Deps
	log    *logger.Logger
}

// New creates the dashboard web server.
func New(deps Deps) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logger.Default()
	}

	s := &Server{
		engine: engine,
		deps:   deps,
		log:    deps.Logger.WithComponent("server"),
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// serveEmbedded reads a file from the embedded FS and writes it with the given content type.
func serveEmbedded(webContent fs.FS, name string, contentType string) gin.HandlerFunc {
	data, err := fs.ReadFile(webContent, name)
	return func(c *gin.Context) {
		if err != nil {
			c.String(http.StatusNotFound, "file not found: %s", name)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) setupRoutes() {
	webContent, _ := fs.Sub(webFS, "web")
	s.engine.GET("/", serveEmbedded(webContent, "index.html", "text/html; charset=utf-8"))

	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api")
	api.GET("/dashboard", s.handleDashboard)
	api.GET("/chart-data", s.handleChartData)
	api.GET("/logs", s.handleLogs)

	s.engine.GET("/download", s.handleDownload)
	s.engine.POST("/chat", s.handleChat)
	s.engine.POST("/feedback", s.handleFeedback)
	s.engine.GET("/ws", s.handleWebSocket)

	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

// Payload computes the dashboard for now. Read failures degrade to the last
// good (or an empty) payload with Error set.
func (s *Server) Payload(ctx context.Context, opts dashboard.Options) dashboard.Payload {
	st, res, err := s.deps.Cache.Get(ctx, s.deps.Now())
	p := dashboard.Assemble(st, res.Records, opts)
	if err != nil {
		s.log.WithError(err).Error("load chat log failed")
		p.Error = "chat log unavailable"
	}
	return p
}

func (s *Server) handleHealth(c *gin.Context) {
	rev, err := s.deps.Store.Revision()
	status := "ok"
	if err != nil {
		status = "degraded"
	}
	body := gin.H{
		"status":    status,
		"log_file":  s.deps.Store.Path(),
		"log_bytes": rev.Size,
	}
	if s.deps.Hub != nil {
		body["dropped_payloads"] = s.deps.Hub.Dropped()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleDashboard(c *gin.Context) {
	logs, _ := strconv.ParseBool(c.Query("logs"))
	c.JSON(http.StatusOK, s.Payload(c.Request.Context(), dashboard.Options{
		Filter:      c.Query("filter"),
		IncludeLogs: logs,
	}))
}

func (s *Server) handleLogs(c *gin.Context) {
	_, res, err := s.deps.Cache.Get(c.Request.Context(), s.deps.Now())
	if err != nil {
		s.log.WithError(err).Error("load chat log failed")
	}
	c.JSON(http.StatusOK, gin.H{"logs": query.Filter(res.Records, c.Query("filter"))})
}

func (s *Server) handleChartData(c *gin.Context) {
	f, err := s.deps.Store.Open()
	if err != nil && !errors.Is(err, logstore.ErrNotFound) {
		s.log.WithError(err).Error("open chat log failed")
	}
	var chart dashboard.Chart
	if f != nil {
		defer f.Close()
		chart, err = dashboard.ChartData(f)
	} else {
		chart, err = dashboard.ChartData(nil)
	}
	if err != nil {
		s.log.WithError(err).Warn("chart data incomplete")
	}
	c.JSON(http.StatusOK, chart)
}

func (s *Server) handleDownload(c *gin.Context) {
	f, err := s.deps.Store.Open()
	if errors.Is(err, logstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no chat log yet"})
		return
	}
	if err != nil {
		s.log.WithError(err).Error("open chat log failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat log unavailable"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chat log unavailable"})
		return
	}
	name := filepath.Base(s.deps.Store.Path())
	c.DataFromReader(http.StatusOK, info.Size(), "text/plain; charset=utf-8", f, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", name),
	})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (s *Server) handleChat(c *gin.Context) {
	if s.deps.Chat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "chat disabled"})
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, s.deps.Chat.Reply(c.Request.Context(), req.SessionID, req.Message))
}

type feedbackRequest struct {
	Rating  interface{} `json:"rating"`
	Comment string      `json:"comment"`
}

// handleFeedback appends a rating to the feedback log. Write failures are
// logged and the visitor still gets an acknowledgement.
func (s *Server) handleFeedback(c *gin.Context) {
	if s.deps.Feedback == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "feedback disabled"})
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	rating := ""
	if req.Rating != nil {
		rating = fmt.Sprint(req.Rating)
	}
	err := s.deps.Feedback.AppendFeedback(c.Request.Context(), model.Feedback{
		Timestamp: s.deps.Now().Truncate(time.Second),
		Rating:    rating,
		Comment:   req.Comment,
	})
	if err != nil {
		s.log.WithError(err).Error("append feedback failed")
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback received"})
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
