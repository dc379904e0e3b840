// Package web exposes the local HTTP API used by companion tools to create
// tasks and adjust settings while the timer runs.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/sadopc/pomoclock/internal/logging"
	"github.com/sadopc/pomoclock/internal/store"
)

const (
	maxBodySize     = 1 << 20 // 1MB
	shutdownTimeout = 5 * time.Second
)

// Backend is the slice of the store the API needs.
type Backend interface {
	CreateTask(in store.TaskInput) (*store.Task, error)
	CreateTasks(inputs []store.TaskInput) ([]store.Task, error)
	EditTask(id string, edit store.TaskEdit) error
	GetTask(id string) (*store.Task, error)
	ListActiveTasks() ([]store.Task, error)
	TodaySessions() []store.SessionRecord
	GetAllSettings() ([]store.Setting, error)
	SaveSettings(values map[string]string) error
}

type Server struct {
	backend Backend
	router  *gin.Engine
	log     *log.Logger
	now     func() time.Time

	lastRequest atomic.Int64
}

type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func NewServer(b Backend, opts ...Option) *Server {
	s := &Server{
		backend: b,
		log:     logging.Discard(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}

	// gin.Default's logger writes to stdout, which the TUI owns.
	router := gin.New()
	router.Use(gin.Recovery(), s.track())
	s.router = router

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.POST("/tasks/batch", s.handleCreateTasks)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id", s.handleEditTask)
		api.GET("/settings", s.handleGetSettings)
		api.POST("/settings", s.handleSaveSettings)
		api.GET("/sessions/today", s.handleTodaySessions)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// track records request activity for the idle shutdown and caps body size.
func (s *Server) track() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.lastRequest.Store(s.now().UnixNano())
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

func (s *Server) idleFor() time.Duration {
	return s.now().Sub(time.Unix(0, s.lastRequest.Load()))
}

// Run serves on addr until ctx is done or, when idle > 0, until no request
// has arrived for idle. Both cases return nil; calling Run again restarts the
// server.
func (s *Server) Run(ctx context.Context, addr string, idle time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.lastRequest.Store(s.now().UnixNano())

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("http server listening", "addr", addr, "idle_timeout", idle)

	var idleC <-chan time.Time
	if idle > 0 {
		interval := idle / 4
		if interval <= 0 {
			interval = idle
		}
		t := time.NewTicker(interval)
		defer t.Stop()
		idleC = t.C
	}

	for {
		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serve %s: %w", addr, err)
		case <-ctx.Done():
			return s.shutdown(srv)
		case <-idleC:
			if s.idleFor() >= idle {
				s.log.Info("http server idle, shutting down", "idle", idle)
				return s.shutdown(srv)
			}
		}
	}
}

func (s *Server) shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
