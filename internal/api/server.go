// Package api exposes browsing sessions over HTTP. Each session owns a
// navigation stack of controllers and serialises its requests.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"filedeck/internal/browser"
	"filedeck/internal/log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultMaxUploadSize caps image uploads when no limit is configured.
const DefaultMaxUploadSize = 32 << 20

type session struct {
	mu    sync.Mutex
	stack []*browser.Controller
}

func (s *session) top() *browser.Controller {
	return s.stack[len(s.stack)-1]
}

// Server holds the sessions and the dependencies shared by their controllers.
type Server struct {
	root          string
	deps          browser.Deps
	maxUploadSize int64

	mu       sync.RWMutex
	sessions map[string]*session

	// Serialises display toggles; the preference is shared by all sessions.
	displayMu sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadSize bounds multipart uploads in bytes.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadSize = n
		}
	}
}

// NewServer creates a server whose sessions start at root.
func NewServer(root string, deps browser.Deps, opts ...Option) *Server {
	s := &Server{
		root:          root,
		deps:          deps,
		maxUploadSize: DefaultMaxUploadSize,
		sessions:      make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.MaxMultipartMemory = s.maxUploadSize
	s.SetupRoutes(r)
	return r
}

// SetupRoutes registers the API on r.
func (s *Server) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/display", s.GetDisplay)
		api.POST("/display/toggle", s.ToggleDisplay)

		api.POST("/sessions", s.CreateSession)

		sess := api.Group("/sessions/:id", s.withSession())
		{
			sess.GET("", s.GetSession)
			sess.DELETE("", s.CloseSession)
			sess.POST("/refresh", s.Refresh)
			sess.POST("/open", s.Open)
			sess.POST("/back", s.Back)
			sess.POST("/edit", s.SetEditMode)
			sess.POST("/directories", s.CreateDirectory)
			sess.POST("/images", s.UploadImage)
			sess.GET("/images/:name", s.GetImage)
			sess.GET("/images/:name/info", s.GetImageInfo)
			sess.DELETE("/selection", s.DeleteSelection)
		}
	}
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("api listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Info("api shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) newSession() (string, *session) {
	root := browser.NewController(s.root, s.deps)
	if err := root.Load(); err != nil {
		log.LogWithError(err).Warn("session root not listable")
	}
	id := uuid.NewString()
	sess := &session{stack: []*browser.Controller{root}}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	log.LogWithFields(log.F("session", id)).Info("session created")
	return id, sess
}

func (s *Server) lookup(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) remove(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// withSession resolves :id and holds the session lock for the request.
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
			return
		}
		sess, ok := s.lookup(id)
		if !ok {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown session"})
			return
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		c.Set(sessionKey, sess)
		c.Next()
	}
}

const sessionKey = "session"

func sessionFrom(c *gin.Context) *session {
	return c.MustGet(sessionKey).(*session)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.LogWithFields(
			log.F("method", c.Request.Method),
			log.F("path", c.FullPath()),
			log.F("status", c.Writer.Status()),
			log.F("latency", time.Since(start).String()),
		).Debug("request")
	}
}
