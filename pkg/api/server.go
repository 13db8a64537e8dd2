// Package api provides a local HTTP control surface over one session client
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ZentaChain/zentalk-session/pkg/packet"
	"github.com/ZentaChain/zentalk-session/pkg/session"
	"github.com/ZentaChain/zentalk-session/pkg/storage"
	"github.com/ZentaChain/zentalk-session/pkg/transport"
)

// Client is the part of network.Client the API drives
type Client interface {
	ID() string
	Session() *session.Session
	SessionUserID() int64
	IsOnline() bool
	ConnectionState() transport.State
	SignInState() packet.State
	Connect(ctx context.Context) error
	SignOut() error
}

// Inbox is the part of storage.Inbox the API exposes
type Inbox interface {
	Pending(limit int) ([]*storage.InboxMessage, error)
	Ack(id int64) error
	Count() (int, error)
}

// Server represents the HTTP API server
type Server struct {
	client     Client
	inbox      Inbox
	router     *gin.Engine
	port       int
	httpServer *http.Server
	log        *logrus.Entry
}

// Config holds server configuration
type Config struct {
	Port         int
	EnableCORS   bool
	APIKey       string // Empty disables key checks
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Port:         8090,
		EnableCORS:   false,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// NewServer creates a new HTTP API server. inbox may be nil.
func NewServer(client Client, inbox Inbox, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		client: client,
		inbox:  inbox,
		router: router,
		port:   config.Port,
		log:    logrus.WithField("scope", "api"),
	}
	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	server.setupMiddleware(config)
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(config *Config) {
	if config.EnableCORS {
		s.router.Use(CORSMiddleware())
	}

	s.router.Use(LoggingMiddleware(s.log))
	s.router.Use(gin.Recovery())

	if config.APIKey != "" {
		s.router.Use(AuthMiddleware(config.APIKey))
	}
}

// setupRoutes configures API routes
func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")
	{
		sess := v1.Group("/session")
		{
			sess.GET("/status", s.handleStatus)
			sess.POST("/connect", s.handleConnect)
			sess.POST("/signout", s.handleSignOut)
		}

		inbox := v1.Group("/inbox")
		{
			inbox.GET("", s.handleInbox)
			inbox.DELETE("/:id", s.handleAck)
		}
	}

	s.router.GET("/health", s.handleHealth)
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("🌐 HTTP API listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("🛑 Shutting down HTTP API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
