// Package server exposes the studio over HTTP: the provider proxies and the
// REST routes a browser UI drives.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server is the studio's HTTP server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
}

// Config holds the server settings.
type Config struct {
	Host         string
	Port         int
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the development defaults.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         3001,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls can be slow
	}
}

// New creates the server and registers all routes.
func New(cfg Config, proxy *ProxyHandler, studio *StudioHandler) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	// Non-POST requests to POST-only routes must answer 405, not 404.
	engine.HandleMethodNotAllowed = true

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
	engine.Use(cors.New(corsConfig))

	server := &Server{engine: engine}
	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	server.setupRoutes(proxy, studio)
	return server
}

func (s *Server) setupRoutes(proxy *ProxyHandler, studio *StudioHandler) {
	api := s.engine.Group("/api")

	api.GET("/health", s.handleHealth)

	// Provider proxies; bare wire contracts.
	api.POST("/gemini", proxy.Gemini)
	api.POST("/tts", proxy.TTS)

	personas := api.Group("/personas")
	{
		personas.GET("", studio.ListPersonas)
		personas.GET("/:id", studio.GetPersona)
		personas.DELETE("/:id", studio.DeletePersona)
	}

	voices := api.Group("/voices")
	{
		voices.GET("", studio.ListVoices)
		voices.POST("", studio.SaveVoice)
		voices.DELETE("/:id", studio.DeleteVoice)
	}

	ed := api.Group("/editor")
	{
		ed.POST("/open", studio.OpenEditor)
		ed.GET("", studio.GetEditor)
		ed.POST("/method", studio.EditorMethod)
		ed.POST("/tab", studio.EditorTab)
		ed.POST("/state", studio.EditorState)
		ed.POST("/creation-chat", studio.EditorCreationChat)
		ed.POST("/creation-chat/finish", studio.EditorFinishCreationChat)
		ed.POST("/summary/refresh", studio.EditorRefreshSummary)
		ed.POST("/summary/sync", studio.EditorSyncFields)
		ed.POST("/undo", studio.EditorUndo)
		ed.POST("/save", studio.EditorSave)
		ed.POST("/revert", studio.EditorRevert)
		ed.POST("/test-chat", studio.EditorTestChat)
	}

	ch := api.Group("/chat")
	{
		ch.GET("", studio.GetChat)
		ch.POST("/persona", studio.ChatSelectPersona)
		ch.POST("/voice", studio.ChatSelectVoice)
		ch.POST("/audio", studio.ChatAudio)
		ch.POST("/message", studio.ChatSend)
		ch.GET("/clip", studio.ChatClip)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"status": "ok"}})
}

// Start serves until the listener fails or Stop is called.
func (s *Server) Start() error {
	slog.Info("studio server starting", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	slog.Info("studio server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
