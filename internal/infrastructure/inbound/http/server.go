package delivery_http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	auth_service "feedstack-post-service/internal/domain/ports/input/auth"
	post_service "feedstack-post-service/internal/domain/ports/input/post"
	ports "feedstack-post-service/internal/domain/ports/output"
	"feedstack-post-service/internal/infrastructure/config"
	auth_http "feedstack-post-service/internal/infrastructure/inbound/http/auth"
	"feedstack-post-service/internal/infrastructure/inbound/http/middleware"
	post_http "feedstack-post-service/internal/infrastructure/inbound/http/post"
	"feedstack-post-service/internal/infrastructure/inbound/http/response"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const welcomeMessage = "Welcome to the feedstack API"

type RouterDeps struct {
	PostService post_service.Service
	AuthService auth_service.Service
	Media       post_http.MediaSaver
	Validate    *validator.Validate
	Log         ports.Logger
	Metrics     ports.MetricsProvider
	HTTP        config.HTTPServer
	Upload      config.Upload
	CORS        config.CORS
}

// NewRouter wires every HTTP route. Uploaded media is served read-only under
// /uploads from the upload directory.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(deps.Log),
		middleware.Metrics(deps.Metrics),
		cors.New(corsConfig(deps.CORS)),
	)

	router.GET("/", func(c *gin.Context) {
		response.Message(c, http.StatusOK, welcomeMessage)
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.Static("/uploads", deps.Upload.Dir)

	auth_http.NewAuthHTTPService(deps.AuthService, deps.Log).Register(router.Group("/auth"))

	posts := router.Group("/posts", middleware.RequireAuth(deps.AuthService, deps.Log))
	post_http.NewPostHTTPService(
		deps.PostService,
		deps.Media,
		deps.Validate,
		deps.Log,
		deps.HTTP.BaseURL,
		deps.Upload.MaxSize,
	).Register(posts)

	router.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "route not found")
	})

	return router
}

func corsConfig(cfg config.CORS) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || slices.Contains(cfg.AllowedOrigins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = cfg.AllowedOrigins
	c.AllowCredentials = true
	return c
}

type Server struct {
	server  *http.Server
	address string
	port    int
	log     ports.Logger
}

func NewServer(handler http.Handler, cfg config.HTTPServer, log ports.Logger) *Server {
	address := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	return &Server{
		server: &http.Server{
			Addr:         address,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		address: cfg.Address,
		port:    cfg.Port,
		log:     log,
	}
}

// Run blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Run() error {
	s.log.Info("Starting HTTP server", slog.String("address", s.address), slog.Int("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
