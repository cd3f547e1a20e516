package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	auth_service "feedstack-post-service/internal/application/service/auth"
	post_service "feedstack-post-service/internal/application/service/post"
	"feedstack-post-service/internal/infrastructure/config"
	delivery_http "feedstack-post-service/internal/infrastructure/inbound/http"
	metrics_server "feedstack-post-service/internal/infrastructure/inbound/metrics"
	"feedstack-post-service/internal/infrastructure/logger"
	bcrypt_hasher "feedstack-post-service/internal/infrastructure/outbound/hasher/bcrypt"
	prometheus_metrics "feedstack-post-service/internal/infrastructure/outbound/metrics/prometheus"
	post_postgres "feedstack-post-service/internal/infrastructure/outbound/repository/post/postgres"
	"feedstack-post-service/internal/infrastructure/outbound/repository/postgres"
	read_postgres "feedstack-post-service/internal/infrastructure/outbound/repository/read/postgres"
	user_postgres "feedstack-post-service/internal/infrastructure/outbound/repository/user/postgres"
	"feedstack-post-service/internal/infrastructure/outbound/storage/filesystem"
	jwt_token "feedstack-post-service/internal/infrastructure/outbound/token/jwt"
	"feedstack-post-service/internal/validation"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := postgres.ApplySchema(cfg.Database.MigrationURL(), log); err != nil {
		log.Error("Failed to apply database schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to parse postgres poolConfig", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.Database.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Database.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Error("Failed to create postgres pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := prometheus_metrics.NewPrometheusMetricsProvider()

	storage, err := filesystem.NewStorage(cfg.Upload.Dir, cfg.Upload.MaxSize, log, metrics)
	if err != nil {
		log.Error("Failed to prepare upload directory", slog.String("dir", cfg.Upload.Dir), slog.String("error", err.Error()))
		os.Exit(1)
	}

	unitOfWork := postgres.NewPostgresUOW(pool, log, metrics)
	postRepo := post_postgres.NewPostRepository(pool, log, metrics)
	readRepo := read_postgres.NewReadRepository(pool, log, metrics)
	userRepo := user_postgres.NewUserRepository(pool, log, metrics)

	postService := post_service.NewPostService(postRepo, readRepo, userRepo, storage, unitOfWork, log, metrics, cfg.Upload.CleanupTimeout)
	authService := auth_service.NewAuthService(
		userRepo,
		bcrypt_hasher.NewHasher(cfg.Auth.BcryptCost),
		jwt_token.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer),
		log,
		metrics,
	)

	router := delivery_http.NewRouter(delivery_http.RouterDeps{
		PostService: postService,
		AuthService: authService,
		Media:       storage,
		Validate:    validation.New(),
		Log:         log,
		Metrics:     metrics,
		HTTP:        cfg.HTTPServer,
		Upload:      cfg.Upload,
		CORS:        cfg.CORS,
	})
	httpServer := delivery_http.NewServer(router, cfg.HTTPServer, log)
	metricsServer := metrics_server.NewMetricsServer(cfg.Prometheus.Address, cfg.Prometheus.Port, log)

	metrics.SetServiceHealth(true)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(httpServer.Run)
	g.Go(metricsServer.Run)
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down servers...")
		metrics.SetServiceHealth(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		return errors.Join(
			httpServer.Shutdown(shutdownCtx),
			metricsServer.Shutdown(shutdownCtx),
		)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server error", slog.String("error", err.Error()))
	}

	postService.Wait()
	log.Info("Server exited")
}
