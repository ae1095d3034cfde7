// Command relay runs the development backend: the chat REST endpoints, the
// upload store and the realtime relay the chat client connects to.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nexthire/chat/internal/api/handler"
	"nexthire/chat/internal/config"
	"nexthire/chat/internal/logging"
	"nexthire/chat/internal/relay"
	"nexthire/chat/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(ctx context.Context, cfg config.RelayConfig, log *zap.SugaredLogger) (*gorm.DB, *redis.Client, error) {
	if cfg.PostgresDSN == "" {
		return nil, nil, errors.New("relay.postgres_dsn is not set")
	}
	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		return nil, nil, err
	}

	// Redis is only needed when several relay instances share traffic.
	if cfg.RedisAddr == "" {
		log.Infow("redis not configured, running single-instance")
		return db, nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, nil, err
	}
	return db, rdb, nil
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.Dev, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Relay.JWTSecret == "" {
		logger.Fatal("relay.jwt_secret is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, rdb, err := setupDependencies(ctx, cfg.Relay, logger)
	if err != nil {
		logger.Fatalw("failed to connect dependencies", "error", err)
	}
	s := storage.NewStorageService(db, rdb, logger.Named("storage"))
	if err := s.Migrate(); err != nil {
		logger.Fatalw("failed to run migrations", "error", err)
	}
	logger.Infow("database ready, migrations complete")

	var (
		bus      relay.Bus
		presence relay.Presence
	)
	if rdb != nil {
		bus, presence = s, s
	}
	limits := relay.Limits{EventsPerSecond: cfg.Relay.EventsPerSecond, Burst: cfg.Relay.EventBurst}
	hub := relay.NewHub(bus, presence, limits, logger.Named("relay"))
	go hub.Run(ctx)

	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	h := handler.NewHandler(hub, s, cfg.Relay, cfg.TokenTTL, logger.Named("http"))
	h.Register(r)

	server := &http.Server{
		Addr:           cfg.Relay.ListenAddr,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Infow("relay listening", "addr", server.Addr, "instance", hub.ID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warnw("graceful shutdown failed", "error", err)
	}
	<-hub.Done()
	if rdb != nil {
		_ = rdb.Close()
	}
}
