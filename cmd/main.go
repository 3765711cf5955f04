package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-graph/config"
	"github.com/oksasatya/go-blog-graph/internal/application"
	"github.com/oksasatya/go-blog-graph/internal/container"
	"github.com/oksasatya/go-blog-graph/internal/infrastructure/media"
	pginfra "github.com/oksasatya/go-blog-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-blog-graph/internal/interface/middleware"
	"github.com/oksasatya/go-blog-graph/internal/router"
	"github.com/oksasatya/go-blog-graph/pkg/helpers"
	"github.com/oksasatya/go-blog-graph/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Initialize Postgres pool
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := pginfra.Migrate(cfg.PostgresDSN(), cfg.MigrationsDir, false, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
	}

	// Redis backs token sessions; without it any valid token is accepted
	if cfg.RedisAddr != "" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		if err := helpers.PingRedis(ctx, rdb); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		container.SetRedis(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set, token sessions are not tracked")
	}

	// Elasticsearch backs searchPosts only
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			log.Fatalf("failed to init elasticsearch client: %v", err)
		}
		container.SetES(es)
	}

	store, closeMedia, err := newMediaStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to init media storage: %v", err)
	}
	defer closeMedia()

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	container.SetMedia(store)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration, cfg.JWTRefreshExpiration))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(logger))
	}
	// CORS
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOriginFunc = func(string) bool { return cfg.Env == "development" }
	}
	r.Use(cors.New(corsCfg))

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	if err := router.InitModules(reg); err != nil {
		log.Fatalf("failed to build graphql schema: %v", err)
	}
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}

// newMediaStore picks the upload backend named by MEDIA_BACKEND.
func newMediaStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (application.MediaStore, func(), error) {
	noop := func() {}
	switch cfg.MediaBackend {
	case "local", "":
		if err := os.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
			return nil, noop, err
		}
		return media.NewLocalStorage(cfg.MediaRoot, cfg.MediaPrefix()), noop, nil
	case "gcs":
		client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			return nil, noop, err
		}
		container.SetGCS(client)
		s, err := media.NewGCSStorage(client, cfg.GCSBucket)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return s, func() { _ = client.Close() }, nil
	case "minio":
		client, err := helpers.NewMinIOClient(ctx, cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
		if err != nil {
			return nil, noop, err
		}
		container.SetMinIO(client)
		public := cfg.MinIOPublicURL
		if public == "" {
			scheme := "http"
			if cfg.MinIOUseSSL {
				scheme = "https"
			}
			public = scheme + "://" + cfg.MinIOEndpoint
		}
		logger.WithField("bucket", cfg.MinIOBucket).Info("media stored in minio")
		return media.NewMinIOStorage(client, cfg.MinIOBucket, public), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.MediaBackend)
	}
}
