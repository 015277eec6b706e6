package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"booksync/database"
	_ "booksync/docs"
	"booksync/internal/catalog"
	"booksync/internal/catalog/googlebooks"
	"booksync/internal/config"
	"booksync/internal/microservices/http-api/handler"
	"booksync/internal/microservices/http-api/middleware"
	"booksync/internal/microservices/http-api/repository"
	"booksync/internal/microservices/http-api/service"
)

// @title           booksync API
// @version         1.0
// @description     Personal book tracking: Google Books search and per-user reviews.
// @BasePath        /api
// @securityDefinitions.apikey Bearer
// @in              header
// @name            Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := config.NewLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Error("database_open_failed", "error", err)
		os.Exit(1)
	}
	defer database.Close(db)

	lookup := newCatalogLookup(cfg, logger)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	store := repository.NewStore(db)

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg, logger)
	catalogCache := service.NewCatalogCache(lookup, logger)
	reviewService := service.NewReviewService(store, catalogCache, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	bookHandler := handler.NewBookHandler(lookup)
	reviewHandler := handler.NewReviewHandler(reviewService)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.PrometheusEnabled {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	authHandler.RegisterRoutes(api)

	// Catalog search is public
	bookHandler.RegisterRoutes(api.Group("/user/books"))

	userBooks := api.Group("/user/books")
	userBooks.Use(middleware.AuthMiddleware(authService))
	reviewHandler.RegisterRoutes(userBooks)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http_server_started", "addr", srv.Addr, "env", cfg.GoEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("http_server_stopping")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http_server_shutdown_failed", "error", err)
	}
}

// newCatalogLookup builds the Google Books client, fronted by Redis when REDIS_URL is set.
func newCatalogLookup(cfg *config.Config, logger *slog.Logger) catalog.Lookup {
	client := googlebooks.NewClient(googlebooks.Options{
		BaseURL:    cfg.GoogleBooksAPIURL,
		APIKey:     cfg.GoogleBooksAPIKey,
		Timeout:    cfg.CatalogTimeout,
		MaxRetries: cfg.CatalogMaxRetries,
		RateLimit:  cfg.CatalogRateLimit,
		Logger:     logger,
	})

	if cfg.RedisURL == "" {
		logger.Info("catalog_cache_disabled")
		return client
	}

	rdb, err := catalog.NewRedisClient(context.Background(), cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		// Serve uncached rather than refuse to start.
		logger.Warn("catalog_cache_unavailable", "error", err)
		return client
	}
	logger.Info("catalog_cache_enabled", "ttl", cfg.CacheDuration())
	return catalog.NewCachedLookup(client, rdb, cfg.CacheDuration(), logger)
}
