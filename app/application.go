package app

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"movierec.app/api"
	"movierec.app/config"
	"movierec.app/database"
	"movierec.app/recommender"
	"movierec.app/recommender/cache"
	"movierec.app/repository"
	"movierec.app/scheduler"
	"movierec.app/service"
)

// Application represents the main application with all its dependencies
type Application struct {
	config     *config.Config
	db         *gorm.DB
	redisCache *cache.RedisCache
	server     *api.Server
	scheduler  *scheduler.Scheduler
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeDatabase() error {
	slog.Info("Initializing database...")

	db, err := database.InitDB(app.config.Database)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return fmt.Errorf("initialize database connection: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		return fmt.Errorf("run database migrations: %w", err)
	}

	app.db = db
	slog.Info("Database initialized successfully")
	return nil
}

func (app *Application) initializeServices() error {
	slog.Info("Initializing services...")

	scoringCache, memoryBackend, err := app.createScoringCache()
	if err != nil {
		return fmt.Errorf("create scoring cache: %w", err)
	}

	// Repositories
	ratingRepo := repository.NewRatingRepository(app.db)
	likeRepo := repository.NewLikeRepository(app.db)
	commentRepo := repository.NewCommentRepository(app.db)

	// Scoring service over the ML upstream
	mlClient := recommender.NewMLClient(&app.config.ML)
	preferences := service.NewPreferenceAdapter(ratingRepo, likeRepo)
	scoringService := recommender.NewScoringService(
		mlClient,
		scoringCache,
		preferences,
		app.config.ML.RecommendationTTL(),
		app.config.ML.SimilarTTL(),
	)

	// Metadata enrichment
	tmdbProvider := recommender.NewTMDBProvider(&app.config.TMDB)
	aggregator := recommender.NewEnrichmentAggregator(tmdbProvider)

	// Application services
	recommendationService := service.NewRecommendationService(scoringService, aggregator)
	preferenceService := service.NewPreferenceService(ratingRepo, likeRepo, commentRepo, scoringService)

	app.server = api.NewServer(app.config, recommendationService, preferenceService)

	// A nil *MemoryCache must not end up as a non-nil ExpirySweeper
	var sweeper scheduler.ExpirySweeper
	if memoryBackend != nil {
		sweeper = memoryBackend
	}
	app.scheduler = scheduler.NewScheduler(app.config, scoringService, sweeper)

	slog.Info("Services initialized successfully")
	return nil
}

// createScoringCache builds the configured cache backend wrapped with metrics.
// The memory backend is also returned so the scheduler can sweep expired
// entries; redis expires keys on its own.
func (app *Application) createScoringCache() (cache.ScoringCacheInterface, *cache.MemoryCache, error) {
	slog.Debug("Creating scoring cache", "type", app.config.Cache.Type)

	switch app.config.Cache.Type {
	case "redis":
		timeout := time.Duration(app.config.Cache.RedisTimeoutMS) * time.Millisecond
		redisCache, err := cache.NewRedisCache(&cache.RedisCacheConfig{
			Addr:         app.config.Cache.RedisAddr,
			Password:     app.config.Cache.RedisPassword,
			DB:           app.config.Cache.RedisDB,
			DialTimeout:  timeout,
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		app.redisCache = redisCache

		instrumented := recommender.NewInstrumentedCache(redisCache, "redis")
		return cache.NewScoringCache(instrumented), nil, nil
	default:
		memoryCache := cache.NewMemoryCache()
		instrumented := recommender.NewInstrumentedCache(memoryCache, "memory")
		return cache.NewScoringCache(instrumented), memoryCache, nil
	}
}

// Start starts the application
func (app *Application) Start() error {
	slog.Info("Starting application...")

	slog.Info("Starting scheduler...")
	app.scheduler.Start()

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.redisCache != nil {
		if err := app.redisCache.Close(); err != nil {
			slog.Warn("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}
