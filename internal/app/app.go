package app

import (
	"context"
	"time"

	"signaldigest/internal/api"
	"signaldigest/internal/apiclient"
	"signaldigest/internal/cache"
	"signaldigest/internal/config"
	"signaldigest/internal/digest"
	"signaldigest/internal/discovery"
	"signaldigest/internal/health"
	"signaldigest/internal/logging"
	"signaldigest/internal/mockapi"
	"signaldigest/internal/pipeline"
	"signaldigest/internal/review"
	"signaldigest/internal/sources"
)

// App holds all application dependencies
type App struct {
	Config       *config.Config
	Logger       *logging.Logger
	Cache        cache.Cache
	Client       api.Client
	Classifier   *health.Classifier
	Pipeline     *pipeline.Controller
	Digest       *digest.ViewModel
	SourcesSvc   *sources.Service
	ReviewSvc    *review.Service
	DiscoverySvc *discovery.Service

	memCache *cache.MemoryCache
}

// New creates and initializes a new App instance
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// Initialize logger
	app.Logger = app.initLogger()

	// Initialize cache
	app.Cache = app.initCache()

	// Initialize backend client
	app.Client = app.initClient()

	// Initialize health classifier
	app.Classifier = health.New(health.Thresholds{
		ErrorCount:   cfg.Health.ErrorCount,
		WarningCount: cfg.Health.WarningCount,
		StaleAfter:   cfg.Health.StaleAfter,
	})

	// Initialize coordination layers
	app.Pipeline = pipeline.New(app.Client, app.Logger, pipeline.Options{
		PollInterval: cfg.Pipeline.PollInterval,
		Dwell:        cfg.Pipeline.Dwell,
	})
	app.Digest = digest.NewViewModel(app.Client, app.Cache, app.Logger, digest.Options{
		Date:         time.Now().Format("2006-01-02"),
		ItemsPerPage: cfg.Digest.ItemsPerPage,
	})

	// Initialize services
	app.SourcesSvc = sources.NewService(app.Client, app.Classifier, app.Logger)
	app.ReviewSvc = review.NewService(app.Client, app.Logger)
	app.DiscoverySvc = discovery.NewService(app.Client, app.Logger)

	return app, nil
}

// Shutdown tears down the coordination layers. No callbacks fire after it
// returns.
func (a *App) Shutdown(ctx context.Context) error {
	if a.Pipeline != nil {
		a.Pipeline.Close()
	}
	if a.Digest != nil {
		a.Digest.Close()
	}
	if a.memCache != nil {
		a.memCache.Stop()
	}
	if redisCache, ok := a.Cache.(*cache.RedisCache); ok {
		if err := redisCache.Close(); err != nil {
			a.Logger.Error("Redis close error", logging.WithField("error", err.Error()))
		}
	}
	return nil
}

func (a *App) initLogger() *logging.Logger {
	level := logging.LevelInfo
	switch a.Config.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.New(level)
}

func (a *App) initCache() cache.Cache {
	switch a.Config.Cache.Backend {
	case "redis":
		a.Logger.Info("Using Redis cache backend", logging.WithField("addr", a.Config.Cache.RedisAddr))
		redisCache, err := cache.NewRedis(cache.RedisConfig{
			Addr:   a.Config.Cache.RedisAddr,
			Prefix: "signaldigest:",
		}, a.Config.Cache.TTL)
		if err != nil {
			a.Logger.Error("Failed to connect to Redis, falling back to memory cache", logging.WithField("error", err.Error()))
			a.memCache = cache.NewMemory(a.Config.Cache.TTL)
			return a.memCache
		}
		return redisCache
	default:
		a.Logger.Info("Using in-memory cache backend")
		a.memCache = cache.NewMemory(a.Config.Cache.TTL)
		return a.memCache
	}
}

func (a *App) initClient() api.Client {
	if a.Config.API.Mock {
		a.Logger.Info("Using in-process mock backend")
		return mockapi.New()
	}
	a.Logger.Info("Using HTTP backend", logging.WithField("url", a.Config.API.BaseURL))
	return apiclient.New(a.Config.API.BaseURL, a.Config.API.Timeout, a.Logger)
}
