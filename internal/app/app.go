// Package app wires configuration into the lookup stack, the HTTP router
// and the CLI runners.
package app

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/labelpal/backend/config"
	httpDelivery "github.com/labelpal/backend/internal/delivery/http"
	"github.com/labelpal/backend/internal/domain"
	"github.com/labelpal/backend/internal/infrastructure/cache"
	"github.com/labelpal/backend/internal/infrastructure/storage"
	"github.com/labelpal/backend/internal/infrastructure/usda"
	"github.com/labelpal/backend/internal/usecase"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired service components
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Recipes *usecase.RecipeService
	Texts   *storage.TextStore

	closers []func() error
}

// New builds the service from cfg. The caller must Close the result.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	transport := usda.NewTransport(usda.TransportConfig{
		APIKey:          cfg.USDA.APIKey,
		BaseURL:         cfg.USDA.BaseURL,
		Timeout:         cfg.USDA.Timeout,
		RequestsPerHour: cfg.RateLimit.USDA,
		Burst:           cfg.RateLimit.USDABurst,
	}, logger)

	// Log every upstream request in development
	if cfg.Server.Environment == "development" {
		transport.SetDebug(true)
	}

	getter, err := a.withCache(ctx, transport)
	if err != nil {
		return nil, err
	}

	a.Recipes = usecase.NewRecipeService(
		usda.NewClient(getter, logger),
		usecase.RecipeServiceConfig{PageSize: cfg.USDA.PageSize},
		logger,
	)

	texts, err := storage.NewTextStore(cfg.Server.SaveDir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Texts = texts

	logger.Info("service configured",
		zap.String("environment", cfg.Server.Environment),
		zap.String("usda_base_url", cfg.USDA.BaseURL),
		zap.Duration("usda_timeout", cfg.USDA.Timeout),
		zap.String("cache", cfg.Cache.Type),
	)

	return a, nil
}

// withCache decorates next with the configured response cache
func (a *App) withCache(ctx context.Context, next domain.FoodDataGetter) (domain.FoodDataGetter, error) {
	switch a.Config.Cache.Type {
	case "memory":
		memory := cache.NewMemoryCache()
		a.closers = append(a.closers, memory.Close)
		return usda.NewCachingGetter(next, memory, a.Config.Cache.TTL, a.Logger), nil
	case "redis":
		client, err := cache.NewRedisClient(ctx, a.Config.Cache.RedisURL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialize redis cache")
		}
		redisCache := cache.NewRedisCache(client)
		a.closers = append(a.closers, redisCache.Close)
		return usda.NewCachingGetter(next, redisCache, a.Config.Cache.TTL, a.Logger), nil
	default:
		return next, nil
	}
}

// Router builds the HTTP API
func (a *App) Router() *gin.Engine {
	handler := httpDelivery.NewHandler(a.Recipes, a.Texts, a.Logger)
	return httpDelivery.SetupRouter(a.Config, handler, a.Logger)
}

// Serve runs the HTTP server until ctx is done, then shuts it down
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", a.Config.Server.Port),
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return errors.Wrap(err, "server error")
	}
}

// Close releases cache connections
func (a *App) Close() error {
	var result error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			result = errors.CombineErrors(result, err)
		}
	}
	a.closers = nil
	return result
}
