package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/homechef/api/internal/di"
	"github.com/homechef/api/internal/handlers"
	"github.com/homechef/api/internal/platform/auth"
	"github.com/homechef/api/internal/platform/config"
	"github.com/homechef/api/internal/platform/idempotency"
	"github.com/homechef/api/internal/platform/observability"
	"github.com/homechef/api/internal/services"
)

func main() {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	buildInfo := buildInfoFromEnv(cfg, startedAt)

	est, err := di.NewEstimator(cfg.Estimator, nil)
	if err != nil {
		logger.Fatal("failed to initialise estimator", zap.Error(err))
	}
	if shadowed := est.Config().Prices.ShadowedRules(); len(shadowed) > 0 {
		logger.Warn("price table has unreachable keywords", zap.Strings("rules", shadowed))
	}

	backend, err := di.OpenBackend(ctx, cfg, di.PriceTableCheck(est))
	if err != nil {
		logger.Fatal("failed to open store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
	}
	logger.Info("store ready", zap.String("backend", cfg.Store.Backend), zap.Int("seeded_recipes", backend.Seeded))

	container, err := di.NewContainer(ctx, cfg, backend.Registry,
		di.WithEstimator(est),
		di.WithLogger(logger),
		di.WithBuildInfo(buildInfo),
	)
	if err != nil {
		logger.Fatal("failed to build services", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			logger.Warn("store close error", zap.Error(err))
		}
	}()

	idempotencyStore := backend.Idempotency
	idempotencyMiddleware := idempotency.Middleware(
		idempotencyStore,
		idempotency.WithHeader(cfg.Idempotency.Header),
		idempotency.WithTTL(cfg.Idempotency.TTL),
		idempotency.WithOptionalKey(),
		idempotency.WithLogger(observability.ServiceLogger(logger, "idempotency")),
	)

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	var cleanupWG sync.WaitGroup
	var cleanupTicker *time.Ticker
	if cfg.Idempotency.CleanupInterval > 0 {
		cleanupTicker = time.NewTicker(cfg.Idempotency.CleanupInterval)
		cleanupWG.Add(1)
		go func() {
			defer cleanupWG.Done()
			cleanupLogger := logger.Named("idempotency")
			for {
				select {
				case <-cleanupTicker.C:
					runCtx, cancel := context.WithTimeout(cleanupCtx, time.Minute)
					removed, err := idempotencyStore.CleanupExpired(runCtx, time.Now().UTC(), cfg.Idempotency.CleanupBatchSize)
					cancel()
					if err != nil {
						cleanupLogger.Error("idempotency cleanup error", zap.Error(err))
						continue
					}
					if removed > 0 {
						cleanupLogger.Info("idempotency cleanup removed records", zap.Int("count", removed))
					}
				case <-cleanupCtx.Done():
					return
				}
			}
		}()
	}

	var authenticator *auth.Authenticator
	if strings.TrimSpace(cfg.Firebase.ProjectID) != "" {
		firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
		if err != nil {
			logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
		}
		authenticator = auth.NewAuthenticator(firebaseVerifier)
	} else {
		logger.Warn("firebase project not configured; /me routes are disabled")
	}

	limiter := handlers.NewClientRateLimiter(cfg.RateLimits.EstimatesPerMinute)
	svc := container.Services

	recipeHandlers := handlers.NewRecipeHandlers(authenticator, svc.Recipes, svc.Estimates, limiter)
	mealPlanHandlers := handlers.NewMealPlanHandlers(svc.MealPlans, limiter)

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(),
		handlers.ClientKeyMiddleware(),
	}

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithHealthBuildInfo(buildInfo),
		handlers.WithHealthSystemService(svc.System),
	)

	var opts []handlers.Option
	opts = append(opts, handlers.WithMiddlewares(middlewares...))
	opts = append(opts, handlers.WithHealthHandlers(healthHandlers))
	opts = append(opts, handlers.WithRecipeRoutes(recipeHandlers.Routes))
	opts = append(opts, handlers.WithMealPlanRoutes(mealPlanHandlers.Routes))
	if authenticator != nil {
		meHandlers := handlers.NewMeHandlers(handlers.MeHandlersDeps{
			Authenticator: authenticator,
			Estimates:     svc.Estimates,
			Experiences:   svc.Experiences,
			UserRecipes:   svc.UserRecipes,
			Idempotency:   idempotencyMiddleware,
			Limiter:       limiter,
		})
		opts = append(opts, handlers.WithMeRoutes(meHandlers.Routes))
	}

	router := handlers.NewRouter(opts...)
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("homechef api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	if cleanupTicker != nil {
		cleanupTicker.Stop()
	}
	cleanupCancel()
	cleanupWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildInfoFromEnv(cfg config.Config, started time.Time) services.BuildInfo {
	version := strings.TrimSpace(os.Getenv("API_BUILD_VERSION"))
	if version == "" {
		version = "dev"
	}
	commit := strings.TrimSpace(os.Getenv("API_BUILD_COMMIT_SHA"))
	if commit == "" {
		commit = "unknown"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "local"
	}
	return services.BuildInfo{
		Version:     version,
		CommitSHA:   commit,
		Environment: environment,
		StartedAt:   started,
	}
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Firestore.ProjectID)
}
