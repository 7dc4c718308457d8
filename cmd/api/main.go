// Package main is the entrypoint for the parking service API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/burgasvv/parking-service/internal/cache"
	"github.com/burgasvv/parking-service/internal/config"
	"github.com/burgasvv/parking-service/internal/event"
	"github.com/burgasvv/parking-service/internal/handler"
	"github.com/burgasvv/parking-service/internal/middleware"
	"github.com/burgasvv/parking-service/internal/repository"
	"github.com/burgasvv/parking-service/internal/server"
	"github.com/burgasvv/parking-service/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	invalidator := cache.NewInvalidator(cacheClient, logger)
	events := event.NewPublisher(cacheClient.Client(), logger)

	identityService := service.NewIdentityService(repo, cacheClient, invalidator, events, logger)
	carService := service.NewCarService(repo, cacheClient, invalidator, events, logger)
	addressService := service.NewAddressService(repo, invalidator, logger)
	parkingService := service.NewParkingService(repo, cacheClient, invalidator, events, logger)

	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	identityHandler := handler.NewIdentityHandler(identityService, logger)
	carHandler := handler.NewCarHandler(carService, logger)
	addressHandler := handler.NewAddressHandler(addressService, logger)
	parkingHandler := handler.NewParkingHandler(parkingService, logger)

	r := setupRouter(
		healthHandler, identityHandler, carHandler, addressHandler, parkingHandler,
		repo, cfg, logger,
	)

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router. Every route carries its
// authorization policy explicitly at registration.
func setupRouter(
	healthHandler *handler.HealthHandler,
	identityHandler *handler.IdentityHandler,
	carHandler *handler.CarHandler,
	addressHandler *handler.AddressHandler,
	parkingHandler *handler.ParkingHandler,
	repo *repository.Repository,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestSize(cfg.MaxRequestBodySize))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	authCfg := middleware.AuthConfig{
		Logger:     logger,
		Repository: repo,
	}
	authzCfg := middleware.AuthzConfig{
		Logger:     logger,
		Repository: repo,
	}

	basicAuth := middleware.BasicAuth(authCfg)
	admin := middleware.RequireAdmin()

	r.Route("/api/v1/identities", func(r chi.Router) {
		// Registration is the single public operation.
		r.Post("/create", identityHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(basicAuth)

			r.With(middleware.OwnIdentityFromQuery(authzCfg, "identityId")).
				Get("/by-id", identityHandler.FindByID)
			r.With(middleware.OwnIdentityFromBody(authzCfg)).
				Put("/update", identityHandler.Update)
			r.With(middleware.OwnIdentityFromQuery(authzCfg, "identityId")).
				Delete("/delete", identityHandler.Delete)
			r.With(middleware.OwnIdentityFromBody(authzCfg)).
				Put("/change-password", identityHandler.ChangePassword)

			r.With(admin).Get("/", identityHandler.FindAll)
			r.With(admin).Put("/change-status", identityHandler.ChangeStatus)
		})
	})

	r.Route("/api/v1/cars", func(r chi.Router) {
		r.Use(basicAuth)

		r.With(middleware.OwnIdentityFromQuery(authzCfg, "identityId")).
			Get("/by-identity", carHandler.FindByIdentity)
		r.With(middleware.OwnCarFromQuery(authzCfg, "carId")).
			Get("/by-id", carHandler.FindByID)
		r.With(middleware.OwnCarDraft(authzCfg)).
			Post("/create", carHandler.Create)
		r.With(middleware.OwnCarFromBody(authzCfg)).
			Put("/update", carHandler.Update)
		r.With(middleware.OwnCarFromQuery(authzCfg, "carId")).
			Delete("/delete", carHandler.Delete)

		r.With(admin).Get("/", carHandler.FindAll)
	})

	r.Route("/api/v1/addresses", func(r chi.Router) {
		r.Use(basicAuth)

		r.Get("/", addressHandler.FindAll)
		r.Get("/by-id", addressHandler.FindByID)

		r.With(admin).Post("/create", addressHandler.Create)
		r.With(admin).Put("/update", addressHandler.Update)
		r.With(admin).Delete("/delete", addressHandler.Delete)
	})

	r.Route("/api/v1/parking", func(r chi.Router) {
		r.Use(basicAuth)

		r.Get("/", parkingHandler.FindAll)
		r.Get("/by-id", parkingHandler.FindByID)

		r.With(admin).Post("/create", parkingHandler.Create)
		r.With(admin).Put("/update", parkingHandler.Update)
		r.With(admin).Delete("/delete", parkingHandler.Delete)
		r.With(admin).Post("/add-cars", parkingHandler.AddCars)
		r.With(admin).Delete("/remove-cars", parkingHandler.RemoveCars)
	})

	return r
}

var passwordPattern = regexp.MustCompile(`password=[^\s&]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
