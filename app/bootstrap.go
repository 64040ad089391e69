package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"newslens/internal/auth"
	"newslens/internal/db"
	"newslens/internal/maintenance"
	"newslens/internal/news"
	"newslens/internal/observability"
	"newslens/internal/reporter"
	"newslens/internal/scrap"
)

type Options struct {
	LoadDotEnv    bool
	RunMigrations bool
}

type Runtime struct {
	Handler http.Handler
	Close   func() error
}

func Build(options Options) (*Runtime, error) {
	if options.LoadDotEnv {
		_ = godotenv.Load()
	}

	logger := observability.NewLogger()

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return nil, err
	}
	redisURL, err := mustEnv("REDIS_URL")
	if err != nil {
		return nil, err
	}
	jwtSecret, err := mustEnv("JWT_SECRET")
	if err != nil {
		return nil, err
	}

	if err := observability.InitSentry(os.Getenv("SENTRY_DSN"), envOrDefault("APP_ENV", "development")); err != nil {
		logger.Warn("init_sentry_failed", map[string]any{"error": err.Error()})
	}

	database, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	database.SetMaxOpenConns(envIntOrDefault("DB_MAX_OPEN_CONNS", 10))
	database.SetMaxIdleConns(envIntOrDefault("DB_MAX_IDLE_CONNS", 5))
	database.SetConnMaxLifetime(envMinutesOrDefault("DB_CONN_MAX_LIFETIME_MINUTES", 30))
	database.SetConnMaxIdleTime(envMinutesOrDefault("DB_CONN_MAX_IDLE_TIME_MINUTES", 10))

	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	redisOptions, err := redis.ParseURL(redisURL)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOptions)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		_ = database.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	if options.RunMigrations {
		if err := db.RunMigrations(database); err != nil {
			_ = database.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	codec := auth.NewCodec(jwtSecret)
	sessions := auth.NewRedisSessionStore(redisClient)
	authRepo := auth.NewRepository(database)
	verifier := auth.NewVerifier(authRepo)

	authService := auth.NewService(verifier, sessions, codec)
	authService.WithTokenTTL(
		envMinutesOrDefault("ACCESS_TOKEN_TTL_MINUTES", 15),
		envHoursOrDefault("REFRESH_TOKEN_TTL_HOURS", 168),
	)
	authHandler := auth.NewHandler(authService)

	if email := strings.TrimSpace(os.Getenv("ADMIN_EMAIL")); email != "" {
		password := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))
		if password == "" {
			_ = database.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD are required together")
		}
		if err := authRepo.UpsertByEmail(context.Background(), strings.ToLower(email), "admin", password); err != nil {
			_ = database.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	newsRepo := news.NewRepository(database)
	newsHandler := news.NewHandler(newsRepo)
	reporterRepo := reporter.NewRepository(database)
	reporterHandler := reporter.NewHandler(reporterRepo)
	scrapRepo := scrap.NewRepository(database)
	scrapHandler := scrap.NewHandler(scrapRepo)

	cleanupHandler := maintenance.NewCleanupHandler(
		reporterRepo,
		logger,
		os.Getenv("CRON_SECRET"),
		envDaysOrDefault("TREND_RETENTION_DAYS", 90),
		envIntOrDefault("TREND_CLEANUP_BATCH_SIZE", 500),
	)

	loginLimiter := auth.NewLoginRateLimiter(
		envIntOrDefault("LOGIN_RATE_LIMIT_MAX", 10),
		envSecondsOrDefault("LOGIN_RATE_LIMIT_WINDOW_SECONDS", 60),
	)

	mux := http.NewServeMux()
	mux.Handle("POST /auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandler.Login)))
	mux.HandleFunc("GET /health", healthHandler(database, redisClient))
	mux.HandleFunc("GET /news", newsHandler.ListNews)
	mux.HandleFunc("GET /news/{id}", newsHandler.GetNews)
	mux.HandleFunc("GET /presses/{id}/reporters", reporterHandler.ListByPress)
	mux.Handle("POST /reporters/{id}/trends", auth.Middleware(codec, http.HandlerFunc(reporterHandler.CreateTrend)))
	mux.Handle("PUT /trends/{id}", auth.Middleware(codec, http.HandlerFunc(reporterHandler.UpdateTrend)))
	mux.Handle("DELETE /trends/{id}", auth.Middleware(codec, http.HandlerFunc(reporterHandler.DeleteTrend)))
	mux.Handle("GET /scraps", auth.Middleware(codec, http.HandlerFunc(scrapHandler.ListScraps)))
	mux.Handle("POST /scraps", auth.Middleware(codec, http.HandlerFunc(scrapHandler.CreateScrap)))
	mux.Handle("DELETE /scraps/{newsID}", auth.Middleware(codec, http.HandlerFunc(scrapHandler.DeleteScrap)))
	mux.HandleFunc("GET /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("POST /internal/maintenance/cleanup", cleanupHandler.Handle)

	handler := observability.RecoverMiddleware(logger, observability.RequestLoggingMiddleware(logger, mux))

	return &Runtime{
		Handler: handler,
		Close: func() error {
			observability.FlushSentry()
			_ = redisClient.Close()
			return database.Close()
		},
	}, nil
}

func healthHandler(database *sql.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		health := "ok"
		if err := database.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			health = "degraded"
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			status = http.StatusServiceUnavailable
			health = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": health,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func mustEnv(name string) (string, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return "", fmt.Errorf("missing required env: %s", name)
	}
	return value, nil
}

func envOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func envIntOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envMinutesOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Minute
}

func envHoursOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Hour
}

func envDaysOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * 24 * time.Hour
}

func envSecondsOrDefault(name string, fallback int) time.Duration {
	return time.Duration(envIntOrDefault(name, fallback)) * time.Second
}

func EnvBoolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if value == "" {
		return fallback
	}

	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
