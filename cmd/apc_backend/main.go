package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/invoxel/ap_console_app/internal/clients/erp"
	"github.com/invoxel/ap_console_app/internal/clients/extraction"
	portssvc "github.com/invoxel/ap_console_app/internal/core/ports/services"
	"github.com/invoxel/ap_console_app/internal/core/services"
	"github.com/invoxel/ap_console_app/internal/handlers"
	"github.com/invoxel/ap_console_app/internal/middleware"
	"github.com/invoxel/ap_console_app/internal/platform/config"
	"github.com/invoxel/ap_console_app/internal/platform/locking"
	"github.com/invoxel/ap_console_app/internal/repositories/database/pgsql"
	"github.com/invoxel/ap_console_app/pkg/database"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title AP Console API
// @version 1.0
// @description Accounts payable automation backend.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Prefer distributed document locks when redis is reachable, fall back to
	// in-process locks for single-instance deployments.
	var locker locking.DocumentLocker
	if rdb, rerr := database.NewRedisClient(ctx, cfg.RedisURL); rerr == nil {
		locker = locking.NewRedisLocker(rdb)
		logger.Info("Using redis document locks")
	} else {
		locker = locking.NewLocalLocker()
		logger.Warn("Redis unavailable, using in-process document locks", slog.String("error", rerr.Error()))
	}

	// Extraction collaborator: Document AI when configured, a local stub otherwise.
	var extractionClient portssvc.ExtractionClient
	if docAI, derr := extraction.NewDocumentAIClient(ctx, cfg); derr == nil {
		defer docAI.Close()
		extractionClient = docAI
		logger.Info("Using Document AI extraction")
	} else {
		extractionClient = extraction.NewStubClient()
		logger.Warn("Document AI unavailable, using stub extraction", slog.String("error", derr.Error()))
	}

	erpClient := erp.NewClient(cfg)

	repos := pgsql.NewRepositoryProvider(dbPool)
	serviceContainer := services.NewServiceContainer(cfg, &repos, locker, erpClient)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	rate, err := limiter.NewRateFromFormatted("100-M")
	if err != nil {
		logger.Error("Failed to parse rate limit", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, extractionClient)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations over a temporary
// database/sql connection compatible with the main pgx pool.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
