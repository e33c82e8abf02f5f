package bootstrap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/examportal/internal/app/controllers"
	appMigrations "github.com/yigit/examportal/internal/app/migrations"
	appRepos "github.com/yigit/examportal/internal/app/repositories"
	"github.com/yigit/examportal/internal/app/repositories/memory"
	appRoutes "github.com/yigit/examportal/internal/app/routes"
	appServices "github.com/yigit/examportal/internal/app/services"
	"github.com/yigit/examportal/internal/config"
	"github.com/yigit/examportal/internal/db"
	appMiddleware "github.com/yigit/examportal/internal/middleware"
	"github.com/yigit/examportal/internal/pkg/apperrors"
	pkgAuth "github.com/yigit/examportal/internal/pkg/auth"
	"github.com/yigit/examportal/internal/pkg/helpers"
	"github.com/yigit/examportal/internal/pkg/logger"
	"github.com/yigit/examportal/internal/pkg/validation"
	"github.com/yigit/examportal/internal/pkg/websocket"
	"github.com/yigit/examportal/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Store               appServices.HierarchyStore
	ImportService       appServices.ImportService
	HierarchyService    appServices.HierarchyService
	ImportController    *appControllers.ImportController
	HierarchyController *appControllers.HierarchyController
	AuthMiddleware      *appMiddleware.AuthMiddleware
	EventHub            *websocket.Hub
	EventHandler        *websocket.Handler
	JWTService          *pkgAuth.JWTService
	Logger              zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger writing to out.
func LoadConfigAndSetupLogger(configPath string, out io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	format := strings.ToLower(cfg.Logging.Format)
	lgr := logger.Configure(logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Pretty:  format == "text" || format == "console",
		Output:  out,
		Service: "examportal",
	})

	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// OpenStore opens the storage driver named in the configuration. The returned
// close function releases its resources and is never nil.
func OpenStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (appServices.HierarchyStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		lgr.Warn().Msg("Using in-memory storage, data is lost on shutdown")
		return memory.NewStore(), func() {}, nil

	case config.StoragePostgres:
		database, err := SetupDatabase(ctx, cfg, lgr)
		if err != nil {
			return nil, nil, err
		}
		repos := appRepos.NewRepositories(database)
		return repos.HierarchyRepository, database.Close, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedStorage, cfg.Storage.Driver)
	}
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// NewJWTService builds the token service from configuration
func NewJWTService(cfg *config.Config) *pkgAuth.JWTService {
	return pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

// BuildDependencies initializes services and controllers on top of store.
// The caller starts deps.EventHub.Run.
func BuildDependencies(cfg *config.Config, store appServices.HierarchyStore, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Store: store, Logger: lgr}

	deps.JWTService = NewJWTService(cfg)

	deps.ImportService = appServices.NewImportService(store, validation.New(), lgr, cfg.Import.Timeout)
	deps.HierarchyService = appServices.NewHierarchyService(store)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	deps.EventHub = websocket.NewHub(lgr)
	deps.EventHandler = websocket.NewHandler(deps.EventHub, appMiddleware.ContextSubject, lgr)

	deps.ImportController = appControllers.NewImportController(deps.ImportService, deps.EventHub)
	deps.HierarchyController = appControllers.NewHierarchyController(deps.HierarchyService)

	return deps
}

// SeedDefaults creates the default colleges when enabled in configuration
func SeedDefaults(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	if !cfg.Import.SeedDefaults {
		return
	}
	if err := seed.CreateDefaultData(ctx, deps.ImportService, deps.Logger); err != nil {
		// Log the error but don't fail the startup
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger())

	appRoutes.SetupRouter(router,
		deps.ImportController,
		deps.HierarchyController,
		deps.AuthMiddleware,
		deps.EventHandler,
	)

	// Test endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
