package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/studymate/backend/internal/app/auth"
	appControllers "github.com/studymate/backend/internal/app/controllers"
	appMigrations "github.com/studymate/backend/internal/app/migrations"
	appRepos "github.com/studymate/backend/internal/app/repositories"
	appRoutes "github.com/studymate/backend/internal/app/routes"
	appServices "github.com/studymate/backend/internal/app/services"
	"github.com/studymate/backend/internal/config"
	"github.com/studymate/backend/internal/db"
	appMiddleware "github.com/studymate/backend/internal/middleware"
	pkgAuth "github.com/studymate/backend/internal/pkg/auth"
	"github.com/studymate/backend/internal/pkg/helpers"
	"github.com/studymate/backend/internal/pkg/logger"
	"github.com/studymate/backend/internal/pkg/websocket"
	"github.com/studymate/backend/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	Hub          *websocket.Hub

	AuthService        *appServices.AuthService
	UserService        *appServices.UserService
	SessionService     *appServices.SessionService
	ParticipantService *appServices.ParticipantService
	ChatService        *appServices.ChatService

	Handlers *appRoutes.Handlers
	Logger   zerolog.Logger
}

// ConfigPath returns the config file location, overridable with CONFIG_PATH
func ConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return filepath.Join("configs", "config.yaml")
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(ConfigPath())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := database.Ping(pingCtx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, logger.Component("migrations"))
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Seed.DemoData {
		repos := appRepos.NewRepositories(database.Pool)
		if err := seed.CreateDemoData(ctx, repos.UserRepository, repos.SessionRepository, time.Now(), lgr); err != nil {
			// Startup continues without demo data
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	return database, nil
}

// BuildDependencies wires repositories, services and controllers on top of conn.
// pinger backs the health endpoint and may be nil.
func BuildDependencies(cfg *config.Config, conn db.DBTX, pinger appControllers.Pinger, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(conn)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.AuthzService = appAuth.NewAuthorizationService(
		deps.Repos.SessionRepository,
		deps.Repos.ParticipantRepository,
	)

	deps.Hub = websocket.NewHub(logger.Component("websocket"))

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.JWTService,
		cfg.Auth.AllowedEmailDomains,
		logger.Component("auth"),
	)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, logger.Component("users"))
	deps.SessionService = appServices.NewSessionService(
		deps.Repos.SessionRepository,
		deps.Repos.UserRepository,
		deps.AuthzService,
		deps.Hub,
		logger.Component("sessions"),
	)
	deps.ParticipantService = appServices.NewParticipantService(
		deps.Repos.ParticipantRepository,
		deps.Repos.SessionRepository,
		deps.Hub,
		logger.Component("participants"),
	)
	deps.ChatService = appServices.NewChatService(
		deps.Repos.ChatRepository,
		deps.Repos.SessionRepository,
		deps.Repos.UserRepository,
		deps.AuthzService,
		deps.Hub,
		cfg.Chat.MaxPageSize,
		logger.Component("chat"),
	)

	deps.Handlers = &appRoutes.Handlers{
		Auth:    appControllers.NewAuthController(deps.AuthService, lgr),
		User:    appControllers.NewUserController(deps.UserService),
		Session: appControllers.NewSessionController(deps.SessionService, deps.ParticipantService),
		Chat: appControllers.NewChatController(
			deps.ChatService,
			deps.Hub,
			websocket.NewUpgrader(cfg.CORS.AllowedOrigins),
			cfg.Chat.DefaultPageSize,
			cfg.Chat.MaxPageSize,
			lgr,
		),
		Health:         appControllers.NewHealthController(pinger),
		AuthMiddleware: appMiddleware.NewAuthMiddleware(deps.JWTService),
		AuthLimiter: appMiddleware.NewIPRateLimiter(
			cfg.Auth.RateLimitPerMinute,
			cfg.Auth.RateLimitBurst,
			10*time.Minute,
		),
	}

	return deps
}

// Start launches the background workers owned by deps. They stop when ctx is done.
func (d *Dependencies) Start(ctx context.Context) {
	go d.Hub.Run(ctx)
	go d.Handlers.AuthLimiter.Cleanup(ctx)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(logger.Component("http")),
		cors.New(corsConfig(cfg.CORS.AllowedOrigins)),
	)

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router, deps.Handlers)

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = struct{}{}
	}

	return cors.Config{
		AllowOriginFunc: func(origin string) bool {
			_, ok := allowed[origin]
			return ok
		},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
