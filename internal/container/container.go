package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/rastrodeliberdade/rider-platform/app/db"
	"github.com/rastrodeliberdade/rider-platform/config"
	"github.com/rastrodeliberdade/rider-platform/internal/api/auth"
	"github.com/rastrodeliberdade/rider-platform/internal/api/rider"
)

// RiderContainer holds the rider-service dependency graph.
type RiderContainer struct {
	Config       *config.Config
	Logger       *slog.Logger
	Pool         *pgxpool.Pool
	RiderHandler *rider.HandlerImpl
}

// NewRiderContainer initializes the rider-service dependencies: database
// pool, repository, uniqueness guard, service, handler.
func NewRiderContainer(cfg *config.Config, logger *slog.Logger) (*RiderContainer, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	riderRepo := rider.NewPostgresRiderRepo(pool, logger)
	guard := rider.NewUniquenessGuard(riderRepo, logger)
	riderService := rider.NewRiderService(riderRepo, guard, logger)
	riderHandler := rider.NewHandlerImpl(riderService, logger)

	return &RiderContainer{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		RiderHandler: riderHandler,
	}, nil
}

// Close releases all resources held by the container.
func (c *RiderContainer) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready.
func (c *RiderContainer) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// AuthContainer holds the auth-service dependency graph. The auth service
// owns no database: rider records are reached through the rider client.
type AuthContainer struct {
	Config      *config.Config
	Logger      *slog.Logger
	TokenIssuer *auth.TokenIssuer
	AuthHandler *auth.HandlerImpl
}

// NewAuthContainer initializes the auth-service dependencies: rider lookup
// client, token issuer, login service, handler.
func NewAuthContainer(cfg *config.Config, logger *slog.Logger) *AuthContainer {
	riderClient := auth.NewHTTPRiderClient(cfg.RiderService.BaseURL, cfg.RiderService.Timeout, logger)
	tokenIssuer := auth.NewTokenIssuer(cfg.JWT.SecretKey, cfg.JWT.TokenTTL, cfg.JWT.Issuer)
	authService := auth.NewAuthService(riderClient, tokenIssuer, logger)
	authHandler := auth.NewHandlerImpl(authService, logger)

	return &AuthContainer{
		Config:      cfg,
		Logger:      logger,
		TokenIssuer: tokenIssuer,
		AuthHandler: authHandler,
	}
}
