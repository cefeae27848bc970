package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/auth"
	"github.com/Sumit07M/bg-verification-project/config"
	"github.com/Sumit07M/bg-verification-project/middleware"
	"github.com/Sumit07M/bg-verification-project/repositories"
	"github.com/Sumit07M/bg-verification-project/repositories/postgres"
	"github.com/Sumit07M/bg-verification-project/services"
)

// Version is reported by the status endpoint
const Version = "0.1.0"

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users       repositories.UserRepository
	Submissions repositories.SubmissionRepository
	TxManager   repositories.TransactionManager

	// Auth
	TokenCodec     *auth.Codec
	AuthMiddleware *middleware.AuthMiddleware

	// Services
	AuthService       *services.AuthService
	SubmissionService *services.SubmissionService
}

// NewDependencies creates and wires up all application dependencies.
// The signing key is checked before any connection is opened, so a
// misconfigured key aborts startup without touching the database.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initServices(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewDependenciesWithDB wires dependencies around an already opened database
func NewDependenciesWithDB(cfg *config.Config, db *postgres.DB, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	deps.RepoFactory = postgres.NewRepositoryFactoryFromDB(db, logger)
	deps.DB = db
	deps.initRepositories()
	deps.initServices(cfg)

	return deps, nil
}

// initAuth builds the token codec and the auth middleware around it
func (d *Dependencies) initAuth(cfg *config.Config) error {
	key, err := cfg.Auth.SigningKey()
	if err != nil {
		return err
	}

	codec, err := auth.NewCodec(key, auth.WithLeeway(cfg.Auth.ClockSkew))
	if err != nil {
		return err
	}

	d.TokenCodec = codec
	d.AuthMiddleware = middleware.NewAuthMiddleware(codec, d.Logger)
	d.Logger.Info("auth initialized", zap.String("auth", cfg.Auth.LogString()))
	return nil
}

// initDatabase initializes the PostgreSQL database connection and factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()

	if err := factory.InitSchema(ctx); err != nil {
		_ = factory.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.Submissions = repos.Submissions
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initServices builds the domain services on top of the repositories
func (d *Dependencies) initServices(cfg *config.Config) {
	d.AuthService = services.NewAuthService(d.Users, d.TokenCodec, cfg.Auth.TokenTTL, d.Logger)
	d.SubmissionService = services.NewSubmissionService(d.Submissions, d.TxManager, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
