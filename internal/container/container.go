package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cropwise/adapters/backend"
	"cropwise/adapters/memory"
	"cropwise/adapters/postgres"
	"cropwise/app"
	"cropwise/internal"
	"cropwise/internal/config"
	"cropwise/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Collaborators
	Backend      ports.BackendClient
	ActivityRepo ports.ActivityRepository

	// Orchestration services
	Store    *app.CropDataStore
	Cache    *app.RecommendationCache
	Workflow *app.DiseaseAnalysisWorkflow
	Selector *app.FeatureSelector
	Chat     *app.CropChatService
	Reports  *app.ReportService
}

// New creates a dependency injection container and wires all services.
// When cfg.Database.URL is empty the activity log uses the in-memory
// repository instead of postgres.
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
	}

	client, err := backend.NewClient(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	c.Backend = client

	if err := c.initActivityRepository(); err != nil {
		return nil, fmt.Errorf("failed to initialize activity repository: %w", err)
	}

	c.initServices()
	return c, nil
}

// initActivityRepository picks the storage backend for the activity log
func (c *Container) initActivityRepository() error {
	if c.Config.Database.URL == "" {
		c.Logger.Info("no DATABASE_URL configured; using in-memory activity log")
		c.ActivityRepo = memory.NewActivityRepository()
		return nil
	}

	db, err := sqlx.Connect("postgres", c.Config.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		db.Close()
		return fmt.Errorf("activity schema setup failed: %w", err)
	}

	c.DB = db
	c.ActivityRepo = postgres.NewActivityRepository(db)
	return nil
}

// initServices wires the orchestration core
func (c *Container) initServices() {
	c.Store = app.NewCropDataStore(c.Backend, c.Logger)
	c.Cache = app.NewRecommendationCache(c.Store, c.Backend, c.Logger)
	c.Workflow = app.NewDiseaseAnalysisWorkflow(c.Store, c.Backend, c.Cache, c.ActivityRepo, c.Logger)
	c.Selector = app.NewFeatureSelector(c.Store, c.ActivityRepo, c.Logger)
	c.Chat = app.NewCropChatService(c.Store, c.Backend, c.ActivityRepo, c.Logger)
	c.Reports = app.NewReportService(c.Store, c.ActivityRepo, c.Logger)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
