package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/teamgrid/teamgrid/config"
	"github.com/teamgrid/teamgrid/internal/database"
	"github.com/teamgrid/teamgrid/internal/domain"
	httpHandler "github.com/teamgrid/teamgrid/internal/http"
	"github.com/teamgrid/teamgrid/internal/http/middleware"
	"github.com/teamgrid/teamgrid/internal/migrations"
	"github.com/teamgrid/teamgrid/internal/repository"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

// DefaultRouteTable classifies the API surface for the tenant resolver.
// Workspace lifecycle operations run on the shared registry and are
// tenant-forbidden or tenant-optional; everything else defaults to
// tenant-required. Activation is the one route allowed to address a
// deactivated workspace.
func DefaultRouteTable() *middleware.RouteTable {
	return &middleware.RouteTable{
		Classes: map[string]middleware.RouteClass{
			"/health":                    middleware.RouteTenantForbidden,
			"/api/workspaces.create":     middleware.RouteTenantForbidden,
			"/api/workspaces.list":       middleware.RouteTenantForbidden,
			"/api/workspaces.activate":   middleware.RouteTenantOptional,
			"/api/workspaces.deactivate": middleware.RouteTenantOptional,
			"/api/workspaces.delete":     middleware.RouteTenantOptional,
			"/api/workspaces.get":        middleware.RouteTenantRequired,
		},
		InactiveAllowed: map[string]bool{
			"/api/workspaces.activate": true,
		},
	}
}

// App encapsulates the application dependencies and configuration
type App struct {
	config *config.Config
	logger logger.Logger
	db     *sql.DB

	tenantDB    *database.TenantDB
	provisioner *database.Provisioner

	workspaceRepo domain.WorkspaceRepository
	memberRepo    domain.MemberRepository
	channelRepo   domain.ChannelRepository
	messageRepo   domain.MessageRepository
	fileRepo      domain.FileRepository
	reactionRepo  domain.ReactionRepository

	mux    *http.ServeMux
	server *http.Server
}

// NewApp creates a new application instance
func NewApp(cfg *config.Config, log logger.Logger) *App {
	return &App{
		config: cfg,
		logger: log,
		mux:    http.NewServeMux(),
	}
}

// Initialize sets up all application components in dependency order.
func (a *App) Initialize() error {
	if err := a.initDB(); err != nil {
		return err
	}

	if a.config.RunMigrations {
		manager := migrations.NewManager(a.db, &a.config.Database, a.logger)
		if err := manager.Run(context.Background()); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	a.initRepositories()
	a.initHandlers()
	return nil
}

func (a *App) initDB() error {
	if err := database.EnsureDatabaseExists(&a.config.Database); err != nil {
		return fmt.Errorf("failed to ensure database exists: %w", err)
	}

	db, err := database.Connect(&a.config.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.InitializeDatabase(context.Background(), db); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	a.db = db
	a.tenantDB = database.NewTenantDB(db, &a.config.Database)
	a.provisioner = database.NewProvisioner(db, &a.config.Database, a.logger)
	return nil
}

func (a *App) initRepositories() {
	a.workspaceRepo = repository.NewWorkspaceRepository(a.db)
	a.memberRepo = repository.NewMemberRepository(a.tenantDB)
	a.channelRepo = repository.NewChannelRepository(a.tenantDB)
	a.messageRepo = repository.NewMessageRepository(a.tenantDB)
	a.fileRepo = repository.NewFileRepository(a.tenantDB)
	a.reactionRepo = repository.NewReactionRepository(a.tenantDB)
}

func (a *App) initHandlers() {
	rootHandler := httpHandler.NewRootHandler(a.config.Version)
	workspaceHandler := httpHandler.NewWorkspaceHandler(a.workspaceRepo, a.provisioner, a.config.Server.RootDomain, a.logger)
	channelHandler := httpHandler.NewChannelHandler(a.channelRepo, a.memberRepo, a.logger)
	messageHandler := httpHandler.NewMessageHandler(a.messageRepo, a.fileRepo, a.reactionRepo, a.logger)

	rootHandler.RegisterRoutes(a.mux)
	workspaceHandler.RegisterRoutes(a.mux)
	channelHandler.RegisterRoutes(a.mux)
	messageHandler.RegisterRoutes(a.mux)
}

// Start runs the HTTP server with the tenant resolver wrapped around the
// whole mux, so resolution completes before any handler runs.
func (a *App) Start() error {
	resolver := middleware.NewTenantResolver(a.workspaceRepo, DefaultRouteTable(), a.logger)
	handler := resolver.Middleware()(a.mux)

	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.config.Server.Host, a.config.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.WithField("addr", a.server.Addr).Info("HTTP server listening")
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and closes the database pool.
func (a *App) Shutdown(ctx context.Context) error {
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}
	return nil
}

// GetConfig returns the application configuration
func (a *App) GetConfig() *config.Config {
	return a.config
}

// GetLogger returns the application logger
func (a *App) GetLogger() logger.Logger {
	return a.logger
}

// GetMux returns the HTTP mux
func (a *App) GetMux() *http.ServeMux {
	return a.mux
}

// GetDB returns the shared database pool
func (a *App) GetDB() *sql.DB {
	return a.db
}

// GetWorkspaceRepository returns the workspace registry repository
func (a *App) GetWorkspaceRepository() domain.WorkspaceRepository {
	return a.workspaceRepo
}
