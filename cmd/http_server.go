package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/frahmantamala/timesheet-management/internal/audit"
	auditpostgres "github.com/frahmantamala/timesheet-management/internal/audit/postgres"
	"github.com/frahmantamala/timesheet-management/internal/auth"
	authpostgres "github.com/frahmantamala/timesheet-management/internal/auth/postgres"
	"github.com/frahmantamala/timesheet-management/internal/core/events"
	"github.com/frahmantamala/timesheet-management/internal/notification"
	notificationpostgres "github.com/frahmantamala/timesheet-management/internal/notification/postgres"
	"github.com/frahmantamala/timesheet-management/internal/project"
	projectpostgres "github.com/frahmantamala/timesheet-management/internal/project/postgres"
	"github.com/frahmantamala/timesheet-management/internal/timesheet"
	timesheetpostgres "github.com/frahmantamala/timesheet-management/internal/timesheet/postgres"
	"github.com/frahmantamala/timesheet-management/internal/transport/rest"
	"github.com/frahmantamala/timesheet-management/internal/user"
	userpostgres "github.com/frahmantamala/timesheet-management/internal/user/postgres"
	"github.com/frahmantamala/timesheet-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Router     *chi.Mux
	Dispatcher *notification.Dispatcher
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.Dispatcher.Shutdown()
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	appLogger := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the pgx connection pool opened above
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(appLogger)

	// audit is shared infrastructure for every mutating service
	auditRepo := auditpostgres.NewAuditRepository(gormDB)
	auditService := audit.NewService(auditRepo, appLogger)
	auditHandler := audit.NewHandler(auditService)

	// auth + MFA
	tokenGenerator := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	totpVerifier := auth.NewOTPVerifier()
	authRepo := authpostgres.NewAuthRepository(gormDB)
	authService := auth.NewService(authRepo, tokenGenerator, totpVerifier, appLogger)
	authHandler := auth.NewHandler(authService)

	// timesheet workflow
	timesheetRepo := timesheetpostgres.NewTimesheetRepository(gormDB)
	timesheetService := timesheet.NewService(timesheetRepo, auditService, eventBus, appLogger)
	timesheetHandler := timesheet.NewHandler(timesheetService)

	// user administration
	userRepo := userpostgres.NewUserRepository(gormDB)
	userService := user.NewService(userRepo, auditService, totpVerifier, config.Security.BCryptCost, config.Security.TOTPIssuer, appLogger)
	userHandler := user.NewHandler(userService)

	// project administration
	projectRepo := projectpostgres.NewProjectRepository(gormDB)
	projectService := project.NewService(projectRepo, auditService, appLogger)
	projectHandler := project.NewHandler(projectService)

	// notification read model + async delivery
	notificationRepo := notificationpostgres.NewNotificationRepository(gormDB)
	notificationService := notification.NewService(notificationRepo, appLogger)
	notificationHandler := notification.NewHandler(notificationService)

	sender := notification.NewWebhookSender(
		config.Notification.WebhookURL,
		config.Notification.APIKey,
		config.Notification.DeliverTimeout,
		appLogger,
	)
	dispatcher := notification.NewDispatcher(notification.DispatcherConfig{
		MaxWorkers:     config.Notification.MaxWorkers,
		JobQueueSize:   config.Notification.JobQueueSize,
		WorkerPoolSize: config.Notification.WorkerPoolSize,
	}, sender, appLogger)
	notification.NewEventHandler(notificationRepo, dispatcher, appLogger).RegisterHandlers(eventBus)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(
		router,
		db.DB,
		authHandler,
		timesheetHandler,
		userHandler,
		projectHandler,
		notificationHandler,
		auditHandler,
		appLogger,
	)

	return &Dependencies{
		Config:     config,
		Logger:     appLogger,
		DB:         db,
		Router:     router,
		Dispatcher: dispatcher,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
