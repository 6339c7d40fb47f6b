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

	"github.com/Danhnam1/Audit-System-sub000/internal"
	"github.com/Danhnam1/Audit-System-sub000/internal/auth"
	"github.com/Danhnam1/Audit-System-sub000/internal/core/events"
	"github.com/Danhnam1/Audit-System-sub000/internal/department"
	departmentPostgres "github.com/Danhnam1/Audit-System-sub000/internal/department/postgres"
	"github.com/Danhnam1/Audit-System-sub000/internal/directory"
	"github.com/Danhnam1/Audit-System-sub000/internal/grant"
	grantPostgres "github.com/Danhnam1/Audit-System-sub000/internal/grant/postgres"
	"github.com/Danhnam1/Audit-System-sub000/internal/notify"
	"github.com/Danhnam1/Audit-System-sub000/internal/transport/rest"
	"github.com/Danhnam1/Audit-System-sub000/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle grant issuance, scan and verification requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	Router     *chi.Mux
	Logger     *slog.Logger
	Verifier   *auth.TokenVerifier
	GrantH     *grant.Handler
	DeptH      *department.Handler
	Dispatcher *notify.Dispatcher
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Verifier, deps.GrantH, deps.DeptH, deps.Logger)

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
		if deps.Dispatcher != nil {
			deps.Dispatcher.Shutdown()
		}
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
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGormDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)

	var dispatcher *notify.Dispatcher
	if config.Notify.Enabled {
		dispatcher = notify.NewDispatcher(notify.Config{
			WebhookURL: config.Notify.WebhookURL,
			APIKey:     config.Notify.APIKey,
			Timeout:    config.Notify.Timeout,
			MaxWorkers: config.Notify.MaxWorkers,
			QueueSize:  config.Notify.QueueSize,
		}, lg)
		dispatcher.SubscribeTo(bus)
	}

	directoryClient := directory.NewClient(directory.Config{
		BaseURL: config.Directory.BaseURL,
		APIKey:  config.Directory.APIKey,
		Timeout: config.Directory.Timeout,
	}, lg)

	deptRepo := departmentPostgres.NewDepartmentRepository(gormDB)
	deptService := department.NewService(deptRepo, lg)
	deptHandler := department.NewHandler(deptService)

	grantRepo := grantPostgres.NewGrantRepository(gormDB)
	grantService := grant.NewService(grantRepo, deptService, directoryClient, bus, grant.Config{
		DefaultTTL:       config.Grant.DefaultTTL,
		TokenBytes:       config.Grant.TokenBytes,
		VerifyCodeLength: config.Grant.VerifyCodeLength,
		ScanBaseURL:      config.Grant.ScanBaseURL,
	}, lg)
	grantHandler := grant.NewHandler(grantService)

	return &Dependencies{
		Config:     config,
		DB:         db,
		Router:     chi.NewRouter(),
		Logger:     lg,
		Verifier:   auth.NewTokenVerifier(config.Security.JWTSecret),
		GrantH:     grantHandler,
		DeptH:      deptHandler,
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

// initGormDB layers GORM over the already-open pgx connection so repos and
// the health check share one pool.
func initGormDB(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Warn),
		TranslateError: true,
	})
}
