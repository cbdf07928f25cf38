package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/payroll-ledger-go/internal/config"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/consolidation"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/counter"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/notification"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/domain/variableitem"
	appHTTP "github.com/cmlabs-hris/payroll-ledger-go/internal/handler/http"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/cron"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/pkg/sse"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/repository/memory"
	"github.com/cmlabs-hris/payroll-ledger-go/internal/repository/postgresql"
	consolidationService "github.com/cmlabs-hris/payroll-ledger-go/internal/service/consolidation"
	counterService "github.com/cmlabs-hris/payroll-ledger-go/internal/service/counter"
	notificationService "github.com/cmlabs-hris/payroll-ledger-go/internal/service/notification"
	variableItemService "github.com/cmlabs-hris/payroll-ledger-go/internal/service/variableitem"
)

// repositories is the storage a driver provides to the services.
type repositories struct {
	tx            database.Transactor
	employees     employee.EmployeeRepository
	counters      counter.LeaveCounterRepository
	items         variableitem.VariableItemRepository
	consolidation consolidation.ConsolidationRepository
	audit         audit.AuditRepository
	facts         consolidation.FactsRepository
	notifications notification.Repository
	close         func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := appHTTP.NewLogger(cfg.App)
	slog.SetDefault(logger)

	policy, err := config.LoadPolicy(cfg.Ledger.PolicyFile)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	hub := sse.NewHub()
	defer hub.Close()

	notifSvc := notificationService.NewNotificationService(repos.notifications, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.Workers,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notifSvc.Stop()

	counterSvc := counterService.NewLeaveCounterService(repos.tx, repos.counters, repos.employees)
	engine := consolidationService.NewConsolidationEngine(
		repos.tx,
		repos.consolidation,
		repos.items,
		repos.audit,
		repos.employees,
		counterSvc,
		repos.facts,
		repos.facts,
		notificationService.NewLedgerNotifier(notifSvc),
		consolidationService.NewRules(policy, cfg.Ledger.BatchConcurrency),
	)
	itemSvc := variableItemService.NewVariableItemService(
		repos.tx,
		repos.items,
		repos.employees,
		consolidationService.NewItemGate(repos.consolidation, repos.items, repos.audit),
	)
	factsSvc := consolidationService.NewFactsService(repos.tx, repos.facts, repos.employees)

	scheduler := cron.NewScheduler()
	cron.NewLedgerJobs(engine, cfg.Ledger.RefreshInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	router := appHTTP.NewRouter(
		cfg.App,
		logger,
		JWTService,
		appHTTP.NewConsolidationHandler(engine),
		appHTTP.NewCounterHandler(counterSvc),
		appHTTP.NewVariableItemHandler(itemSvc),
		appHTTP.NewFactsHandler(factsSvc),
		appHTTP.NewNotificationHandler(notifSvc, JWTService),
	)

	// no WriteTimeout: it would cut the SSE stream
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.App.StorageDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// streams only end when the hub closes
	hub.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.App.StorageDriver {
	case config.StorageDriverMemory:
		return openMemory(ctx, cfg)
	default:
		return openPostgres(ctx, cfg)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*repositories, error) {
	dsn := cfg.DatabaseURL()
	if err := database.RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &repositories{
		tx:            postgresql.NewTxManager(db),
		employees:     postgresql.NewEmployeeRepository(db),
		counters:      postgresql.NewLeaveCounterRepository(db),
		items:         postgresql.NewVariableItemRepository(db),
		consolidation: postgresql.NewConsolidationRepository(db),
		audit:         postgresql.NewAuditRepository(db),
		facts:         postgresql.NewFactsRepository(db),
		notifications: postgresql.NewNotificationRepository(db),
		close:         db.Close,
	}, nil
}

func openMemory(ctx context.Context, cfg *config.Config) (*repositories, error) {
	store := memory.NewStore()
	employees := memory.NewEmployeeRepository(store)

	if cfg.Ledger.DirectoryFile != "" {
		directory, err := config.LoadDirectory(cfg.Ledger.DirectoryFile)
		if err != nil {
			return nil, err
		}
		for i := range directory {
			if err := employees.Create(ctx, &directory[i]); err != nil {
				return nil, fmt.Errorf("seed employee %s: %w", directory[i].EmployeeCode, err)
			}
		}
		slog.Info("Employee directory loaded", "employees", len(directory))
	}

	slog.Warn("Using in-memory storage, data is lost on restart")
	return &repositories{
		tx:            store,
		employees:     employees,
		counters:      memory.NewLeaveCounterRepository(store),
		items:         memory.NewVariableItemRepository(store),
		consolidation: memory.NewConsolidationRepository(store),
		audit:         memory.NewAuditRepository(store),
		facts:         memory.NewFactsRepository(store),
		notifications: memory.NewNotificationRepository(store),
		close:         func() {},
	}, nil
}
